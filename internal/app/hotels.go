package app

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"hotel_desk/internal/adapters/session"
	"hotel_desk/internal/domain"
)

const (
	accessTTL    = 5 * time.Minute
	maxAccessMem = 4096
)

// HotelStore lists the signed-in account's hotels. The list is per account,
// not per hotel, so it is not cached in the shared cache; it is remembered
// per session for a few minutes to answer Authorize.
type HotelStore struct {
	errState
	api domain.HotelAPI
	ttl time.Duration
	now func() time.Time

	sf     singleflight.Group
	mu     sync.Mutex
	access map[string]accessGrant
}

type accessGrant struct {
	hotels []string
	until  time.Time
}

func NewHotelStore(api domain.HotelAPI, n domain.Notifier) *HotelStore {
	return &HotelStore{
		errState: newErrState(n), api: api, ttl: accessTTL, now: time.Now,
		access: make(map[string]accessGrant),
	}
}

func (s *HotelStore) MyHotels(ctx context.Context) ([]domain.Hotel, error) {
	hs, err := s.api.MyHotels(ctx)
	if err != nil {
		return nil, s.fail(ctx, opHotelsList, "", err)
	}
	s.remember(session.Fingerprint(session.TokenFrom(ctx)), hs)
	return hs, nil
}

// Authorize fails with ErrForbidden unless the caller's session is one of
// hotelID's accounts according to the API. Requests without a forwarded
// token are refused outright. A refusal is not recorded against the hotel.
func (s *HotelStore) Authorize(ctx context.Context, hotelID string) error {
	fp := session.Fingerprint(session.TokenFrom(ctx))
	if fp == "" {
		return s.fail(ctx, opHotelsList, "", domain.ErrUnauthenticated)
	}
	hotels, ok := s.granted(fp)
	if !ok {
		var err error
		hotels, err = joinFetch(ctx, &s.sf, fp, func(ctx context.Context) ([]string, error) {
			hs, err := s.api.MyHotels(ctx)
			if err != nil {
				return nil, err
			}
			return s.remember(fp, hs), nil
		})
		if err != nil {
			return s.fail(ctx, opHotelsList, "", err)
		}
	}
	if !slices.Contains(hotels, hotelID) {
		log.Warn().Str("hotel_id", hotelID).Str("session", fp).Msg("hotel not in session's hotels")
		return domain.ErrForbidden
	}
	return nil
}

func (s *HotelStore) granted(fp string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.access[fp]
	if !ok || !s.now().Before(g.until) {
		return nil, false
	}
	return g.hotels, true
}

func (s *HotelStore) remember(fp string, hs []domain.Hotel) []string {
	ids := make([]string, 0, len(hs))
	for _, h := range hs {
		ids = append(ids, h.ID)
	}
	if fp == "" {
		return ids
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if len(s.access) >= maxAccessMem {
		for k, g := range s.access {
			if !now.Before(g.until) {
				delete(s.access, k)
			}
		}
		if len(s.access) >= maxAccessMem {
			clear(s.access)
		}
	}
	s.access[fp] = accessGrant{hotels: ids, until: now.Add(s.ttl)}
	return ids
}

// forget drops what is known about the session's hotels; a created hotel
// must be visible on the next request.
func (s *HotelStore) forget(fp string) {
	s.mu.Lock()
	delete(s.access, fp)
	s.mu.Unlock()
}

func (s *HotelStore) CreateHotel(ctx context.Context, f *HotelForm) (domain.Hotel, error) {
	if verr := f.Validate(); verr != nil {
		return domain.Hotel{}, verr
	}
	h, err := s.api.CreateHotel(ctx, f.input())
	if err != nil {
		return domain.Hotel{}, s.fail(ctx, opHotelCreate, "", err)
	}
	f.Reset()
	s.forget(session.Fingerprint(session.TokenFrom(ctx)))
	s.succeed(ctx, opHotelCreate, h.ID)
	return h, nil
}
