package app

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"hotel_desk/internal/adapters/session"
	"hotel_desk/internal/domain"
)

type BookingStore struct {
	errState
	api      domain.BookingAPI
	sessions session.Provider
	list     *hotelLists[domain.Booking]
	debounce time.Duration

	now      func() time.Time

	mu    sync.Mutex
	slots map[string]*searchSlot
}

// searchSlot fences the searches of one caller in one hotel.
type searchSlot struct {
	seq    uint64
	active int
	last   *SearchResult
	at     time.Time
}

const (
	maxSearchSlots = 1024
	searchIdle     = 10 * time.Minute
)

// SearchResult is the latest search that was allowed to land.
type SearchResult struct {
	Seq      uint64           `json:"seq"`
	Term     string           `json:"term"`
	Bookings []domain.Booking `json:"bookings"`
}

func NewBookingStore(api domain.BookingAPI, sessions session.Provider, c domain.Cache, ttl, debounce time.Duration,
	n domain.Notifier) *BookingStore {
	s := &BookingStore{
		errState: newErrState(n), api: api, sessions: sessions, debounce: debounce,
		now: time.Now, slots: map[string]*searchSlot{},
	}
	s.list = newHotelLists("bookings", c, ttl, api.ListBookings)
	return s
}

func (s *BookingStore) Bookings(ctx context.Context, hotelID string, force bool) ([]domain.Booking, error) {
	bs, err := s.list.get(ctx, hotelID, force)
	if err != nil {
		return nil, s.fail(ctx, opBookingsList, hotelID, err)
	}
	s.setLast(hotelID, nil)
	return bs, nil
}

func (s *BookingStore) Booking(ctx context.Context, id string) (domain.Booking, error) {
	b, err := s.api.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, s.fail(ctx, opBookingGet, "", err)
	}
	return b, nil
}

func (s *BookingStore) RoomBookings(ctx context.Context, roomID string) ([]domain.Booking, error) {
	bs, err := s.api.RoomBookings(ctx, roomID)
	if err != nil {
		return nil, s.fail(ctx, opBookingGet, "", err)
	}
	return bs, nil
}

func (s *BookingStore) LatestRoomBooking(ctx context.Context, roomID string) (domain.Booking, error) {
	b, err := s.api.LatestRoomBooking(ctx, roomID)
	if err != nil {
		return domain.Booking{}, s.fail(ctx, opBookingGet, "", err)
	}
	return b, nil
}

// CreateBooking needs an authenticated session; the session user becomes
// the booking's creator. Every field is validated before anything is sent,
// and the form is reset once the API confirms.
func (s *BookingStore) CreateBooking(ctx context.Context, f *BookingForm) (domain.Booking, error) {
	sess, err := session.Resolve(ctx, s.sessions)
	if err != nil {
		return domain.Booking{}, s.fail(ctx, opBookingCreate, f.HotelID, err)
	}
	if verr := f.Validate(); verr != nil {
		return domain.Booking{}, verr
	}
	hotelID := f.HotelID
	b, err := s.api.CreateBooking(ctx, f.input(sess.UserID))
	if err != nil {
		return domain.Booking{}, s.fail(ctx, opBookingCreate, hotelID, err)
	}
	f.Reset()
	s.list.refresh(ctx, hotelID, func(bs []domain.Booking) []domain.Booking { return append(bs, b) })
	s.succeed(ctx, opBookingCreate, hotelID)
	return b, nil
}

// UpdateBooking applies the set fields of p. Status changes are passed
// through as-is; which transitions are legal is decided by the API.
func (s *BookingStore) UpdateBooking(ctx context.Context, hotelID, id string, p domain.BookingPatch) (domain.Booking, error) {
	if verr := validatePatch(p); verr != nil {
		return domain.Booking{}, verr
	}
	b, err := s.api.UpdateBooking(ctx, id, p)
	if err != nil {
		return domain.Booking{}, s.fail(ctx, opBookingUpdate, hotelID, err)
	}
	hotelID = firstNonEmpty(hotelID, b.HotelID)
	s.list.refresh(ctx, hotelID, func(bs []domain.Booking) []domain.Booking {
		for i := range bs {
			if bs[i].ID == id {
				bs[i] = b
			}
		}
		return bs
	})
	s.succeed(ctx, opBookingUpdate, hotelID)
	return b, nil
}

func validatePatch(p domain.BookingPatch) *domain.ValidationError {
	var verr *domain.ValidationError
	if p.GuestName != nil && utf8.RuneCountInString(strings.TrimSpace(*p.GuestName)) < 2 {
		verr = withField(verr, "guestName", domain.CodeNameTooShort)
	}
	if p.GuestPhone != nil && validate.Var(*p.GuestPhone, "vnphone") != nil {
		verr = withField(verr, "phoneNumber", domain.CodeInvalidPhone)
	}
	if p.GuestCount != nil && *p.GuestCount <= 0 {
		verr = withField(verr, "guestCount", domain.CodeInvalidGuestCount)
	}
	if p.CheckIn != nil && p.CheckOut != nil && !p.CheckOut.After(*p.CheckIn) {
		verr = withField(verr, "checkOutDate", domain.CodeInvalidDateRange)
	}
	if p.Status != nil && !p.Status.Known() {
		verr = withField(verr, "status", domain.CodeInvalid)
	}
	return verr
}

// searchKey scopes fencing to one hotel and one caller, so two receptionists
// searching at once never supersede each other.
func searchKey(ctx context.Context, hotelID string) string {
	return hotelID + "|" + session.Fingerprint(session.TokenFrom(ctx))
}

// begin opens a search on key's slot and returns its sequence number. When
// the table is full, slots idle for longer than searchIdle go first, then
// every slot without a search in flight.
func (s *BookingStore) begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sl, ok := s.slots[key]
	if !ok {
		if len(s.slots) >= maxSearchSlots {
			s.evictIdle(now.Add(-searchIdle))
			if len(s.slots) >= maxSearchSlots {
				s.evictIdle(now)
			}
		}
		sl = &searchSlot{}
		s.slots[key] = sl
	}
	sl.seq++
	sl.active++
	sl.at = now
	return sl.seq
}

func (s *BookingStore) evictIdle(before time.Time) {
	for k, sl := range s.slots {
		if sl.active == 0 && !sl.at.After(before) {
			delete(s.slots, k)
		}
	}
}

func (s *BookingStore) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[key]; ok {
		sl.active--
		sl.at = s.now()
	}
}

// Search waits for the debounce window and then queries the API. A call that
// is overtaken by a newer Search with the same key, either while waiting or
// while its request is in flight, returns ErrSuperseded and its response is
// dropped.
func (s *BookingStore) Search(ctx context.Context, hotelID, term string) ([]domain.Booking, error) {
	key := searchKey(ctx, hotelID)
	n := s.begin(key)
	defer s.end(key)

	if s.debounce > 0 {
		t := time.NewTimer(s.debounce)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if !s.current(key, n) {
		return nil, domain.ErrSuperseded
	}

	term = strings.TrimSpace(term)
	res := []domain.Booking{}
	if term != "" {
		var err error
		res, err = s.api.SearchBookings(ctx, hotelID, term)
		if err != nil {
			if !s.current(key, n) {
				return nil, domain.ErrSuperseded
			}
			return nil, s.fail(ctx, opBookingSearch, hotelID, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[key]
	if !ok || sl.seq != n {
		return nil, domain.ErrSuperseded
	}
	sl.last = &SearchResult{Seq: n, Term: term, Bookings: res}
	return res, nil
}

func (s *BookingStore) current(key string, n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[key]
	return ok && sl.seq == n
}

// LastSearch returns the newest search result that landed for the caller.
func (s *BookingStore) LastSearch(ctx context.Context, hotelID string) (SearchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[searchKey(ctx, hotelID)]
	if !ok || sl.last == nil {
		return SearchResult{}, false
	}
	return *sl.last, true
}
