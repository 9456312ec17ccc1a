package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_desk/internal/adapters/session"
	"hotel_desk/internal/domain"
)

type discard struct{}

func (discard) Notify(context.Context, domain.Notice) {}

// Feed is a bounded ring of recent notices, read by the dashboard to render
// toasts. A notice belongs to the session whose request raised it and is
// only handed back to that session. Every notice is logged as well.
type Feed struct {
	mu   sync.Mutex
	buf  []domain.Notice
	next int
	full bool
	now  func() time.Time
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 100
	}
	return &Feed{buf: make([]domain.Notice, size), now: time.Now}
}

func (f *Feed) Notify(ctx context.Context, n domain.Notice) {
	if n.At.IsZero() {
		n.At = f.now()
	}
	if n.Audience == "" {
		n.Audience = session.Fingerprint(session.TokenFrom(ctx))
	}
	f.mu.Lock()
	f.buf[f.next] = n
	f.next = (f.next + 1) % len(f.buf)
	if f.next == 0 {
		f.full = true
	}
	f.mu.Unlock()

	ev := log.Info()
	switch n.Level {
	case domain.NoticeError:
		ev = log.Warn()
	case domain.NoticeWarning:
		ev = log.Debug()
	}
	ev.Str("level_ui", string(n.Level)).Str("op", n.Op).Str("hotel_id", n.HotelID).Msg(n.Message)
}

// Recent returns up to n of token's notices for hotelID, newest first.
// Notices not tied to a hotel, such as an expired session, are included.
func (f *Feed) Recent(hotelID, token string, n int) []domain.Notice {
	aud := session.Fingerprint(token)
	if aud == "" {
		return []domain.Notice{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	size := f.next
	if f.full {
		size = len(f.buf)
	}
	out := []domain.Notice{}
	for i := 1; i <= size; i++ {
		if n > 0 && len(out) == n {
			break
		}
		nt := f.buf[(f.next-i+len(f.buf))%len(f.buf)]
		if nt.Audience != aud || (nt.HotelID != "" && nt.HotelID != hotelID) {
			continue
		}
		out = append(out, nt)
	}
	return out
}
