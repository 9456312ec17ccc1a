package app

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"hotel_desk/internal/domain"
)

// hotelLists caches one list per hotel. Concurrent loads of the same hotel
// share a single fetch; different hotels never share a slot.
type hotelLists[T any] struct {
	prefix string
	cache  domain.Cache
	ttl    time.Duration
	fetch  func(ctx context.Context, hotelID string) ([]T, error)
	now    func() time.Time

	sf        singleflight.Group
	mu        sync.Mutex
	fetchedAt map[string]time.Time
}

func newHotelLists[T any](prefix string, c domain.Cache, ttl time.Duration,
	fetch func(ctx context.Context, hotelID string) ([]T, error)) *hotelLists[T] {
	return &hotelLists[T]{
		prefix: prefix, cache: c, ttl: ttl, fetch: fetch, now: time.Now,
		fetchedAt: make(map[string]time.Time),
	}
}

func (l *hotelLists[T]) key(hotelID string) string { return l.prefix + ":" + hotelID }

func (l *hotelLists[T]) ttlSec() int {
	if s := int(l.ttl.Seconds()); s > 0 {
		return s
	}
	return 1
}

// get returns the hotel's list, from cache unless force is set.
func (l *hotelLists[T]) get(ctx context.Context, hotelID string, force bool) ([]T, error) {
	key := l.key(hotelID)
	if !force {
		var out []T
		ok, err := l.cache.Get(ctx, key, &out)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if ok {
			return out, nil
		}
	}
	items, err := joinFetch(ctx, &l.sf, key, func(ctx context.Context) ([]T, error) {
		items, err := l.fetch(ctx, hotelID)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		if err := l.cache.Set(ctx, key, items, l.ttlSec()); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
		l.mu.Lock()
		l.fetchedAt[hotelID] = l.now()
		l.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

// joinFetch runs fn once for all concurrent callers of key. fn is detached
// from the caller that started it, so one caller going away does not fail
// the others; each caller stops waiting when its own ctx ends.
func joinFetch[T any](ctx context.Context, g *singleflight.Group, key string,
	fn func(context.Context) (T, error)) (T, error) {
	ch := g.DoChan(key, func() (any, error) { return fn(context.WithoutCancel(ctx)) })
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// FetchedAt reports when hotelID's list was last loaded from the API.
func (l *hotelLists[T]) FetchedAt(hotelID string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.fetchedAt[hotelID]
	return t, ok
}

// refresh reloads the hotel's list after a confirmed mutation. When the
// reload fails, patch is applied to the cached copy instead so the change
// the server already accepted is still visible.
func (l *hotelLists[T]) refresh(ctx context.Context, hotelID string, patch func([]T) []T) {
	if hotelID == "" {
		return
	}
	_, err := l.get(ctx, hotelID, true)
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("key", l.key(hotelID)).Msg("refetch after mutation failed")
	key := l.key(hotelID)
	var cur []T
	ok, gerr := l.cache.Get(ctx, key, &cur)
	if gerr != nil || !ok || patch == nil {
		_ = l.cache.Del(ctx, key)
		return
	}
	if err := l.cache.Set(ctx, key, patch(cur), l.ttlSec()); err != nil {
		_ = l.cache.Del(ctx, key)
	}
}
