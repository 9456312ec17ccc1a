package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hotel_desk/internal/domain"
)

// RoomStore holds the rooms of each hotel. The API is the source of truth:
// every mutation is reflected by re-fetching the hotel's list after the API
// has accepted it.
type RoomStore struct {
	errState
	api   domain.RoomAPI
	rooms *hotelLists[domain.Room]
	now   func() time.Time

	mu        sync.Mutex
	roomHotel map[string]string
}

func NewRoomStore(api domain.RoomAPI, c domain.Cache, ttl time.Duration, n domain.Notifier) *RoomStore {
	s := &RoomStore{errState: newErrState(n), api: api, now: time.Now, roomHotel: map[string]string{}}
	s.rooms = newHotelLists(roomsKey, c, ttl, s.load)
	return s
}

const roomsKey = "rooms"

func (s *RoomStore) load(ctx context.Context, hotelID string) ([]domain.Room, error) {
	rooms, err := s.api.ListRooms(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	for _, r := range rooms {
		s.roomHotel[r.ID] = hotelID
	}
	s.mu.Unlock()
	return rooms, nil
}

func (s *RoomStore) hotelOf(roomID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomHotel[roomID]
}

// Rooms returns the hotel's rooms, served from cache for up to the TTL
// unless force is set.
func (s *RoomStore) Rooms(ctx context.Context, hotelID string, force bool) ([]domain.Room, error) {
	rooms, err := s.rooms.get(ctx, hotelID, force)
	if err != nil {
		return nil, s.fail(ctx, opRoomsList, hotelID, err)
	}
	s.setLast(hotelID, nil)
	return rooms, nil
}

func (s *RoomStore) FetchedAt(hotelID string) (time.Time, bool) { return s.rooms.FetchedAt(hotelID) }

func (s *RoomStore) CreateRoom(ctx context.Context, f *RoomForm) (domain.Room, error) {
	verr := f.Validate()
	if f.HotelID == "" {
		verr = withField(verr, "hotelId", domain.CodeRequired)
		f.Errors = verr
	}
	if verr != nil {
		return domain.Room{}, verr
	}
	hotelID := f.HotelID
	room, err := s.api.CreateRoom(ctx, f.input())
	if err != nil {
		return domain.Room{}, s.fail(ctx, opRoomCreate, hotelID, err)
	}
	f.Reset()
	s.rooms.refresh(ctx, hotelID, func(rs []domain.Room) []domain.Room { return append(rs, room) })
	s.succeed(ctx, opRoomCreate, hotelID)
	return room, nil
}

// UpdateRoom re-fetches the owning hotel's list. The hotel is taken from the
// form, else from the server's reply, else from the last list that held the
// room.
func (s *RoomStore) UpdateRoom(ctx context.Context, roomID string, f *RoomForm) (domain.Room, error) {
	if verr := f.Validate(); verr != nil {
		return domain.Room{}, verr
	}
	room, err := s.api.UpdateRoom(ctx, roomID, f.input())
	if err != nil {
		return domain.Room{}, s.fail(ctx, opRoomUpdate, f.HotelID, err)
	}
	hotelID := firstNonEmpty(f.HotelID, room.HotelID, s.hotelOf(roomID))
	s.rooms.refresh(ctx, hotelID, func(rs []domain.Room) []domain.Room { return mergeRoom(rs, room) })
	s.succeed(ctx, opRoomUpdate, hotelID)
	return room, nil
}

func (s *RoomStore) DeleteRoom(ctx context.Context, hotelID, roomID string) error {
	if err := s.api.DeleteRoom(ctx, roomID); err != nil {
		return s.fail(ctx, opRoomDelete, hotelID, err)
	}
	s.rooms.refresh(ctx, firstNonEmpty(hotelID, s.hotelOf(roomID)), func(rs []domain.Room) []domain.Room {
		out := rs[:0]
		for _, r := range rs {
			if r.ID != roomID {
				out = append(out, r)
			}
		}
		return out
	})
	s.succeed(ctx, opRoomDelete, hotelID)
	return nil
}

// CheckIn checks the guest of an existing booking into the room.
func (s *RoomStore) CheckIn(ctx context.Context, hotelID, roomID, bookingID, note string) (domain.Room, error) {
	if bookingID == "" {
		return domain.Room{}, &domain.ValidationError{Fields: map[string]string{"bookingId": domain.CodeRequired}}
	}
	room, err := s.api.CheckIn(ctx, roomID, bookingID, note)
	if err != nil {
		return domain.Room{}, s.fail(ctx, opRoomCheckIn, hotelID, err)
	}
	s.rooms.refresh(ctx, firstNonEmpty(hotelID, room.HotelID), func(rs []domain.Room) []domain.Room { return mergeRoom(rs, room) })
	s.succeed(ctx, opRoomCheckIn, hotelID)
	return room, nil
}

// WalkInCheckIn checks a guest in without a prior booking.
func (s *RoomStore) WalkInCheckIn(ctx context.Context, hotelID, roomID string, f *WalkInForm) (domain.Room, error) {
	if verr := f.Validate(s.now()); verr != nil {
		return domain.Room{}, verr
	}
	room, err := s.api.WalkInCheckIn(ctx, roomID, f.walkIn())
	if err != nil {
		return domain.Room{}, s.fail(ctx, opRoomWalkIn, hotelID, err)
	}
	s.rooms.refresh(ctx, firstNonEmpty(hotelID, room.HotelID), func(rs []domain.Room) []domain.Room { return mergeRoom(rs, room) })
	s.succeed(ctx, opRoomWalkIn, hotelID)
	return room, nil
}

// SetStatus applies a housekeeping action to the room's current status. The
// current status is always read from the API, never from the cache.
func (s *RoomStore) SetStatus(ctx context.Context, hotelID, roomID string, action RoomAction) (domain.Room, error) {
	rooms, err := s.Rooms(ctx, hotelID, true)
	if err != nil {
		return domain.Room{}, err
	}
	var cur *domain.Room
	for i := range rooms {
		if rooms[i].ID == roomID {
			cur = &rooms[i]
			break
		}
	}
	if cur == nil {
		return domain.Room{}, s.local(ctx, opRoomStatus, hotelID, fmt.Errorf("room %s: %w", roomID, domain.ErrNotFound))
	}
	next, ok := NextStatus(action, cur.Status)
	if !ok {
		return domain.Room{}, s.local(ctx, opRoomStatus, hotelID,
			fmt.Errorf("%w: %s from %s", domain.ErrInvalidTransition, action, cur.Status))
	}
	room, err := s.api.UpdateRoom(ctx, roomID, domain.RoomInput{Status: next, Partial: true})
	if err != nil {
		return domain.Room{}, s.fail(ctx, opRoomStatus, hotelID, err)
	}
	s.rooms.refresh(ctx, hotelID, func(rs []domain.Room) []domain.Room { return mergeRoom(rs, room) })
	s.succeed(ctx, opRoomStatus, hotelID)
	return room, nil
}

// mergeRoom replaces the room with updated's id, keeping the joined category
// when the reply only carries the category id.
func mergeRoom(rooms []domain.Room, updated domain.Room) []domain.Room {
	for i, r := range rooms {
		if r.ID != updated.ID {
			continue
		}
		if updated.Category == nil && (updated.CategoryID == "" || updated.CategoryID == r.CategoryID) {
			updated.Category = r.Category
			if updated.CategoryID == "" {
				updated.CategoryID = r.CategoryID
			}
		}
		rooms[i] = updated
		return rooms
	}
	return append(rooms, updated)
}

// WithCategories joins each room to its category for display. Rooms that
// already carry a category object keep it.
func WithCategories(rooms []domain.Room, cats []domain.RoomCategory) []domain.Room {
	byID := make(map[string]*domain.RoomCategory, len(cats))
	for i := range cats {
		byID[cats[i].ID] = &cats[i]
	}
	out := make([]domain.Room, len(rooms))
	for i, r := range rooms {
		if r.Category == nil {
			if c, ok := byID[r.CategoryID]; ok {
				cc := *c
				r.Category = &cc
			}
		}
		out[i] = r
	}
	return out
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
