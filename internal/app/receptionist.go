package app

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"hotel_desk/internal/domain"
)

// OtherFloor labels the trailing group of rooms whose floor is not a number.
const OtherFloor = "Khác"

// Receptionist composes the room, category and booking stores into the
// front-desk board. Actions re-fetch the affected lists rather than editing
// them locally, since a check-in also changes the booking on the server.
type Receptionist struct {
	rooms    *RoomStore
	cats     *CategoryStore
	bookings *BookingStore
}

func NewReceptionist(rooms *RoomStore, cats *CategoryStore, bookings *BookingStore) *Receptionist {
	return &Receptionist{rooms: rooms, cats: cats, bookings: bookings}
}

type BoardQuery struct {
	Search   string
	Statuses []domain.RoomStatus
}

type FloorGroup struct {
	Floor string        `json:"floor"`
	Rooms []domain.Room `json:"rooms"`
}

type Board struct {
	HotelID string                    `json:"hotelId"`
	Total   int                       `json:"total"`
	Counts  map[domain.RoomStatus]int `json:"counts"`
	Rooms   []domain.Room             `json:"rooms"`
	Floors  []FloorGroup              `json:"floors"`
}

// Board loads rooms and categories concurrently and derives the counts,
// the filtered list and its floor grouping.
func (r *Receptionist) Board(ctx context.Context, hotelID string, q BoardQuery) (Board, error) {
	var (
		rooms []domain.Room
		cats  []domain.RoomCategory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rooms, err = r.rooms.Rooms(gctx, hotelID, false)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = r.cats.Categories(gctx, hotelID, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return Board{}, err
	}

	rooms = WithCategories(rooms, cats)
	filtered := FilterRooms(rooms, q)
	return Board{
		HotelID: hotelID,
		Total:   len(rooms),
		Counts:  StatusCounts(rooms),
		Rooms:   filtered,
		Floors:  GroupByFloor(filtered),
	}, nil
}

func (r *Receptionist) CheckIn(ctx context.Context, hotelID, roomID, bookingID, note string) (domain.Room, error) {
	room, err := r.rooms.CheckIn(ctx, hotelID, roomID, bookingID, note)
	if err != nil {
		return domain.Room{}, err
	}
	r.bookings.list.refresh(ctx, hotelID, nil)
	return room, nil
}

func (r *Receptionist) WalkIn(ctx context.Context, hotelID, roomID string, f *WalkInForm) (domain.Room, error) {
	room, err := r.rooms.WalkInCheckIn(ctx, hotelID, roomID, f)
	if err != nil {
		return domain.Room{}, err
	}
	r.bookings.list.refresh(ctx, hotelID, nil)
	return room, nil
}

// Book creates a booking from the board; the room's status may change as a
// side effect, so rooms are re-fetched.
func (r *Receptionist) Book(ctx context.Context, f *BookingForm) (domain.Booking, error) {
	hotelID := f.HotelID
	b, err := r.bookings.CreateBooking(ctx, f)
	if err != nil {
		return domain.Booking{}, err
	}
	r.rooms.rooms.refresh(ctx, hotelID, nil)
	return b, nil
}

// StatusCounts counts rooms per status. Every known status is present, even
// at zero.
func StatusCounts(rooms []domain.Room) map[domain.RoomStatus]int {
	out := make(map[domain.RoomStatus]int, len(domain.RoomStatuses))
	for _, s := range domain.RoomStatuses {
		out[s] = 0
	}
	for _, r := range rooms {
		out[r.Status]++
	}
	return out
}

// FilterRooms keeps rooms whose number or category name contains q.Search
// (case-insensitive) and, when q.Statuses is non-empty, whose status is in it.
func FilterRooms(rooms []domain.Room, q BoardQuery) []domain.Room {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Room, 0, len(rooms))
	for _, r := range rooms {
		if term != "" &&
			!strings.Contains(strings.ToLower(r.Number), term) &&
			!strings.Contains(strings.ToLower(r.CategoryName()), term) {
			continue
		}
		if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, r.Status) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func floorNumber(label string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(label))
	return n, err == nil
}

// GroupByFloor groups rooms by floor, floors in numeric order, rooms by
// number within a floor. Non-numeric floors share a final OtherFloor group.
func GroupByFloor(rooms []domain.Room) []FloorGroup {
	byFloor := map[int][]domain.Room{}
	var other []domain.Room
	for _, r := range rooms {
		if n, ok := floorNumber(r.Floor); ok {
			byFloor[n] = append(byFloor[n], r)
		} else {
			other = append(other, r)
		}
	}
	floors := make([]int, 0, len(byFloor))
	for n := range byFloor {
		floors = append(floors, n)
	}
	slices.Sort(floors)

	out := make([]FloorGroup, 0, len(floors)+1)
	for _, n := range floors {
		out = append(out, FloorGroup{Floor: strconv.Itoa(n), Rooms: sortByNumber(byFloor[n])})
	}
	if len(other) > 0 {
		out = append(out, FloorGroup{Floor: OtherFloor, Rooms: sortByNumber(other)})
	}
	return out
}

func sortByNumber(rooms []domain.Room) []domain.Room {
	slices.SortStableFunc(rooms, func(a, b domain.Room) int {
		na, okA := floorNumber(a.Number)
		nb, okB := floorNumber(b.Number)
		switch {
		case okA && okB:
			return cmp.Compare(na, nb)
		case okA:
			return -1
		case okB:
			return 1
		}
		return strings.Compare(a.Number, b.Number)
	})
	return rooms
}
