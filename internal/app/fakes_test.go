package app_test

import (
	"context"
	"sync"
	"sync/atomic"

	"hotel_desk/internal/domain"
)

// ---- fakes ----

type fakeRooms struct {
	mu      sync.Mutex
	rooms   map[string][]domain.Room
	listErr error
	mutErr  error
	lists   atomic.Int32
	updates []domain.RoomInput
	gate    chan struct{} // when set, ListRooms blocks until closed
}

func (f *fakeRooms) ListRooms(ctx context.Context, hotelID string) ([]domain.Room, error) {
	f.lists.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Room(nil), f.rooms[hotelID]...), nil
}

func (f *fakeRooms) CreateRoom(ctx context.Context, in domain.RoomInput) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return domain.Room{}, f.mutErr
	}
	r := domain.Room{ID: "r-" + in.Number, Number: in.Number, Floor: in.Floor, HotelID: in.HotelID,
		CategoryID: in.CategoryID, Status: domain.RoomAvailable}
	if f.rooms == nil {
		f.rooms = map[string][]domain.Room{}
	}
	f.rooms[in.HotelID] = append(f.rooms[in.HotelID], r)
	return r, nil
}

func (f *fakeRooms) UpdateRoom(ctx context.Context, id string, in domain.RoomInput) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)
	if f.mutErr != nil {
		return domain.Room{}, f.mutErr
	}
	for h, rs := range f.rooms {
		for i := range rs {
			if rs[i].ID != id {
				continue
			}
			if in.Status != "" {
				rs[i].Status = in.Status
			}
			if in.Number != "" {
				rs[i].Number = in.Number
			}
			out := rs[i]
			out.HotelID = h
			out.Category = nil
			return out, nil
		}
	}
	return domain.Room{}, domain.APIError(404, "", "Không tìm thấy phòng")
}

func (f *fakeRooms) DeleteRoom(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return f.mutErr
	}
	for h, rs := range f.rooms {
		out := rs[:0]
		for _, r := range rs {
			if r.ID != id {
				out = append(out, r)
			}
		}
		f.rooms[h] = out
	}
	return nil
}

func (f *fakeRooms) setStatus(id string, st domain.RoomStatus) domain.Room {
	for _, rs := range f.rooms {
		for i := range rs {
			if rs[i].ID == id {
				rs[i].Status = st
				return rs[i]
			}
		}
	}
	return domain.Room{}
}

func (f *fakeRooms) CheckIn(ctx context.Context, roomID, bookingID, note string) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return domain.Room{}, f.mutErr
	}
	return f.setStatus(roomID, domain.RoomCheckedIn), nil
}

func (f *fakeRooms) WalkInCheckIn(ctx context.Context, roomID string, w domain.WalkIn) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return domain.Room{}, f.mutErr
	}
	return f.setStatus(roomID, domain.RoomOccupied), nil
}

type fakeCategories struct {
	cats []domain.RoomCategory
}

func (f *fakeCategories) ListCategories(ctx context.Context, hotelID string) ([]domain.RoomCategory, error) {
	return f.cats, nil
}
func (f *fakeCategories) CreateCategory(ctx context.Context, in domain.CategoryInput) (domain.RoomCategory, error) {
	c := domain.RoomCategory{ID: "c-" + in.Name, HotelID: in.HotelID, Name: in.Name,
		HourlyPrice: in.HourlyPrice, DailyPrice: in.DailyPrice, OvernightPrice: in.OvernightPrice}
	f.cats = append(f.cats, c)
	return c, nil
}
func (f *fakeCategories) UpdateCategory(ctx context.Context, id string, in domain.CategoryInput) (domain.RoomCategory, error) {
	return domain.RoomCategory{ID: id, HotelID: in.HotelID, Name: in.Name}, nil
}
func (f *fakeCategories) DeleteCategory(ctx context.Context, id string) error { return nil }

type fakeBookings struct {
	mu       sync.Mutex
	created  []domain.BookingInput
	searches []string
	// per-term hooks for search: started is signalled, release is awaited
	started map[string]chan struct{}
	release map[string]chan struct{}
	results map[string][]domain.Booking
}

func (f *fakeBookings) ListBookings(ctx context.Context, hotelID string) ([]domain.Booking, error) {
	return nil, nil
}
func (f *fakeBookings) CreateBooking(ctx context.Context, in domain.BookingInput) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return domain.Booking{ID: "b1", HotelID: in.HotelID, RoomID: in.RoomID, GuestName: in.GuestName,
		CreatedBy: in.CreatedBy, Status: domain.BookingPending}, nil
}
func (f *fakeBookings) SearchBookings(ctx context.Context, hotelID, term string) ([]domain.Booking, error) {
	f.mu.Lock()
	f.searches = append(f.searches, term)
	started, release := f.started[term], f.release[term]
	res := f.results[term]
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return res, nil
}
func (f *fakeBookings) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	return domain.Booking{ID: id}, nil
}
func (f *fakeBookings) RoomBookings(ctx context.Context, roomID string) ([]domain.Booking, error) {
	return nil, nil
}
func (f *fakeBookings) LatestRoomBooking(ctx context.Context, roomID string) (domain.Booking, error) {
	return domain.Booking{RoomID: roomID}, nil
}
func (f *fakeBookings) UpdateBooking(ctx context.Context, id string, p domain.BookingPatch) (domain.Booking, error) {
	return domain.Booking{ID: id}, nil
}

func (f *fakeBookings) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

type fakeInventory struct {
	items []domain.InventoryItem
}

func (f *fakeInventory) ListInventory(ctx context.Context, hotelID string) ([]domain.InventoryItem, error) {
	return f.items, nil
}
func (f *fakeInventory) CreateInventoryItem(ctx context.Context, in domain.InventoryInput) (domain.InventoryItem, error) {
	it := domain.InventoryItem{ID: "i-" + in.Code, HotelID: in.HotelID, Code: in.Code, Name: in.Name, Stock: in.Stock}
	f.items = append(f.items, it)
	return it, nil
}
func (f *fakeInventory) UpdateInventoryItem(ctx context.Context, id string, in domain.InventoryInput) (domain.InventoryItem, error) {
	return domain.InventoryItem{ID: id, Code: in.Code}, nil
}
func (f *fakeInventory) DeleteInventoryItem(ctx context.Context, id string) error { return nil }

type fakeChecks struct {
	mu        sync.Mutex
	createErr error
	created   []domain.NewCheckInput
	updated  []domain.NewCheckInput
	balanced []string
}

func (f *fakeChecks) ListChecks(ctx context.Context, hotelID string) ([]domain.InventoryCheck, error) {
	return nil, nil
}
func (f *fakeChecks) GetCheck(ctx context.Context, id string) (domain.InventoryCheck, error) {
	return domain.InventoryCheck{ID: id}, nil
}
func (f *fakeChecks) CreateCheck(ctx context.Context, in domain.NewCheckInput) (domain.InventoryCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.InventoryCheck{}, f.createErr
	}
	f.created = append(f.created, in)
	return domain.InventoryCheck{ID: "chk1", HotelID: in.HotelID, Items: in.Items,
		TotalDifference: in.TotalDifference, Status: domain.CheckDraft}, nil
}
func (f *fakeChecks) UpdateCheck(ctx context.Context, id string, in domain.NewCheckInput) (domain.InventoryCheck, error) {
	f.updated = append(f.updated, in)
	return domain.InventoryCheck{ID: id, HotelID: in.HotelID}, nil
}
func (f *fakeChecks) DeleteCheck(ctx context.Context, id string) error { return nil }
func (f *fakeChecks) BalanceCheck(ctx context.Context, id string) (domain.InventoryCheck, error) {
	f.balanced = append(f.balanced, id)
	return domain.InventoryCheck{ID: id, Status: domain.CheckBalanced}, nil
}

// recorder collects notices.
type recorder struct {
	mu sync.Mutex
	ns []domain.Notice
}

func (r *recorder) Notify(ctx context.Context, n domain.Notice) {
	r.mu.Lock()
	r.ns = append(r.ns, n)
	r.mu.Unlock()
}

func (r *recorder) last() domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ns) == 0 {
		return domain.Notice{}
	}
	return r.ns[len(r.ns)-1]
}

type staticSession struct{ s domain.Session }

func (p staticSession) Session(ctx context.Context) (domain.Session, error) { return p.s, nil }
