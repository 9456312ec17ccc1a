package domain

import (
	"context"
	"time"
)

type RoomAPI interface {
	ListRooms(ctx context.Context, hotelID string) ([]Room, error)
	CreateRoom(ctx context.Context, in RoomInput) (Room, error)
	UpdateRoom(ctx context.Context, id string, in RoomInput) (Room, error)
	DeleteRoom(ctx context.Context, id string) error
	CheckIn(ctx context.Context, roomID, bookingID, note string) (Room, error)
	WalkInCheckIn(ctx context.Context, roomID string, w WalkIn) (Room, error)
}

type CategoryAPI interface {
	ListCategories(ctx context.Context, hotelID string) ([]RoomCategory, error)
	CreateCategory(ctx context.Context, in CategoryInput) (RoomCategory, error)
	UpdateCategory(ctx context.Context, id string, in CategoryInput) (RoomCategory, error)
	DeleteCategory(ctx context.Context, id string) error
}

type BookingAPI interface {
	ListBookings(ctx context.Context, hotelID string) ([]Booking, error)
	CreateBooking(ctx context.Context, in BookingInput) (Booking, error)
	SearchBookings(ctx context.Context, hotelID, term string) ([]Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	RoomBookings(ctx context.Context, roomID string) ([]Booking, error)
	LatestRoomBooking(ctx context.Context, roomID string) (Booking, error)
	UpdateBooking(ctx context.Context, id string, p BookingPatch) (Booking, error)
}

type InventoryAPI interface {
	ListInventory(ctx context.Context, hotelID string) ([]InventoryItem, error)
	CreateInventoryItem(ctx context.Context, in InventoryInput) (InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id string, in InventoryInput) (InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) error
}

type InventoryCheckAPI interface {
	ListChecks(ctx context.Context, hotelID string) ([]InventoryCheck, error)
	GetCheck(ctx context.Context, id string) (InventoryCheck, error)
	CreateCheck(ctx context.Context, in NewCheckInput) (InventoryCheck, error)
	UpdateCheck(ctx context.Context, id string, in NewCheckInput) (InventoryCheck, error)
	DeleteCheck(ctx context.Context, id string) error
	BalanceCheck(ctx context.Context, id string) (InventoryCheck, error)
}

type HotelAPI interface {
	MyHotels(ctx context.Context) ([]Hotel, error)
	CreateHotel(ctx context.Context, in HotelInput) (Hotel, error)
}

// Cache is a TTL key/value store for JSON-encodable values.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// DraftRepository keeps in-progress stock counts between requests.
//
// Writes are conditional on Version: SaveDraft inserts when d.Version is 0
// and otherwise updates only the row still at d.Version, bumping it by one.
// ClaimDraft deletes the row only if it is still at version. Both return
// ErrDraftConflict when another writer got there first.
type DraftRepository interface {
	SaveDraft(ctx context.Context, d CheckDraftRecord) error
	GetDraft(ctx context.Context, id string) (CheckDraftRecord, error)
	ListDrafts(ctx context.Context, hotelID string) ([]CheckDraftRecord, error)
	DeleteDraft(ctx context.Context, id string) error
	ClaimDraft(ctx context.Context, id string, version int64) error
}

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient, user-facing notification (a toast).
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Op      string      `json:"op,omitempty"`
	HotelID string      `json:"hotelId,omitempty"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`

	// Audience is the fingerprint of the session the notice belongs to.
	Audience string `json:"-"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}
