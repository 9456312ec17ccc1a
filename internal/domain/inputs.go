package domain

import "time"

// Upload is an optional file part of a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type RoomInput struct {
	HotelID    string
	Number     string
	Floor      string
	CategoryID string
	Status     RoomStatus
	Note       string
	Image      *Upload

	// Partial sends only the non-empty fields; otherwise an empty optional
	// field clears the stored value.
	Partial bool
}

type CategoryInput struct {
	HotelID        string
	Name           string
	Description    string
	HourlyPrice    int64
	DailyPrice     int64
	OvernightPrice int64
	Image          *Upload
}

type BookingInput struct {
	HotelID    string    `json:"hotelId"`
	RoomID     string    `json:"roomId"`
	CheckIn    time.Time `json:"checkInDate"`
	CheckOut   time.Time `json:"checkOutDate"`
	GuestName  string    `json:"guestName"`
	GuestPhone string    `json:"phoneNumber"`
	GuestCount int       `json:"guestCount"`
	CreatedBy  string    `json:"createdBy,omitempty"`
	Note       string    `json:"note,omitempty"`
}

type InventoryInput struct {
	HotelID      string
	Code         string
	Name         string
	Unit         string
	SellingPrice int64
	CostPrice    int64
	Stock        int64
	Category     string
	Type         string
	Image        *Upload
}

type HotelInput struct {
	Name    string
	Address string
	Phone   string
	Image   *Upload
}

// Registration is the sign-up payload of POST /auth/register.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// CheckDraftRecord is the persisted form of an in-progress stock count.
// Staged holds uncommitted actual-stock values keyed by inventory item id.
type CheckDraftRecord struct {
	ID        string               `json:"id"`
	HotelID   string               `json:"hotelId"`
	Note      string               `json:"note,omitempty"`
	Items     []InventoryCheckItem `json:"items"`
	Staged    map[string]int64     `json:"staged,omitempty"`
	UpdatedAt time.Time            `json:"updatedAt"`
	Version   int64                `json:"version"`
}
