package domain

import "time"

type BookingStatus string

// Booking statuses as reported by the PMS API. Transitions between them are
// owned by the API; they are only recognised here for display.
const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked-in"
	BookingCheckedOut BookingStatus = "checked-out"
	BookingCancelled  BookingStatus = "cancelled"
)

func (s BookingStatus) Known() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCheckedIn, BookingCheckedOut, BookingCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID         string        `json:"id"`
	RoomID     string        `json:"roomId"`
	RoomNumber string        `json:"roomNumber,omitempty"`
	Floor      string        `json:"floor,omitempty"`
	HotelID    string        `json:"hotelId"`
	CheckIn    time.Time     `json:"checkInDate"`
	CheckOut   time.Time     `json:"checkOutDate"`
	GuestName  string        `json:"guestName"`
	GuestPhone string        `json:"phoneNumber"`
	GuestCount int           `json:"guestCount"`
	CreatedBy  string        `json:"createdBy,omitempty"`
	Note       string        `json:"note,omitempty"`
	Status     BookingStatus `json:"status,omitempty"`
}

// Nights is the number of started 24h periods between check-in and check-out.
func (b Booking) Nights() int {
	d := b.CheckOut.Sub(b.CheckIn)
	if d <= 0 {
		return 0
	}
	n := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		n++
	}
	return n
}

// BookingPatch carries the fields PATCH /bookings/{id} accepts; nil means unchanged.
type BookingPatch struct {
	CheckIn    *time.Time     `json:"checkInDate,omitempty"`
	CheckOut   *time.Time     `json:"checkOutDate,omitempty"`
	GuestName  *string        `json:"guestName,omitempty"`
	GuestPhone *string        `json:"phoneNumber,omitempty"`
	GuestCount *int           `json:"guestCount,omitempty"`
	Note       *string        `json:"note,omitempty"`
	Status     *BookingStatus `json:"status,omitempty"`
}

// WalkIn is the guest payload for a direct check-in without a prior booking.
type WalkIn struct {
	GuestName  string    `json:"guestName"`
	GuestPhone string    `json:"phoneNumber"`
	GuestCount int       `json:"guestCount"`
	CheckOut   time.Time `json:"checkOutDate"`
	Note       string    `json:"note,omitempty"`
}
