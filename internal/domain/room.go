package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type RoomStatus string

const (
	RoomAvailable    RoomStatus = "available"
	RoomOccupied     RoomStatus = "occupied"
	RoomBooked       RoomStatus = "booked"
	RoomCheckedIn    RoomStatus = "checked-in"
	RoomCheckedOut   RoomStatus = "checked-out"
	RoomCleaning     RoomStatus = "cleaning"
	RoomMaintenance  RoomStatus = "maintenance"
	RoomOutOfService RoomStatus = "out-of-service"
	RoomReserved     RoomStatus = "reserved"
)

// RoomStatuses lists every status in board display order.
var RoomStatuses = []RoomStatus{
	RoomAvailable, RoomOccupied, RoomBooked, RoomCheckedIn, RoomCheckedOut,
	RoomCleaning, RoomMaintenance, RoomOutOfService, RoomReserved,
}

func (s RoomStatus) Valid() bool {
	for _, v := range RoomStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ParseRoomStatus accepts the API spelling plus the upper/underscore variants
// some endpoints still emit (e.g. "CHECKED_IN").
func ParseRoomStatus(s string) (RoomStatus, error) {
	norm := RoomStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	if !norm.Valid() {
		return "", fmt.Errorf("unknown room status %q", s)
	}
	return norm, nil
}

func (s *RoomStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	// unknown values are kept as-is so one odd room does not break a whole list
	st, err := ParseRoomStatus(raw)
	if err != nil {
		*s = RoomStatus(raw)
		return nil
	}
	*s = st
	return nil
}

type Room struct {
	ID         string        `json:"id"`
	Number     string        `json:"roomNumber"`
	Floor      string        `json:"floor"`
	HotelID    string        `json:"hotelId"`
	CategoryID string        `json:"categoryId"`
	Category   *RoomCategory `json:"category,omitempty"`
	Status     RoomStatus    `json:"status"`
	Note       string        `json:"note,omitempty"`
	Image      string        `json:"image,omitempty"`
}

// UnmarshalJSON accepts "category" either as a bare id or as the populated
// category object; both end up with CategoryID set.
func (r *Room) UnmarshalJSON(b []byte) error {
	type alias Room
	var aux struct {
		alias
		Category json.RawMessage `json:"category"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = Room(aux.alias)
	raw := bytes.TrimSpace(aux.Category)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &r.CategoryID); err != nil {
			return err
		}
	default:
		var c RoomCategory
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		r.Category = &c
		if r.CategoryID == "" {
			r.CategoryID = c.ID
		}
	}
	return nil
}

// CategoryName is the joined category name, or "" when not joined.
func (r Room) CategoryName() string {
	if r.Category == nil {
		return ""
	}
	return r.Category.Name
}

type RoomCategory struct {
	ID             string   `json:"id"`
	HotelID        string   `json:"hotelId"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	HourlyPrice    int64    `json:"hourlyPrice"`
	DailyPrice     int64    `json:"dailyPrice"`
	OvernightPrice int64    `json:"overnightPrice"`
	RoomIDs        []string `json:"rooms,omitempty"`
	Image          string   `json:"image,omitempty"`
}

type Hotel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Image   string `json:"image,omitempty"`
}
