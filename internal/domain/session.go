package domain

import "time"

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	HotelID   string    `json:"hotelId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

func (s Session) Valid(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}
