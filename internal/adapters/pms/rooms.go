package pms

import (
	"context"
	"net/http"
	"net/url"

	"hotel_desk/internal/domain"
)

// ---- Rooms ----

func (c *Client) ListRooms(ctx context.Context, hotelID string) ([]domain.Room, error) {
	var out []domain.Room
	r := request{method: http.MethodGet, path: "/rooms", route: "/rooms", query: url.Values{"hotelId": {hotelID}}}
	return out, c.do(ctx, r, &out)
}

func roomFields(in domain.RoomInput) []formField {
	return []formField{
		field("hotelId", in.HotelID),
		field("roomNumber", in.Number),
		field("floor", in.Floor),
		field("category", in.CategoryID),
		field("status", string(in.Status)),
		clearable("note", in.Note),
	}
}

func (c *Client) CreateRoom(ctx context.Context, in domain.RoomInput) (domain.Room, error) {
	var out domain.Room
	r, err := multipartRequest(http.MethodPost, "/rooms", "/rooms", roomFields(in), in.Image, true)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}

func (c *Client) UpdateRoom(ctx context.Context, id string, in domain.RoomInput) (domain.Room, error) {
	var out domain.Room
	r, err := multipartRequest(http.MethodPatch, pathID("/rooms", id), "/rooms/{id}", roomFields(in), in.Image, in.Partial)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}

func (c *Client) DeleteRoom(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pathID("/rooms", id), route: "/rooms/{id}"}, nil)
}

func (c *Client) CheckIn(ctx context.Context, roomID, bookingID, note string) (domain.Room, error) {
	var out domain.Room
	body := struct {
		BookingID string `json:"bookingId"`
		Note      string `json:"note,omitempty"`
	}{bookingID, note}
	r, err := jsonRequest(http.MethodPatch, pathID("/rooms", roomID)+"/check-in", "/rooms/{id}/check-in", body)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}

func (c *Client) WalkInCheckIn(ctx context.Context, roomID string, w domain.WalkIn) (domain.Room, error) {
	var out domain.Room
	r, err := jsonRequest(http.MethodPost, pathID("/rooms", roomID)+"/walk-in-check-in", "/rooms/{id}/walk-in-check-in", w)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}

// ---- Room categories ----

func (c *Client) ListCategories(ctx context.Context, hotelID string) ([]domain.RoomCategory, error) {
	var out []domain.RoomCategory
	r := request{method: http.MethodGet, path: "/room-categories", route: "/room-categories",
		query: url.Values{"hotelId": {hotelID}}}
	return out, c.do(ctx, r, &out)
}

func categoryFields(in domain.CategoryInput) []formField {
	return []formField{
		field("hotelId", in.HotelID),
		field("name", in.Name),
		clearable("description", in.Description),
		field("hourlyPrice", itoa(in.HourlyPrice)),
		field("dailyPrice", itoa(in.DailyPrice)),
		field("overnightPrice", itoa(in.OvernightPrice)),
	}
}

func (c *Client) CreateCategory(ctx context.Context, in domain.CategoryInput) (domain.RoomCategory, error) {
	var out domain.RoomCategory
	r, err := multipartRequest(http.MethodPost, "/room-categories", "/room-categories", categoryFields(in), in.Image, true)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in domain.CategoryInput) (domain.RoomCategory, error) {
	var out domain.RoomCategory
	r, err := multipartRequest(http.MethodPatch, pathID("/room-categories", id), "/room-categories/{id}",
		categoryFields(in), in.Image, false)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pathID("/room-categories", id),
		route: "/room-categories/{id}"}, nil)
}
