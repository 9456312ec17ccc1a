package pms

import (
	"context"
	"net/http"
	"net/url"

	"hotel_desk/internal/domain"
)

func (c *Client) ListBookings(ctx context.Context, hotelID string) ([]domain.Booking, error) {
	var out []domain.Booking
	r := request{method: http.MethodGet, path: "/bookings", route: "/bookings", query: url.Values{"hotelId": {hotelID}}}
	return out, c.do(ctx, r, &out)
}

func (c *Client) CreateBooking(ctx context.Context, in domain.BookingInput) (domain.Booking, error) {
	var out domain.Booking
	r, err := jsonRequest(http.MethodPost, "/bookings", "/bookings", in)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}

func (c *Client) SearchBookings(ctx context.Context, hotelID, term string) ([]domain.Booking, error) {
	var out []domain.Booking
	r := request{method: http.MethodGet, path: "/bookings/search", route: "/bookings/search",
		query: url.Values{"hotelId": {hotelID}, "search": {term}}}
	return out, c.do(ctx, r, &out)
}

func (c *Client) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	var out domain.Booking
	return out, c.do(ctx, request{method: http.MethodGet, path: pathID("/bookings", id), route: "/bookings/{id}"}, &out)
}

func (c *Client) RoomBookings(ctx context.Context, roomID string) ([]domain.Booking, error) {
	var out []domain.Booking
	r := request{method: http.MethodGet, path: pathID("/bookings/room", roomID), route: "/bookings/room/{id}"}
	return out, c.do(ctx, r, &out)
}

func (c *Client) LatestRoomBooking(ctx context.Context, roomID string) (domain.Booking, error) {
	var out domain.Booking
	r := request{method: http.MethodGet, path: pathID("/bookings/room", roomID) + "/latest",
		route: "/bookings/room/{id}/latest"}
	return out, c.do(ctx, r, &out)
}

func (c *Client) UpdateBooking(ctx context.Context, id string, p domain.BookingPatch) (domain.Booking, error) {
	var out domain.Booking
	r, err := jsonRequest(http.MethodPatch, pathID("/bookings", id), "/bookings/{id}", p)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}
