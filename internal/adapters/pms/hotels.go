package pms

import (
	"context"
	"net/http"

	"hotel_desk/internal/adapters/session"
	"hotel_desk/internal/domain"
)

// ---- Hotels ----

func (c *Client) MyHotels(ctx context.Context) ([]domain.Hotel, error) {
	var out []domain.Hotel
	return out, c.do(ctx, request{method: http.MethodGet, path: "/hotels/me", route: "/hotels/me"}, &out)
}

func (c *Client) CreateHotel(ctx context.Context, in domain.HotelInput) (domain.Hotel, error) {
	var out domain.Hotel
	fields := []formField{field("name", in.Name), clearable("address", in.Address), clearable("phone", in.Phone)}
	r, err := multipartRequest(http.MethodPost, "/hotels", "/hotels", fields, in.Image, true)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}

// ---- Auth ----

var _ session.Authenticator = (*Client)(nil)

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	User        struct {
		ID      string `json:"id"`
		HotelID string `json:"hotelId"`
	} `json:"user"`
}

// Login exchanges credentials for a session via POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Session, error) {
	r, err := jsonRequest(http.MethodPost, "/auth/login", "/auth/login",
		map[string]string{"email": email, "password": password})
	if err != nil {
		return domain.Session{}, err
	}
	r.anonymous = true
	var out loginResponse
	if err := c.do(ctx, r, &out); err != nil {
		return domain.Session{}, err
	}
	tok := out.AccessToken
	if tok == "" {
		tok = out.Token
	}
	if tok == "" {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	s := session.FromToken(tok)
	if out.User.ID != "" {
		s.UserID = out.User.ID
	}
	if out.User.HotelID != "" {
		s.HotelID = out.User.HotelID
	}
	return s, nil
}

func (c *Client) Register(ctx context.Context, in domain.Registration) error {
	return c.anonymousPost(ctx, "/auth/register", in)
}

func (c *Client) Activate(ctx context.Context, token string) error {
	return c.anonymousPost(ctx, "/auth/activate", map[string]string{"token": token})
}

func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.anonymousPost(ctx, "/auth/resend-verification", map[string]string{"email": email})
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.anonymousPost(ctx, "/auth/forgot-password", map[string]string{"email": email})
}

func (c *Client) anonymousPost(ctx context.Context, path string, body any) error {
	r, err := jsonRequest(http.MethodPost, path, path, body)
	if err != nil {
		return err
	}
	r.anonymous = true
	return c.do(ctx, r, nil)
}
