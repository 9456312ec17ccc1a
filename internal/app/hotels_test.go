package app_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_desk/internal/adapters/session"
	"hotel_desk/internal/app"
	"hotel_desk/internal/domain"
)

// fakeHotels answers MyHotels with h1, or with <hotel> for a token named
// "token-<hotel>".
type fakeHotels struct {
	created []domain.HotelInput
	listErr error
	calls   atomic.Int32
}

func (f *fakeHotels) MyHotels(ctx context.Context) ([]domain.Hotel, error) {
	f.calls.Add(1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if tok := session.TokenFrom(ctx); strings.HasPrefix(tok, "token-") {
		return []domain.Hotel{{ID: strings.TrimPrefix(tok, "token-")}}, nil
	}
	return []domain.Hotel{{ID: "h1", Name: "Sen"}}, nil
}

func (f *fakeHotels) CreateHotel(ctx context.Context, in domain.HotelInput) (domain.Hotel, error) {
	f.created = append(f.created, in)
	return domain.Hotel{ID: "h2", Name: in.Name, Phone: in.Phone}, nil
}

func TestHotelStore_CreateValidatesOptionalPhone(t *testing.T) {
	api := &fakeHotels{}
	rec := &recorder{}
	s := app.NewHotelStore(api, rec)
	ctx := context.Background()

	f := &app.HotelForm{}
	f.SetName("Khách sạn Mai")
	f.SetPhone("12 34")
	_, err := s.CreateHotel(ctx, f)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.CodeInvalidPhone, verr.Field("phone"))
	assert.Empty(t, api.created)

	f.SetPhone("")
	h, err := s.CreateHotel(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, "h2", h.ID)
	assert.Equal(t, "", f.Name, "form reset after success")
	assert.Equal(t, domain.NoticeSuccess, rec.last().Level)
}

func TestHotelStore_ListFailureUsesFallbackMessage(t *testing.T) {
	rec := &recorder{}
	s := app.NewHotelStore(&fakeHotels{listErr: assert.AnError}, rec)

	_, err := s.MyHotels(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.KindGeneric, domain.KindOf(err))
	assert.Equal(t, "Không thể tải danh sách khách sạn", app.UserMessage(err))
	assert.Equal(t, err, s.LastError(""))
	assert.Equal(t, domain.NoticeError, rec.last().Level)
}

func TestHotelStore_AuthorizeChecksMembershipPerSession(t *testing.T) {
	api := &fakeHotels{}
	s := app.NewHotelStore(api, nil)
	owner := session.WithToken(context.Background(), "token-h2")
	other := session.WithToken(context.Background(), "token-h1")

	require.NoError(t, s.Authorize(owner, "h2"))
	require.NoError(t, s.Authorize(owner, "h2"))
	assert.EqualValues(t, 1, api.calls.Load(), "membership remembered per session")

	err := s.Authorize(other, "h2")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "Bạn không có quyền truy cập khách sạn này", app.UserMessage(err))
	assert.EqualValues(t, 2, api.calls.Load())

	err = s.Authorize(context.Background(), "h2")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
}

func TestHotelStore_AuthorizeFailsWhenAPIDown(t *testing.T) {
	s := app.NewHotelStore(&fakeHotels{listErr: &domain.Error{Kind: domain.KindConnection}}, nil)
	err := s.Authorize(session.WithToken(context.Background(), "token-h1"), "h1")
	assert.Equal(t, domain.KindConnection, domain.KindOf(err))
}
