package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_desk/internal/domain"
)

func TestRoom_UnmarshalCategoryShapes(t *testing.T) {
	var byID domain.Room
	require.NoError(t, json.Unmarshal([]byte(`{"id":"r1","roomNumber":"101","category":"c1","status":"AVAILABLE"}`), &byID))
	assert.Equal(t, "c1", byID.CategoryID)
	assert.Nil(t, byID.Category)
	assert.Equal(t, domain.RoomAvailable, byID.Status)

	var joined domain.Room
	require.NoError(t, json.Unmarshal([]byte(`{"id":"r2","category":{"id":"c2","name":"Deluxe","dailyPrice":500000},"status":"checked_in"}`), &joined))
	assert.Equal(t, "c2", joined.CategoryID)
	require.NotNil(t, joined.Category)
	assert.Equal(t, "Deluxe", joined.CategoryName())
	assert.Equal(t, domain.RoomCheckedIn, joined.Status)

	var odd domain.Room
	require.NoError(t, json.Unmarshal([]byte(`{"id":"r3","category":null,"status":"haunted"}`), &odd))
	assert.Equal(t, domain.RoomStatus("haunted"), odd.Status)
	assert.False(t, odd.Status.Valid())
}

func TestParseRoomStatus(t *testing.T) {
	for in, want := range map[string]domain.RoomStatus{
		"available":      domain.RoomAvailable,
		"OUT_OF_SERVICE": domain.RoomOutOfService,
		" Checked-Out ":  domain.RoomCheckedOut,
	} {
		got, err := domain.ParseRoomStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := domain.ParseRoomStatus("vacant")
	assert.Error(t, err)
}

func TestSumDifferences(t *testing.T) {
	tot := domain.SumDifferences([]domain.InventoryCheckItem{
		{Difference: 3}, {Difference: -5}, {Difference: 0}, {Difference: 1},
	})
	assert.Equal(t, domain.CheckTotals{Difference: -1, Increase: 4, Decrease: -5}, tot)
	assert.Equal(t, domain.CheckTotals{}, domain.SumDifferences(nil))
}

func TestBooking_Nights(t *testing.T) {
	in := time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, domain.Booking{CheckIn: in, CheckOut: in.Add(22 * time.Hour)}.Nights())
	assert.Equal(t, 2, domain.Booking{CheckIn: in, CheckOut: in.Add(48 * time.Hour)}.Nights())
	assert.Equal(t, 0, domain.Booking{CheckIn: in, CheckOut: in}.Nights())
}

func TestError_IsAndKind(t *testing.T) {
	nf := domain.APIError(404, "", "")
	assert.True(t, errors.Is(nf, domain.ErrNotFound))
	assert.Equal(t, "remote 404", nf.Message)

	un := &domain.Error{Kind: domain.KindUnauthorized, Op: "rooms.list", Message: "expired"}
	assert.True(t, errors.Is(un, domain.ErrUnauthorized))
	assert.Equal(t, "rooms.list: expired", un.Error())
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(un))

	ve := &domain.ValidationError{Fields: map[string]string{"b": "X", "a": "Y"}}
	assert.Equal(t, "validation failed: a=Y, b=X", ve.Error())
	assert.Equal(t, domain.KindValidation, domain.KindOf(ve))
	assert.Equal(t, domain.KindGeneric, domain.KindOf(errors.New("x")))
}
