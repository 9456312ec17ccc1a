package app_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_desk/internal/adapters/session"
	"hotel_desk/internal/app"
	"hotel_desk/internal/domain"
)

func TestFeed_KeepsNewestFirstWithinCapacity(t *testing.T) {
	f := app.NewFeed(3)
	ctx := session.WithToken(context.Background(), "desk")
	assert.Empty(t, f.Recent("h1", "desk", 10))

	for i := 1; i <= 5; i++ {
		f.Notify(ctx, domain.Notice{Level: domain.NoticeInfo, HotelID: "h1", Message: fmt.Sprint(i)})
	}
	got := f.Recent("h1", "desk", 0)
	assert.Len(t, got, 3)
	assert.Equal(t, []string{"5", "4", "3"}, []string{got[0].Message, got[1].Message, got[2].Message})
	assert.False(t, got[0].At.IsZero())
	assert.Len(t, f.Recent("h1", "desk", 2), 2)
}

func TestFeed_ScopedToHotelAndSession(t *testing.T) {
	f := app.NewFeed(10)
	a := session.WithToken(context.Background(), "token-a")
	b := session.WithToken(context.Background(), "token-b")

	f.Notify(b, domain.Notice{Level: domain.NoticeSuccess, HotelID: "hB", Message: "Đặt phòng thành công"})
	f.Notify(a, domain.Notice{Level: domain.NoticeError, HotelID: "hA", Message: "Tạo phòng thất bại"})
	f.Notify(a, domain.Notice{Level: domain.NoticeError, Message: app.SessionExpiredMessage})
	f.Notify(context.Background(), domain.Notice{Level: domain.NoticeInfo, HotelID: "hA", Message: "warm ok"})

	assert.Empty(t, f.Recent("hB", "token-a", 10), "another session's notices stay hidden")
	assert.Empty(t, f.Recent("hA", "", 10))

	got := f.Recent("hA", "token-a", 10)
	require.Len(t, got, 2)
	assert.Equal(t, app.SessionExpiredMessage, got[0].Message)
	assert.Equal(t, "Tạo phòng thất bại", got[1].Message)

	onlyB := f.Recent("hB", "token-b", 10)
	require.Len(t, onlyB, 1)
	assert.Equal(t, "hB", onlyB[0].HotelID)
}
