package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_desk/internal/app"
	"hotel_desk/internal/domain"
	"hotel_desk/internal/storage/memory"
)

func seededRooms() *fakeRooms {
	return &fakeRooms{rooms: map[string][]domain.Room{
		"h1": {
			{ID: "r101", Number: "101", Floor: "1", HotelID: "h1", CategoryID: "c1", Status: domain.RoomAvailable,
				Category: &domain.RoomCategory{ID: "c1", Name: "Deluxe"}},
			{ID: "r102", Number: "102", Floor: "1", HotelID: "h1", CategoryID: "c1", Status: domain.RoomOccupied},
		},
		"h2": {{ID: "r201", Number: "201", Floor: "2", HotelID: "h2", Status: domain.RoomCleaning}},
	}}
}

func TestRooms_CachedPerHotelAndCollapsed(t *testing.T) {
	api := seededRooms()
	api.gate = make(chan struct{})
	s := app.NewRoomStore(api, memory.NewCache(), 5*time.Minute, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([][]domain.Room, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = s.Rooms(ctx, "h1", false)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(api.gate)
	wg.Wait()

	assert.LessOrEqual(t, api.lists.Load(), int32(2))
	for _, r := range results {
		assert.Len(t, r, 2)
	}

	before := api.lists.Load()
	_, err := s.Rooms(ctx, "h1", false)
	require.NoError(t, err)
	assert.Equal(t, before, api.lists.Load(), "second read should come from cache")

	h2, err := s.Rooms(ctx, "h2", false)
	require.NoError(t, err)
	require.Len(t, h2, 1)
	assert.Equal(t, "r201", h2[0].ID)

	_, ok := s.FetchedAt("h1")
	assert.True(t, ok)
}

func TestCreateRoom_ValidatesThenRefetches(t *testing.T) {
	api := seededRooms()
	n := &recorder{}
	s := app.NewRoomStore(api, memory.NewCache(), 5*time.Minute, n)
	ctx := context.Background()

	f := &app.RoomForm{}
	_, err := s.CreateRoom(ctx, f)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"hotelId", "roomNumber", "floor", "categoryId"} {
		assert.Equal(t, domain.CodeRequired, verr.Field(field), field)
	}

	_, err = s.Rooms(ctx, "h1", false)
	require.NoError(t, err)
	lists := api.lists.Load()

	f.SetHotel("h1")
	f.SetNumber("103")
	f.SetFloor("1")
	f.SetCategory("c1")
	_, err = s.CreateRoom(ctx, f)
	require.NoError(t, err)

	assert.Equal(t, lists+1, api.lists.Load())
	rooms, _ := s.Rooms(ctx, "h1", false)
	assert.Len(t, rooms, 3)
	assert.Empty(t, f.Number)
	assert.Equal(t, domain.NoticeSuccess, n.last().Level)
}

func TestRoomStore_ErrorClassification(t *testing.T) {
	ctx := context.Background()
	form := func() *app.RoomForm {
		return &app.RoomForm{HotelID: "h1", Number: "1", Floor: "1", CategoryID: "c"}
	}
	cases := []struct {
		name string
		err  error
		kind domain.ErrorKind
		msg  string
	}{
		{"connection", &domain.Error{Kind: domain.KindConnection, Message: "dial tcp: refused"},
			domain.KindConnection, domain.ConnectionMessage},
		{"api message", domain.APIError(409, "DUPLICATE", "Số phòng đã tồn tại"),
			domain.KindAPI, "Số phòng đã tồn tại"},
		{"generic", &domain.Error{Kind: domain.KindGeneric, Status: 500, Message: "bad status 500"},
			domain.KindGeneric, "Tạo phòng thất bại"},
		{"foreign", errors.New("boom"), domain.KindGeneric, "Tạo phòng thất bại"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := &recorder{}
			api := seededRooms()
			api.mutErr = tc.err
			s := app.NewRoomStore(api, memory.NewCache(), time.Minute, n)

			_, err := s.CreateRoom(ctx, form())
			var de *domain.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.kind, de.Kind)
			assert.Equal(t, tc.msg, de.Message)
			assert.Equal(t, "rooms.create", de.Op)
			assert.Same(t, err, s.LastError("h1"))
			assert.Equal(t, domain.NoticeError, n.last().Level)
			assert.Equal(t, tc.msg, n.last().Message)
		})
	}
}

func TestUpdateRoom_KeepsJoinedCategoryWhenRefetchFails(t *testing.T) {
	api := seededRooms()
	s := app.NewRoomStore(api, memory.NewCache(), 5*time.Minute, nil)
	ctx := context.Background()
	_, err := s.Rooms(ctx, "h1", false)
	require.NoError(t, err)

	api.listErr = errors.New("list down")
	// no hotel on the form: it is resolved from the reply
	f := &app.RoomForm{Number: "101A", Floor: "1", CategoryID: "c1"}
	updated, err := s.UpdateRoom(ctx, "r101", f)
	require.NoError(t, err)
	assert.Nil(t, updated.Category)

	rooms, err := s.Rooms(ctx, "h1", false)
	require.NoError(t, err)
	require.Equal(t, "101A", rooms[0].Number)
	require.NotNil(t, rooms[0].Category)
	assert.Equal(t, "Deluxe", rooms[0].Category.Name)
}

func TestDeleteRoom_RemovesAfterConfirmation(t *testing.T) {
	api := seededRooms()
	s := app.NewRoomStore(api, memory.NewCache(), 5*time.Minute, nil)
	ctx := context.Background()
	_, _ = s.Rooms(ctx, "h1", false)

	api.mutErr = domain.APIError(400, "", "Phòng đang có khách")
	require.Error(t, s.DeleteRoom(ctx, "h1", "r102"))
	rooms, _ := s.Rooms(ctx, "h1", false)
	assert.Len(t, rooms, 2)

	api.mutErr = nil
	require.NoError(t, s.DeleteRoom(ctx, "h1", "r102"))
	rooms, _ = s.Rooms(ctx, "h1", false)
	require.Len(t, rooms, 1)
	assert.Equal(t, "r101", rooms[0].ID)
	assert.NoError(t, s.LastError("h1"))
}

func TestSetStatus_FollowsTransitionTable(t *testing.T) {
	api := seededRooms()
	s := app.NewRoomStore(api, memory.NewCache(), 5*time.Minute, nil)
	ctx := context.Background()

	_, err := s.SetStatus(ctx, "h1", "r101", app.ActionFinishCleaning)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Empty(t, api.updates)

	room, err := s.SetStatus(ctx, "h1", "r102", app.ActionCheckOut)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCheckedOut, room.Status)
	require.Len(t, api.updates, 1)
	assert.Equal(t, domain.RoomInput{Status: domain.RoomCheckedOut, Partial: true}, api.updates[0])

	_, err = s.SetStatus(ctx, "h1", "missing", app.ActionClean)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetStatus_ChecksServerStatusNotCache(t *testing.T) {
	api := seededRooms()
	s := app.NewRoomStore(api, memory.NewCache(), 5*time.Minute, nil)
	ctx := context.Background()

	rooms, err := s.Rooms(ctx, "h1", false)
	require.NoError(t, err)
	require.Equal(t, domain.RoomAvailable, rooms[0].Status)

	// a guest is checked in elsewhere after the board was loaded
	api.mu.Lock()
	api.rooms["h1"][0].Status = domain.RoomCheckedIn
	api.mu.Unlock()

	_, err = s.SetStatus(ctx, "h1", "r101", app.ActionMaintenance)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Empty(t, api.updates)

	rooms, err = s.Rooms(ctx, "h1", false)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCheckedIn, rooms[0].Status, "cache now holds the server's status")
}

func TestNextStatus(t *testing.T) {
	cases := []struct {
		action app.RoomAction
		from   domain.RoomStatus
		want   domain.RoomStatus
		ok     bool
	}{
		{app.ActionCheckOut, domain.RoomCheckedIn, domain.RoomCheckedOut, true},
		{app.ActionClean, domain.RoomCheckedOut, domain.RoomCleaning, true},
		{app.ActionFinishCleaning, domain.RoomCleaning, domain.RoomAvailable, true},
		{app.ActionRestore, domain.RoomOutOfService, domain.RoomAvailable, true},
		{app.ActionCheckOut, domain.RoomAvailable, "", false},
		{app.RoomAction("teleport"), domain.RoomAvailable, "", false},
		{app.ActionClean, domain.RoomStatus("weird"), "", false},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s from %s", tc.action, tc.from), func(t *testing.T) {
			got, ok := app.NextStatus(tc.action, tc.from)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWalkIn_RejectsPastCheckout(t *testing.T) {
	api := seededRooms()
	s := app.NewRoomStore(api, memory.NewCache(), time.Minute, nil)
	f := &app.WalkInForm{}
	f.SetGuestName("Trần B")
	f.SetGuestPhone("+84 912 345 678")
	f.SetGuestCount(1)
	f.SetCheckOut(time.Now().Add(-time.Hour))

	_, err := s.WalkInCheckIn(context.Background(), "h1", "r101", f)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"checkOutDate": domain.CodeInvalidDateRange}, verr.Fields)

	f.SetCheckOut(time.Now().Add(24 * time.Hour))
	room, err := s.WalkInCheckIn(context.Background(), "h1", "r101", f)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomOccupied, room.Status)
}

func TestCategoryStore_FiltersByHotelAndValidatesPrices(t *testing.T) {
	api := &fakeCategories{cats: []domain.RoomCategory{
		{ID: "c1", HotelID: "h1", Name: "Deluxe"},
		{ID: "c9", HotelID: "h9", Name: "Other hotel"},
	}}
	s := app.NewCategoryStore(api, memory.NewCache(), time.Minute, nil)
	ctx := context.Background()

	cats, err := s.Categories(ctx, "h1", false)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "c1", cats[0].ID)

	f := &app.CategoryForm{}
	f.SetHotel("h1")
	f.SetName("Suite")
	f.SetHourlyPrice(-1)
	f.SetDailyPrice(0)
	_, err = s.CreateCategory(ctx, f)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"hourlyPrice":    domain.CodeNegative,
		"overnightPrice": domain.CodeRequired,
	}, verr.Fields)

	f.SetHourlyPrice(100000)
	f.SetOvernightPrice(300000)
	_, err = s.CreateCategory(ctx, f)
	require.NoError(t, err)
	cats, _ = s.Categories(ctx, "h1", false)
	assert.Len(t, cats, 2)
}

func TestRooms_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	api := seededRooms()
	api.gate = make(chan struct{})
	s := app.NewRoomStore(api, memory.NewCache(), 5*time.Minute, nil)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Rooms(first, "h1", false)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return api.lists.Load() == 1 }, time.Second, time.Millisecond)

	second := make(chan []domain.Room, 1)
	go func() {
		rs, err := s.Rooms(context.Background(), "h1", false)
		assert.NoError(t, err)
		second <- rs
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	close(api.gate)
	assert.Len(t, <-second, 2)
	assert.EqualValues(t, 1, api.lists.Load())
}
