package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_desk/internal/app"
	"hotel_desk/internal/domain"
	"hotel_desk/internal/storage/memory"
)

func newCheckStore(n domain.Notifier) (*app.InventoryCheckStore, *fakeChecks, *memory.Drafts) {
	inv := &fakeInventory{items: []domain.InventoryItem{
		{ID: "i1", HotelID: "h1", Code: "NS", Name: "Nước suối", Unit: "chai", Stock: 10},
		{ID: "i2", HotelID: "h1", Code: "BT", Name: "Bàn chải", Unit: "cái", Stock: 4},
	}}
	cache := memory.NewCache()
	items := app.NewInventoryStore(inv, cache, time.Minute, nil)
	api := &fakeChecks{}
	drafts := memory.NewDrafts()
	return app.NewInventoryCheckStore(api, drafts, items, cache, time.Minute, n), api, drafts
}

func TestInventoryCheckStore_DraftToSubmission(t *testing.T) {
	n := &recorder{}
	s, api, drafts := newCheckStore(n)
	ctx := context.Background()

	d, err := s.NewDraft(ctx, "h1", "kiểm kho cuối tháng")
	require.NoError(t, err)
	require.NotEmpty(t, d.ID)

	_, err = s.AddDraftItem(ctx, d.ID, "i1")
	require.NoError(t, err)
	_, err = s.AddDraftItem(ctx, d.ID, "i1")
	assert.ErrorIs(t, err, domain.ErrDuplicateItem)
	assert.Equal(t, domain.NoticeWarning, n.last().Level)

	_, err = s.EditDraft(ctx, d.ID, func(d *app.CheckDraft) error {
		if err := d.StartEdit("i1"); err != nil {
			return err
		}
		return d.StageValue("i1", 7)
	})
	require.NoError(t, err)

	// the staged edit was persisted and blocks submission
	_, err = s.SubmitDraft(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrPendingEdits)
	assert.Empty(t, api.created)

	_, err = s.EditDraft(ctx, d.ID, func(d *app.CheckDraft) error { return d.SaveEdit("i1") })
	require.NoError(t, err)

	c, err := s.SubmitDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "chk1", c.ID)
	require.Len(t, api.created, 1)
	assert.Equal(t, int64(-3), api.created[0].TotalDifference)
	assert.Equal(t, int64(-3), api.created[0].TotalDecrease)
	assert.Equal(t, "kiểm kho cuối tháng", api.created[0].Note)

	assert.Equal(t, domain.NoticeWarning, n.last().Level)
	assert.Equal(t, app.NonZeroDifferenceWarning, n.last().Message)

	_, err = drafts.GetDraft(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInventoryCheckStore_FailedEditIsNotSaved(t *testing.T) {
	s, _, _ := newCheckStore(nil)
	ctx := context.Background()
	d, err := s.NewDraft(ctx, "h1", "")
	require.NoError(t, err)
	_, err = s.AddDraftItem(ctx, d.ID, "i2")
	require.NoError(t, err)

	_, err = s.EditDraft(ctx, d.ID, func(d *app.CheckDraft) error {
		_ = d.StartEdit("i2")
		return d.StageValue("i2", -5)
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStock)

	got, err := s.Draft(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.HasPendingEdits())
}

func TestInventoryCheckStore_UpdateRecomputesTotals(t *testing.T) {
	s, api, _ := newCheckStore(nil)
	in := domain.NewCheckInput{Items: []domain.InventoryCheckItem{
		{InventoryItemID: "i1", SystemStock: 10, ActualStock: 12, Difference: 99},
		{InventoryItemID: "i2", SystemStock: 4, ActualStock: 1},
	}, TotalDifference: 1234}

	_, err := s.UpdateCheck(context.Background(), "h1", "chk1", in)
	require.NoError(t, err)
	require.Len(t, api.updated, 1)
	got := api.updated[0]
	assert.Equal(t, "h1", got.HotelID)
	assert.Equal(t, int64(2), got.Items[0].Difference)
	assert.Equal(t, int64(-1), got.TotalDifference)
	assert.Equal(t, int64(2), got.TotalIncrease)
	assert.Equal(t, int64(-3), got.TotalDecrease)
}

func TestInventoryCheckStore_Balance(t *testing.T) {
	s, api, _ := newCheckStore(nil)
	c, err := s.Balance(context.Background(), "h1", "chk1")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckBalanced, c.Status)
	assert.Equal(t, []string{"chk1"}, api.balanced)
}

// claimHook runs before its first claim, standing in for another replica
// that acts between this one's read and its claim.
type claimHook struct {
	*memory.Drafts
	before func()
}

func (h *claimHook) ClaimDraft(ctx context.Context, id string, version int64) error {
	if f := h.before; f != nil {
		h.before = nil
		f()
	}
	return h.Drafts.ClaimDraft(ctx, id, version)
}

func twoReplicas(t *testing.T) (a, b *app.InventoryCheckStore, hook *claimHook, api *fakeChecks, draftID string) {
	t.Helper()
	inv := &fakeInventory{items: []domain.InventoryItem{{ID: "i1", HotelID: "h1", Code: "NS", Stock: 10}}}
	shared := memory.NewDrafts()
	hook = &claimHook{Drafts: shared}
	api = &fakeChecks{}
	a = app.NewInventoryCheckStore(api, hook, app.NewInventoryStore(inv, memory.NewCache(), time.Minute, nil),
		memory.NewCache(), time.Minute, nil)
	b = app.NewInventoryCheckStore(api, shared, app.NewInventoryStore(inv, memory.NewCache(), time.Minute, nil),
		memory.NewCache(), time.Minute, nil)

	ctx := context.Background()
	d, err := a.NewDraft(ctx, "h1", "")
	require.NoError(t, err)
	_, err = a.AddDraftItem(ctx, d.ID, "i1")
	require.NoError(t, err)
	return a, b, hook, api, d.ID
}

func TestInventoryCheckStore_ConcurrentEditAcrossReplicasConflicts(t *testing.T) {
	a, b, _, _, id := twoReplicas(t)
	ctx := context.Background()

	_, err := a.EditDraft(ctx, id, func(d *app.CheckDraft) error {
		_, berr := b.EditDraft(ctx, id, func(d *app.CheckDraft) error {
			d.Note = "from b"
			return nil
		})
		require.NoError(t, berr)
		d.Note = "from a"
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrDraftConflict)

	got, err := b.Draft(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "from b", got.Note, "the later write did not overwrite the earlier one")
}

func TestInventoryCheckStore_DraftSubmittedOnceAcrossReplicas(t *testing.T) {
	a, b, hook, api, id := twoReplicas(t)
	ctx := context.Background()

	var bErr error
	hook.before = func() { _, bErr = b.SubmitDraft(ctx, id) }

	_, err := a.SubmitDraft(ctx, id)
	require.NoError(t, bErr)
	assert.ErrorIs(t, err, domain.ErrDraftConflict)
	assert.Len(t, api.created, 1)
}

func TestInventoryCheckStore_RefusedSubmissionKeepsDraft(t *testing.T) {
	a, _, _, api, id := twoReplicas(t)
	ctx := context.Background()

	api.createErr = domain.APIError(400, "", "Phiếu không hợp lệ")
	_, err := a.SubmitDraft(ctx, id)
	require.Error(t, err)
	got, err := a.Draft(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Items(), 1)

	api.createErr = nil
	_, err = a.SubmitDraft(ctx, id)
	require.NoError(t, err)
	assert.Len(t, api.created, 1)
}
