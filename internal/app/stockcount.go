package app

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"hotel_desk/internal/domain"
)

// NonZeroDifferenceWarning is shown, without blocking, when a count does not
// match the system stock.
const NonZeroDifferenceWarning = "Tổng chênh lệch khác 0. Khi cân bằng kho, tồn kho hệ thống sẽ được điều chỉnh theo số lượng thực tế."

// CheckDraft is a stock count being prepared. Editing an item's actual stock
// is two-phase: StartEdit stages a value, StageValue changes it, SaveEdit
// commits it and CancelEdit throws it away. Totals are always derived from
// the items, never stored.
type CheckDraft struct {
	ID        string
	HotelID   string
	Note      string
	UpdatedAt time.Time
	// Version is the stored revision this draft was read at; 0 until saved.
	Version int64

	items  []domain.InventoryCheckItem
	staged map[string]int64
}

func NewCheckDraft(id, hotelID string) *CheckDraft {
	return &CheckDraft{ID: id, HotelID: hotelID, staged: map[string]int64{}}
}

func DraftFromRecord(r domain.CheckDraftRecord) *CheckDraft {
	d := NewCheckDraft(r.ID, r.HotelID)
	d.Note = r.Note
	d.UpdatedAt = r.UpdatedAt
	d.Version = r.Version
	d.items = slices.Clone(r.Items)
	for k, v := range r.Staged {
		d.staged[k] = v
	}
	return d
}

func (d *CheckDraft) Record() domain.CheckDraftRecord {
	r := domain.CheckDraftRecord{
		ID: d.ID, HotelID: d.HotelID, Note: d.Note, UpdatedAt: d.UpdatedAt, Version: d.Version,
		Items: slices.Clone(d.items),
	}
	if len(d.staged) > 0 {
		r.Staged = make(map[string]int64, len(d.staged))
		for k, v := range d.staged {
			r.Staged[k] = v
		}
	}
	return r
}

func (d *CheckDraft) index(itemID string) int {
	return slices.IndexFunc(d.items, func(it domain.InventoryCheckItem) bool { return it.InventoryItemID == itemID })
}

// AddItem appends item with its actual stock seeded from the system stock.
func (d *CheckDraft) AddItem(item domain.InventoryItem) error {
	if d.index(item.ID) >= 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateItem, item.Code)
	}
	d.items = append(d.items, domain.InventoryCheckItem{
		InventoryItemID: item.ID,
		Code:            item.Code,
		Name:            item.Name,
		Unit:            item.Unit,
		SystemStock:     item.Stock,
		ActualStock:     item.Stock,
	})
	return nil
}

func (d *CheckDraft) RemoveItem(itemID string) error {
	i := d.index(itemID)
	if i < 0 {
		return domain.ErrItemNotInCheck
	}
	d.items = slices.Delete(d.items, i, i+1)
	delete(d.staged, itemID)
	return nil
}

// StartEdit stages the item's current actual stock.
func (d *CheckDraft) StartEdit(itemID string) error {
	i := d.index(itemID)
	if i < 0 {
		return domain.ErrItemNotInCheck
	}
	d.staged[itemID] = d.items[i].ActualStock
	return nil
}

func (d *CheckDraft) StageValue(itemID string, v int64) error {
	if _, ok := d.staged[itemID]; !ok {
		return domain.ErrNoStagedEdit
	}
	if v < 0 {
		return domain.ErrInvalidStock
	}
	d.staged[itemID] = v
	return nil
}

// StageInput stages raw text from an input box; anything but a
// non-negative integer is rejected and leaves the staged value alone.
func (d *CheckDraft) StageInput(itemID, raw string) error {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		if _, ok := d.staged[itemID]; !ok {
			return domain.ErrNoStagedEdit
		}
		return domain.ErrInvalidStock
	}
	return d.StageValue(itemID, v)
}

func (d *CheckDraft) Staged(itemID string) (int64, bool) {
	v, ok := d.staged[itemID]
	return v, ok
}

// SaveEdit commits the staged value and recomputes the item's difference.
func (d *CheckDraft) SaveEdit(itemID string) error {
	v, ok := d.staged[itemID]
	if !ok {
		return domain.ErrNoStagedEdit
	}
	i := d.index(itemID)
	if i < 0 {
		delete(d.staged, itemID)
		return domain.ErrItemNotInCheck
	}
	d.items[i].ActualStock = v
	d.items[i].Difference = v - d.items[i].SystemStock
	delete(d.staged, itemID)
	return nil
}

func (d *CheckDraft) CancelEdit(itemID string) {
	delete(d.staged, itemID)
}

func (d *CheckDraft) Items() []domain.InventoryCheckItem { return slices.Clone(d.items) }

func (d *CheckDraft) Totals() domain.CheckTotals { return domain.SumDifferences(d.items) }

func (d *CheckDraft) HasPendingEdits() bool { return len(d.staged) > 0 }

// Warning is non-empty when the counted stock differs from the system stock
// in total.
func (d *CheckDraft) Warning() string {
	if d.Totals().Difference != 0 {
		return NonZeroDifferenceWarning
	}
	return ""
}

// Submission builds the create payload. It fails while any edit is staged.
func (d *CheckDraft) Submission() (domain.NewCheckInput, error) {
	if d.HasPendingEdits() {
		return domain.NewCheckInput{}, domain.ErrPendingEdits
	}
	if len(d.items) == 0 {
		return domain.NewCheckInput{}, domain.ErrEmptyCheck
	}
	t := d.Totals()
	return domain.NewCheckInput{
		HotelID:         d.HotelID,
		Items:           d.Items(),
		TotalDifference: t.Difference,
		TotalIncrease:   t.Increase,
		TotalDecrease:   t.Decrease,
		Note:            d.Note,
	}, nil
}

// DraftView is the read model of a draft sent to the dashboard.
type DraftView struct {
	ID              string                      `json:"id"`
	HotelID         string                      `json:"hotelId"`
	Note            string                      `json:"note,omitempty"`
	Items           []domain.InventoryCheckItem `json:"items"`
	Staged          map[string]int64            `json:"staged,omitempty"`
	Totals          domain.CheckTotals          `json:"totals"`
	HasPendingEdits bool                        `json:"hasPendingEdits"`
	Warning         string                      `json:"warning,omitempty"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

func (d *CheckDraft) View() DraftView {
	r := d.Record()
	return DraftView{
		ID: r.ID, HotelID: r.HotelID, Note: r.Note, Items: r.Items, Staged: r.Staged,
		Totals: d.Totals(), HasPendingEdits: d.HasPendingEdits(), Warning: d.Warning(),
		UpdatedAt: r.UpdatedAt,
	}
}
