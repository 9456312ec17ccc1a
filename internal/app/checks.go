package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_desk/internal/domain"
)

// InventoryCheckStore lists submitted checks and keeps unfinished stock
// counts as drafts in a DraftRepository until they are submitted.
type InventoryCheckStore struct {
	errState
	api    domain.InventoryCheckAPI
	drafts domain.DraftRepository
	items  *InventoryStore
	checks *hotelLists[domain.InventoryCheck]
	now    func() time.Time
	newID  func() string

	draftMu sync.Mutex
}

func NewInventoryCheckStore(api domain.InventoryCheckAPI, drafts domain.DraftRepository, items *InventoryStore,
	c domain.Cache, ttl time.Duration, n domain.Notifier) *InventoryCheckStore {
	s := &InventoryCheckStore{
		errState: newErrState(n), api: api, drafts: drafts, items: items,
		now: time.Now, newID: uuid.NewString,
	}
	s.checks = newHotelLists("inventory-checks", c, ttl, api.ListChecks)
	return s
}

func (s *InventoryCheckStore) Checks(ctx context.Context, hotelID string, force bool) ([]domain.InventoryCheck, error) {
	cs, err := s.checks.get(ctx, hotelID, force)
	if err != nil {
		return nil, s.fail(ctx, opChecksList, hotelID, err)
	}
	s.setLast(hotelID, nil)
	return cs, nil
}

// SortedChecks returns the hotel's checks ordered by st.
func (s *InventoryCheckStore) SortedChecks(ctx context.Context, hotelID string, st SortState) ([]domain.InventoryCheck, error) {
	cs, err := s.Checks(ctx, hotelID, false)
	if err != nil {
		return nil, err
	}
	return SortChecks(cs, st), nil
}

func (s *InventoryCheckStore) Check(ctx context.Context, id string) (domain.InventoryCheck, error) {
	c, err := s.api.GetCheck(ctx, id)
	if err != nil {
		return domain.InventoryCheck{}, s.fail(ctx, opCheckGet, "", err)
	}
	return c, nil
}

func (s *InventoryCheckStore) NewDraft(ctx context.Context, hotelID, note string) (*CheckDraft, error) {
	d := NewCheckDraft(s.newID(), hotelID)
	d.Note = note
	if err := s.SaveDraft(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *InventoryCheckStore) Draft(ctx context.Context, id string) (*CheckDraft, error) {
	rec, err := s.drafts.GetDraft(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, s.fail(ctx, opDraftSave, "", err)
	}
	return DraftFromRecord(rec), nil
}

func (s *InventoryCheckStore) Drafts(ctx context.Context, hotelID string) ([]*CheckDraft, error) {
	recs, err := s.drafts.ListDrafts(ctx, hotelID)
	if err != nil {
		return nil, s.fail(ctx, opDraftSave, hotelID, err)
	}
	out := make([]*CheckDraft, 0, len(recs))
	for _, r := range recs {
		out = append(out, DraftFromRecord(r))
	}
	return out, nil
}

// SaveDraft writes d if the stored draft is still at d.Version, which then
// moves to the new revision. A concurrent writer yields ErrDraftConflict.
func (s *InventoryCheckStore) SaveDraft(ctx context.Context, d *CheckDraft) error {
	d.UpdatedAt = s.now()
	if err := s.drafts.SaveDraft(ctx, d.Record()); err != nil {
		if errors.Is(err, domain.ErrDraftConflict) {
			return s.local(ctx, opDraftSave, d.HotelID, err)
		}
		return s.fail(ctx, opDraftSave, d.HotelID, err)
	}
	d.Version++
	return nil
}

// EditDraft loads the draft, applies fn and saves the result. Nothing is
// saved when fn fails, or when the draft changed in between on another
// replica.
func (s *InventoryCheckStore) EditDraft(ctx context.Context, id string, fn func(*CheckDraft) error) (*CheckDraft, error) {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	d, err := s.Draft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return d, s.local(ctx, opDraftSave, d.HotelID, err)
	}
	if err := s.SaveDraft(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// AddDraftItem adds an inventory item, looked up in the hotel's stock, to
// the draft.
func (s *InventoryCheckStore) AddDraftItem(ctx context.Context, draftID, itemID string) (*CheckDraft, error) {
	return s.EditDraft(ctx, draftID, func(d *CheckDraft) error {
		it, err := s.items.Item(ctx, d.HotelID, itemID)
		if err != nil {
			return err
		}
		return d.AddItem(it)
	})
}

func (s *InventoryCheckStore) DiscardDraft(ctx context.Context, id string) error {
	if err := s.drafts.DeleteDraft(ctx, id); err != nil {
		return s.fail(ctx, opDraftSave, "", err)
	}
	return nil
}

// SubmitDraft claims the draft, creates the check from it and reports a
// non-zero total difference as a warning notice. Claiming removes the draft
// at the version that was read, so of two concurrent submissions only one
// reaches the API. The draft is put back when the API refuses the check.
func (s *InventoryCheckStore) SubmitDraft(ctx context.Context, id string) (domain.InventoryCheck, error) {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	d, err := s.Draft(ctx, id)
	if err != nil {
		return domain.InventoryCheck{}, err
	}
	in, err := d.Submission()
	if err != nil {
		return domain.InventoryCheck{}, s.local(ctx, opCheckCreate, d.HotelID, err)
	}
	if err := s.drafts.ClaimDraft(ctx, id, d.Version); err != nil {
		if errors.Is(err, domain.ErrDraftConflict) {
			return domain.InventoryCheck{}, s.local(ctx, opCheckCreate, d.HotelID, err)
		}
		return domain.InventoryCheck{}, s.fail(ctx, opDraftSave, d.HotelID, err)
	}
	c, err := s.api.CreateCheck(ctx, in)
	if err != nil {
		d.Version = 0
		if rerr := s.drafts.SaveDraft(context.WithoutCancel(ctx), d.Record()); rerr != nil {
			log.Error().Err(rerr).Str("draft_id", id).Msg("restore draft after failed submission")
		}
		return domain.InventoryCheck{}, s.fail(ctx, opCheckCreate, d.HotelID, err)
	}
	s.checks.refresh(ctx, d.HotelID, func(cs []domain.InventoryCheck) []domain.InventoryCheck { return append(cs, c) })
	s.succeed(ctx, opCheckCreate, d.HotelID)
	if w := d.Warning(); w != "" {
		s.notifier.Notify(ctx, domain.Notice{Level: domain.NoticeWarning, Op: opCheckCreate, HotelID: d.HotelID, Message: w})
	}
	return c, nil
}

// UpdateCheck sends in with item differences and totals recomputed from the
// counted stock.
func (s *InventoryCheckStore) UpdateCheck(ctx context.Context, hotelID, id string, in domain.NewCheckInput) (domain.InventoryCheck, error) {
	for i := range in.Items {
		if in.Items[i].ActualStock < 0 {
			return domain.InventoryCheck{}, withField(nil, "items", domain.CodeNegative)
		}
		in.Items[i].Difference = in.Items[i].ActualStock - in.Items[i].SystemStock
	}
	t := domain.SumDifferences(in.Items)
	in.TotalDifference, in.TotalIncrease, in.TotalDecrease = t.Difference, t.Increase, t.Decrease
	in.HotelID = firstNonEmpty(in.HotelID, hotelID)

	c, err := s.api.UpdateCheck(ctx, id, in)
	if err != nil {
		return domain.InventoryCheck{}, s.fail(ctx, opCheckUpdate, hotelID, err)
	}
	s.checks.refresh(ctx, in.HotelID, func(cs []domain.InventoryCheck) []domain.InventoryCheck { return replaceCheck(cs, c) })
	s.succeed(ctx, opCheckUpdate, in.HotelID)
	return c, nil
}

func (s *InventoryCheckStore) DeleteCheck(ctx context.Context, hotelID, id string) error {
	if err := s.api.DeleteCheck(ctx, id); err != nil {
		return s.fail(ctx, opCheckDelete, hotelID, err)
	}
	s.checks.refresh(ctx, hotelID, func(cs []domain.InventoryCheck) []domain.InventoryCheck {
		out := cs[:0]
		for _, c := range cs {
			if c.ID != id {
				out = append(out, c)
			}
		}
		return out
	})
	s.succeed(ctx, opCheckDelete, hotelID)
	return nil
}

// Balance asks the API to apply the counted stock. Stock levels change on
// the server, so the hotel's cached inventory is dropped too.
func (s *InventoryCheckStore) Balance(ctx context.Context, hotelID, id string) (domain.InventoryCheck, error) {
	c, err := s.api.BalanceCheck(ctx, id)
	if err != nil {
		return domain.InventoryCheck{}, s.fail(ctx, opCheckBalance, hotelID, err)
	}
	hotelID = firstNonEmpty(hotelID, c.HotelID)
	s.checks.refresh(ctx, hotelID, func(cs []domain.InventoryCheck) []domain.InventoryCheck { return replaceCheck(cs, c) })
	if s.items != nil {
		s.items.InvalidateItems(ctx, hotelID)
	}
	s.succeed(ctx, opCheckBalance, hotelID)
	return c, nil
}

func replaceCheck(cs []domain.InventoryCheck, c domain.InventoryCheck) []domain.InventoryCheck {
	for i := range cs {
		if cs[i].ID == c.ID {
			cs[i] = c
			return cs
		}
	}
	return append(cs, c)
}
