package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"hotel_desk/internal/domain"
)

type Drafts struct {
	mu sync.Mutex
	m  map[string][]byte
	v  map[string]int64
}

func NewDrafts() *Drafts { return &Drafts{m: make(map[string][]byte), v: make(map[string]int64)} }

func (d *Drafts) SaveDraft(ctx context.Context, rec domain.CheckDraftRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	// stored versions start at 1, so version 0 only matches a missing draft
	if d.v[rec.ID] != rec.Version {
		return domain.ErrDraftConflict
	}
	rec.Version++
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	d.m[rec.ID] = b
	d.v[rec.ID] = rec.Version
	return nil
}

func (d *Drafts) ClaimDraft(ctx context.Context, id string, version int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.v[id]; !ok || cur != version {
		return domain.ErrDraftConflict
	}
	delete(d.m, id)
	delete(d.v, id)
	return nil
}

func (d *Drafts) GetDraft(ctx context.Context, id string) (domain.CheckDraftRecord, error) {
	d.mu.Lock()
	b, ok := d.m[id]
	d.mu.Unlock()
	if !ok {
		return domain.CheckDraftRecord{}, domain.ErrNotFound
	}
	var rec domain.CheckDraftRecord
	return rec, json.Unmarshal(b, &rec)
}

func (d *Drafts) ListDrafts(ctx context.Context, hotelID string) ([]domain.CheckDraftRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []domain.CheckDraftRecord
	for _, b := range d.m {
		var rec domain.CheckDraftRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, err
		}
		if rec.HotelID == hotelID {
			out = append(out, rec)
		}
	}
	// newest first, like the MySQL repo
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (d *Drafts) DeleteDraft(ctx context.Context, id string) error {
	d.mu.Lock()
	delete(d.m, id)
	delete(d.v, id)
	d.mu.Unlock()
	return nil
}
