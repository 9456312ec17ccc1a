package app

import (
	"context"
	"strings"
	"time"

	"hotel_desk/internal/domain"
)

type InventoryStore struct {
	errState
	api   domain.InventoryAPI
	items *hotelLists[domain.InventoryItem]
}

func NewInventoryStore(api domain.InventoryAPI, c domain.Cache, ttl time.Duration, n domain.Notifier) *InventoryStore {
	s := &InventoryStore{errState: newErrState(n), api: api}
	s.items = newHotelLists("inventory", c, ttl, api.ListInventory)
	return s
}

func (s *InventoryStore) Items(ctx context.Context, hotelID string, force bool) ([]domain.InventoryItem, error) {
	items, err := s.items.get(ctx, hotelID, force)
	if err != nil {
		return nil, s.fail(ctx, opInventoryList, hotelID, err)
	}
	s.setLast(hotelID, nil)
	return items, nil
}

// Item looks id up in the hotel's cached list.
func (s *InventoryStore) Item(ctx context.Context, hotelID, id string) (domain.InventoryItem, error) {
	items, err := s.Items(ctx, hotelID, false)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.InventoryItem{}, domain.ErrNotFound
}

func (s *InventoryStore) CreateItem(ctx context.Context, f *InventoryItemForm) (domain.InventoryItem, error) {
	if verr := f.Validate(); verr != nil {
		return domain.InventoryItem{}, verr
	}
	hotelID := f.HotelID
	it, err := s.api.CreateInventoryItem(ctx, f.input())
	if err != nil {
		return domain.InventoryItem{}, s.fail(ctx, opItemCreate, hotelID, err)
	}
	f.Reset()
	s.items.refresh(ctx, hotelID, func(is []domain.InventoryItem) []domain.InventoryItem { return append(is, it) })
	s.succeed(ctx, opItemCreate, hotelID)
	return it, nil
}

func (s *InventoryStore) UpdateItem(ctx context.Context, id string, f *InventoryItemForm) (domain.InventoryItem, error) {
	if verr := f.Validate(); verr != nil {
		return domain.InventoryItem{}, verr
	}
	it, err := s.api.UpdateInventoryItem(ctx, id, f.input())
	if err != nil {
		return domain.InventoryItem{}, s.fail(ctx, opItemUpdate, f.HotelID, err)
	}
	s.items.refresh(ctx, f.HotelID, func(is []domain.InventoryItem) []domain.InventoryItem {
		for i := range is {
			if is[i].ID == id {
				is[i] = it
			}
		}
		return is
	})
	s.succeed(ctx, opItemUpdate, f.HotelID)
	return it, nil
}

func (s *InventoryStore) DeleteItem(ctx context.Context, hotelID, id string) error {
	if err := s.api.DeleteInventoryItem(ctx, id); err != nil {
		return s.fail(ctx, opItemDelete, hotelID, err)
	}
	s.items.refresh(ctx, hotelID, func(is []domain.InventoryItem) []domain.InventoryItem {
		out := is[:0]
		for _, it := range is {
			if it.ID != id {
				out = append(out, it)
			}
		}
		return out
	})
	s.succeed(ctx, opItemDelete, hotelID)
	return nil
}

// InvalidateItems drops the hotel's cached stock, e.g. after a check is
// balanced and the API has rewritten stock levels.
func (s *InventoryStore) InvalidateItems(ctx context.Context, hotelID string) {
	_ = s.items.cache.Del(ctx, s.items.key(hotelID))
}

// SearchItems filters items by case-insensitive substring of code or name.
func SearchItems(items []domain.InventoryItem, term string) []domain.InventoryItem {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	var out []domain.InventoryItem
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Code), term) || strings.Contains(strings.ToLower(it.Name), term) {
			out = append(out, it)
		}
	}
	return out
}
