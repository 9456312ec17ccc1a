package app

import (
	"context"
	"time"

	"hotel_desk/internal/domain"
)

type CategoryStore struct {
	errState
	api  domain.CategoryAPI
	cats *hotelLists[domain.RoomCategory]
}

func NewCategoryStore(api domain.CategoryAPI, c domain.Cache, ttl time.Duration, n domain.Notifier) *CategoryStore {
	s := &CategoryStore{errState: newErrState(n), api: api}
	s.cats = newHotelLists("categories", c, ttl, s.load)
	return s
}

// load keeps only the hotel's own categories; the endpoint may return
// categories of other hotels too.
func (s *CategoryStore) load(ctx context.Context, hotelID string) ([]domain.RoomCategory, error) {
	all, err := s.api.ListCategories(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RoomCategory, 0, len(all))
	for _, c := range all {
		if c.HotelID == hotelID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CategoryStore) Categories(ctx context.Context, hotelID string, force bool) ([]domain.RoomCategory, error) {
	cats, err := s.cats.get(ctx, hotelID, force)
	if err != nil {
		return nil, s.fail(ctx, opCategoriesList, hotelID, err)
	}
	s.setLast(hotelID, nil)
	return cats, nil
}

func (s *CategoryStore) CreateCategory(ctx context.Context, f *CategoryForm) (domain.RoomCategory, error) {
	if verr := f.Validate(); verr != nil {
		return domain.RoomCategory{}, verr
	}
	hotelID := f.HotelID
	c, err := s.api.CreateCategory(ctx, f.input())
	if err != nil {
		return domain.RoomCategory{}, s.fail(ctx, opCategoryCreate, hotelID, err)
	}
	f.Reset()
	s.cats.refresh(ctx, hotelID, func(cs []domain.RoomCategory) []domain.RoomCategory { return append(cs, c) })
	s.succeed(ctx, opCategoryCreate, hotelID)
	return c, nil
}

func (s *CategoryStore) UpdateCategory(ctx context.Context, id string, f *CategoryForm) (domain.RoomCategory, error) {
	if verr := f.Validate(); verr != nil {
		return domain.RoomCategory{}, verr
	}
	c, err := s.api.UpdateCategory(ctx, id, f.input())
	if err != nil {
		return domain.RoomCategory{}, s.fail(ctx, opCategoryUpdate, f.HotelID, err)
	}
	s.cats.refresh(ctx, f.HotelID, func(cs []domain.RoomCategory) []domain.RoomCategory {
		for i := range cs {
			if cs[i].ID == id {
				cs[i] = c
			}
		}
		return cs
	})
	s.succeed(ctx, opCategoryUpdate, f.HotelID)
	return c, nil
}

func (s *CategoryStore) DeleteCategory(ctx context.Context, hotelID, id string) error {
	if err := s.api.DeleteCategory(ctx, id); err != nil {
		return s.fail(ctx, opCategoryDelete, hotelID, err)
	}
	s.cats.refresh(ctx, hotelID, func(cs []domain.RoomCategory) []domain.RoomCategory {
		out := cs[:0]
		for _, c := range cs {
			if c.ID != id {
				out = append(out, c)
			}
		}
		return out
	})
	s.succeed(ctx, opCategoryDelete, hotelID)
	return nil
}
