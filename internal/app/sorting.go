package app

import (
	"cmp"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"hotel_desk/internal/domain"
)

type SortColumn string

const (
	SortNone       SortColumn = ""
	SortCode       SortColumn = "code"
	SortCreated    SortColumn = "createdAt"
	SortBalanced   SortColumn = "balancedAt"
	SortDifference SortColumn = "totalDifference"
	SortIncrease   SortColumn = "totalIncrease"
	SortDecrease   SortColumn = "totalDecrease"
	SortStatus     SortColumn = "status"
)

func (c SortColumn) Valid() bool {
	switch c {
	case SortNone, SortCode, SortCreated, SortBalanced, SortDifference, SortIncrease, SortDecrease, SortStatus:
		return true
	}
	return false
}

// SortState is the column sort of a list view. Clicking the sorted column
// flips direction; clicking another column sorts it ascending.
type SortState struct {
	Column SortColumn `json:"column"`
	Desc   bool       `json:"desc"`
}

func (s SortState) Toggle(col SortColumn) SortState {
	if col == s.Column {
		s.Desc = !s.Desc
		return s
	}
	return SortState{Column: col}
}

func epoch(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixMilli()
}

// SortChecks returns a sorted copy of cs. Dates compare as epoch
// milliseconds, text with Vietnamese collation. Equal keys keep API order.
func SortChecks(cs []domain.InventoryCheck, st SortState) []domain.InventoryCheck {
	out := slices.Clone(cs)
	if st.Column == SortNone {
		return out
	}
	// collators are not safe for concurrent use
	col := collate.New(language.Vietnamese)
	slices.SortStableFunc(out, func(a, b domain.InventoryCheck) int {
		var c int
		switch st.Column {
		case SortCode:
			c = col.CompareString(a.Code, b.Code)
		case SortStatus:
			c = col.CompareString(string(a.Status), string(b.Status))
		case SortCreated:
			c = cmp.Compare(a.CreatedAt.UnixMilli(), b.CreatedAt.UnixMilli())
		case SortBalanced:
			c = cmp.Compare(epoch(a.BalancedAt), epoch(b.BalancedAt))
		case SortDifference:
			c = cmp.Compare(a.TotalDifference, b.TotalDifference)
		case SortIncrease:
			c = cmp.Compare(a.TotalIncrease, b.TotalIncrease)
		case SortDecrease:
			c = cmp.Compare(a.TotalDecrease, b.TotalDecrease)
		}
		if st.Desc {
			return -c
		}
		return c
	})
	return out
}
