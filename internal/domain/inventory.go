package domain

import "time"

type InventoryItem struct {
	ID           string `json:"id"`
	HotelID      string `json:"hotelId"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	SellingPrice int64  `json:"sellingPrice"`
	CostPrice    int64  `json:"costPrice"`
	Stock        int64  `json:"stock"`
	Category     string `json:"category,omitempty"`
	Type         string `json:"type,omitempty"`
	Image        string `json:"image,omitempty"`
}

type CheckStatus string

const (
	CheckDraft    CheckStatus = "draft"
	CheckBalanced CheckStatus = "balanced"
)

type InventoryCheckItem struct {
	InventoryItemID string `json:"inventoryItemId"`
	Code            string `json:"code,omitempty"`
	Name            string `json:"name,omitempty"`
	Unit            string `json:"unit,omitempty"`
	SystemStock     int64  `json:"systemStock"`
	ActualStock     int64  `json:"actualStock"`
	Difference      int64  `json:"difference"`
}

type InventoryCheck struct {
	ID              string               `json:"id"`
	Code            string               `json:"code"`
	HotelID         string               `json:"hotelId"`
	Items           []InventoryCheckItem `json:"items"`
	TotalDifference int64                `json:"totalDifference"`
	TotalIncrease   int64                `json:"totalIncrease"`
	TotalDecrease   int64                `json:"totalDecrease"`
	Status          CheckStatus          `json:"status"`
	BalancedAt      *time.Time           `json:"balancedAt,omitempty"`
	Note            string               `json:"note,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// CheckTotals are the aggregates derived from a check's item differences.
type CheckTotals struct {
	Difference int64 `json:"totalDifference"`
	Increase   int64 `json:"totalIncrease"`
	Decrease   int64 `json:"totalDecrease"`
}

// SumDifferences derives the totals from the items. Increase only counts
// positive differences, Decrease only negative ones, so
// Increase + Decrease == Difference always holds.
func SumDifferences(items []InventoryCheckItem) CheckTotals {
	var t CheckTotals
	for _, it := range items {
		t.Difference += it.Difference
		switch {
		case it.Difference > 0:
			t.Increase += it.Difference
		case it.Difference < 0:
			t.Decrease += it.Difference
		}
	}
	return t
}

// NewCheckInput is the payload for POST /inventory-checks.
type NewCheckInput struct {
	HotelID         string               `json:"hotelId"`
	Items           []InventoryCheckItem `json:"items"`
	TotalDifference int64                `json:"totalDifference"`
	TotalIncrease   int64                `json:"totalIncrease"`
	TotalDecrease   int64                `json:"totalDecrease"`
	Note            string               `json:"note,omitempty"`
}
