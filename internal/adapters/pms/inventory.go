package pms

import (
	"context"
	"net/http"
	"net/url"

	"hotel_desk/internal/domain"
)

// ---- Inventory items ----

func (c *Client) ListInventory(ctx context.Context, hotelID string) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	r := request{method: http.MethodGet, path: "/inventory", route: "/inventory", query: url.Values{"hotelId": {hotelID}}}
	return out, c.do(ctx, r, &out)
}

func inventoryFields(in domain.InventoryInput) []formField {
	return []formField{
		field("hotelId", in.HotelID),
		field("code", in.Code),
		field("name", in.Name),
		field("unit", in.Unit),
		field("sellingPrice", itoa(in.SellingPrice)),
		field("costPrice", itoa(in.CostPrice)),
		field("stock", itoa(in.Stock)),
		clearable("category", in.Category),
		clearable("type", in.Type),
	}
}

func (c *Client) CreateInventoryItem(ctx context.Context, in domain.InventoryInput) (domain.InventoryItem, error) {
	var out domain.InventoryItem
	r, err := multipartRequest(http.MethodPost, "/inventory", "/inventory", inventoryFields(in), in.Image, true)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}

func (c *Client) UpdateInventoryItem(ctx context.Context, id string, in domain.InventoryInput) (domain.InventoryItem, error) {
	var out domain.InventoryItem
	r, err := multipartRequest(http.MethodPatch, pathID("/inventory", id), "/inventory/{id}", inventoryFields(in), in.Image, false)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}

func (c *Client) DeleteInventoryItem(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pathID("/inventory", id), route: "/inventory/{id}"}, nil)
}

// ---- Inventory checks ----

func (c *Client) ListChecks(ctx context.Context, hotelID string) ([]domain.InventoryCheck, error) {
	var out []domain.InventoryCheck
	r := request{method: http.MethodGet, path: "/inventory-checks", route: "/inventory-checks",
		query: url.Values{"hotelId": {hotelID}}}
	return out, c.do(ctx, r, &out)
}

func (c *Client) GetCheck(ctx context.Context, id string) (domain.InventoryCheck, error) {
	var out domain.InventoryCheck
	r := request{method: http.MethodGet, path: pathID("/inventory-checks", id), route: "/inventory-checks/{id}"}
	return out, c.do(ctx, r, &out)
}

func (c *Client) CreateCheck(ctx context.Context, in domain.NewCheckInput) (domain.InventoryCheck, error) {
	var out domain.InventoryCheck
	r, err := jsonRequest(http.MethodPost, "/inventory-checks", "/inventory-checks", in)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}

func (c *Client) UpdateCheck(ctx context.Context, id string, in domain.NewCheckInput) (domain.InventoryCheck, error) {
	var out domain.InventoryCheck
	r, err := jsonRequest(http.MethodPatch, pathID("/inventory-checks", id), "/inventory-checks/{id}", in)
	if err != nil {
		return out, err
	}
	return out, c.do(ctx, r, &out)
}

func (c *Client) DeleteCheck(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pathID("/inventory-checks", id),
		route: "/inventory-checks/{id}"}, nil)
}

func (c *Client) BalanceCheck(ctx context.Context, id string) (domain.InventoryCheck, error) {
	var out domain.InventoryCheck
	r := request{method: http.MethodPost, path: pathID("/inventory-checks", id) + "/balance",
		route: "/inventory-checks/{id}/balance"}
	return out, c.do(ctx, r, &out)
}
