package models

import "github.com/shopspring/decimal"

// MenuItem is the catalog view the engine needs: the current price (snapshotted
// onto order items at creation time) and availability.
type MenuItem struct {
	MenuItemID  int64           `json:"menu_item_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
}

// RecipeLine maps a menu item to one ingredient and the quantity consumed per
// unit sold. A menu item with zero recipe lines is valid (non-food items).
type RecipeLine struct {
	IngredientID int64           `json:"ingredient_id"`
	QtyPerUnit   decimal.Decimal `json:"qty_per_unit"`
}
