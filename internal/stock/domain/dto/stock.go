package dto

import (
	"github.com/shopspring/decimal"
)

// MovementRequest is a direct ledger entry (RESTOCK / WASTE / ADJUST). SALE
// movements are written only by the consume path.
type MovementRequest struct {
	StockID    int64           `json:"stock_id"`
	Reason     string          `json:"reason"`
	QtyChange  decimal.Decimal `json:"qty_change"`
	EmployeeID *int64          `json:"employee_id,omitempty"`
	OrderID    *int64          `json:"order_id,omitempty"`
	Note       string          `json:"note,omitempty"`
}

// ConsumeLine is one ingredient requirement of a consumption, already
// multiplied by the order item quantity.
type ConsumeLine struct {
	IngredientID int64
	Qty          decimal.Decimal
}

// ConsumeRef ties the SALE movements of a consumption back to the order item
// that triggered them.
type ConsumeRef struct {
	OrderID      int64
	OrderItemID  int64
	EmployeeID   int64
	MenuItemName string
	Quantity     int
}

// StockDetail is a stock row joined with its ingredient, for list views.
type StockDetail struct {
	StockID         int64           `json:"stock_id"`
	BranchID        int64           `json:"branch_id"`
	IngredientID    int64           `json:"ingredient_id"`
	IngredientName  string          `json:"ingredient_name"`
	AmountRemaining decimal.Decimal `json:"amount_remaining"`
}
