package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementReason is the closed set of reasons a stock quantity may change.
type MovementReason string

const (
	ReasonRestock MovementReason = "RESTOCK"
	ReasonSale    MovementReason = "SALE"
	ReasonWaste   MovementReason = "WASTE"
	ReasonAdjust  MovementReason = "ADJUST"
)

func (r MovementReason) Valid() bool {
	switch r {
	case ReasonRestock, ReasonSale, ReasonWaste, ReasonAdjust:
		return true
	}
	return false
}

// Stock is the current quantity of one ingredient at one branch. Unique per
// (branch, ingredient); mutated only through ledger operations.
type Stock struct {
	StockID         int64           `json:"stock_id"`
	BranchID        int64           `json:"branch_id"`
	IngredientID    int64           `json:"ingredient_id"`
	AmountRemaining decimal.Decimal `json:"amount_remaining"`
	IsDeleted       bool            `json:"is_deleted"`
}

// OutOfStock reports whether the row counts as out of stock. Deleted rows are
// excluded by convention.
func (s Stock) OutOfStock() bool {
	return !s.IsDeleted && s.AmountRemaining.IsZero()
}

// StockMovement is one immutable ledger row. The sum of qty_change over all
// movements for a stock row equals its current amount minus its initial value.
type StockMovement struct {
	MovementID int64           `json:"movement_id"`
	StockID    int64           `json:"stock_id"`
	EmployeeID *int64          `json:"employee_id,omitempty"`
	OrderID    *int64          `json:"order_id,omitempty"`
	QtyChange  decimal.Decimal `json:"qty_change"`
	Reason     MovementReason  `json:"reason"`
	CreatedAt  time.Time       `json:"created_at"`
	Note       string          `json:"note,omitempty"`
}
