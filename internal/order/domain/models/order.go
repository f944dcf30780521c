package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderUnpaid    OrderStatus = "UNPAID"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderUnpaid, OrderPaid, OrderCancelled:
		return true
	}
	return false
}

type OrderType string

const (
	TypeDineIn   OrderType = "DINE_IN"
	TypeTakeaway OrderType = "TAKEAWAY"
	TypeDelivery OrderType = "DELIVERY"
)

func (t OrderType) Valid() bool {
	switch t {
	case TypeDineIn, TypeTakeaway, TypeDelivery:
		return true
	}
	return false
}

// ItemStatus is the order-item lifecycle:
//
//	ORDERED -> PREPARING -> DONE
//	ORDERED -> CANCELLED
//
// DONE and CANCELLED are terminal. PREPARING can never be cancelled because
// its ingredients are already consumed.
type ItemStatus string

const (
	ItemOrdered   ItemStatus = "ORDERED"
	ItemPreparing ItemStatus = "PREPARING"
	ItemDone      ItemStatus = "DONE"
	ItemCancelled ItemStatus = "CANCELLED"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemOrdered, ItemPreparing, ItemDone, ItemCancelled:
		return true
	}
	return false
}

func (s ItemStatus) Terminal() bool {
	return s == ItemDone || s == ItemCancelled
}

// CanTransitionTo implements the transition table exhaustively.
func (s ItemStatus) CanTransitionTo(to ItemStatus) bool {
	switch s {
	case ItemOrdered:
		return to == ItemPreparing || to == ItemCancelled
	case ItemPreparing:
		return to == ItemDone
	default:
		return false
	}
}

type Order struct {
	OrderID      int64           `json:"order_id"`
	BranchID     int64           `json:"branch_id"`
	MembershipID *int64          `json:"membership_id,omitempty"`
	EmployeeID   int64           `json:"employee_id"`
	CreatedAt    time.Time       `json:"created_at"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	Status       OrderStatus     `json:"status"`
	OrderType    OrderType       `json:"order_type"`
	Items        []OrderItem     `json:"order_items,omitempty"`
}

type OrderItem struct {
	OrderItemID int64           `json:"order_item_id"`
	OrderID     int64           `json:"order_id"`
	MenuItemID  int64           `json:"menu_item_id"`
	Status      ItemStatus      `json:"status"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// TotalOf is the order-total invariant: the sum of line totals over items that
// are not cancelled.
func TotalOf(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Status != ItemCancelled {
			total = total.Add(item.LineTotal)
		}
	}
	return total
}
