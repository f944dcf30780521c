package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodCash   PaymentMethod = "CASH"
	MethodCard   PaymentMethod = "CARD"
	MethodQR     PaymentMethod = "QR"
	MethodPoints PaymentMethod = "POINTS"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodQR, MethodPoints:
		return true
	}
	return false
}

// RequiresRef reports whether the method needs an external payment reference.
func (m PaymentMethod) RequiresRef() bool {
	return m == MethodCard || m == MethodQR
}

// Payment is 1:1 with an order and immutable once created.
type Payment struct {
	OrderID       int64           `json:"order_id"`
	PaidPrice     decimal.Decimal `json:"paid_price"`
	PointsUsed    int             `json:"points_used"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
	PaidTimestamp time.Time       `json:"paid_timestamp"`
}

type Membership struct {
	MembershipID     int64 `json:"membership_id"`
	PointsBalance    int   `json:"points_balance"`
	CumulativePoints int   `json:"cumulative_points"`
	TierID           int64 `json:"tier_id"`
}

type Tier struct {
	TierID               int64           `json:"tier_id"`
	TierName             string          `json:"tier_name"`
	Rank                 int             `json:"rank"`
	DiscountPercentage   decimal.Decimal `json:"discount_percentage"`
	MinimumPointRequired int             `json:"minimum_point_required"`
}
