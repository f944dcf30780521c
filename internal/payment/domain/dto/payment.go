package dto

import "github.com/shopspring/decimal"

type SettleRequest struct {
	OrderID       int64  `json:"order_id"`
	PointsUsed    int    `json:"points_used"`
	PaymentMethod string `json:"payment_method"`
	PaymentRef    string `json:"payment_ref,omitempty"`
	// PaidPrice, when supplied, must match the server-side computation within
	// 0.01 or the settlement is rejected.
	PaidPrice *decimal.Decimal `json:"paid_price,omitempty"`
}
