package services

import "github.com/shopspring/decimal"

const (
	// MaxPointsPerOrder caps redemption on a single settlement.
	MaxPointsPerOrder = 2000
	// PointsPerBaht is the redemption rate: 100 points = 1 baht.
	PointsPerBaht = 100
	// BahtPerPointEarned is the accrual rate: 1 point per 10 baht paid.
	BahtPerPointEarned = 10
)

// Quote is the result of the settlement computation, before anything is
// persisted.
type Quote struct {
	Total          decimal.Decimal
	PointsUsed     int
	BahtFromPoints decimal.Decimal
	Subtotal       decimal.Decimal
	PaidPrice      decimal.Decimal
	PointsEarned   int
}

// ComputeQuote runs the settlement math in fixed-point decimals. An
// over-request of points is clamped to the maximum usable, never rejected, to
// tolerate stale client state.
func ComputeQuote(total decimal.Decimal, pointsRequested, pointsBalance int, discountPct decimal.Decimal) Quote {
	// Points may never exceed what the order could absorb.
	absorbable := int(total.Mul(decimal.NewFromInt(PointsPerBaht)).Floor().IntPart())

	maxUsable := MaxPointsPerOrder
	if pointsBalance < maxUsable {
		maxUsable = pointsBalance
	}
	if absorbable < maxUsable {
		maxUsable = absorbable
	}
	if maxUsable < 0 {
		maxUsable = 0
	}

	pointsUsed := pointsRequested
	if pointsUsed > maxUsable {
		pointsUsed = maxUsable
	}

	bahtFromPoints := decimal.NewFromInt(int64(pointsUsed)).Div(decimal.NewFromInt(PointsPerBaht))
	subtotal := total.Sub(bahtFromPoints)
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}

	multiplier := decimal.NewFromInt(1).Sub(discountPct.Div(decimal.NewFromInt(100)))
	if multiplier.IsNegative() {
		multiplier = decimal.Zero
	}
	paidPrice := subtotal.Mul(multiplier).Round(2)

	pointsEarned := int(paidPrice.Div(decimal.NewFromInt(BahtPerPointEarned)).Floor().IntPart())

	return Quote{
		Total:          total,
		PointsUsed:     pointsUsed,
		BahtFromPoints: bahtFromPoints,
		Subtotal:       subtotal,
		PaidPrice:      paidPrice,
		PointsEarned:   pointsEarned,
	}
}
