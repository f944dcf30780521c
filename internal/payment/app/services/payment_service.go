package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	ordermodels "pos-backoffice/internal/order/domain/models"
	"pos-backoffice/internal/payment/app/core"
	"pos-backoffice/internal/payment/domain/dto"
	"pos-backoffice/internal/payment/domain/models"
	"pos-backoffice/internal/xpkg/apperr"
	"pos-backoffice/internal/xpkg/db"
)

// paidPriceTolerance is the maximum accepted difference between a
// client-supplied paid_price and the server-side computation.
var paidPriceTolerance = decimal.RequireFromString("0.01")

// SettlementService computes and records payments, including points redemption
// and loyalty accrual. One settlement per order, ever.
type SettlementService struct {
	paymentRepo    core.IPaymentRepo
	membershipRepo core.IMembershipRepo
	orders         core.IOrderStore
	txr            db.TxRunner
	log            zerolog.Logger
}

func NewSettlementService(
	paymentRepo core.IPaymentRepo,
	membershipRepo core.IMembershipRepo,
	orders core.IOrderStore,
	txr db.TxRunner,
	log zerolog.Logger,
) *SettlementService {
	return &SettlementService{
		paymentRepo:    paymentRepo,
		membershipRepo: membershipRepo,
		orders:         orders,
		txr:            txr,
		log:            log,
	}
}

// Settle validates order readiness, computes the amount due, persists the
// payment, flips the order to PAID, and mutates membership points and tier.
// Everything happens in one transaction; any failure rolls it all back.
func (s *SettlementService) Settle(ctx context.Context, req dto.SettleRequest) (models.Payment, error) {
	method := models.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return models.Payment{}, apperr.Validation("unknown payment method %q", req.PaymentMethod)
	}
	if method.RequiresRef() && strings.TrimSpace(req.PaymentRef) == "" {
		return models.Payment{}, apperr.Validation("payment_ref is required for method %s", method)
	}
	if req.PointsUsed < 0 {
		return models.Payment{}, apperr.Validation("points_used must not be negative")
	}

	var payment models.Payment
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		order, err := s.orders.LockOrder(ctx, tx, req.OrderID)
		if err != nil {
			return err
		}

		exists, err := s.paymentRepo.ExistsForOrder(ctx, tx, req.OrderID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("payment already exists for order %d", req.OrderID)
		}
		if order.Status != ordermodels.OrderUnpaid {
			return apperr.InvalidTransition("order %d is %s and cannot be paid", req.OrderID, order.Status)
		}

		if err := checkItemReadiness(ctx, tx, s.orders, req.OrderID); err != nil {
			return err
		}

		if req.PointsUsed > 0 && order.MembershipID == nil {
			return apperr.Validation("order %d has no membership, points cannot be redeemed", req.OrderID)
		}

		var membership models.Membership
		var tier models.Tier
		pointsBalance := 0
		discount := decimal.Zero
		if order.MembershipID != nil {
			membership, err = s.membershipRepo.LockByID(ctx, tx, *order.MembershipID)
			if err != nil {
				return err
			}
			tier, err = s.membershipRepo.GetTier(ctx, tx, membership.TierID)
			if err != nil {
				return err
			}
			pointsBalance = membership.PointsBalance
			discount = tier.DiscountPercentage
		}

		quote := ComputeQuote(order.TotalPrice, req.PointsUsed, pointsBalance, discount)

		if req.PaidPrice != nil && req.PaidPrice.Sub(quote.PaidPrice).Abs().GreaterThan(paidPriceTolerance) {
			return apperr.Validation("paid_price mismatch: expected %s, got %s", quote.PaidPrice, req.PaidPrice)
		}

		payment, err = s.paymentRepo.Insert(ctx, tx, models.Payment{
			OrderID:       req.OrderID,
			PaidPrice:     quote.PaidPrice,
			PointsUsed:    quote.PointsUsed,
			PaymentMethod: method,
			PaymentRef:    strings.TrimSpace(req.PaymentRef),
		})
		if err != nil {
			return err
		}

		if err := s.orders.UpdateOrderStatus(ctx, tx, req.OrderID, ordermodels.OrderPaid); err != nil {
			return err
		}

		if order.MembershipID != nil {
			if err := s.applyLoyalty(ctx, tx, membership, tier, quote); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Payment{}, err
	}

	s.log.Info().
		Str("action", "payment_created").
		Int64("order_id", payment.OrderID).
		Str("paid_price", payment.PaidPrice.String()).
		Int("points_used", payment.PointsUsed).
		Str("method", string(payment.PaymentMethod)).
		Msg("order settled")
	return payment, nil
}

// checkItemReadiness enforces that every item is DONE or CANCELLED and at
// least one is DONE, reporting every offending item.
func checkItemReadiness(ctx context.Context, tx pgx.Tx, orders core.IOrderStore, orderID int64) error {
	items, err := orders.ListItems(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return apperr.Validation("order %d has no items", orderID)
	}

	var pending []string
	doneCount := 0
	for _, item := range items {
		switch item.Status {
		case ordermodels.ItemDone:
			doneCount++
		case ordermodels.ItemCancelled:
			// settled as nothing to charge
		default:
			pending = append(pending, fmt.Sprintf("item %d is %s", item.OrderItemID, item.Status))
		}
	}
	if len(pending) > 0 {
		return apperr.InvalidTransition("order %d is not ready for payment: %s", orderID, strings.Join(pending, ", "))
	}
	if doneCount == 0 {
		return apperr.InvalidTransition("order %d has no completed items to pay for", orderID)
	}
	return nil
}

// applyLoyalty deducts redeemed points, accrues earned points, and upgrades
// the tier when the cumulative total qualifies for a higher rank. Downgrades
// never happen automatically.
func (s *SettlementService) applyLoyalty(ctx context.Context, tx pgx.Tx, membership models.Membership, tier models.Tier, quote Quote) error {
	balance := membership.PointsBalance - quote.PointsUsed
	if balance < 0 {
		balance = 0
	}
	balance += quote.PointsEarned
	cumulative := membership.CumulativePoints + quote.PointsEarned

	if err := s.membershipRepo.UpdatePoints(ctx, tx, membership.MembershipID, balance, cumulative); err != nil {
		return err
	}

	best, ok, err := s.membershipRepo.HighestQualifyingTier(ctx, tx, cumulative)
	if err != nil {
		return err
	}
	if ok && best.Rank > tier.Rank {
		if err := s.membershipRepo.UpdateTier(ctx, tx, membership.MembershipID, best.TierID); err != nil {
			return err
		}
		s.log.Info().
			Str("action", "tier_upgraded").
			Int64("membership_id", membership.MembershipID).
			Str("tier", best.TierName).
			Msg("membership tier upgraded")
	}
	return nil
}

func (s *SettlementService) Get(ctx context.Context, orderID int64) (models.Payment, error) {
	var payment models.Payment
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		payment, err = s.paymentRepo.GetByOrderID(ctx, tx, orderID)
		return err
	})
	return payment, err
}

func (s *SettlementService) List(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		payments, err = s.paymentRepo.List(ctx, tx)
		return err
	})
	return payments, err
}
