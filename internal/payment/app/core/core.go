package core

import (
	"context"

	"github.com/jackc/pgx/v5"

	ordermodels "pos-backoffice/internal/order/domain/models"
	"pos-backoffice/internal/payment/domain/models"
)

type IPaymentRepo interface {
	ExistsForOrder(ctx context.Context, tx pgx.Tx, orderID int64) (bool, error)
	Insert(ctx context.Context, tx pgx.Tx, p models.Payment) (models.Payment, error)
	GetByOrderID(ctx context.Context, tx pgx.Tx, orderID int64) (models.Payment, error)
	List(ctx context.Context, tx pgx.Tx) ([]models.Payment, error)
}

type IMembershipRepo interface {
	// LockByID locks the membership row so concurrent settlements cannot lose
	// point updates.
	LockByID(ctx context.Context, tx pgx.Tx, membershipID int64) (models.Membership, error)
	UpdatePoints(ctx context.Context, tx pgx.Tx, membershipID int64, balance, cumulative int) error
	GetTier(ctx context.Context, tx pgx.Tx, tierID int64) (models.Tier, error)
	// HighestQualifyingTier returns the highest-rank tier whose minimum point
	// requirement is within cumulativePoints, or ok=false when none qualifies.
	HighestQualifyingTier(ctx context.Context, tx pgx.Tx, cumulativePoints int) (models.Tier, bool, error)
	UpdateTier(ctx context.Context, tx pgx.Tx, membershipID, tierID int64) error
}

// IOrderStore is the slice of the order component the settlement engine needs.
type IOrderStore interface {
	LockOrder(ctx context.Context, tx pgx.Tx, orderID int64) (ordermodels.Order, error)
	ListItems(ctx context.Context, tx pgx.Tx, orderID int64) ([]ordermodels.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, tx pgx.Tx, orderID int64, status ordermodels.OrderStatus) error
}
