package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	catalogmodels "pos-backoffice/internal/catalog/domain/models"
	"pos-backoffice/internal/order/domain/models"
	stockdto "pos-backoffice/internal/stock/domain/dto"
)

type IOrderRepo interface {
	Insert(ctx context.Context, tx pgx.Tx, order models.Order) (models.Order, error)
	// LockOrder reads the order row FOR UPDATE so item mutations and total
	// recomputation are serialized per order.
	LockOrder(ctx context.Context, tx pgx.Tx, orderID int64) (models.Order, error)
	GetOrder(ctx context.Context, tx pgx.Tx, orderID int64) (models.Order, error)
	List(ctx context.Context, tx pgx.Tx) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, tx pgx.Tx, orderID int64, status models.OrderStatus) error
	UpdateTotal(ctx context.Context, tx pgx.Tx, orderID int64, total decimal.Decimal) error

	InsertItem(ctx context.Context, tx pgx.Tx, item models.OrderItem) (models.OrderItem, error)
	GetItem(ctx context.Context, tx pgx.Tx, orderItemID int64) (models.OrderItem, error)
	ListItems(ctx context.Context, tx pgx.Tx, orderID int64) ([]models.OrderItem, error)
	UpdateItemQuantity(ctx context.Context, tx pgx.Tx, orderItemID int64, quantity int, lineTotal decimal.Decimal) error
	UpdateItemStatus(ctx context.Context, tx pgx.Tx, orderItemID int64, status models.ItemStatus) error
	// CancelOrderedItems cancels every ORDERED item of an order in place.
	CancelOrderedItems(ctx context.Context, tx pgx.Tx, orderID int64) error
}

// ICatalog is the read-only catalog collaborator.
type ICatalog interface {
	MenuItem(ctx context.Context, tx pgx.Tx, menuItemID int64) (catalogmodels.MenuItem, error)
	Recipe(ctx context.Context, tx pgx.Tx, menuItemID int64) ([]catalogmodels.RecipeLine, error)
}

// IStockLedger consumes ingredients inside the caller's transaction.
type IStockLedger interface {
	Consume(ctx context.Context, tx pgx.Tx, branchID int64, lines []stockdto.ConsumeLine, ref stockdto.ConsumeRef) error
}
