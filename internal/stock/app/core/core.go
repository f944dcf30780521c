package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"pos-backoffice/internal/stock/domain/dto"
	"pos-backoffice/internal/stock/domain/models"
)

// IngredientInfo is the slice of the ingredients table the ledger needs to
// validate a consumption and name shortfalls.
type IngredientInfo struct {
	IngredientID int64
	Name         string
	IsDeleted    bool
}

type IStockRepo interface {
	// LockByID locks one stock row for update.
	LockByID(ctx context.Context, tx pgx.Tx, stockID int64) (models.Stock, error)
	// LockForBranch locks the stock rows for the given ingredients at one
	// branch, ordered by stock id so concurrent consumptions cannot deadlock.
	// Ingredients with no stock row at the branch are simply absent from the
	// result.
	LockForBranch(ctx context.Context, tx pgx.Tx, branchID int64, ingredientIDs []int64) (map[int64]models.Stock, error)
	Ingredients(ctx context.Context, tx pgx.Tx, ingredientIDs []int64) (map[int64]IngredientInfo, error)

	UpdateAmount(ctx context.Context, tx pgx.Tx, stockID int64, amount decimal.Decimal) error
	InsertMovement(ctx context.Context, tx pgx.Tx, m models.StockMovement) (models.StockMovement, error)

	GetByID(ctx context.Context, tx pgx.Tx, stockID int64) (models.Stock, error)
	List(ctx context.Context, tx pgx.Tx, branchID *int64) ([]dto.StockDetail, error)
	ListMovements(ctx context.Context, tx pgx.Tx, stockID int64) ([]models.StockMovement, error)
	ListOutOfStock(ctx context.Context, tx pgx.Tx) ([]dto.StockDetail, error)
	CountOutOfStock(ctx context.Context, tx pgx.Tx) (int, error)
}
