package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pos-backoffice/internal/stock/app/core"
	"pos-backoffice/internal/stock/domain/dto"
	"pos-backoffice/internal/stock/domain/models"
	"pos-backoffice/internal/xpkg/apperr"
	"pos-backoffice/internal/xpkg/db"
)

// LedgerService owns every mutation of stock quantities. Order fulfilment
// consumes through it, and the direct movement entry points go through it, so
// the movement log stays a complete history of each stock row.
type LedgerService struct {
	stockRepo core.IStockRepo
	txr       db.TxRunner
	log       zerolog.Logger
}

func NewLedgerService(stockRepo core.IStockRepo, txr db.TxRunner, log zerolog.Logger) *LedgerService {
	return &LedgerService{
		stockRepo: stockRepo,
		txr:       txr,
		log:       log,
	}
}

// Consume runs the two-phase check-then-commit for one order item inside the
// caller's transaction. Phase one locks every affected stock row and collects
// all shortfalls without mutating anything; phase two decrements amounts and
// appends SALE movements. A non-nil error leaves the transaction to be rolled
// back by the caller.
func (s *LedgerService) Consume(ctx context.Context, tx pgx.Tx, branchID int64, lines []dto.ConsumeLine, ref dto.ConsumeRef) error {
	merged, ids := mergeLines(lines)
	if len(ids) == 0 {
		return nil
	}

	stocks, err := s.stockRepo.LockForBranch(ctx, tx, branchID, ids)
	if err != nil {
		return fmt.Errorf("failed to lock stock rows: %w", err)
	}
	infos, err := s.stockRepo.Ingredients(ctx, tx, ids)
	if err != nil {
		return fmt.Errorf("failed to load ingredients: %w", err)
	}

	var shortfalls []apperr.Shortfall
	for _, id := range ids {
		needed := merged[id]

		info, ok := infos[id]
		if !ok {
			return apperr.NotFound("ingredient %d not found", id)
		}

		st, hasStock := stocks[id]
		available := decimal.Zero
		if hasStock && !st.IsDeleted && !info.IsDeleted {
			available = st.AmountRemaining
		}

		if !hasStock || st.IsDeleted || info.IsDeleted || available.LessThan(needed) {
			shortfalls = append(shortfalls, apperr.Shortfall{
				IngredientID:   id,
				IngredientName: info.Name,
				Available:      available,
				Needed:         needed,
			})
		}
	}
	if len(shortfalls) > 0 {
		return apperr.InsufficientStock(shortfalls)
	}

	note := fmt.Sprintf("order item %d: %s x%d", ref.OrderItemID, ref.MenuItemName, ref.Quantity)
	for _, id := range ids {
		st := stocks[id]
		needed := merged[id]

		if err := s.stockRepo.UpdateAmount(ctx, tx, st.StockID, st.AmountRemaining.Sub(needed)); err != nil {
			return fmt.Errorf("failed to decrement stock %d: %w", st.StockID, err)
		}
		_, err := s.stockRepo.InsertMovement(ctx, tx, models.StockMovement{
			StockID:    st.StockID,
			EmployeeID: &ref.EmployeeID,
			OrderID:    &ref.OrderID,
			QtyChange:  needed.Neg(),
			Reason:     models.ReasonSale,
			Note:       note,
		})
		if err != nil {
			return fmt.Errorf("failed to append SALE movement for stock %d: %w", st.StockID, err)
		}
	}

	s.log.Info().
		Str("action", "consume_committed").
		Int64("order_id", ref.OrderID).
		Int64("order_item_id", ref.OrderItemID).
		Int("ingredients", len(ids)).
		Msg("stock consumed for order item")
	return nil
}

// ApplyMovement records a direct RESTOCK / WASTE / ADJUST ledger entry.
func (s *LedgerService) ApplyMovement(ctx context.Context, req dto.MovementRequest) (models.StockMovement, error) {
	reason := models.MovementReason(req.Reason)
	if !reason.Valid() {
		return models.StockMovement{}, apperr.Validation("unknown movement reason %q", req.Reason)
	}
	switch {
	case reason == models.ReasonSale:
		return models.StockMovement{}, apperr.Validation("reason SALE is reserved for order consumption")
	case req.QtyChange.IsZero():
		return models.StockMovement{}, apperr.Validation("qty_change must be non-zero")
	case reason == models.ReasonRestock && req.QtyChange.IsNegative():
		return models.StockMovement{}, apperr.Validation("RESTOCK requires a positive qty_change")
	case reason == models.ReasonWaste && req.QtyChange.IsPositive():
		return models.StockMovement{}, apperr.Validation("WASTE requires a negative qty_change")
	}

	var movement models.StockMovement
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		st, err := s.stockRepo.LockByID(ctx, tx, req.StockID)
		if err != nil {
			return err
		}
		if st.IsDeleted {
			return apperr.Validation("stock %d is deleted", st.StockID)
		}

		newAmount := st.AmountRemaining.Add(req.QtyChange)
		if newAmount.IsNegative() {
			return apperr.Validation(
				"movement would drive amount_remaining below zero: have %s, change %s",
				st.AmountRemaining, req.QtyChange,
			)
		}

		if err := s.stockRepo.UpdateAmount(ctx, tx, st.StockID, newAmount); err != nil {
			return fmt.Errorf("failed to update stock %d: %w", st.StockID, err)
		}
		movement, err = s.stockRepo.InsertMovement(ctx, tx, models.StockMovement{
			StockID:    st.StockID,
			EmployeeID: req.EmployeeID,
			OrderID:    req.OrderID,
			QtyChange:  req.QtyChange,
			Reason:     reason,
			Note:       req.Note,
		})
		if err != nil {
			return fmt.Errorf("failed to append movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.StockMovement{}, err
	}

	s.log.Info().
		Str("action", "movement_applied").
		Int64("stock_id", req.StockID).
		Str("reason", string(movement.Reason)).
		Str("qty_change", movement.QtyChange.String()).
		Msg("stock movement recorded")
	return movement, nil
}

func (s *LedgerService) Get(ctx context.Context, stockID int64) (models.Stock, error) {
	var st models.Stock
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		st, err = s.stockRepo.GetByID(ctx, tx, stockID)
		return err
	})
	return st, err
}

func (s *LedgerService) List(ctx context.Context, branchID *int64) ([]dto.StockDetail, error) {
	var items []dto.StockDetail
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		items, err = s.stockRepo.List(ctx, tx, branchID)
		return err
	})
	return items, err
}

// Movements returns the append-only ledger for one stock row, newest first.
func (s *LedgerService) Movements(ctx context.Context, stockID int64) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.stockRepo.GetByID(ctx, tx, stockID); err != nil {
			return err
		}
		var err error
		movements, err = s.stockRepo.ListMovements(ctx, tx, stockID)
		return err
	})
	return movements, err
}

func (s *LedgerService) OutOfStock(ctx context.Context) ([]dto.StockDetail, error) {
	var items []dto.StockDetail
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		items, err = s.stockRepo.ListOutOfStock(ctx, tx)
		return err
	})
	return items, err
}

func (s *LedgerService) OutOfStockCount(ctx context.Context) (int, error) {
	var count int
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		count, err = s.stockRepo.CountOutOfStock(ctx, tx)
		return err
	})
	return count, err
}

// mergeLines sums duplicate ingredient requirements and returns the ids in
// first-seen order.
func mergeLines(lines []dto.ConsumeLine) (map[int64]decimal.Decimal, []int64) {
	merged := make(map[int64]decimal.Decimal, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, ok := merged[line.IngredientID]; !ok {
			ids = append(ids, line.IngredientID)
		}
		merged[line.IngredientID] = merged[line.IngredientID].Add(line.Qty)
	}
	return merged, ids
}
