package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"pos-backoffice/internal/stock/app/core"
	"pos-backoffice/internal/stock/domain/dto"
	"pos-backoffice/internal/stock/domain/models"
	"pos-backoffice/internal/xpkg/apperr"
)

type StockRepo struct{}

func NewStockRepo() *StockRepo {
	return &StockRepo{}
}

func (r *StockRepo) LockByID(ctx context.Context, tx pgx.Tx, stockID int64) (models.Stock, error) {
	q := `
		SELECT stock_id, branch_id, ingredient_id, amount_remaining, is_deleted
		FROM stock
		WHERE stock_id = $1
		FOR UPDATE`

	var st models.Stock
	err := tx.QueryRow(ctx, q, stockID).Scan(
		&st.StockID, &st.BranchID, &st.IngredientID, &st.AmountRemaining, &st.IsDeleted,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Stock{}, apperr.NotFound("stock %d not found", stockID)
	}
	if err != nil {
		return models.Stock{}, fmt.Errorf("failed to lock stock row: %w", err)
	}
	return st, nil
}

func (r *StockRepo) LockForBranch(ctx context.Context, tx pgx.Tx, branchID int64, ingredientIDs []int64) (map[int64]models.Stock, error) {
	q := `
		SELECT stock_id, branch_id, ingredient_id, amount_remaining, is_deleted
		FROM stock
		WHERE branch_id = $1 AND ingredient_id = ANY($2)
		ORDER BY stock_id
		FOR UPDATE`

	rows, err := tx.Query(ctx, q, branchID, ingredientIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock rows: %w", err)
	}
	defer rows.Close()

	stocks := make(map[int64]models.Stock, len(ingredientIDs))
	for rows.Next() {
		var st models.Stock
		if err := rows.Scan(&st.StockID, &st.BranchID, &st.IngredientID, &st.AmountRemaining, &st.IsDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}
		stocks[st.IngredientID] = st
	}
	return stocks, rows.Err()
}

func (r *StockRepo) Ingredients(ctx context.Context, tx pgx.Tx, ingredientIDs []int64) (map[int64]core.IngredientInfo, error) {
	q := `
		SELECT ingredient_id, name, is_deleted
		FROM ingredients
		WHERE ingredient_id = ANY($1)`

	rows, err := tx.Query(ctx, q, ingredientIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	infos := make(map[int64]core.IngredientInfo, len(ingredientIDs))
	for rows.Next() {
		var info core.IngredientInfo
		if err := rows.Scan(&info.IngredientID, &info.Name, &info.IsDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		infos[info.IngredientID] = info
	}
	return infos, rows.Err()
}

func (r *StockRepo) UpdateAmount(ctx context.Context, tx pgx.Tx, stockID int64, amount decimal.Decimal) error {
	tag, err := tx.Exec(ctx, `UPDATE stock SET amount_remaining = $2 WHERE stock_id = $1`, stockID, amount)
	if err != nil {
		return fmt.Errorf("failed to update stock amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("stock %d not found", stockID)
	}
	return nil
}

func (r *StockRepo) InsertMovement(ctx context.Context, tx pgx.Tx, m models.StockMovement) (models.StockMovement, error) {
	q := `
		INSERT INTO stock_movements (stock_id, employee_id, order_id, qty_change, reason, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING movement_id, created_at`

	err := tx.QueryRow(ctx, q,
		m.StockID, m.EmployeeID, m.OrderID, m.QtyChange, string(m.Reason), m.Note,
	).Scan(&m.MovementID, &m.CreatedAt)
	if err != nil {
		return models.StockMovement{}, fmt.Errorf("failed to insert stock movement: %w", err)
	}
	return m, nil
}

func (r *StockRepo) GetByID(ctx context.Context, tx pgx.Tx, stockID int64) (models.Stock, error) {
	q := `
		SELECT stock_id, branch_id, ingredient_id, amount_remaining, is_deleted
		FROM stock
		WHERE stock_id = $1`

	var st models.Stock
	err := tx.QueryRow(ctx, q, stockID).Scan(
		&st.StockID, &st.BranchID, &st.IngredientID, &st.AmountRemaining, &st.IsDeleted,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Stock{}, apperr.NotFound("stock %d not found", stockID)
	}
	if err != nil {
		return models.Stock{}, fmt.Errorf("failed to query stock: %w", err)
	}
	return st, nil
}

func (r *StockRepo) List(ctx context.Context, tx pgx.Tx, branchID *int64) ([]dto.StockDetail, error) {
	q := `
		SELECT s.stock_id, s.branch_id, s.ingredient_id, i.name, s.amount_remaining
		FROM stock s
		JOIN ingredients i ON i.ingredient_id = s.ingredient_id
		WHERE s.is_deleted = FALSE AND ($1::BIGINT IS NULL OR s.branch_id = $1)
		ORDER BY s.stock_id`

	rows, err := tx.Query(ctx, q, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	defer rows.Close()

	return scanStockDetails(rows)
}

func (r *StockRepo) ListMovements(ctx context.Context, tx pgx.Tx, stockID int64) ([]models.StockMovement, error) {
	q := `
		SELECT movement_id, stock_id, employee_id, order_id, qty_change, reason, created_at, COALESCE(note, '')
		FROM stock_movements
		WHERE stock_id = $1
		ORDER BY movement_id DESC`

	rows, err := tx.Query(ctx, q, stockID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	defer rows.Close()

	movements := []models.StockMovement{}
	for rows.Next() {
		var m models.StockMovement
		var reason string
		if err := rows.Scan(&m.MovementID, &m.StockID, &m.EmployeeID, &m.OrderID, &m.QtyChange, &reason, &m.CreatedAt, &m.Note); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		m.Reason = models.MovementReason(reason)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *StockRepo) ListOutOfStock(ctx context.Context, tx pgx.Tx) ([]dto.StockDetail, error) {
	q := `
		SELECT s.stock_id, s.branch_id, s.ingredient_id, i.name, s.amount_remaining
		FROM stock s
		JOIN ingredients i ON i.ingredient_id = s.ingredient_id
		WHERE s.amount_remaining = 0 AND s.is_deleted = FALSE
		ORDER BY s.stock_id`

	rows, err := tx.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list out-of-stock rows: %w", err)
	}
	defer rows.Close()

	return scanStockDetails(rows)
}

func (r *StockRepo) CountOutOfStock(ctx context.Context, tx pgx.Tx) (int, error) {
	var count int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM stock WHERE amount_remaining = 0 AND is_deleted = FALSE`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count out-of-stock rows: %w", err)
	}
	return count, nil
}

func scanStockDetails(rows pgx.Rows) ([]dto.StockDetail, error) {
	items := []dto.StockDetail{}
	for rows.Next() {
		var d dto.StockDetail
		if err := rows.Scan(&d.StockID, &d.BranchID, &d.IngredientID, &d.IngredientName, &d.AmountRemaining); err != nil {
			return nil, fmt.Errorf("failed to scan stock detail: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
