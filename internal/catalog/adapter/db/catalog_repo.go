package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pos-backoffice/internal/catalog/domain/models"
	"pos-backoffice/internal/xpkg/apperr"
)

type CatalogRepo struct{}

func NewCatalogRepo() *CatalogRepo {
	return &CatalogRepo{}
}

func (r *CatalogRepo) MenuItem(ctx context.Context, tx pgx.Tx, menuItemID int64) (models.MenuItem, error) {
	q := `
		SELECT menu_item_id, name, price, is_available
		FROM menu
		WHERE menu_item_id = $1`

	var item models.MenuItem
	err := tx.QueryRow(ctx, q, menuItemID).Scan(&item.MenuItemID, &item.Name, &item.Price, &item.IsAvailable)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.MenuItem{}, apperr.NotFound("menu item %d not found", menuItemID)
	}
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("failed to query menu item: %w", err)
	}
	return item, nil
}

func (r *CatalogRepo) Recipe(ctx context.Context, tx pgx.Tx, menuItemID int64) ([]models.RecipeLine, error) {
	q := `
		SELECT ingredient_id, qty_per_unit
		FROM recipe
		WHERE menu_item_id = $1
		ORDER BY id`

	rows, err := tx.Query(ctx, q, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe: %w", err)
	}
	defer rows.Close()

	lines := []models.RecipeLine{}
	for rows.Next() {
		var line models.RecipeLine
		if err := rows.Scan(&line.IngredientID, &line.QtyPerUnit); err != nil {
			return nil, fmt.Errorf("failed to scan recipe line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
