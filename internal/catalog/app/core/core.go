package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"pos-backoffice/internal/catalog/domain/models"
)

type ICatalogRepo interface {
	MenuItem(ctx context.Context, tx pgx.Tx, menuItemID int64) (models.MenuItem, error)
	Recipe(ctx context.Context, tx pgx.Tx, menuItemID int64) ([]models.RecipeLine, error)
}

// ICache is a best-effort string cache. Get returns "" on a miss.
type ICache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
