package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"pos-backoffice/internal/catalog/app/core"
	"pos-backoffice/internal/catalog/domain/models"
)

// LookupService resolves menu items and recipes for the transactional core.
// It is strictly read-only. When a cache is configured, lookups go through it
// best-effort: cache errors fall back to the database and are only logged.
type LookupService struct {
	catalogRepo core.ICatalogRepo
	cache       core.ICache
	cacheTTL    time.Duration
	log         zerolog.Logger
}

func NewLookupService(catalogRepo core.ICatalogRepo, cache core.ICache, cacheTTL time.Duration, log zerolog.Logger) *LookupService {
	return &LookupService{
		catalogRepo: catalogRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		log:         log,
	}
}

func (s *LookupService) MenuItem(ctx context.Context, tx pgx.Tx, menuItemID int64) (models.MenuItem, error) {
	key := fmt.Sprintf("catalog:menu:%d", menuItemID)

	var item models.MenuItem
	if s.cacheGet(ctx, key, &item) {
		return item, nil
	}

	item, err := s.catalogRepo.MenuItem(ctx, tx, menuItemID)
	if err != nil {
		return models.MenuItem{}, err
	}
	s.cacheSet(ctx, key, item)
	return item, nil
}

func (s *LookupService) Recipe(ctx context.Context, tx pgx.Tx, menuItemID int64) ([]models.RecipeLine, error) {
	key := fmt.Sprintf("catalog:recipe:%d", menuItemID)

	var lines []models.RecipeLine
	if s.cacheGet(ctx, key, &lines) {
		return lines, nil
	}

	lines, err := s.catalogRepo.Recipe(ctx, tx, menuItemID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, lines)
	return lines, nil
}

func (s *LookupService) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Str("action", "cache_get_failed").Str("key", key).Err(err).Msg("catalog cache read failed")
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.log.Warn().Str("action", "cache_decode_failed").Str("key", key).Err(err).Msg("catalog cache entry malformed")
		return false
	}
	return true
}

func (s *LookupService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
		s.log.Warn().Str("action", "cache_set_failed").Str("key", key).Err(err).Msg("catalog cache write failed")
	}
}
