package main

import (
	"context"
	"os/signal"
	"syscall"

	api "pos-backoffice/internal/api/http"
	catalogcache "pos-backoffice/internal/catalog/adapter/cache"
	catalogdb "pos-backoffice/internal/catalog/adapter/db"
	catalogcore "pos-backoffice/internal/catalog/app/core"
	catalogservices "pos-backoffice/internal/catalog/app/services"
	orderdb "pos-backoffice/internal/order/adapter/db"
	orderservices "pos-backoffice/internal/order/app/services"
	paymentdb "pos-backoffice/internal/payment/adapter/db"
	paymentservices "pos-backoffice/internal/payment/app/services"
	stockdb "pos-backoffice/internal/stock/adapter/db"
	stockservices "pos-backoffice/internal/stock/app/services"
	"pos-backoffice/internal/xpkg/config"
	"pos-backoffice/internal/xpkg/db"
	"pos-backoffice/internal/xpkg/logger"
)

func main() {
	log := logger.New("pos-backoffice")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Str("action", "config_load_failed").Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Start(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Str("action", "db_connection_failed").Err(err).Msg("failed to connect to database")
	}
	defer database.Stop()
	log.Info().Str("action", "db_connected").Msg("database connection established")

	var cache catalogcore.ICache
	if cfg.Redis.Addr != "" {
		redisCache := catalogcache.NewRedisCache(cfg.Redis.Addr)
		defer redisCache.Close()
		cache = redisCache
		log.Info().Str("action", "cache_enabled").Str("addr", cfg.Redis.Addr).Msg("catalog cache enabled")
	}

	catalog := catalogservices.NewLookupService(catalogdb.NewCatalogRepo(), cache, cfg.Catalog.CacheTTL, log)
	ledger := stockservices.NewLedgerService(stockdb.NewStockRepo(), database, log)
	orderRepo := orderdb.NewOrderRepo()
	orders := orderservices.NewOrderService(orderRepo, catalog, ledger, database, log)
	settle := paymentservices.NewSettlementService(
		paymentdb.NewPaymentRepo(),
		paymentdb.NewMembershipRepo(),
		orderRepo,
		database,
		log,
	)

	server := api.NewServer(cfg.HTTP, orders, ledger, settle, log)

	go func() {
		<-ctx.Done()
		if err := server.Stop(context.Background()); err != nil {
			log.Error().Str("action", "shutdown_failed").Err(err).Msg("failed to stop server")
		}
	}()

	if err := server.Run(ctx); err != nil {
		log.Fatal().Str("action", "server_failed").Err(err).Msg("server stopped with error")
	}
}
