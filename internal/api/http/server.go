package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"pos-backoffice/internal/api/http/handle"
	orderservices "pos-backoffice/internal/order/app/services"
	paymentservices "pos-backoffice/internal/payment/app/services"
	stockservices "pos-backoffice/internal/stock/app/services"
	"pos-backoffice/internal/xpkg/config"
)

type Server struct {
	cfg    config.HTTP
	srv    *http.Server
	log    zerolog.Logger
	orders *orderservices.OrderService
	ledger *stockservices.LedgerService
	settle *paymentservices.SettlementService
}

func NewServer(
	cfg config.HTTP,
	orders *orderservices.OrderService,
	ledger *stockservices.LedgerService,
	settle *paymentservices.SettlementService,
	log zerolog.Logger,
) *Server {
	return &Server{
		cfg:    cfg,
		log:    log,
		orders: orders,
		ledger: ledger,
		settle: settle,
	}
}

// Run starts the HTTP server and blocks until it stops or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.router(),
	}

	s.log.Info().Str("action", "server_started").Int("port", s.cfg.Port).Msg("server is running")

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}

	s.log.Info().Str("action", "graceful_shutdown_started").Msg("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error().Str("action", "graceful_shutdown_failed").Err(err).Msg("failed to shut down HTTP server")
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.log.Info().Str("action", "graceful_shutdown_completed").Msg("HTTP server shut down gracefully")
	return nil
}

func (s *Server) router() http.Handler {
	orderHandler := handle.NewOrderHandler(s.orders, s.log)
	itemHandler := handle.NewOrderItemHandler(s.orders, s.log)
	paymentHandler := handle.NewPaymentHandler(s.settle, s.log)
	stockHandler := handle.NewStockHandler(s.ledger, s.log)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orderHandler.Create)
		r.Get("/", orderHandler.List)
		r.Get("/{id}", orderHandler.Get)
		r.Post("/{id}/cancel", orderHandler.Cancel)
		r.Get("/{id}/items", orderHandler.Items)
		r.Post("/{id}/items", orderHandler.AddItem)
	})

	r.Route("/order-items", func(r chi.Router) {
		r.Get("/{id}", itemHandler.Get)
		r.Put("/{id}", itemHandler.UpdateQuantity)
		r.Put("/{id}/status", itemHandler.UpdateStatus)
		r.Delete("/{id}", itemHandler.Delete)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/", paymentHandler.Create)
		r.Get("/", paymentHandler.List)
		r.Get("/{order_id}", paymentHandler.Get)
	})

	r.Route("/stock", func(r chi.Router) {
		r.Get("/", stockHandler.List)
		r.Get("/out-of-stock", stockHandler.OutOfStock)
		r.Get("/out-of-stock/count", stockHandler.OutOfStockCount)
		r.Post("/movements", stockHandler.CreateMovement)
		r.Get("/{id}", stockHandler.Get)
		r.Get("/{id}/movements", stockHandler.Movements)
	})

	return r
}
