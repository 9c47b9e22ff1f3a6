// Command planner runs the expense planner service: the backend
// for the mobile app's expenses, planned expenses, calendar and
// budget screens.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aureum/expense-planner-go/internal/config"
	"github.com/aureum/expense-planner-go/internal/domain"
	"github.com/aureum/expense-planner-go/internal/handler"
	"github.com/aureum/expense-planner-go/internal/infra/cache"
	"github.com/aureum/expense-planner-go/internal/infra/observability"
	"github.com/aureum/expense-planner-go/internal/infra/prefs"
	"github.com/aureum/expense-planner-go/internal/infra/resilience"
	"github.com/aureum/expense-planner-go/internal/infra/rest"
	"github.com/aureum/expense-planner-go/internal/service"
)

func main() {
	config.LoadDotEnv(".env")
	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "expense-planner", cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	metrics := observability.NewMetrics()

	preferenceStore, err := prefs.NewFileStore(cfg.PrefsPath)
	if err != nil {
		logger.Fatal("failed to open preference store", zap.Error(err))
	}

	store := rest.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.FinanceAPIURL,
		cfg.FinanceAPIKey,
		resilience.NewCircuitBreaker("finance-store", logger),
		resilience.NewBulkhead(cfg.MaxConcurrency, cfg.BulkheadWait),
		resilience.RetryConfig{MaxRetries: cfg.MaxRetries, InitialBackoff: cfg.InitialBackoff},
		metrics,
		logger,
	)

	svc := service.NewPlannerService(
		store,
		preferenceStore,
		cache.New[[]domain.Category](cfg.CatalogCacheTTL),
		metrics,
		logger,
	)

	router := handler.NewRouter(handler.NewPlannerHandler(svc, logger), metrics, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("expense planner listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("stopped")
}
