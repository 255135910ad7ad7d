// Package main is the entry point for the daily report API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/config"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/auth"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/catalogs/bank"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/catalogs/store"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/reports"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/cache"
	v1 "github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/http/v1"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/http/v1/handlers"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/storage/postgres"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/storage/postgres/auth_repo"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/storage/postgres/catalog_repo"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/storage/postgres/report_repo"
	"github.com/alenprastyaa/hakimah-laporan-harian/pkg/logger"
	"github.com/alenprastyaa/hakimah-laporan-harian/pkg/metrics"
)

// dashboardCache is the cache surface shared by the store and report services.
type dashboardCache interface {
	reports.Cache
	handlers.Pinger
	Close() error
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(loggerConfig(cfg.Logger))
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatalw("server failed", "error", err)
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *logger.Logger) error {
	// Money is rendered as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting daily report server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	pool.LogPoolStats(ctx)

	if cfg.Database.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Infow("migrations applied", "versions", applied)
	}

	txManager := postgres.NewTxManager(pool, cfg.Database.StatementTimeout)
	auditStore, err := postgres.NewAuditStore(txManager)
	if err != nil {
		return fmt.Errorf("audit store: %w", err)
	}

	// --- Dashboard cache ---
	var dashCache dashboardCache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedis(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Redis.DashboardTTL,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		dashCache = redisCache
		log.Infow("dashboard cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.DashboardTTL)
	}
	defer func() { _ = dashCache.Close() }()

	// --- Metrics ---
	var m *metrics.Metrics
	reportDeps := reports.Deps{Audit: auditStore, Cache: dashCache}
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace, cfg.Metrics.Buckets)
		reportDeps.Metrics = m
	}

	// --- Services ---
	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.Auth.JWTSecret,
		Issuer:         cfg.Auth.Issuer,
		AccessTokenTTL: cfg.Auth.TokenTTL,
	})

	userRepo := auth_repo.NewUserRepo(txManager)
	storeRepo := catalog_repo.NewStoreRepo(txManager)
	access := auth.NewAccessChecker(userRepo)

	authService := auth.NewService(userRepo, txManager, jwtService, auth.ServiceConfig{BcryptCost: cfg.Auth.BcryptCost})
	storeService := store.NewService(storeRepo, userRepo, txManager, auditStore, dashCache)
	bankService := bank.NewService(catalog_repo.NewBankRepo(txManager), storeRepo, access, txManager, auditStore)
	reportService := reports.NewService(report_repo.NewReportRepo(txManager), storeRepo, access, txManager, reportDeps)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Mode:         cfg.Server.Mode,
		Logger:       log,
		JWTValidator: jwtService,
		StoreAccess:  access,
		Users:        authService,
		Stores:       storeService,
		Banks:        bankService,
		Reports:      reportService,
		HealthChecks: map[string]handlers.Pinger{
			"database": pool,
			"cache":    dashCache,
		},
		CORSOrigins: cfg.Server.CORSOrigins,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "addr", server.Addr, "mode", cfg.Server.Mode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	// connections still acquired here leak past shutdown
	pool.LogPoolStats(ctx)
	return nil
}

func loggerConfig(c config.LoggerConfig) logger.Config {
	return logger.Config{
		Level:       c.Level,
		Format:      c.Format,
		Output:      c.Output,
		FilePath:    c.FilePath,
		MaxSize:     c.MaxSize,
		MaxBackups:  c.MaxBackups,
		MaxAge:      c.MaxAge,
		Compress:    c.Compress,
		Development: c.Development,
	}
}
