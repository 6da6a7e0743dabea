package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/ledgerreplay/internal/adapter/http"
	"github.com/iho/ledgerreplay/internal/adapter/http/handler"
	"github.com/iho/ledgerreplay/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/ledgerreplay/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/ledgerreplay/internal/adapter/repository/redis"
	"github.com/iho/ledgerreplay/internal/domain"
	"github.com/iho/ledgerreplay/internal/infrastructure/config"
	"github.com/iho/ledgerreplay/internal/infrastructure/eventbus"
	"github.com/iho/ledgerreplay/internal/infrastructure/logger"
	"github.com/iho/ledgerreplay/internal/infrastructure/metrics"
	"github.com/iho/ledgerreplay/internal/infrastructure/postgres"
	"github.com/iho/ledgerreplay/internal/infrastructure/redis"
	"github.com/iho/ledgerreplay/internal/usecase"
)

const limiterIdleTimeout = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}
	appLogger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Apply migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Connect to PostgreSQL
	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	pool, err := postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	cancel()
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	checks := []handler.HealthCheck{{Name: "postgres", Ping: pool.Ping}}

	m := metrics.New()
	idGen := postgresRepo.NewULIDGenerator()

	deps := usecase.LedgerDeps{
		Entries:   postgresRepo.NewLedgerEntryRepository(pool),
		TxManager: postgresRepo.NewTxManager(pool),
		Retrier:   postgresRepo.NewRetrier(logger),
		IDGen:     idGen,
		Metrics:   m,
	}

	// Connect to Redis when configured
	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to redis")

		deps.Cache = redisRepo.NewCache(redisClient)
		deps.Locker = redisRepo.NewLocker(redisClient, redisRepo.LockerConfig{
			TTL:    cfg.LockTTL,
			Logger: logger,
		})
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		checks = append(checks, handler.HealthCheck{Name: "redis", Ping: redis.Ping(redisClient)})
	} else {
		logger.Warn().Msg("REDIS_URL not set, using in-process locks without balance cache")
		deps.Locker = usecase.NewKeyedLocker()
	}

	// Initialize repositories
	employees := postgresRepo.NewEmployeeRepository(pool)
	advances := postgresRepo.NewAdvanceRepository(pool)
	adjustments := postgresRepo.NewAdjustmentRepository(pool)
	payrolls := postgresRepo.NewPayrollRepository(pool)
	banks := postgresRepo.NewBankRepository(pool)
	transactions := postgresRepo.NewBankTransactionRepository(pool)
	dailyCash := postgresRepo.NewDailyCashRepository(pool)
	transfers := postgresRepo.NewBankTransferRepository(pool)

	// Initialize use cases
	employeeLedger := usecase.NewEmployeeLedger(usecase.LedgerConfig{
		VerifiedOnly:        cfg.EmployeeLedgerVerifiedOnly,
		OpeningVerifiedOnly: cfg.EmployeeLedgerVerifiedOnly,
		FetchConcurrency:    cfg.FetchConcurrency,
		RebuildConcurrency:  cfg.RebuildConcurrency,
		BalanceCacheTTL:     cfg.BalanceCacheTTL,
	}, usecase.EmployeeSources{
		Employees:   employees,
		Advances:    advances,
		Adjustments: adjustments,
		Payrolls:    payrolls,
	}, deps, logger)

	bankLedger := usecase.NewBankLedger(usecase.LedgerConfig{
		VerifiedOnly:        cfg.BankLedgerVerifiedOnly,
		OpeningVerifiedOnly: cfg.BankOpeningVerifiedOnly,
		FetchConcurrency:    cfg.FetchConcurrency,
		RebuildConcurrency:  cfg.RebuildConcurrency,
		BalanceCacheTTL:     cfg.BalanceCacheTTL,
	}, usecase.BankSources{
		Banks:        banks,
		Transactions: transactions,
		DailyCash:    dailyCash,
		Transfers:    transfers,
	}, deps, logger)

	branchUC := usecase.NewBranchBalanceUseCase(banks, bankLedger, cfg.BankOpeningVerifiedOnly, cfg.FetchConcurrency)

	// Wire source change notifications
	bus := eventbus.New(eventbus.Config{IDGenerator: idGen, Recorder: m, Logger: logger})
	employeeLedger.Subscribe(bus)
	bankLedger.Subscribe(bus)
	if err := bus.RequireAll(domain.AllSourceTypes()); err != nil {
		return fmt.Errorf("wire source events: %w", err)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithRecorder(m)
	go cleanupLimiters(ctx, rateLimiter, logger)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		EmployeeLedger:     handler.NewLedgerHandler(employeeLedger, logger),
		BankLedger:         handler.NewLedgerHandler(bankLedger, logger),
		BranchHandler:      handler.NewBranchHandler(branchUC, logger),
		SourceEventHandler: handler.NewSourceEventHandler(bus, logger),
		HealthHandler:      handler.NewHealthHandler(checks...),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
		Metrics:            m,
		Logger:             logger,
	})

	server := newHTTPServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, logger zerolog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(limiterIdleTimeout); n > 0 {
				logger.Debug().Int("removed", n).Msg("evicted idle rate limiters")
			}
		}
	}
}
