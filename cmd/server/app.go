package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/barter/internal/adapter/http"
	"github.com/iho/barter/internal/adapter/http/handler"
	"github.com/iho/barter/internal/adapter/http/middleware"
	"github.com/iho/barter/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/barter/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/barter/internal/adapter/repository/redis"
	"github.com/iho/barter/internal/infrastructure/auth"
	"github.com/iho/barter/internal/infrastructure/config"
	"github.com/iho/barter/internal/infrastructure/lockmgr"
	"github.com/iho/barter/internal/infrastructure/metrics"
	"github.com/iho/barter/internal/infrastructure/postgres"
	"github.com/iho/barter/internal/infrastructure/redis"
	"github.com/iho/barter/internal/infrastructure/tradefeed"
	"github.com/iho/barter/internal/usecase"
)

// app is the wired service: HTTP handler plus background workers.
type app struct {
	handler     http.Handler
	presence    *usecase.PresenceUseCase
	feed        *tradefeed.Feed
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// storage bundles the ledger backend chosen by STORAGE_DRIVER.
type storage struct {
	txManager   usecase.TransactionManager
	accountRepo usecase.AccountRepository
	tradeRepo   usecase.TradeLogRepository
	retrier     usecase.Retrier
	checks      []handler.HealthCheck
}

// buildApp wires every component. On error, whatever was already opened is
// closed before returning.
func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	store, err := a.openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var redisClient *goredis.Client
	if cfg.NeedsRedis() {
		redisClient, err = redis.NewClientWithConfig(ctx, redis.ClientConfig{
			URL:             cfg.RedisURL,
			ConnectAttempts: 5,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { redisClient.Close() })
		store.checks = append(store.checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
		logger.Info().Msg("connected to redis")
	}

	// Use cases
	idGen := postgresRepo.NewULIDGenerator()
	clock := usecase.SystemClock{}

	ledgerUC := usecase.NewLedgerUseCase(store.txManager, store.accountRepo, lockmgr.New(), clock, logger)
	if cfg.InventoryCacheTTL > 0 {
		ledgerUC = ledgerUC.WithCache(redisRepo.NewCache(redisClient), cfg.InventoryCacheTTL)
	}

	tradeLogUC := usecase.NewTradeLogUseCase(store.txManager, store.tradeRepo, 0)

	exchangeUC := usecase.NewExchangeUseCase(usecase.ExchangeConfig{
		TxManager:        store.txManager,
		Ledger:           ledgerUC,
		TradeLog:         tradeLogUC,
		IDGen:            idGen,
		Retrier:          store.retrier,
		Clock:            clock,
		Metrics:          m,
		Logger:           logger.With().Str("component", "exchange").Logger(),
		Timeout:          cfg.TradeTimeout,
		MaxItems:         cfg.MaxTradeItems,
		RecordRejections: cfg.RecordRejections,
	})

	var presenceStore usecase.PresenceStore = memory.NewPresenceStore()
	if cfg.PresenceDriver == config.DriverRedis {
		presenceStore = redisRepo.NewPresenceStore(redisClient)
	}
	a.presence = usecase.NewPresenceUseCase(presenceStore, clock, cfg.PresenceTTL, m,
		logger.With().Str("component", "presence").Logger())

	reconciliationUC := usecase.NewReconciliationUseCase(store.accountRepo, clock)

	// Trade feed
	var publisher tradefeed.Publisher = tradefeed.NewLogPublisher(logger.With().Str("component", "tradefeed").Logger())
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := tradefeed.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		a.closers = append(a.closers, func() { kafkaPublisher.Close() })
		publisher = kafkaPublisher
	}
	a.feed = tradefeed.New(tradefeed.Config{
		Source:    store.tradeRepo,
		Publisher: publisher,
		Metrics:   m,
		Logger:    logger.With().Str("component", "tradefeed").Logger(),
		Interval:  cfg.TradeFeedInterval,
	})

	// HTTP
	routerCfg := httpAdapter.RouterConfig{
		TradeHandler:    handler.NewTradeHandler(exchangeUC, tradeLogUC),
		AccountHandler:  handler.NewAccountHandler(ledgerUC),
		PresenceHandler: handler.NewPresenceHandler(a.presence),
		LedgerHandler:   handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:   handler.NewHealthHandler(store.checks...),
		Metrics:         m,
		MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Logger:          logger,
	}
	if cfg.IdempotencyEnabled {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		routerCfg.IdempotencyTTL = cfg.IdempotencyTTL
	}
	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		routerCfg.RateLimiter = a.rateLimiter
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, 0)
	}

	a.handler = httpAdapter.NewRouter(routerCfg)

	return a, nil
}

func (a *app) openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.DriverMemory {
		store := memory.NewStore()
		logger.Warn().Msg("using in-memory storage; state is lost on restart")
		return &storage{
			txManager:   memory.NewTxManager(store),
			accountRepo: memory.NewAccountRepository(store),
			tradeRepo:   memory.NewTradeLogRepository(store),
		}, nil
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	pool, err := postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	logger.Info().Msg("connected to postgres")

	return &storage{
		txManager:   postgresRepo.NewTxManager(pool),
		accountRepo: postgresRepo.NewAccountRepository(pool),
		tradeRepo:   postgresRepo.NewTradeLogRepository(pool),
		retrier:     postgresRepo.NewRetrier(logger),
		checks: []handler.HealthCheck{{
			Name:  "postgres",
			Check: pool.Ping,
		}},
	}, nil
}
