package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hiic/library/internal/assets"
	"github.com/hiic/library/internal/config"
	"github.com/hiic/library/internal/httpserver"
	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/redis"
	"github.com/hiic/library/internal/scheduler"
	redisstore "github.com/hiic/library/internal/store/redis"
	"github.com/hiic/library/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	auditor     *scheduler.CatalogAuditor
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := OpenStore(initCtx, cfg)
	if err != nil {
		return nil, err
	}
	loggerClient.Info("object store ready",
		logger.String("backend", cfg.Store),
		logger.String("namespace", cfg.Namespace))

	assembler := NewAssembler(store, cfg, loggerClient)

	// The skip ledger is optional: without Redis the auditor only logs.
	var (
		redisClient *goredis.Client
		ledger      *redisstore.Ledger
	)
	if cfg.RedisAddr != "" {
		redisClient, err = redis.Dial(context.Background(), redis.OptionsFromConfig(cfg), loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, running without skip ledger", logger.Error(err))
		} else if ledger, err = redisstore.NewLedger(redisClient, cfg.Namespace, cfg.LedgerTTL); err != nil {
			return nil, err
		}
	} else {
		loggerClient.Info("redis not configured, skip ledger disabled")
	}

	var (
		recorder     scheduler.Recorder
		auditLedger  deps.AuditLedger
		auditor      *scheduler.CatalogAuditor
		auditTrigger chan struct{}
	)
	if ledger != nil {
		recorder = ledger
		auditLedger = ledger
	}
	if cfg.AuditInterval > 0 || ledger != nil {
		auditTrigger = make(chan struct{}, 1)
		auditor = scheduler.NewCatalogAuditor(
			assembler,
			recorder,
			loggerClient,
			cfg.AuditInterval,
			cfg.CatalogTimeout,
			auditTrigger,
		)
	}

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Build:           version.Get(),
		BasePath:        cfg.BasePath,
		Store:           store,
		Catalog:         assembler,
		Assets:          assets.NewResolver(store, cfg.AssetMaxAge, loggerClient),
		Ledger:          auditLedger,
		AuditTrigger:    auditTrigger,
		CatalogTimeout:  cfg.CatalogTimeout,
		CatalogMaxAge:   cfg.CatalogMaxAge,
		DebugEnabled:    cfg.DebugEnabled,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		AssetRateBurst:  cfg.AssetRateBurst,
		AssetRatePerMin: cfg.AssetRatePerMin,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		auditor:     auditor,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting %s on %s (base path %q)", version.String("library-api"), a.cfg.ListenAddr, a.cfg.BasePath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.auditor != nil {
		a.auditor.Start(ctx)
		a.logger.Info("catalog auditor started",
			logger.Duration("interval", a.cfg.AuditInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.auditor != nil {
		a.auditor.Stop()
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ library-api stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
