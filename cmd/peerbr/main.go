package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/peerbr/invest-client-go/internal/account"
	"github.com/peerbr/invest-client-go/internal/config"
	"github.com/peerbr/invest-client-go/internal/domain"
	"github.com/peerbr/invest-client-go/internal/handler"
	"github.com/peerbr/invest-client-go/internal/infra/cache"
	"github.com/peerbr/invest-client-go/internal/infra/observability"
	"github.com/peerbr/invest-client-go/internal/infra/resilience"
	"github.com/peerbr/invest-client-go/internal/invest"
	"github.com/peerbr/invest-client-go/internal/session"
	"github.com/peerbr/invest-client-go/internal/transport"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("ops_port", cfg.OpsPort),
		zap.Duration("poll_interval", cfg.PollInterval),
	)

	// --- Tracing ---
	if cfg.Tracing {
		shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "peerbr-client")
		if err != nil {
			logger.Fatal("failed to init tracer", zap.Error(err))
		}
		defer shutdown(context.Background())
	}

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	snapshotCache := cache.New[*domain.AccountSnapshot](cfg.CacheTTL)
	categoryCache := cache.New[[]domain.CategoryOption](10 * time.Minute)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("peerbr-api")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Credential & token store ---
	tokenPath := cfg.TokenFile
	if tokenPath == "" {
		p, err := session.DefaultTokenPath()
		if err != nil {
			logger.Fatal("failed to resolve token path", zap.Error(err))
		}
		tokenPath = p
	}
	store := session.NewFileStore(tokenPath)
	cred := &session.Credential{}

	// --- Transport ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	api := transport.NewClient(httpClient, cfg.APIBaseURL, cred, cb, bulkhead, metrics, logger)

	// --- Session, account & flows ---
	sess := session.NewManager(api, cred, store, logger)
	accounts := account.NewAggregator(api, snapshotCache, metrics, logger)
	sess.OnTeardown(accounts.Invalidate)

	catalog := invest.NewCatalog(api, categoryCache, metrics, logger)
	investFlow := invest.NewFlow(api, accounts, catalog, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Local ops endpoint ---
	var bootstrapped atomic.Bool
	if cfg.OpsPort > 0 {
		opsRouter := handler.NewOpsRouter(metrics, bootstrapped.Load, logger)
		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.OpsPort),
			Handler:      opsRouter,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			logger.Info("ops endpoint listening", zap.Int("port", cfg.OpsPort))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("ops endpoint failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// --- Session bootstrap: the single blocking gate at start-up ---
	bootCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	if err := sess.Bootstrap(bootCtx); err != nil {
		// Only store IO can fail here; auth failures just leave us anonymous.
		logger.Warn("bootstrap: token store unavailable", zap.Error(err))
	}
	cancel()
	bootstrapped.Store(true)

	// --- Background refresh ---
	if cfg.PollInterval > 0 {
		poller := account.NewPoller(accounts, cfg.PollInterval, resilienceCfg,
			sess.Authenticated,
			func(err error) { sess.ObserveError(err) },
			logger,
		)
		go poller.Run(ctx)
	}

	// --- Interactive loop ---
	r := newREPL(sess, accounts, catalog, investFlow, api, metrics, logger, os.Stdin, os.Stdout)
	r.run(ctx)

	logger.Info("client stopped")
}
