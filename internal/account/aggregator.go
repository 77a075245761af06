// Package account merges profile, balance, holdings and transaction
// history into one consistent snapshot. A refresh is all-or-nothing:
// showing a balance next to stale holdings is worse than an explicit
// failure, so partial results are never surfaced.
package account

import (
	"context"
	"fmt"
	"time"

	"github.com/peerbr/invest-client-go/internal/domain"
	"github.com/peerbr/invest-client-go/internal/infra/observability"
	"github.com/peerbr/invest-client-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("account")

const snapshotKey = "snapshot"

// Aggregator owns the account view. The client never applies local
// deltas to balance or holdings; a refresh after each confirmed
// mutation is the sole consistency mechanism.
type Aggregator struct {
	api     port.AccountAPI
	cache   port.Cache[*domain.AccountSnapshot]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAggregator creates the aggregator with all dependencies injected.
func NewAggregator(api port.AccountAPI, cache port.Cache[*domain.AccountSnapshot], metrics *observability.Metrics, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		api:     api,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Refresh issues the four account reads concurrently and waits for all
// of them. If any fails, the whole refresh fails and the previous
// snapshot is left in place.
func (a *Aggregator) Refresh(ctx context.Context) (*domain.AccountSnapshot, error) {
	ctx, span := tracer.Start(ctx, "Account.Refresh")
	defer span.End()

	var (
		user         *domain.User
		balance      *domain.Balance
		holdings     []domain.Holding
		transactions []domain.Transaction
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u, err := a.api.Profile(gCtx)
		if err != nil {
			return fmt.Errorf("profile: %w", err)
		}
		user = u
		return nil
	})

	g.Go(func() error {
		b, err := a.api.Balance(gCtx)
		if err != nil {
			return fmt.Errorf("balance: %w", err)
		}
		balance = b
		return nil
	})

	g.Go(func() error {
		h, err := a.api.Holdings(gCtx)
		if err != nil {
			return fmt.Errorf("holdings: %w", err)
		}
		holdings = h
		return nil
	})

	g.Go(func() error {
		t, err := a.api.Transactions(gCtx)
		if err != nil {
			return fmt.Errorf("transactions: %w", err)
		}
		transactions = t
		return nil
	})

	if err := g.Wait(); err != nil {
		a.metrics.IncrRefresh("error")
		a.logger.Warn("account: refresh failed, keeping previous snapshot", zap.Error(err))
		return nil, err
	}

	total := 0.0
	for _, h := range holdings {
		total += h.ValorAplicado
	}

	snap := &domain.AccountSnapshot{
		User:          *user,
		Balance:       balance.Saldo,
		Holdings:      holdings,
		Transactions:  transactions,
		TotalInvested: total,
		FetchedAt:     time.Now(),
	}
	a.cache.Set(snapshotKey, snap)
	a.metrics.IncrRefresh("success")

	a.logger.Debug("account: refreshed",
		zap.Float64("balance", snap.Balance),
		zap.Int("holdings", len(holdings)),
		zap.Int("transactions", len(transactions)),
	)
	return snap, nil
}

// Current returns the cached snapshot, if still fresh.
func (a *Aggregator) Current() (*domain.AccountSnapshot, bool) {
	if snap, ok := a.cache.Get(snapshotKey); ok {
		a.metrics.IncrCacheHit("account")
		return snap, true
	}
	a.metrics.IncrCacheMiss("account")
	return nil, false
}

// View returns the cached snapshot, refreshing when absent or expired.
func (a *Aggregator) View(ctx context.Context) (*domain.AccountSnapshot, error) {
	if snap, ok := a.Current(); ok {
		return snap, nil
	}
	return a.Refresh(ctx)
}

// Invalidate drops the cached snapshot. Called on logout and after
// every confirmed mutation.
func (a *Aggregator) Invalidate() {
	a.cache.Delete(snapshotKey)
}
