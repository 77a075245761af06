package account

import (
	"context"
	"time"

	"github.com/peerbr/invest-client-go/internal/infra/resilience"

	"go.uber.org/zap"
)

// Poller refreshes the account snapshot in the background so pending
// deposits eventually show their settled status without a user action.
// It is strictly best-effort: on failure it logs and leaves the
// previous snapshot displayed.
type Poller struct {
	agg      *Aggregator
	interval time.Duration
	retry    resilience.Config
	gate     func() bool // poll only while this returns true
	onError  func(error) // e.g. session invalidation observer
	logger   *zap.Logger
}

// NewPoller creates a poller. gate and onError may be nil.
func NewPoller(agg *Aggregator, interval time.Duration, retry resilience.Config, gate func() bool, onError func(error), logger *zap.Logger) *Poller {
	return &Poller{
		agg:      agg,
		interval: interval,
		retry:    retry,
		gate:     gate,
		onError:  onError,
		logger:   logger,
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if p.gate != nil && !p.gate() {
			continue
		}

		err := resilience.RetryWithBackoff(ctx, p.retry, func() error {
			_, err := p.agg.Refresh(ctx)
			return err
		})
		if err != nil && ctx.Err() == nil {
			p.logger.Warn("account: background refresh gave up", zap.Error(err))
			if p.onError != nil {
				p.onError(err)
			}
		}
	}
}
