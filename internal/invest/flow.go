package invest

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/peerbr/invest-client-go/internal/domain"
	"github.com/peerbr/invest-client-go/internal/infra/observability"
	"github.com/peerbr/invest-client-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("invest")

// Flow validates and submits investment applications. Validation runs
// entirely locally, in order, short-circuiting before any network call.
type Flow struct {
	api      port.InvestAPI
	accounts port.Refresher
	catalog  *Catalog
	metrics  *observability.Metrics
	logger   *zap.Logger

	inFlight atomic.Bool
}

// NewFlow creates the investment flow.
func NewFlow(api port.InvestAPI, accounts port.Refresher, catalog *Catalog, metrics *observability.Metrics, logger *zap.Logger) *Flow {
	return &Flow{
		api:      api,
		accounts: accounts,
		catalog:  catalog,
		metrics:  metrics,
		logger:   logger,
	}
}

// Result is what a successful submission yields. Snapshot and Offers
// are the post-mutation views; when RefreshErr is non-nil the refresh
// failed and the previously displayed data should stay up alongside
// the error. The investment itself still went through.
type Result struct {
	Message    string
	Snapshot   *domain.AccountSnapshot
	Offers     []domain.Offer
	RefreshErr error
}

// Invest validates rawAmount against the offer and submits it. Only
// one submission may be in flight per flow; repeated user interaction
// before the first request settles is rejected.
func (f *Flow) Invest(ctx context.Context, offer domain.Offer, rawAmount string) (*Result, error) {
	if !f.inFlight.CompareAndSwap(false, true) {
		f.metrics.IncrSubmission("invest", "busy")
		return nil, &domain.ErrFlowBusy{Flow: "investimento"}
	}
	defer f.inFlight.Store(false)

	ctx, span := tracer.Start(ctx, "Invest.Submit")
	defer span.End()
	span.SetAttributes(attribute.Int("offer.id", offer.ID))

	valor, err := domain.ParseAmount("valor", rawAmount)
	if err != nil {
		f.metrics.IncrSubmission("invest", "validation_error")
		return nil, err
	}
	if valor < offer.ValorMinimo {
		f.metrics.IncrSubmission("invest", "validation_error")
		return nil, &domain.ErrValidation{
			Field:   "valor",
			Message: fmt.Sprintf("Valor mínimo para este investimento é %s", domain.FormatBRL(offer.ValorMinimo)),
		}
	}
	// Availability is enforced by the presentation layer (submit is
	// disabled on exhausted offers). If the status changed server-side
	// in the meantime, the rejection comes back as a plain request
	// error below.

	resp, err := f.api.Invest(ctx, offer.ID, valor)
	if err != nil {
		f.metrics.IncrSubmission("invest", "request_error")
		return nil, err
	}
	f.metrics.IncrSubmission("invest", "success")
	f.logger.Info("invest: application accepted",
		zap.Int("offer_id", offer.ID),
		zap.Float64("valor", valor),
	)

	// Refresh-after-mutation. The server's balance is authoritative; no
	// local delta is ever applied. A refresh failure leaves stale data
	// displayed with the error, never a half-updated view.
	f.accounts.Invalidate()
	result := &Result{Message: resp.Message}

	snap, err := f.accounts.Refresh(ctx)
	if err != nil {
		result.RefreshErr = err
		return result, nil
	}
	result.Snapshot = snap

	offers, err := f.catalog.Offers(ctx, "")
	if err != nil {
		result.RefreshErr = err
		return result, nil
	}
	result.Offers = offers
	return result, nil
}
