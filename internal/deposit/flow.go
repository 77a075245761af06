// Package deposit implements the two-phase PIX deposit flow: amount
// entry, then generated payment instructions, then user-confirmed
// completion. Confirmation never credits the balance locally; the
// charge settles bank-side and the account refresh picks up the
// pending transaction.
package deposit

import (
	"context"
	"sync"

	"github.com/peerbr/invest-client-go/internal/domain"
	"github.com/peerbr/invest-client-go/internal/infra/observability"
	"github.com/peerbr/invest-client-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("deposit")

// Phase is the state of one deposit interaction.
type Phase int

const (
	PhaseAmountEntry Phase = iota
	PhaseInstructions
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseAmountEntry:
		return "entrada de valor"
	case PhaseInstructions:
		return "instruções de pagamento"
	case PhaseClosed:
		return "encerrado"
	}
	return "desconhecido"
}

// Flow is a single deposit interaction. Each new deposit attempt gets
// a fresh Flow; no state carries across instances.
type Flow struct {
	api      port.DepositAPI
	accounts port.Refresher
	metrics  *observability.Metrics
	logger   *zap.Logger

	mu        sync.Mutex
	phase     Phase
	rawAmount string
	charge    *domain.PixCharge
	gen       uint64 // bumps on supersede/close; stale responses check it
	inFlight  bool
}

// NewFlow starts a deposit interaction at amount entry.
func NewFlow(api port.DepositAPI, accounts port.Refresher, metrics *observability.Metrics, logger *zap.Logger) *Flow {
	return &Flow{
		api:      api,
		accounts: accounts,
		metrics:  metrics,
		logger:   logger,
		phase:    PhaseAmountEntry,
	}
}

// Phase returns the current state.
func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Amount returns the last entered raw amount, for pre-filling the
// entry field after Back().
func (f *Flow) Amount() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rawAmount
}

// Charge returns the current payment payload, nil outside the
// instructions phase.
func (f *Flow) Charge() *domain.PixCharge {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.charge
}

// Generate validates the amount and requests a payment payload.
// Each call produces a fresh charge; a previous one is never reused.
// On failure the flow stays at amount entry with the input preserved.
func (f *Flow) Generate(ctx context.Context, rawAmount string) (*domain.PixCharge, error) {
	f.mu.Lock()
	if f.phase != PhaseAmountEntry {
		op, state := "gerar", f.phase.String()
		f.mu.Unlock()
		return nil, &domain.ErrFlowState{Flow: "depósito", State: state, Op: op}
	}
	if f.inFlight {
		f.mu.Unlock()
		f.metrics.IncrSubmission("deposit", "busy")
		return nil, &domain.ErrFlowBusy{Flow: "depósito"}
	}
	f.rawAmount = rawAmount

	valor, err := domain.ParseAmount("valor", rawAmount)
	if err != nil {
		f.mu.Unlock()
		f.metrics.IncrSubmission("deposit", "validation_error")
		return nil, err
	}

	f.inFlight = true
	f.gen++
	gen := f.gen
	f.mu.Unlock()

	ctx, span := tracer.Start(ctx, "Deposit.GeneratePix")
	defer span.End()
	span.SetAttributes(attribute.Float64("valor", valor))

	charge, err := f.api.GeneratePix(ctx, valor)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false

	if f.gen != gen || f.phase == PhaseClosed {
		// The user closed or restarted the flow while this request was
		// in flight. The response must not resurrect torn-down state.
		f.logger.Debug("deposit: discarding superseded pix response")
		return nil, &domain.ErrFlowState{Flow: "depósito", State: f.phase.String(), Op: "gerar"}
	}
	if err != nil {
		f.metrics.IncrSubmission("deposit", "request_error")
		return nil, err
	}

	f.charge = charge
	f.phase = PhaseInstructions
	f.metrics.IncrSubmission("deposit", "generated")
	f.logger.Info("deposit: pix charge generated",
		zap.Float64("valor", charge.Valor),
		zap.String("pix_id", charge.PixID),
	)
	return charge, nil
}

// Back returns from the instructions to amount entry. The originally
// entered amount stays pre-filled; the charge is discarded so the next
// Generate always starts a fresh payload.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase != PhaseInstructions {
		return &domain.ErrFlowState{Flow: "depósito", State: f.phase.String(), Op: "voltar"}
	}
	f.charge = nil
	f.gen++
	f.phase = PhaseAmountEntry
	return nil
}

// ConfirmCompletion records that the user asserts the payment was
// made. It closes the flow and refreshes the account so the pending
// transaction becomes visible. The balance is NOT credited here;
// settlement approval is asynchronous and bank-side.
func (f *Flow) ConfirmCompletion(ctx context.Context) (*domain.AccountSnapshot, error) {
	f.mu.Lock()
	if f.phase != PhaseInstructions {
		state := f.phase.String()
		f.mu.Unlock()
		return nil, &domain.ErrFlowState{Flow: "depósito", State: state, Op: "confirmar"}
	}
	f.phase = PhaseClosed
	f.charge = nil
	f.gen++
	f.mu.Unlock()

	f.metrics.IncrSubmission("deposit", "success")
	f.logger.Info("deposit: completion confirmed, awaiting settlement")

	f.accounts.Invalidate()
	snap, err := f.accounts.Refresh(ctx)
	if err != nil {
		// Flow is closed either way; the pending transaction will show
		// up on a later refresh.
		return nil, err
	}
	return snap, nil
}

// Close abandons the interaction. Any in-flight response is ignored.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.phase = PhaseClosed
	f.charge = nil
	f.gen++
}

// Direct registers a deposit via the legacy POST /api/depositar
// endpoint and refreshes the account. The PIX flow never calls this;
// it stays reachable for callers of the older contract.
func Direct(ctx context.Context, api port.DepositAPI, accounts port.Refresher, rawAmount string) (*domain.DepositResponse, *domain.AccountSnapshot, error) {
	valor, err := domain.ParseAmount("valor", rawAmount)
	if err != nil {
		return nil, nil, err
	}

	resp, err := api.Deposit(ctx, valor)
	if err != nil {
		return nil, nil, err
	}

	accounts.Invalidate()
	snap, err := accounts.Refresh(ctx)
	if err != nil {
		return resp, nil, err
	}
	return resp, snap, nil
}
