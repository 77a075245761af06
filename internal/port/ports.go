// Package port defines the interfaces each consumer needs from the
// platform transport. The narrow per-consumer slices keep session,
// account and flow logic testable against fakes.
package port

import (
	"context"

	"github.com/peerbr/invest-client-go/internal/domain"
)

// AuthAPI is the slice of the platform client the session manager uses.
type AuthAPI interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Ack, error)
	Profile(ctx context.Context) (*domain.User, error)
}

// AccountAPI covers the four reads the account aggregator merges.
type AccountAPI interface {
	Profile(ctx context.Context) (*domain.User, error)
	Balance(ctx context.Context) (*domain.Balance, error)
	Holdings(ctx context.Context) ([]domain.Holding, error)
	Transactions(ctx context.Context) ([]domain.Transaction, error)
}

// CatalogAPI covers offer discovery.
type CatalogAPI interface {
	Offers(ctx context.Context, categoria domain.Category) ([]domain.Offer, error)
	Categories(ctx context.Context) ([]domain.CategoryOption, error)
}

// InvestAPI covers investment submission.
type InvestAPI interface {
	Invest(ctx context.Context, offerID int, valor float64) (*domain.InvestResponse, error)
}

// DepositAPI covers both deposit paths: PIX and the legacy direct one.
type DepositAPI interface {
	GeneratePix(ctx context.Context, valor float64) (*domain.PixCharge, error)
	Deposit(ctx context.Context, valor float64) (*domain.DepositResponse, error)
}

// Refresher is what the mutation flows call after a confirmed mutation.
// Implemented by the account aggregator.
type Refresher interface {
	Invalidate()
	Refresh(ctx context.Context) (*domain.AccountSnapshot, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
