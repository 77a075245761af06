package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/peerbr/invest-client-go/internal/domain"

	"github.com/google/uuid"
)

// Typed surface over the platform API contract. One method per
// endpoint; all of them go through do() and share its error shape.

// Login exchanges credentials for an access token. Sent anonymously.
func (c *Client) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	var out domain.LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/login", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new platform account. Sent anonymously.
func (c *Client) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Ack, error) {
	var out domain.Ack
	if err := c.do(ctx, "register", http.MethodPost, "/api/register", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, "profile", http.MethodGet, "/api/profile", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Offers lists investable offers, optionally filtered by category.
func (c *Client) Offers(ctx context.Context, categoria domain.Category) ([]domain.Offer, error) {
	path := "/api/investments"
	if categoria != "" {
		path += "?categoria=" + url.QueryEscape(string(categoria))
	}
	var out []domain.Offer
	if err := c.do(ctx, "offers", http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories lists the available offer categories with display labels.
func (c *Client) Categories(ctx context.Context) ([]domain.CategoryOption, error) {
	var out []domain.CategoryOption
	if err := c.do(ctx, "categories", http.MethodGet, "/api/investments/categories", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Invest submits an application of valor against the given offer.
// A client-generated idempotency key guards against double submission
// if the response is lost.
func (c *Client) Invest(ctx context.Context, offerID int, valor float64) (*domain.InvestResponse, error) {
	var out domain.InvestResponse
	path := fmt.Sprintf("/api/investir/%d", offerID)
	headers := idempotencyHeader()
	if err := c.do(ctx, "invest", http.MethodPost, path, &domain.InvestRequest{Valor: valor}, &out, headers); err != nil {
		return nil, err
	}
	return &out, nil
}

// Holdings lists the user's current investment applications.
func (c *Client) Holdings(ctx context.Context) ([]domain.Holding, error) {
	var out []domain.Holding
	if err := c.do(ctx, "holdings", http.MethodGet, "/api/meus_investimentos", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Balance fetches the user's current balance.
func (c *Client) Balance(ctx context.Context) (*domain.Balance, error) {
	var out domain.Balance
	if err := c.do(ctx, "balance", http.MethodGet, "/api/saldo", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Deposit registers a deposit via the legacy direct endpoint. The PIX
// flow does not use this; it stays reachable for older callers.
func (c *Client) Deposit(ctx context.Context, valor float64) (*domain.DepositResponse, error) {
	var out domain.DepositResponse
	if err := c.do(ctx, "deposit", http.MethodPost, "/api/depositar", &domain.DepositRequest{Valor: valor}, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// GeneratePix creates a PIX payment request for the given amount and
// returns the charge (QR code, payee details, copyable key).
func (c *Client) GeneratePix(ctx context.Context, valor float64) (*domain.PixCharge, error) {
	var out domain.PixCharge
	headers := idempotencyHeader()
	if err := c.do(ctx, "generate_pix", http.MethodPost, "/api/gerar_pix", &domain.DepositRequest{Valor: valor}, &out, headers); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transactions fetches the user's transaction history, newest first.
func (c *Client) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	var out []domain.Transaction
	if err := c.do(ctx, "transactions", http.MethodGet, "/api/transacoes", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func idempotencyHeader() http.Header {
	h := http.Header{}
	h.Set("X-Idempotency-Key", uuid.NewString())
	return h
}
