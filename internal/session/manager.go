package session

import (
	"context"
	"sync"
	"time"

	"github.com/peerbr/invest-client-go/internal/domain"
	"github.com/peerbr/invest-client-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("session")

// Manager drives the Anonymous → Authenticated lifecycle. It is the
// only writer of the shared Credential and the only caller of the
// token store.
type Manager struct {
	api    port.AuthAPI
	cred   *Credential
	store  TokenStore
	logger *zap.Logger

	mu   sync.RWMutex
	user *domain.User

	teardownHooks []func()
}

// NewManager creates a session manager around the shared credential.
func NewManager(api port.AuthAPI, cred *Credential, store TokenStore, logger *zap.Logger) *Manager {
	return &Manager{
		api:    api,
		cred:   cred,
		store:  store,
		logger: logger,
	}
}

// OnTeardown registers fn to run whenever the session is torn down
// (logout or credential invalidation). The account aggregator hooks
// its cache drop here.
func (m *Manager) OnTeardown(fn func()) {
	m.teardownHooks = append(m.teardownHooks, fn)
}

// Bootstrap adopts a persisted credential, if any, and validates it by
// fetching the profile. Any failure discards the credential and leaves
// the session anonymous; that is not an error from the caller's point
// of view. This must complete before any authenticated view renders.
func (m *Manager) Bootstrap(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Session.Bootstrap")
	defer span.End()

	token, err := m.store.Load()
	if err != nil {
		return err // disk trouble, not an auth failure
	}
	if token == "" {
		return nil
	}

	if tokenExpired(token) {
		m.logger.Info("session: persisted token already expired, discarding")
		m.teardown()
		return nil
	}

	// Adopt provisionally so the profile request carries the token.
	m.cred.set(token)

	user, err := m.api.Profile(ctx)
	if err != nil {
		m.logger.Info("session: persisted credential rejected, starting anonymous",
			zap.Error(err),
		)
		m.teardown()
		return nil
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()

	m.logger.Info("session: restored", zap.Int("user_id", user.ID))
	return nil
}

// Login authenticates with CPF + password. The CPF is normalized to
// digits only; display masks are a presentation concern.
func (m *Manager) Login(ctx context.Context, cpf, senha string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Session.Login")
	defer span.End()

	resp, err := m.api.Login(ctx, &domain.LoginRequest{
		CPF:   NormalizeCPF(cpf),
		Senha: senha,
	})
	if err != nil {
		return nil, err
	}

	m.cred.set(resp.AccessToken)
	if err := m.store.Save(resp.AccessToken); err != nil {
		// The in-memory session is still valid; only persistence failed.
		m.logger.Warn("session: failed to persist token", zap.Error(err))
	}

	user := resp.User
	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()

	m.logger.Info("session: authenticated", zap.Int("user_id", user.ID))
	return &user, nil
}

// Register creates a new platform account. It does not log in.
func (m *Manager) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Ack, error) {
	ctx, span := tracer.Start(ctx, "Session.Register")
	defer span.End()

	req.CPF = NormalizeCPF(req.CPF)
	return m.api.Register(ctx, req)
}

// Logout clears the credential and all cached account state.
func (m *Manager) Logout() {
	m.teardown()
	m.logger.Info("session: logged out")
}

// ObserveError tears the session down when err reports an invalid or
// expired credential. Callers pass every request error through here so
// a stale credential is never reused. Returns true when it tore down.
func (m *Manager) ObserveError(err error) bool {
	if !domain.IsAuthInvalid(err) {
		return false
	}
	m.logger.Warn("session: credential rejected by platform, tearing down")
	m.teardown()
	return true
}

// Authenticated reports whether a credential and profile are held.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.cred.Token() != ""
}

// User returns a copy of the session profile, or nil when anonymous.
func (m *Manager) User() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) teardown() {
	m.cred.clear()
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("session: failed to clear persisted token", zap.Error(err))
	}

	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()

	for _, fn := range m.teardownHooks {
		fn()
	}
}

// tokenExpired checks the token's exp claim locally, without verifying
// the signature. Saves a doomed round-trip during bootstrap; tokens
// without a parsable expiry fall through to the server check.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// NormalizeCPF strips formatting so "123.456.789-09" and "12345678909"
// submit identically.
func NormalizeCPF(cpf string) string {
	var out []byte
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			out = append(out, byte(r))
		}
	}
	return string(out)
}
