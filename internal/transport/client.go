// Package transport issues authenticated requests against the PeerBR
// platform API and normalizes its error responses. It never retries a
// request and never touches session state; callers decide what an
// auth-shaped failure means.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/peerbr/invest-client-go/internal/domain"
	"github.com/peerbr/invest-client-go/internal/infra/observability"
	"github.com/peerbr/invest-client-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("transport")

// TokenSource supplies the current bearer credential. An empty string
// means anonymous: no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// Client wraps HTTP calls to the platform API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates a platform API client.
func NewClient(httpClient *http.Client, baseURL string, tokens TokenSource, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		cb:         cb,
		bulkhead:   bulkhead,
		metrics:    metrics,
		logger:     logger,
	}
}

// apiError is the failure shape the platform returns on any non-2xx.
type apiError struct {
	Error string `json:"error"`
	// flask-jwt-extended reports auth failures under "msg"
	Msg string `json:"msg"`
}

// do executes one request. body and out may be nil; extra headers are
// merged into the request. Every failure comes back as *domain.ErrRequest.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any, headers http.Header) error {
	ctx, span := tracer.Start(ctx, "Platform."+op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	start := time.Now()
	defer func() {
		c.metrics.RecordRequestDuration(op, time.Since(start))
	}()

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return c.fail(op, method, path, &domain.ErrRequest{Err: err})
	}
	defer c.bulkhead.Release()

	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.doOnce(ctx, method, path, body, out, headers)
	})
	if err == nil {
		c.logger.Debug("platform: request OK",
			zap.String("operation", op),
			zap.String("method", method),
			zap.String("path", path),
		)
		return nil
	}

	var re *domain.ErrRequest
	if !errors.As(err, &re) {
		// circuit open or some other infrastructure failure
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			re = &domain.ErrRequest{Message: "Serviço indisponível no momento", Err: err}
		} else {
			re = &domain.ErrRequest{Err: err}
		}
	}
	return c.fail(op, method, path, re)
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out any, headers http.Header) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &domain.ErrRequest{Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &domain.ErrRequest{Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ErrRequest{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ErrRequest{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(raw, &apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = apiErr.Msg
		}
		return &domain.ErrRequest{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &domain.ErrRequest{Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

// fail logs and counts a request failure before returning it.
func (c *Client) fail(op, method, path string, re *domain.ErrRequest) error {
	c.metrics.IncrTransportError(op)
	c.logger.Warn("platform: request failed",
		zap.String("operation", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", re.Status),
		zap.String("message", re.Message),
		zap.Error(re.Err),
	)
	return re
}
