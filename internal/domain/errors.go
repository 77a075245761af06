package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types for consistent error handling across the client.

// ErrValidation indicates an input violation detected locally, before
// any network call is made.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validação de '%s': %s", e.Field, e.Message)
}

// IsValidation reports whether err is a client-side validation error.
func IsValidation(err error) bool {
	var ve *ErrValidation
	return errors.As(err, &ve)
}

// ErrRequest indicates a failed platform request: either the server
// reported an error or the transport itself failed. Message is the
// server-supplied text when available, suitable for display as-is.
type ErrRequest struct {
	Status  int // 0 when the request never reached the server
	Message string
	Err     error
}

func (e *ErrRequest) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Erro na requisição"
}

func (e *ErrRequest) Unwrap() error {
	return e.Err
}

// IsAuthInvalid reports whether err is a request failure caused by an
// expired or invalid credential. The platform answers 401 for missing
// or bad tokens and 422 for malformed ones.
func IsAuthInvalid(err error) bool {
	var re *ErrRequest
	if !errors.As(err, &re) {
		return false
	}
	return re.Status == http.StatusUnauthorized || re.Status == http.StatusUnprocessableEntity
}

// ErrFlowBusy indicates a submission was rejected because a previous
// one on the same flow has not settled yet.
type ErrFlowBusy struct {
	Flow string
}

func (e *ErrFlowBusy) Error() string {
	return fmt.Sprintf("%s: operação anterior ainda em andamento", e.Flow)
}

// ErrFlowState indicates an operation was attempted in a state that
// does not allow it (e.g. confirming a deposit before generating it).
type ErrFlowState struct {
	Flow  string
	State string
	Op    string
}

func (e *ErrFlowState) Error() string {
	return fmt.Sprintf("%s: %s não é permitido no estado %s", e.Flow, e.Op, e.State)
}
