package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/peerbr/invest-client-go/internal/domain"
)

func TestErrRequest_Message(t *testing.T) {
	withMessage := &domain.ErrRequest{Status: 400, Message: "Saldo insuficiente"}
	if withMessage.Error() != "Saldo insuficiente" {
		t.Errorf("expected server message, got %q", withMessage.Error())
	}

	// No server text: generic fallback, never an empty string.
	bare := &domain.ErrRequest{Err: errors.New("connection refused")}
	if bare.Error() != "Erro na requisição" {
		t.Errorf("expected fallback message, got %q", bare.Error())
	}
}

func TestErrRequest_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	err := &domain.ErrRequest{Err: inner}
	if !errors.Is(err, inner) {
		t.Error("expected wrapped error to be reachable via errors.Is")
	}
}

func TestIsAuthInvalid(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&domain.ErrRequest{Status: 401, Message: "Token has expired"}, true},
		{&domain.ErrRequest{Status: 422, Message: "Not enough segments"}, true},
		{&domain.ErrRequest{Status: 400, Message: "Saldo insuficiente"}, false},
		{&domain.ErrRequest{Status: 500}, false},
		{&domain.ErrRequest{Err: errors.New("timeout")}, false},
		{fmt.Errorf("refresh: %w", &domain.ErrRequest{Status: 401}), true},
		{errors.New("plain"), false},
		{&domain.ErrValidation{Field: "valor", Message: "x"}, false},
	}

	for _, c := range cases {
		if got := domain.IsAuthInvalid(c.err); got != c.want {
			t.Errorf("IsAuthInvalid(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestIsValidation(t *testing.T) {
	ve := &domain.ErrValidation{Field: "cpf", Message: "CPF inválido"}
	if !domain.IsValidation(ve) {
		t.Error("expected validation error to be recognized")
	}
	if !domain.IsValidation(fmt.Errorf("login: %w", ve)) {
		t.Error("expected wrapped validation error to be recognized")
	}
	if domain.IsValidation(&domain.ErrRequest{Status: 400}) {
		t.Error("request error is not a validation error")
	}
}
