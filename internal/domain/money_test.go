package domain_test

import (
	"testing"

	"github.com/peerbr/invest-client-go/internal/domain"
)

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "R$ 0,00"},
		{1, "R$ 1,00"},
		{0.5, "R$ 0,50"},
		{100, "R$ 100,00"},
		{1000, "R$ 1.000,00"},
		{1234.56, "R$ 1.234,56"},
		{1234567.89, "R$ 1.234.567,89"},
		{-50.1, "-R$ 50,10"},
	}

	for _, c := range cases {
		if got := domain.FormatBRL(c.in); got != c.want {
			t.Errorf("FormatBRL(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseAmount_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"100", 100},
		{"1234.56", 1234.56},
		{"1.234,56", 1234.56},
		{"1,50", 1.5},
		{"R$ 100", 100},
		{"0.01", 0.01},
	}

	for _, c := range cases {
		got, err := domain.ParseAmount("valor", c.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) returned error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	cases := []string{"", "abc", "0", "-10", "1,2,3", "1.2.3", "10x"}

	for _, in := range cases {
		_, err := domain.ParseAmount("valor", in)
		if err == nil {
			t.Errorf("ParseAmount(%q) should fail", in)
			continue
		}
		if !domain.IsValidation(err) {
			t.Errorf("ParseAmount(%q) should return a validation error, got %v", in, err)
		}
	}
}

func TestParseAmount_ErrorNamesField(t *testing.T) {
	_, err := domain.ParseAmount("valor", "abc")
	ve, ok := err.(*domain.ErrValidation)
	if !ok {
		t.Fatalf("expected *ErrValidation, got %T", err)
	}
	if ve.Field != "valor" {
		t.Errorf("expected field 'valor', got %q", ve.Field)
	}
}
