package domain

import (
	"math"
	"strconv"
)

// FormatBRL renders a value as Brazilian currency: "R$ 1.234,56".
// Used in validation messages and by the terminal client.
func FormatBRL(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	cents := int64(math.Round(v * 100))
	whole := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	// Group the integer part in threes with '.' separators.
	var grouped []byte
	for i, d := range []byte(whole) {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped = append(grouped, '.')
		}
		grouped = append(grouped, d)
	}

	return sign + "R$ " + string(grouped) + "," + pad2(frac)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// ParseAmount parses a user-entered amount. It accepts both "1234.56"
// and the Brazilian "1.234,56" form. Returns a validation error for
// anything non-numeric or non-positive.
func ParseAmount(field, raw string) (float64, error) {
	s := normalizeAmount(raw)
	if s == "" {
		return 0, &ErrValidation{Field: field, Message: "Por favor, insira um valor válido"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ErrValidation{Field: field, Message: "Por favor, insira um valor válido"}
	}
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &ErrValidation{Field: field, Message: "Valor deve ser positivo"}
	}
	return v, nil
}

// normalizeAmount strips currency punctuation. "1.234,56" → "1234.56".
func normalizeAmount(raw string) string {
	var out []byte
	comma := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			out = append(out, byte(r))
		case r == ',':
			if comma {
				return ""
			}
			comma = true
			out = append(out, '.')
		case r == '.':
			if comma {
				return ""
			}
			// thousands separator unless no comma follows; handled by
			// the second pass below
			out = append(out, '.')
		case r == ' ' || r == 'R' || r == '$':
			// allow "R$ 100"
		default:
			return ""
		}
	}
	s := string(out)
	if comma {
		// '.' were thousands separators; drop all but the comma-derived one
		last := -1
		for i := len(s) - 1; i >= 0; i-- {
			if s[i] == '.' {
				last = i
				break
			}
		}
		var b []byte
		for i := 0; i < len(s); i++ {
			if s[i] == '.' && i != last {
				continue
			}
			b = append(b, s[i])
		}
		return string(b)
	}
	// no comma: at most one '.' is a decimal point
	dots := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			dots++
		}
	}
	if dots > 1 {
		return ""
	}
	return s
}
