package measure

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is a parsed user input expressed in the base unit of its kind.
type Quantity struct {
	Kind Kind
	Base decimal.Decimal
}

var termRe = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?|\.[0-9]+)\s*([a-zA-Z]+)`)

// Parse reads inputs like "500ml", "2,5 l" or "1h 30min". Every number needs
// a unit and all units must share one kind.
func Parse(input string) (Quantity, error) {
	rest := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	if rest == "" {
		return Quantity{}, fmt.Errorf("%w: empty input", ErrInvalidFormat)
	}

	var q Quantity
	for strings.TrimSpace(rest) != "" {
		m := termRe.FindStringSubmatchIndex(rest)
		if m == nil {
			return Quantity{}, fmt.Errorf("%w: %q", ErrInvalidFormat, input)
		}
		num, name := rest[m[2]:m[3]], rest[m[4]:m[5]]
		rest = rest[m[1]:]

		u, err := LookupUnit(name)
		if err != nil {
			return Quantity{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}
		if q.Kind != "" && q.Kind != u.Kind {
			return Quantity{}, fmt.Errorf("%w: %q mixes %s and %s", ErrInvalidFormat, input, q.Kind, u.Kind)
		}
		q.Kind = u.Kind
		q.Base = q.Base.Add(ToBase(decimal.RequireFromString(num), u))
	}
	return q, nil
}

// Validate checks a measurement input against the expected kind. Empty input
// is valid; an empty kind accepts any recognised unit.
func Validate(input string, k Kind) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	q, err := Parse(input)
	if err != nil {
		if hint := Examples(k); hint != "" {
			return fmt.Errorf("%w, valid units: %s", err, hint)
		}
		return err
	}
	if k != "" && q.Kind != k {
		return fmt.Errorf("%w: expected %s", ErrWrongUnitKind, Examples(k))
	}
	return nil
}

// Normalize turns user input into the stored event representation: the floor
// of the base-unit quantity as an integer string.
func Normalize(input string, k Kind) (string, error) {
	if err := Validate(input, k); err != nil {
		return "", err
	}
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidFormat)
	}
	q, _ := Parse(input)
	return q.Base.Floor().String(), nil
}
