package measure

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ToDefault converts value, given in unit, to the canonical unit of k and
// floors the result. Both "2.5" and "2,5" are accepted.
func ToDefault(k Kind, unit, value string) (int64, error) {
	base, ok := DefaultUnit(k)
	if !ok {
		return 0, fmt.Errorf("%w: no canonical unit for %q", ErrUnknownUnit, k)
	}
	u, err := LookupUnit(unit)
	if err != nil {
		return 0, err
	}
	if u.Kind != k {
		return 0, fmt.Errorf("%w: %s is not a %s unit", ErrWrongUnitKind, u.Name, k)
	}
	q, err := parseNumber(value)
	if err != nil {
		return 0, err
	}
	return FromBase(ToBase(q, u), base).Floor().IntPart(), nil
}

// ToBest formats a base-unit value in its most readable unit, with a comma
// as decimal separator. Durations are decomposed into whole components
// ("1h 30 min"). Returns "" for an unknown kind or a non-numeric value.
func ToBest(k Kind, value string) string {
	v, err := parseNumber(value)
	if err != nil {
		return ""
	}
	if _, ok := DefaultUnit(k); !ok {
		return ""
	}
	v = v.Truncate(0)

	if k != Time {
		u, _ := BestUnit(k, v)
		return formatQuantity(FromBase(v, u), u)
	}

	var parts []string
	for {
		u, _ := BestUnit(k, v)
		q := FromBase(v, u)
		whole := q.Truncate(0)
		if whole.Equal(q) {
			parts = append(parts, formatQuantity(q, u))
			break
		}
		parts = append(parts, whole.String()+u.Symbol)
		v = v.Sub(ToBase(whole, u))
	}
	return strings.Join(parts, " ")
}

// FormatBase is ToBest for an already-numeric base value.
func FormatBase(k Kind, v decimal.Decimal) string {
	return ToBest(k, v.String())
}

func formatQuantity(q decimal.Decimal, u Unit) string {
	return strings.Replace(q.String(), ".", ",", 1) + " " + u.Symbol
}

func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty number", ErrInvalidFormat)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidFormat, s)
	}
	return d, nil
}
