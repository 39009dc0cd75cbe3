package measure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the physical dimension a measured category records.
type Kind string

const (
	Volume Kind = "volume"
	Time   Kind = "time"
	Mass   Kind = "mass"
)

var (
	ErrInvalidFormat = errors.New("invalid measurement")
	ErrWrongUnitKind = errors.New("wrong unit kind")
	ErrUnknownUnit   = errors.New("unknown unit")
)

// Unit is one accepted unit. Factor is the number of base units per unit.
type Unit struct {
	Name   string // lower-case input name, e.g. "ml"
	Symbol string // display symbol, e.g. "mL"
	Kind   Kind
	Factor decimal.Decimal
}

func unit(name, symbol string, kind Kind, factor string) Unit {
	return Unit{Name: name, Symbol: symbol, Kind: kind, Factor: decimal.RequireFromString(factor)}
}

var units = map[string]Unit{
	"ml":  unit("ml", "mL", Volume, "1"),
	"cl":  unit("cl", "cL", Volume, "10"),
	"dl":  unit("dl", "dL", Volume, "100"),
	"l":   unit("l", "L", Volume, "1000"),
	"mg":  unit("mg", "mg", Mass, "0.001"),
	"g":   unit("g", "g", Mass, "1"),
	"kg":  unit("kg", "kg", Mass, "1000"),
	"ms":  unit("ms", "ms", Time, "0.001"),
	"s":   unit("s", "s", Time, "1"),
	"sec": unit("s", "s", Time, "1"),
	"min": unit("min", "min", Time, "60"),
	"h":   unit("h", "h", Time, "3600"),
	"d":   unit("d", "d", Time, "86400"),
}

// Display ladders, smallest first. Best-unit selection never goes below the base unit.
var ladders = map[Kind][]string{
	Volume: {"ml", "l"},
	Mass:   {"g", "kg"},
	Time:   {"s", "min", "h", "d"},
}

var examples = map[Kind]string{
	Volume: "ml, l, cl, dl",
	Time:   "s, min, h, d, ms",
	Mass:   "g, kg, mg",
}

// KindOf maps a category config string to its measure kind.
func KindOf(config string) (Kind, bool) {
	switch k := Kind(config); k {
	case Volume, Time, Mass:
		return k, true
	}
	return "", false
}

// Examples lists the units accepted for k, for error messages and hints.
func Examples(k Kind) string {
	return examples[k]
}

// LookupUnit resolves a unit name case-insensitively.
func LookupUnit(name string) (Unit, error) {
	u, ok := units[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Unit{}, fmt.Errorf("%w %q", ErrUnknownUnit, name)
	}
	return u, nil
}

// DefaultUnit returns the canonical storage unit: ml, s or g.
func DefaultUnit(k Kind) (Unit, bool) {
	switch k {
	case Volume:
		return units["ml"], true
	case Time:
		return units["s"], true
	case Mass:
		return units["g"], true
	}
	return Unit{}, false
}

// BestUnit picks the largest display unit in which v (given in base units)
// is at least 1. Zero and tiny values stay in the base unit.
func BestUnit(k Kind, v decimal.Decimal) (Unit, bool) {
	ladder, ok := ladders[k]
	if !ok {
		return Unit{}, false
	}
	best := units[ladder[0]]
	abs := v.Abs()
	for _, name := range ladder[1:] {
		u := units[name]
		if abs.GreaterThanOrEqual(u.Factor) {
			best = u
		}
	}
	return best, true
}

// FromBase expresses a base-unit quantity in u.
func FromBase(v decimal.Decimal, u Unit) decimal.Decimal {
	if u.Factor.IsZero() {
		return v
	}
	return v.DivRound(u.Factor, 12)
}

// ToBase expresses a quantity in u as base units.
func ToBase(v decimal.Decimal, u Unit) decimal.Decimal {
	return v.Mul(u.Factor)
}
