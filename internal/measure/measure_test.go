package measure

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// ============================================================
// Units
// ============================================================

func TestDefaultUnit(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Volume, "ml"},
		{Time, "s"},
		{Mass, "g"},
	}
	for _, tt := range tests {
		u, ok := DefaultUnit(tt.kind)
		if !ok || u.Name != tt.want {
			t.Errorf("DefaultUnit(%s) = %q, %v; want %q", tt.kind, u.Name, ok, tt.want)
		}
	}
	if _, ok := DefaultUnit("count"); ok {
		t.Fatal("expected no default unit for a non-measured config")
	}
}

func TestKindOf(t *testing.T) {
	if k, ok := KindOf("volume"); !ok || k != Volume {
		t.Fatalf("KindOf(volume) = %q, %v", k, ok)
	}
	if _, ok := KindOf("glasses"); ok {
		t.Fatal("arbitrary labels are not measure kinds")
	}
	if _, ok := KindOf(""); ok {
		t.Fatal("empty config is not a measure kind")
	}
}

// ============================================================
// ToDefault
// ============================================================

func TestToDefault(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		unit  string
		value string
		want  int64
	}{
		{"liters", Volume, "l", "2", 2000},
		{"centiliters", Volume, "cl", "50", 500},
		{"deciliters", Volume, "dl", "5", 500},
		{"milliliters", Volume, "ml", "500", 500},
		{"fractional liters", Volume, "l", "2.5", 2500},
		{"comma decimal", Volume, "l", "2,5", 2500},
		{"minutes", Time, "min", "5", 300},
		{"hours", Time, "h", "1", 3600},
		{"days", Time, "d", "1", 86400},
		{"seconds", Time, "s", "60", 60},
		{"kilograms", Mass, "kg", "2", 2000},
		{"milligrams", Mass, "mg", "1000", 1},
		{"milligrams floor", Mass, "mg", "500", 0},
		{"grams", Mass, "g", "100", 100},
		{"upper-case unit", Volume, "L", "1", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToDefault(tt.kind, tt.unit, tt.value)
			if err != nil {
				t.Fatalf("ToDefault: %v", err)
			}
			if got != tt.want {
				t.Errorf("ToDefault(%s, %q, %q) = %d, want %d", tt.kind, tt.unit, tt.value, got, tt.want)
			}
		})
	}
}

func TestToDefaultErrors(t *testing.T) {
	if _, err := ToDefault(Volume, "xyz", "1"); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("unknown unit: got %v", err)
	}
	if _, err := ToDefault(Volume, "s", "1"); !errors.Is(err, ErrWrongUnitKind) {
		t.Fatalf("wrong kind: got %v", err)
	}
	if _, err := ToDefault(Volume, "l", "abc"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("bad number: got %v", err)
	}
	if _, err := ToDefault("", "l", "1"); err == nil {
		t.Fatal("expected error for a category without a measure")
	}
}

// ============================================================
// ToBest
// ============================================================

func TestToBest(t *testing.T) {
	tests := []struct {
		kind  Kind
		value string
		want  string
	}{
		{Volume, "2500", "2,5 L"},
		{Volume, "50", "50 mL"},
		{Volume, "1000", "1 L"},
		{Volume, "0", "0 mL"},
		{Mass, "2500", "2,5 kg"},
		{Mass, "50", "50 g"},
		{Time, "5400", "1h 30 min"},
		{Time, "3600", "1 h"},
		{Time, "300", "5 min"},
		{Time, "3661", "1h 1min 1 s"},
		{Time, "30", "30 s"},
		{Time, "90000", "1d 1 h"},
	}
	for _, tt := range tests {
		if got := ToBest(tt.kind, tt.value); got != tt.want {
			t.Errorf("ToBest(%s, %s) = %q, want %q", tt.kind, tt.value, got, tt.want)
		}
	}
}

func TestToBestInvalid(t *testing.T) {
	if got := ToBest(Volume, "abc"); got != "" {
		t.Fatalf("non-numeric: got %q", got)
	}
	if got := ToBest("", "1000"); got != "" {
		t.Fatalf("empty config: got %q", got)
	}
}

func TestBestRoundTrip(t *testing.T) {
	for _, v := range []int64{1, 50, 999, 1000, 2500, 12345} {
		s := ToBest(Volume, strconv.FormatInt(v, 10))
		q, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := q.Base.IntPart(); got != v {
			t.Errorf("round trip %d -> %q -> %d", v, s, got)
		}
	}
	got, err := ToDefault(Volume, "l", "2,5")
	if err != nil || got != 2500 {
		t.Fatalf("ToDefault(l, 2,5) = %d, %v", got, err)
	}
}

func TestBestUnit(t *testing.T) {
	u, _ := BestUnit(Time, decimal.NewFromInt(59))
	if u.Name != "s" {
		t.Fatalf("59s best unit = %s", u.Name)
	}
	u, _ = BestUnit(Time, decimal.NewFromInt(7200))
	if u.Name != "h" {
		t.Fatalf("7200s best unit = %s", u.Name)
	}
}

// ============================================================
// Parse / Validate
// ============================================================

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		base string
	}{
		{"500ml", Volume, "500"},
		{"2,5 l", Volume, "2500"},
		{"50cl", Volume, "500"},
		{"1h 30min", Time, "5400"},
		{"1000ms", Time, "1"},
		{"2kg", Mass, "2000"},
	}
	for _, tt := range tests {
		q, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if q.Kind != tt.kind || !q.Base.Equal(decimal.RequireFromString(tt.base)) {
			t.Errorf("Parse(%q) = %s %s, want %s %s", tt.in, q.Kind, q.Base, tt.kind, tt.base)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		want error
	}{
		{"", Volume, nil},
		{"   ", Volume, nil},
		{"500ml", Volume, nil},
		{"2,5l", Volume, nil},
		{"500 ml", Volume, nil},
		{"5dl", Volume, nil},
		{"1h 30min", Time, nil},
		{"1d", Time, nil},
		{"500mg", Mass, nil},
		{"500ml", "", nil},
		{"500ml", Time, ErrWrongUnitKind},
		{"30s", Volume, ErrWrongUnitKind},
		{"100g", Time, ErrWrongUnitKind},
		{"abc", Volume, ErrInvalidFormat},
		{"500", Volume, ErrInvalidFormat},
		{"500xyz", Volume, ErrInvalidFormat},
		{"1h 500ml", Time, ErrInvalidFormat},
		{"abc", "", ErrInvalidFormat},
	}
	for _, tt := range tests {
		err := Validate(tt.in, tt.kind)
		if tt.want == nil {
			if err != nil {
				t.Errorf("Validate(%q, %s) = %v, want nil", tt.in, tt.kind, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("Validate(%q, %s) = %v, want %v", tt.in, tt.kind, err, tt.want)
		}
	}
}

func TestValidateHintsUnits(t *testing.T) {
	err := Validate("abc", Time)
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "s, min, h, d, ms"; !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not list %q", err, want)
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("1,5 l", Volume)
	if err != nil || got != "1500" {
		t.Fatalf("Normalize = %q, %v", got, err)
	}
	got, err = Normalize("1500mg", Mass)
	if err != nil || got != "1" {
		t.Fatalf("Normalize floor = %q, %v", got, err)
	}
	if _, err := Normalize("", Volume); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("empty input: got %v", err)
	}
}

