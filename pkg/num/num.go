package num

import (
	"github.com/shopspring/decimal"
)

// WeiScale is the fixed-point scale of subgraph numeric strings.
const WeiScale = 18

// Value is a decimal that is either determinate or indeterminate.
// Indeterminate replaces NaN/Infinity: any arithmetic on a missing price,
// an unparsable string or a zero divisor yields an indeterminate value
// instead of panicking or propagating garbage.
type Value struct {
	d  decimal.Decimal
	ok bool
}

// Indeterminate is the zero Value.
var Indeterminate = Value{}

func Zero() Value {
	return Value{ok: true}
}

func FromDecimal(d decimal.Decimal) Value {
	return Value{d: d, ok: true}
}

func FromInt(i int64) Value {
	return Value{d: decimal.NewFromInt(i), ok: true}
}

func FromFloat(f float64) Value {
	return Value{d: decimal.NewFromFloat(f), ok: true}
}

// FromString parses a plain decimal string. An empty or unparsable string
// yields Indeterminate; the caller decides whether that is worth logging.
func FromString(s string) Value {
	if s == "" {
		return Indeterminate
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Indeterminate
	}
	return Value{d: d, ok: true}
}

// FromWei parses a wei-scaled (1e18) integer string as emitted by the subgraph.
func FromWei(s string) Value {
	v := FromString(s)
	if !v.ok {
		return Indeterminate
	}
	return Value{d: v.d.Shift(-WeiScale), ok: true}
}

// Known reports whether the value is determinate.
func (v Value) Known() bool {
	return v.ok
}

// Decimal returns the underlying decimal; the bool is false for Indeterminate.
func (v Value) Decimal() (decimal.Decimal, bool) {
	return v.d, v.ok
}

// Float64 is for tests and logging only; display paths go through format.go.
func (v Value) Float64() float64 {
	f, _ := v.d.Float64()
	return f
}

func (v Value) Add(o Value) Value {
	if !v.ok || !o.ok {
		return Indeterminate
	}
	return Value{d: v.d.Add(o.d), ok: true}
}

func (v Value) Sub(o Value) Value {
	if !v.ok || !o.ok {
		return Indeterminate
	}
	return Value{d: v.d.Sub(o.d), ok: true}
}

func (v Value) Mul(o Value) Value {
	if !v.ok || !o.ok {
		return Indeterminate
	}
	return Value{d: v.d.Mul(o.d), ok: true}
}

// Div guards the zero divisor: x/0 is Indeterminate, never a panic.
func (v Value) Div(o Value) Value {
	if !v.ok || !o.ok || o.d.IsZero() {
		return Indeterminate
	}
	return Value{d: v.d.Div(o.d), ok: true}
}

func (v Value) Neg() Value {
	if !v.ok {
		return Indeterminate
	}
	return Value{d: v.d.Neg(), ok: true}
}

func (v Value) Abs() Value {
	if !v.ok {
		return Indeterminate
	}
	return Value{d: v.d.Abs(), ok: true}
}

// Round rounds half away from zero to the given decimal places.
func (v Value) Round(places int32) Value {
	if !v.ok {
		return Indeterminate
	}
	return Value{d: v.d.Round(places), ok: true}
}

// RoundDown truncates toward zero to the given decimal places.
func (v Value) RoundDown(places int32) Value {
	if !v.ok {
		return Indeterminate
	}
	return Value{d: v.d.RoundDown(places), ok: true}
}

// comparison predicates are all false for Indeterminate, so branching on
// them degrades to the neutral display path instead of picking a side

func (v Value) IsZero() bool {
	return v.ok && v.d.IsZero()
}

func (v Value) IsPositive() bool {
	return v.ok && v.d.IsPositive()
}

func (v Value) IsNegative() bool {
	return v.ok && v.d.IsNegative()
}

func (v Value) GreaterThan(o Value) bool {
	return v.ok && o.ok && v.d.GreaterThan(o.d)
}

func (v Value) GreaterThanOrEqual(o Value) bool {
	return v.ok && o.ok && v.d.GreaterThanOrEqual(o.d)
}

func (v Value) LessThan(o Value) bool {
	return v.ok && o.ok && v.d.LessThan(o.d)
}

func (v Value) LessThanOrEqual(o Value) bool {
	return v.ok && o.ok && v.d.LessThanOrEqual(o.d)
}

func (v Value) Equal(o Value) bool {
	return v.ok && o.ok && v.d.Equal(o.d)
}

// Min returns the smaller of the two; indeterminate operands poison the result.
func Min(a, b Value) Value {
	if !a.ok || !b.ok {
		return Indeterminate
	}
	if a.d.LessThan(b.d) {
		return a
	}
	return b
}

func Max(a, b Value) Value {
	if !a.ok || !b.ok {
		return Indeterminate
	}
	if a.d.GreaterThan(b.d) {
		return a
	}
	return b
}
