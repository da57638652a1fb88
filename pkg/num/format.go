package num

import (
	"encoding/json"
	"strings"
)

// IndeterminateMark is what every formatter renders for a value that could
// not be computed; never "0", which would imply a worthless position.
const IndeterminateMark = "-"

// String renders the bare decimal, or "-" when indeterminate.
func (v Value) String() string {
	if !v.ok {
		return IndeterminateMark
	}
	return v.d.String()
}

// MarshalJSON renders the bare decimal as a JSON string, "-" when
// indeterminate, matching String.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts a JSON string or number; "-" and anything
// unparseable decode to Indeterminate.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	*v = FromString(s)
	return nil
}

// FormatAmount renders with thousands separators and at most six decimal
// places, trailing zeros trimmed.
func FormatAmount(v Value) string {
	if !v.ok {
		return IndeterminateMark
	}
	return groupThousands(v.d.Round(6).String())
}

// FormatPrice renders at the market's price precision, grouped.
func FormatPrice(v Value, precision int32) string {
	if !v.ok {
		return IndeterminateMark
	}
	return groupThousands(v.d.StringFixed(precision))
}

// FormatDollar renders "$1,234.56"; negatives come out as "-$1,234.56".
func FormatDollar(v Value) string {
	if !v.ok {
		return IndeterminateMark
	}
	if v.d.IsNegative() {
		return "-$" + groupThousands(v.d.Abs().StringFixed(2))
	}
	return "$" + groupThousands(v.d.StringFixed(2))
}

// FormatSignedDollar renders PnL display values: strictly positive values
// are prefixed "+ $", strictly negative "- $" with the magnitude shown as
// an absolute value, zero carries no prefix.
func FormatSignedDollar(v Value) string {
	if !v.ok {
		return IndeterminateMark
	}
	switch {
	case v.d.IsPositive():
		return "+ $" + groupThousands(v.d.StringFixed(2))
	case v.d.IsNegative():
		return "- $" + groupThousands(v.d.Abs().StringFixed(2))
	default:
		return "$" + v.d.StringFixed(2)
	}
}

// FormatPercent renders with two decimal places and a trailing "%".
func FormatPercent(v Value) string {
	if !v.ok {
		return IndeterminateMark
	}
	return v.d.StringFixed(2) + "%"
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}
	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	if neg {
		return "-" + intPart + fracPart
	}
	return intPart + fracPart
}
