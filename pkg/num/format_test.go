package num

import (
	"testing"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{FromString("1234567.8912345678"), "1,234,567.891235"},
		{FromString("0.5"), "0.5"},
		{FromInt(1000), "1,000"},
		{FromInt(-42000), "-42,000"},
		{Indeterminate, "-"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(FromString("27123.456"), 2); got != "27,123.46" {
		t.Errorf("got %q", got)
	}
	if got := FormatPrice(FromString("1.5"), 4); got != "1.5000" {
		t.Errorf("got %q", got)
	}
	if got := FormatPrice(Indeterminate, 2); got != "-" {
		t.Errorf("got %q", got)
	}
}

func TestFormatDollar(t *testing.T) {
	if got := FormatDollar(FromString("1234.5")); got != "$1,234.50" {
		t.Errorf("got %q", got)
	}
	if got := FormatDollar(FromString("-1234.5")); got != "-$1,234.50" {
		t.Errorf("got %q", got)
	}
}

func TestFormatSignedDollar(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{FromInt(20), "+ $20.00"},
		{FromString("-3.456"), "- $3.46"},
		{Zero(), "$0.00"},
		{Indeterminate, "-"},
	}
	for _, tt := range tests {
		if got := FormatSignedDollar(tt.in); got != tt.want {
			t.Errorf("FormatSignedDollar(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(FromString("50")); got != "50.00%" {
		t.Errorf("got %q", got)
	}
	if got := FormatPercent(Indeterminate); got != "-" {
		t.Errorf("got %q", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	v := FromString("1.25")
	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"1.25"` {
		t.Errorf("got %s", data)
	}

	var back Value
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(v) {
		t.Errorf("round trip mismatch: %s", back.String())
	}

	var ind Value
	if err := ind.UnmarshalJSON([]byte(`"-"`)); err != nil {
		t.Fatalf("unmarshal indeterminate: %v", err)
	}
	if ind.Known() {
		t.Error(`"-" must decode to indeterminate`)
	}
}
