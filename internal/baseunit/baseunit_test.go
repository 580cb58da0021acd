package baseunit

import (
	"strings"
	"testing"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int
		want     string
	}{
		{"usdc_like", "1.25", 6, "1250000"},
		{"eth_like_small", "0.000001", 18, "1000000000000"},
		{"whole_number", "42", 18, "42000000000000000000"},
		{"zero", "0", 18, "0"},
		{"zero_with_fraction", "0.000", 6, "0"},
		{"zero_decimals", "123", 0, "123"},
		{"leading_zeros", "007.5", 2, "750"},
		{"trailing_fraction_zeros", "1.500000000", 6, "1500000"},
		{"exponent_negative", "1e-7", 18, "100000000000"},
		{"exponent_positive", "2.5e3", 2, "250000"},
		{"exponent_upper", "1E-6", 6, "1"},
		{"max_precision", "0.123456789012345678", 18, "123456789012345678"},
		{"no_integer_part", ".5", 6, "500000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(tt.amount, tt.decimals)
			if err != nil {
				t.Fatalf("ToBaseUnits(%q, %d): %v", tt.amount, tt.decimals, err)
			}
			if got != tt.want {
				t.Errorf("ToBaseUnits(%q, %d) = %q, want %q", tt.amount, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestToBaseUnits_Errors(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int
	}{
		{"empty", "", 18},
		{"negative", "-1", 18},
		{"not_a_number", "abc", 18},
		{"double_point", "1.2.3", 18},
		{"bare_point", ".", 18},
		{"too_many_decimals", "1.1234567", 6},
		{"exponent_too_precise", "1e-7", 6},
		{"negative_decimals", "1", -1},
		{"hex", "0x10", 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := ToBaseUnits(tt.amount, tt.decimals); err == nil {
				t.Errorf("ToBaseUnits(%q, %d) = %q, want error", tt.amount, tt.decimals, got)
			}
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals int
		want     string
	}{
		{"usdc_like", "1250000", 6, "1.25"},
		{"pads_left", "1", 18, "0.000000000000000001"},
		{"strips_trailing_zeros", "1500000", 6, "1.5"},
		{"keeps_integer_part", "1000000", 6, "1"},
		{"zero", "0", 18, "0"},
		{"zero_many", "000", 6, "0"},
		{"zero_decimals", "123", 0, "123"},
		{"shorter_than_decimals", "42", 6, "0.000042"},
		{"leading_zeros", "0001250000", 6, "1.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromBaseUnits(tt.raw, tt.decimals)
			if err != nil {
				t.Fatalf("FromBaseUnits(%q, %d): %v", tt.raw, tt.decimals, err)
			}
			if got != tt.want {
				t.Errorf("FromBaseUnits(%q, %d) = %q, want %q", tt.raw, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFromBaseUnits_Errors(t *testing.T) {
	for _, raw := range []string{"", "-1", "1.5", "1e5", "abc"} {
		if got, err := FromBaseUnits(raw, 6); err == nil {
			t.Errorf("FromBaseUnits(%q, 6) = %q, want error", raw, got)
		}
	}
}

// Round trip: FromBaseUnits(ToBaseUnits(x, d), d) must equal x up to
// trailing-zero normalization for every supported precision.
func TestRoundTrip(t *testing.T) {
	amounts := []string{
		"0", "1", "1.5", "1.50", "0.25", "123456.789", "0.000000000000000001",
		"999999999999", "0.1", "42.000001",
	}

	for d := 0; d <= 18; d++ {
		for _, x := range amounts {
			want, err := Normalize(x)
			if err != nil {
				t.Fatalf("Normalize(%q): %v", x, err)
			}

			base, err := ToBaseUnits(x, d)
			if err != nil {
				// Amounts finer than the precision cannot round trip.
				if strings.Contains(err.Error(), "fractional digits") {
					continue
				}
				t.Fatalf("ToBaseUnits(%q, %d): %v", x, d, err)
			}

			got, err := FromBaseUnits(base, d)
			if err != nil {
				t.Fatalf("FromBaseUnits(%q, %d): %v", base, d, err)
			}
			if got != want {
				t.Errorf("round trip %q at %d decimals = %q, want %q", x, d, got, want)
			}
		}
	}
}

// The codec must never leak scientific notation, whatever the scale.
func TestNoScientificNotation(t *testing.T) {
	cases := []struct {
		amount   string
		decimals int
	}{
		{"0.0000001", 18},
		{"1e-7", 18},
		{"123456789.123456789", 18},
		{"9e17", 18},
	}

	for _, c := range cases {
		base, err := ToBaseUnits(c.amount, c.decimals)
		if err != nil {
			t.Fatalf("ToBaseUnits(%q, %d): %v", c.amount, c.decimals, err)
		}
		if strings.ContainsAny(base, "eE") {
			t.Errorf("ToBaseUnits(%q) leaked exponent: %q", c.amount, base)
		}

		dec, err := FromBaseUnits(base, c.decimals)
		if err != nil {
			t.Fatalf("FromBaseUnits(%q, %d): %v", base, c.decimals, err)
		}
		if strings.ContainsAny(dec, "eE") {
			t.Errorf("FromBaseUnits(%q) leaked exponent: %q", base, dec)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1.50", "1.5"},
		{"01.50", "1.5"},
		{"1e-7", "0.0000001"},
		{"2.5E+3", "2500"},
		{"0.0", "0"},
		{"000", "0"},
		{".5", "0.5"},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
