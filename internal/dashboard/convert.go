package dashboard

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// undefined stands in for a missing payload while converting. A result equal
// to it converts to no value at all.
const undefined = "UNDEFINED"

// ConversionRule replaces a payload equal to From (both trimmed) with To.
type ConversionRule struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Convert turns a raw payload into its display form. The boolean is false
// when there is nothing to display.
//
// Conversion rules are tried first and short-circuit everything else.
// Numeric payloads are then scaled by factor, shifted by offset, rounded to
// hundredths and formatted with the given number of decimals. Anything else
// is passed through unchanged.
func Convert(raw Value, rules []ConversionRule, factor, offset *float64, decimals int) (string, bool) {
	s := undefined
	if !raw.IsMissing() {
		s = raw.String()
	}

	if len(rules) > 0 {
		key := strings.TrimSpace(s)
		for _, r := range rules {
			if strings.TrimSpace(r.From) == key {
				return r.To, true
			}
		}
	}

	if f, ok := raw.Float(); ok {
		// The offset is only honored together with a factor.
		if set(factor) {
			f *= *factor
			if set(offset) {
				f += *offset
			}
		}
		return toFixed(math.Floor(f*100+0.5)/100, decimals), true
	}

	if s == undefined {
		return "", false
	}
	return s, true
}

func set(p *float64) bool {
	return p != nil && *p != 0 && !math.IsNaN(*p)
}

// toFixed formats f with exactly decimals fractional digits, rounding halves
// away from zero on the exact binary value.
func toFixed(f float64, decimals int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) >= 1e21:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return new(big.Rat).SetFloat64(f).FloatString(decimals)
}
