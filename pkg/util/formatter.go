package util

import (
	"fmt"
	"math"
)

// Prefix is an SI scale factor. Symbol is the display form and Spice the
// netlist spelling, which differ only for mega.
type Prefix struct {
	Factor float64
	Symbol string
	Spice  string
}

var Prefixes = []Prefix{
	{1e12, "T", "T"},
	{1e9, "G", "G"},
	{1e6, "M", "meg"},
	{1e3, "k", "k"},
	{1, "", ""},
	{1e-3, "m", "m"},
	{1e-6, "u", "u"},
	{1e-9, "n", "n"},
	{1e-12, "p", "p"},
	{1e-15, "f", "f"},
}

// ScalePrefix picks the largest prefix that keeps the mantissa of v at or
// above 1. It reports false for zero, non-finite values and magnitudes
// below the smallest prefix.
func ScalePrefix(v float64) (Prefix, bool) {
	abs := math.Abs(v)
	if abs == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return Prefix{Factor: 1}, false
	}
	for _, p := range Prefixes {
		// tolerate 0.9999999999 from a solve landing just under a decade
		if abs >= p.Factor*(1-1e-12) {
			return p, true
		}
	}
	return Prefix{Factor: 1}, false
}

func FormatValueFactor(value float64, unit string) string {
	if value == 0 {
		return fmt.Sprintf("%.3f %s", 0.0, unit)
	}
	p, ok := ScalePrefix(value)
	if !ok {
		return fmt.Sprintf("%.3e %s", value, unit)
	}
	return fmt.Sprintf("%.3f %s%s", value/p.Factor, p.Symbol, unit)
}

func FormatFrequency(freq float64) string {
	switch {
	case freq >= 1e9:
		return fmt.Sprintf("%7.3f GHz", freq/1e9)
	case freq >= 1e6:
		return fmt.Sprintf("%7.3f MHz", freq/1e6)
	case freq >= 1e3:
		return fmt.Sprintf("%7.3f kHz", freq/1e3)
	default:
		return fmt.Sprintf("%7.3f Hz ", freq)
	}
}

func FormatMagnitudePhase(name string, value, phase float64) string {
	return fmt.Sprintf("%s=%s<%sdeg", name, FormatMagnitude(value), FormatPhase(phase))
}

func FormatMagnitude(value float64) string {
	if value == 0 {
		value = 0 // drop the sign of -0
	}
	if value >= 1000 || value < 0.001 {
		return fmt.Sprintf("%8.2e", value) // "1.00e+03" or "5.43e-05"
	}
	return fmt.Sprintf("%8.3g", value) // "   0.732"
}

// FormatPhase prints degrees with one decimal and never "-0.0".
func FormatPhase(value float64) string {
	if math.Abs(value) < 0.05 {
		value = 0
	}
	return fmt.Sprintf("%6.1f", value)
}
