package netlist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edp1096/toy-schematic/pkg/util"
)

var unitMap = map[string]float64{
	"t":   1e12,  // tera
	"g":   1e9,   // giga
	"meg": 1e6,   // mega
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

// Scale factors are case-insensitive as in SPICE, so "M" is milli and
// mega is spelled "meg". Trailing unit letters ("uF", "kohm") are ignored.
var valueRe = regexp.MustCompile(`(?i)^([-+]?(?:\d+\.?\d*|\.\d+)(?:e[-+]?\d+)?)(meg|[tgkmunpf])?([a-z]*)$`)

func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	// factor
	if matches[2] != "" {
		num *= unitMap[strings.ToLower(matches[2])]
	}

	return num, nil
}

// FormatValue writes v with the largest scale factor that keeps the
// mantissa at or above 1, so that ParseValue reads it back.
func FormatValue(v float64) string {
	if v == 0 {
		return "0"
	}
	p, ok := util.ScalePrefix(v)
	if !ok {
		return strconv.FormatFloat(v, 'g', 12, 64)
	}
	return strconv.FormatFloat(v/p.Factor, 'g', 12, 64) + p.Spice
}
