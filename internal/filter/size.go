package filter

import (
	"regexp"
	"strconv"
	"strings"
)

var sizeRe = regexp.MustCompile(`(?i)^\s*([\d,]+(?:\.\d+)?)\s*([a-z]*)\s*$`)

var sizeUnits = map[string]float64{
	"b":   1,
	"kb":  1000,
	"mb":  1000 * 1000,
	"gb":  1000 * 1000 * 1000,
	"tb":  1000 * 1000 * 1000 * 1000,
	"kib": 1024,
	"mib": 1024 * 1024,
	"gib": 1024 * 1024 * 1024,
	"tib": 1024 * 1024 * 1024 * 1024,
}

// ParseSize parses a human size string ("1 GiB", "500 MB", "1,500") into a
// byte count. Decimal units (kb/mb/gb/tb) are base 1000; binary units
// (kib/mib/gib/tib) are base 1024. Used by the result builder, not exposed
// as a named pipeline filter.
func ParseSize(s string) (uint64, bool) {
	m := sizeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	numStr := strings.ReplaceAll(m[1], ",", "")
	n, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, false
	}
	unit := strings.ToLower(m[2])
	if unit == "" {
		unit = "b"
	}
	mult, ok := sizeUnits[unit]
	if !ok {
		return 0, false
	}
	return uint64(n * mult), true
}
