package shared

import (
	"math"
	"strconv"
	"strings"
)

// SanitizeNumber maps NaN and infinities to zero
func SanitizeNumber(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseQuantity parses a decimal quantity string. Missing or malformed
// values yield 0 instead of an error.
func ParseQuantity(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return SanitizeNumber(f)
}

// ParseMinorUnits parses an integer amount in minor currency units.
// Malformed values yield 0.
func ParseMinorUnits(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
