package core

import (
	"math"
	"strconv"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ContainsFold reports whether `sub` is within `s`, ignoring case.
func ContainsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// RoundHalfUp rounds half-way values towards +Inf.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// FormatScore renders a score without a trailing ".0" for whole numbers.
func FormatScore(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
