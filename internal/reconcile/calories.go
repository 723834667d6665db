package reconcile

import (
	"math"
	"strconv"
	"strings"
)

// CoerceCalories normalizes a calorie cell. Blank, non-numeric, NaN,
// infinite and negative values become "0"; numbers are printed in their
// shortest form, so "52.0" and "52" are equal.
func CoerceCalories(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return "0"
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return "0"
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}
