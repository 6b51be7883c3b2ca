package schema

import (
	"math"
	"strconv"
)

// RoundOneDecimal rounds v half away from zero to one decimal place.
// Every percentage shown in findings and rendered documents goes through it.
func RoundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

// Percent returns part/total as a percentage rounded to one decimal.
// A zero total yields 0.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return RoundOneDecimal(float64(part) / float64(total) * 100)
}

// FormatPercent renders a percentage with exactly one decimal.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(RoundOneDecimal(v), 'f', 1, 64) + "%"
}

// ShortSHA truncates a commit id to 7 characters.
func ShortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
