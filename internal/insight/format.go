package insight

import (
	"fmt"
	"strings"
)

func millions(v float64) string {
	return fmt.Sprintf("$%.1fM", v/1_000_000)
}

func thousands(v float64) string {
	return fmt.Sprintf("$%.1fK", v/1_000)
}

// currency formats in millions or billions depending on magnitude.
func currency(v float64) string {
	if abs(v) >= 1_000_000_000 {
		return fmt.Sprintf("$%.1fB", v/1_000_000_000)
	}
	return millions(v)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// ratio divides with a zero-denominator guard.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func join(parts []string) string {
	return strings.Join(parts, ". ") + "."
}
