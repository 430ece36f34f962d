package main

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

/* ======================
   Number Formatting
   ====================== */

// FormatMoney renders a currency amount with suffixed magnitude tiers.
// Thresholds are inclusive and checked top down; sub-thousand amounts get
// comma grouping.
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	switch {
	case v >= 1e18:
		return fmt.Sprintf("%.3f Qt", v/1e18)
	case v >= 1e15:
		return fmt.Sprintf("%.3f Qd", v/1e15)
	case v >= 1e12:
		return fmt.Sprintf("%.2f T", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.2f B", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2f M", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return humanize.Comma(int64(math.Floor(v)))
	}
}

// FormatRate renders a per-second production rate.
func FormatRate(v float64) string {
	return FormatMoney(v) + "/sec"
}
