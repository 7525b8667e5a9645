package web

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Won formats a price with thousands separators and the 원 unit.
func Won(v float64) string {
	return humanize.CommafWithDigits(v, 2) + "원"
}

// Shares formats a volume with the 주 unit.
func Shares(v int64) string {
	return humanize.Comma(v) + "주"
}

// Change formats a close-to-close move, e.g. "+1,500원 (+2.10%)".
func Change(diff, rate float64) string {
	sign := ""
	if diff > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%s (%+.2f%%)", sign, Won(diff), rate)
}

// HighLow formats the day's range as "high / low".
func HighLow(high, low float64) string {
	return humanize.CommafWithDigits(high, 2) + " / " + humanize.CommafWithDigits(low, 2)
}

// Number formats a plain value with separators.
func Number(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

// MA formats an optional moving average; undefined values render as "-".
func MA(v *float64) string {
	if v == nil {
		return "-"
	}
	return humanize.CommafWithDigits(*v, 2)
}

// Trend classifies a move for CSS: up (red), down (blue) or flat.
func Trend(diff float64) string {
	switch {
	case diff > 0:
		return "up"
	case diff < 0:
		return "down"
	default:
		return "flat"
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
