package textutil

import (
	"fmt"
	"time"
)

const absoluteLayout = "2006-01-02 15:04:05"

// FormatRelative renders t relative to now using the coarsest whole unit:
// "Just now" under a minute, then minutes, hours, and days.
func FormatRelative(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return pluralAgo(int(diff/time.Minute), "minute")
	case diff < 24*time.Hour:
		return pluralAgo(int(diff/time.Hour), "hour")
	default:
		return pluralAgo(int(diff/(24*time.Hour)), "day")
	}
}

// FormatAbsolute renders t in local time.
func FormatAbsolute(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format(absoluteLayout)
}

func pluralAgo(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
