package util

import (
	"fmt"
	"strings"
	"time"
)

// FormatClock renders a timer face: MM:SS, or H:MM:SS from one hour up.
// Negative values render as zero.
func FormatClock(d time.Duration) string {
	total := int(d / time.Second)
	if total < 0 {
		total = 0
	}
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatHuman renders worked time for summaries, e.g. "45s", "25m", "2h 5m".
func FormatHuman(d time.Duration) string {
	total := int(d / time.Second)
	if total <= 0 {
		return "0s"
	}
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	h, m := total/3600, (total%3600)/60
	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	return strings.Join(parts, " ")
}

// Truncate shortens s to at most width runes, marking the cut with suffix.
func Truncate(s string, width int, suffix string) string {
	r := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(r) <= width {
		return s
	}
	sr := []rune(suffix)
	if width <= len(sr) {
		return string(r[:width])
	}
	return string(r[:width-len(sr)]) + suffix
}
