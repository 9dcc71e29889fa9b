package util

import (
	"testing"
	"time"
)

func TestFormatClock(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
		{25 * time.Minute, "25:00"},
		{1500*time.Second - 1, "24:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tc := range cases {
		if got := FormatClock(tc.in); got != tc.want {
			t.Fatalf("FormatClock(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatHuman(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{25 * time.Minute, "25m"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
		{3 * time.Hour, "3h"},
	}
	for _, tc := range cases {
		if got := FormatHuman(tc.in); got != tc.want {
			t.Fatalf("FormatHuman(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("deep work", 20, "..."); got != "deep work" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("deep work session", 8, "..."); got != "deep ..." {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abc", 0, "..."); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
