package config

import "testing"

func TestConstants(t *testing.T) {
	if DefaultWorkDuration <= 0 {
		t.Fatalf("DefaultWorkDuration must be positive")
	}
	if BreakDuration.Seconds() != 300 {
		t.Fatalf("BreakDuration must be five minutes, got %s", BreakDuration)
	}
	if SkipThreshold <= 0 || SkipThreshold >= 1 {
		t.Fatalf("SkipThreshold must be a fraction, got %v", SkipThreshold)
	}
	if TickInterval <= 0 {
		t.Fatalf("TickInterval must be positive")
	}
	if AppName == "" {
		t.Fatalf("AppName should not be empty")
	}
	if DBFileName == "" {
		t.Fatalf("DBFileName should not be empty")
	}
	if MaxTargetMinutes != 24*60 {
		t.Fatalf("unexpected MaxTargetMinutes %d", MaxTargetMinutes)
	}
}
