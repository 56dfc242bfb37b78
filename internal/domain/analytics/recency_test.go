package analytics

import (
	"testing"
	"time"
)

func TestNormalizeEmail(t *testing.T) {
	t.Run("trims and lower-cases", func(t *testing.T) {
		if got := NormalizeEmail("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
			t.Errorf("expected normalised email, got %q", got)
		}
	})

	t.Run("empty input yields no identity", func(t *testing.T) {
		if HasIdentity(NormalizeEmail("   ")) {
			t.Error("whitespace-only email should have no identity")
		}
	})
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	t.Run("nil timestamp returns nil", func(t *testing.T) {
		if DaysSince(nil, now) != nil {
			t.Error("expected nil for missing timestamp")
		}
	})

	t.Run("floor division, no rounding up", func(t *testing.T) {
		seen := now.Add(-36 * time.Hour)
		d := DaysSince(&seen, now)
		if d == nil || *d != 1 {
			t.Errorf("expected 1 day for 36h, got %v", d)
		}
	})

	t.Run("future timestamp clamps to zero", func(t *testing.T) {
		seen := now.Add(2 * time.Hour)
		d := DaysSince(&seen, now)
		if d == nil || *d != 0 {
			t.Errorf("expected 0 days, got %v", d)
		}
	})

	t.Run("ceiling substituted for never observed", func(t *testing.T) {
		if got := DaysSinceOrCeiling(nil, now); got != ActivityCeilingDays {
			t.Errorf("expected sentinel ceiling %d, got %d", ActivityCeilingDays, got)
		}
	})
}
