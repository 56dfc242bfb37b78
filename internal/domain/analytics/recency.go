package analytics

import "time"

// ActivityCeilingDays is the sentinel standing in for "no activity observed
// within the lookback window". It is the ceiling substituted for a nil
// recency inside aggregate math, and the forced median when an organisation
// has no qualifying users for a surface.
const ActivityCeilingDays = 240

// NeverActiveDays is the placeholder recency used by the churn-risk
// classifier for profiles that have never been active on any surface.
const NeverActiveDays = 999

// DaysSince converts a last-activity timestamp into whole days elapsed
// before now (floor division, never rounded up). It returns nil when no
// timestamp is available; nil only ever appears at this boundary, callers
// needing a numeric placeholder substitute ActivityCeilingDays.
func DaysSince(lastSeen *time.Time, now time.Time) *int {
	if lastSeen == nil {
		return nil
	}
	days := int(now.Sub(*lastSeen).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}

// DaysSinceOrCeiling is DaysSince with the sentinel ceiling substituted for
// "never observed".
func DaysSinceOrCeiling(lastSeen *time.Time, now time.Time) int {
	if d := DaysSince(lastSeen, now); d != nil {
		return *d
	}
	return ActivityCeilingDays
}
