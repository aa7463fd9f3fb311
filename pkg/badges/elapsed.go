package badges

import (
	"fmt"
	"strings"
	"time"
)

// MonthApprox is the fixed month length used for tenure calculations.
// It is deliberately not calendar aware: the tier thresholds are tuned to it.
const MonthApprox = 30 * 24 * time.Hour

// ElapsedMonths returns floor((now - start) / 30 days).
// A start in the future (clock skew) clamps to zero.
func ElapsedMonths(start, now time.Time) int {
	if now.Before(start) {
		return 0
	}
	return int(now.Sub(start) / MonthApprox)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02",
}

// ParseTimestamp parses an upstream timestamp such as premium_since.
// Discord emits ISO 8601 with microseconds and a numeric offset.
func ParseTimestamp(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, v)
}
