// Package eligibility decides whether a recipient should receive a
// notification right now, based on their stored preferences. All
// functions are pure; the daily cap is enforced by the dispatch engine,
// not here.
package eligibility

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/faithbridge/notify/internal/model"
)

// IsEligible reports whether a notification of the given category may be
// delivered at now (recipient-local time). Checks short-circuit in
// order: global switch, category toggle, quiet hours.
func IsEligible(p model.Preferences, category model.Category, now time.Time) bool {
	if !p.Enabled {
		return false
	}

	if !p.CategoryEnabled(category) {
		return false
	}

	if p.QuietHours.Enabled && InQuietHours(p.QuietHours, now) {
		return false
	}

	return true
}

// InQuietHours reports whether now falls inside the [start, end) window.
// start >= end means the window wraps past midnight; equal bounds match
// every time of day (a deliberate full-day quiet window, not an empty
// one). Unparseable bounds disable the window rather than blocking all
// delivery.
func InQuietHours(q model.QuietHours, now time.Time) bool {
	start, err := parseClock(q.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(q.End)
	if err != nil {
		return false
	}

	cur := now.Hour()*60 + now.Minute()

	if start < end {
		return cur >= start && cur < end
	}
	return cur >= start || cur < end
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}

	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}

	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	return hours*60 + minutes, nil
}
