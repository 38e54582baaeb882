// Package schedule computes device refresh intervals from weekly
// time-window schedules.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eink-server/eink-display-server/internal/models"
)

// CalculateRefreshRate returns the refresh rate in seconds for the given
// instant. Windows are scanned in declared order and the first match wins;
// if none match, defaultRate is returned. Matching is done against the
// clock in the schedule's timezone. The function has no side effects: the
// instant is injected so callers and tests control "now".
func CalculateRefreshRate(schedule *models.RefreshSchedule, defaultRate int, timezone string, now time.Time) int {
	if schedule == nil || len(schedule.Windows) == 0 {
		return defaultRate
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	minute := local.Hour()*60 + local.Minute()
	day := local.Weekday()

	for _, w := range schedule.Windows {
		if matches(w, day, minute) {
			return w.Rate
		}
	}

	return defaultRate
}

// matches reports whether the closed-open window [start, end) contains the
// given local weekday and minute-of-day. A window whose end is not after
// its start wraps past midnight: it matches from start on a listed day and
// until end on the following morning.
func matches(w models.TimeWindow, day time.Weekday, minute int) bool {
	start, err := parseClock(w.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(w.End)
	if err != nil {
		return false
	}

	if end > start {
		return dayEnabled(w.Days, day) && minute >= start && minute < end
	}

	// Wrapping window. The tail end belongs to the day the window started.
	if dayEnabled(w.Days, day) && minute >= start {
		return true
	}
	prev := (day + 6) % 7
	return dayEnabled(w.Days, prev) && minute < end
}

func dayEnabled(days []time.Weekday, day time.Weekday) bool {
	if len(days) == 0 {
		return true
	}
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}

	return hour*60 + min, nil
}
