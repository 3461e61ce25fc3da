package timezone

import (
	"fmt"
	"time"
)

// DefaultTimezone is used when a user has no timezone configured.
const DefaultTimezone = "Asia/Almaty"

const dateLayout = "2006-01-02"

// LoadLocation resolves an IANA timezone name, falling back to the default
// for empty or unknown names.
func LoadLocation(tz string) *time.Location {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, _ = time.LoadLocation(DefaultTimezone)
	}
	return loc
}

// TodayDateStr formats the instant's calendar day in the given location.
func TodayDateStr(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(dateLayout)
}

// MidnightInTimezone parses a YYYY-MM-DD string as local midnight in the
// given location. The returned instant keys the per-day rows.
func MidnightInTimezone(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	return t, nil
}

// EndOfDayInTimezone returns the last nanosecond of the given local day.
func EndOfDayInTimezone(dateStr string, loc *time.Location) (time.Time, error) {
	midnight, err := MidnightInTimezone(dateStr, loc)
	if err != nil {
		return time.Time{}, err
	}
	return midnight.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

// TodayForTimezone returns local midnight of the instant's day.
func TodayForTimezone(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// YesterdayFor returns the local midnight one calendar day before the given
// local midnight.
func YesterdayFor(day time.Time) time.Time {
	return day.AddDate(0, 0, -1)
}

// WeekStartForTimezone returns Monday midnight of the instant's local week.
func WeekStartForTimezone(now time.Time, loc *time.Location) time.Time {
	today := TodayForTimezone(now, loc)
	dow := today.Weekday()
	var diff int
	if dow == time.Sunday {
		diff = -6
	} else {
		diff = int(time.Monday) - int(dow)
	}
	return today.AddDate(0, 0, diff)
}

// SameDay reports whether two instants fall on the same calendar day in the
// given location.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return TodayDateStr(a, loc) == TodayDateStr(b, loc)
}
