package timezone

import (
	"testing"
	"time"
)

func TestTodayDateStrCrossesMidnight(t *testing.T) {
	almaty := LoadLocation("Asia/Almaty")
	// 23:00 UTC on Feb 28 is already 04:00 on Mar 1 in Almaty (UTC+5).
	instant := time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC)

	if got := TodayDateStr(instant, almaty); got != "2026-03-01" {
		t.Fatalf("TodayDateStr in Almaty = %s, want 2026-03-01", got)
	}
	if got := TodayDateStr(instant, time.UTC); got != "2026-02-28" {
		t.Fatalf("TodayDateStr in UTC = %s, want 2026-02-28", got)
	}
}

func TestMidnightInTimezone(t *testing.T) {
	almaty := LoadLocation("Asia/Almaty")
	midnight, err := MidnightInTimezone("2026-03-01", almaty)
	if err != nil {
		t.Fatalf("MidnightInTimezone: %v", err)
	}
	// Midnight in Almaty is 19:00 UTC the previous day.
	want := time.Date(2026, 2, 28, 19, 0, 0, 0, time.UTC)
	if !midnight.Equal(want) {
		t.Fatalf("midnight = %v, want %v", midnight.UTC(), want)
	}

	if _, err := MidnightInTimezone("not-a-date", almaty); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestEndOfDayInTimezone(t *testing.T) {
	loc := LoadLocation("UTC")
	end, err := EndOfDayInTimezone("2026-03-01", loc)
	if err != nil {
		t.Fatalf("EndOfDayInTimezone: %v", err)
	}
	next, _ := MidnightInTimezone("2026-03-02", loc)
	if !end.Before(next) || next.Sub(end) != time.Nanosecond {
		t.Fatalf("end of day %v must be one nanosecond before %v", end, next)
	}
}

func TestTodayForTimezone(t *testing.T) {
	almaty := LoadLocation("Asia/Almaty")
	instant := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	today := TodayForTimezone(instant, almaty)
	if today.Hour() != 0 || today.Minute() != 0 {
		t.Fatalf("today must be a midnight, got %v", today)
	}
	if got := today.Format("2006-01-02"); got != "2026-08-31" {
		t.Fatalf("today = %s, want 2026-08-31", got)
	}
}

func TestYesterdayFor(t *testing.T) {
	loc := LoadLocation("UTC")
	today, _ := MidnightInTimezone("2026-03-01", loc)
	yesterday := YesterdayFor(today)
	if got := yesterday.Format("2006-01-02"); got != "2026-02-28" {
		t.Fatalf("yesterday = %s, want 2026-02-28", got)
	}
}

func TestWeekStartForTimezone(t *testing.T) {
	loc := LoadLocation("UTC")
	cases := []struct {
		day  string
		want string
	}{
		{"2026-08-31", "2026-08-31"}, // a Monday
		{"2026-09-02", "2026-08-31"}, // Wednesday
		{"2026-09-06", "2026-08-31"}, // Sunday belongs to the prior Monday
	}
	for _, c := range cases {
		instant, _ := time.ParseInLocation("2006-01-02", c.day, loc)
		start := WeekStartForTimezone(instant.Add(13*time.Hour), loc)
		if got := start.Format("2006-01-02"); got != c.want {
			t.Errorf("WeekStartForTimezone(%s) = %s, want %s", c.day, got, c.want)
		}
	}
}

func TestLoadLocationFallback(t *testing.T) {
	if LoadLocation("").String() != DefaultTimezone {
		t.Fatal("empty timezone must fall back to the default")
	}
	if LoadLocation("Not/AZone").String() != DefaultTimezone {
		t.Fatal("unknown timezone must fall back to the default")
	}
}
