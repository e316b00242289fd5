package services

import (
	"fmt"
	"time"

	"church-system/models"
)

// Advance returns the occurrence date one rule-step after t. Daily and
// weekly steps are plain day arithmetic. Monthly and yearly steps clamp the
// day-of-month to the last valid day of the target month, so a series
// anchored on Jan 31 lands on Feb 29 (or Feb 28) instead of overflowing
// into March. Time-of-day and location are preserved.
func Advance(t time.Time, rule string) (time.Time, error) {
	switch rule {
	case models.RuleDaily:
		return t.AddDate(0, 0, 1), nil
	case models.RuleWeekly:
		return t.AddDate(0, 0, 7), nil
	case models.RuleMonthly:
		return addMonthsClamped(t, 1), nil
	case models.RuleYearly:
		return addYearsClamped(t, 1), nil
	}
	return time.Time{}, fmt.Errorf("unsupported recurrence rule %q", rule)
}

// AdvanceToFuture applies Advance at least once and then keeps advancing
// until the result is no earlier than the start of now's day. It returns
// the smallest such date reachable from t, so resuming a long-dormant
// series does not materialize a backlog of past occurrences.
func AdvanceToFuture(t time.Time, rule string, now time.Time) (time.Time, error) {
	next, err := Advance(t, rule)
	if err != nil {
		return time.Time{}, err
	}
	today := StartOfDay(now)
	for next.Before(today) {
		next, err = Advance(next, rule)
		if err != nil {
			return time.Time{}, err
		}
	}
	return next, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func addMonthsClamped(t time.Time, months int) time.Time {
	// Anchor on the 1st so time.Date normalizes the month overflow,
	// then clamp the day to the target month's length.
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func addYearsClamped(t time.Time, years int) time.Time {
	day := t.Day()
	if last := daysIn(t.Year()+years, t.Month()); day > last {
		day = last
	}
	return time.Date(t.Year()+years, t.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
