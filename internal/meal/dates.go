package meal

import "time"

// cancelNoticeDays is the advance notice required before a cancelled date.
const cancelNoticeDays = 2

// AddDays does plain calendar addition in the time's own location.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// DateOnly truncates a time to local midnight. Calendar-day comparisons go
// through this so that wall-clock time never affects eligibility.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CancellableOn reports whether date is far enough ahead to cancel: at least
// two calendar days after today, not a precise 48 hours.
func CancellableOn(date, today time.Time) bool {
	return !DateOnly(date).Before(AddDays(DateOnly(today), cancelNoticeDays))
}

// TokenActiveAt reports whether the token grants access at the given instant.
// EndDate is compared as an exact instant, uniformly across the codebase.
func TokenActiveAt(t Token, now time.Time) bool {
	return !now.Before(t.StartDate) && !now.After(t.EndDate)
}

// MonthActiveAt reports whether now falls inside the dining month's span.
// This is about the calendar window, separate from the IsActive flag that
// marks the administratively current period.
func MonthActiveAt(dm DiningMonth, now time.Time) bool {
	return !now.Before(dm.StartDate) && !now.After(dm.EndDate)
}

// DiningDayNumber returns the 1-based day number of selected within a dining
// month starting at monthStart. Day 1 is the start date itself; dates before
// the start clamp to 1. Display only, never used for pricing or eligibility.
func DiningDayNumber(selected, monthStart time.Time) int {
	diff := selected.Sub(monthStart)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	if days < 0 {
		days = 0
	}
	return days + 1
}
