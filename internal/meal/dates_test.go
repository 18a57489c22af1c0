package meal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestCancellableOn(t *testing.T) {
	today := date(2026, time.March, 10)

	assert.False(t, CancellableOn(today, today))
	assert.False(t, CancellableOn(AddDays(today, 1), today))
	assert.True(t, CancellableOn(AddDays(today, 2), today))
	assert.True(t, CancellableOn(AddDays(today, 10), today))
	assert.False(t, CancellableOn(AddDays(today, -1), today))
}

// The notice gate is calendar-day granular: late on the 10th, the 12th is
// still cancellable even though fewer than 48 hours remain.
func TestCancellableOnIgnoresWallClock(t *testing.T) {
	lateEvening := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.Local)
	assert.True(t, CancellableOn(date(2026, time.March, 12), lateEvening))
}

func TestTokenActiveAt(t *testing.T) {
	tok := Token{
		StartDate: date(2026, time.March, 1),
		EndDate:   date(2026, time.March, 8),
	}

	assert.False(t, TokenActiveAt(tok, date(2026, time.February, 28)))
	assert.True(t, TokenActiveAt(tok, tok.StartDate))
	assert.True(t, TokenActiveAt(tok, date(2026, time.March, 4)))
	assert.True(t, TokenActiveAt(tok, tok.EndDate))
	// EndDate is an exact instant; one second past it the token is expired.
	assert.False(t, TokenActiveAt(tok, tok.EndDate.Add(time.Second)))
}

func TestMonthActiveAt(t *testing.T) {
	dm := DiningMonth{
		StartDate: date(2026, time.March, 1),
		EndDate:   date(2026, time.March, 30),
	}
	assert.True(t, MonthActiveAt(dm, date(2026, time.March, 1)))
	assert.True(t, MonthActiveAt(dm, date(2026, time.March, 30)))
	assert.False(t, MonthActiveAt(dm, date(2026, time.March, 31)))
}

func TestDiningDayNumber(t *testing.T) {
	start := date(2026, time.March, 1)

	assert.Equal(t, 1, DiningDayNumber(start, start))
	assert.Equal(t, 2, DiningDayNumber(date(2026, time.March, 2), start))
	assert.Equal(t, 30, DiningDayNumber(date(2026, time.March, 30), start))
	// Dates before the start clamp to day 1.
	assert.Equal(t, 1, DiningDayNumber(date(2026, time.February, 20), start))
	// Partial days round up.
	assert.Equal(t, 2, DiningDayNumber(start.Add(90*time.Minute), start))
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, date(2026, time.March, 3), AddDays(date(2026, time.February, 28), 3))
	assert.Equal(t, date(2026, time.February, 26), AddDays(date(2026, time.March, 1), -3))
}
