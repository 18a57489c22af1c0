package meal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenPrice(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		mealType TokenMealType
		want     float64
	}{
		{"lunch 5 days", 5, MealLunch, 250},
		{"lunch 7 days", 7, MealLunch, 350},
		{"lunch_dinner 5 days", 5, MealLunchDinner, 400},
		{"lunch_dinner 7 days", 7, MealLunchDinner, 560},
		{"15-day package flat price", 15, MealLunchDinner, 1300},
		{"30-day package flat price", 30, MealLunchDinner, 2500},
		// lunch-only falls through to rate x days even for durations the
		// service would reject; the price function itself never errors.
		{"lunch 15 days falls through", 15, MealLunch, 750},
		{"lunch 30 days falls through", 30, MealLunch, 1500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenPrice(tt.duration, tt.mealType))
		})
	}
}

func TestRefund(t *testing.T) {
	assert.Equal(t, 36.0, Refund(CancelLunch))
	assert.Equal(t, 36.0, Refund(CancelDinner))
	assert.Equal(t, 72.0, Refund(CancelBoth))
}

// The refund schedule is flat: it never depends on which token the student
// holds or what that token cost per day.
func TestRefundIndependentOfTokenPrice(t *testing.T) {
	for _, duration := range []int{5, 7, 15, 30} {
		_ = TokenPrice(duration, MealLunchDinner)
		assert.Equal(t, 72.0, Refund(CancelBoth))
	}
}
