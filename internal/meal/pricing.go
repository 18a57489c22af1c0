package meal

// Daily rates and flat package prices in taka.
const (
	lunchDailyRate       = 50
	lunchDinnerDailyRate = 80
	package15DayPrice    = 1300
	package30DayPrice    = 2500
)

// Per-meal base cost used only for refund computation. Refunds are a fixed
// schedule, never prorated from the token's actual daily rate.
const (
	lunchMealCost  = 40
	dinnerMealCost = 40
	refundRate     = 0.9
)

// TokenPrice returns the purchase cost for a token. The 15- and 30-day
// lunch+dinner packages carry flat prices; everything else is rate x days.
func TokenPrice(duration int, mealType TokenMealType) float64 {
	if mealType == MealLunchDinner && duration == 15 {
		return package15DayPrice
	}
	if mealType == MealLunchDinner && duration == 30 {
		return package30DayPrice
	}
	rate := lunchDinnerDailyRate
	if mealType == MealLunch {
		rate = lunchDailyRate
	}
	return float64(rate * duration)
}

// Refund returns the credit for cancelling the given meal(s) on one day:
// 90% of the flat per-meal base cost.
func Refund(mealType CancelMealType) float64 {
	switch mealType {
	case CancelLunch:
		return lunchMealCost * refundRate
	case CancelDinner:
		return dinnerMealCost * refundRate
	default:
		return (lunchMealCost + dinnerMealCost) * refundRate
	}
}
