// Package planner computes equal-installment schedules for the regular
// (monthly) contribution mode.
package planner

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gyu5/Linkwallet/internal/domain"
	apperrors "github.com/gyu5/Linkwallet/pkg/errors"
)

// CountMonthlyBoundaries counts the first-of-month dates between now and
// deadline, inclusive of the deadline. When now falls exactly on a month
// start that month counts as the first boundary; otherwise counting begins
// at the next month start. A deadline in the past yields 0.
func CountMonthlyBoundaries(now, deadline time.Time) int {
	if deadline.Before(now) {
		return 0
	}
	cursor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if now.After(cursor) {
		cursor = cursor.AddDate(0, 1, 0)
	}
	count := 0
	for !cursor.After(deadline) {
		count++
		cursor = cursor.AddDate(0, 1, 0)
	}
	return count
}

// BuildPlan splits the remaining balance toward the goal into equal
// month-start installments. PerPayment rounds up so paying it every period
// always covers the goal by the deadline; the final period may therefore
// overshoot slightly, which is accepted rather than auto-corrected.
func BuildPlan(savingAmount, goalAmount decimal.Decimal, deadline *time.Time, now time.Time) (*domain.RegularPlan, error) {
	if deadline == nil || deadline.IsZero() || goalAmount.Sign() <= 0 {
		return nil, apperrors.WrapInvalidPlanInput()
	}

	remaining := goalAmount.Sub(savingAmount)
	if remaining.Sign() < 0 {
		remaining = decimal.Zero
	}

	count := CountMonthlyBoundaries(now, *deadline)
	if count == 0 {
		return nil, apperrors.WrapNoRemainingWindow(deadline.Format("2006-01-02"))
	}

	perPayment := remaining.Div(decimal.NewFromInt(int64(count))).Ceil()

	return &domain.RegularPlan{
		Remaining:    remaining,
		PaymentCount: count,
		PerPayment:   perPayment,
		Deadline:     *deadline,
	}, nil
}
