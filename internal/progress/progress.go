// Package progress holds the pure progress calculations: percentage of goal,
// growth-stage mapping and the deadline pace marker. Nothing in here touches
// storage or the clock; callers inject every input.
package progress

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// StageCount is the number of growth tiers the tree can display.
const StageCount = 9

// MaxStage is the fully grown tree.
const MaxStage = StageCount - 1

// stageWidth is the percentage span of one growth stage (100 / 8).
const stageWidth = 12.5

var hundred = decimal.NewFromInt(100)

// MemberProgress converts a member's saving amount into a whole percentage
// of the goal. A non-positive goal yields 0 instead of dividing by it.
// Results above 100 are allowed: over-funding is representable.
func MemberProgress(savingAmount, goalAmount decimal.Decimal) int {
	if goalAmount.Sign() <= 0 {
		return 0
	}
	pct := savingAmount.Div(goalAmount).Mul(hundred)
	return int(pct.Round(0).IntPart())
}

// GroupAverageProgress computes group progress as the mean saving amount
// divided by the goal. The amounts are averaged before dividing; averaging
// the individual percentages instead would round each member separately.
func GroupAverageProgress(savingAmounts []decimal.Decimal, goalAmount decimal.Decimal) int {
	if len(savingAmounts) == 0 || goalAmount.Sign() <= 0 {
		return 0
	}
	total := decimal.Zero
	for _, amount := range savingAmounts {
		total = total.Add(amount)
	}
	mean := total.Div(decimal.NewFromInt(int64(len(savingAmounts))))
	return int(mean.Div(goalAmount).Mul(hundred).Round(0).IntPart())
}

// StageOf maps a progress percentage to a growth stage in [0, MaxStage].
// A percentage exactly on a 12.5 boundary belongs to the stage it opens,
// so StageOf(25) == 2 and StageOf(100) == MaxStage.
func StageOf(percentage float64) int {
	if percentage <= 0 {
		return 0
	}
	stage := int(math.Floor(percentage / stageWidth))
	if stage > MaxStage {
		return MaxStage
	}
	return stage
}

// ExpectedProgress is the pace marker: the percentage a member should have
// reached by now, linearly interpolated between the group start and its
// deadline and clamped to [0, 100]. Missing dates yield 0; a window that has
// fully elapsed (or never existed) yields 100 once now has passed the start.
func ExpectedProgress(start, deadline, now time.Time) int {
	if start.IsZero() || deadline.IsZero() {
		return 0
	}
	if !now.After(start) {
		return 0
	}
	if !now.Before(deadline) {
		return 100
	}
	total := deadline.Sub(start)
	if total <= 0 {
		return 100
	}
	ratio := float64(now.Sub(start)) / float64(total)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return int(math.Round(ratio * 100))
}
