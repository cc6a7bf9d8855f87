package progress

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMemberProgress(t *testing.T) {
	tests := []struct {
		name     string
		saving   decimal.Decimal
		goal     decimal.Decimal
		expected int
	}{
		{
			name:     "quarter of the goal",
			saving:   decimal.NewFromInt(25000),
			goal:     decimal.NewFromInt(100000),
			expected: 25,
		},
		{
			name:     "zero goal degrades to zero",
			saving:   decimal.NewFromInt(25000),
			goal:     decimal.Zero,
			expected: 0,
		},
		{
			name:     "negative goal degrades to zero",
			saving:   decimal.NewFromInt(25000),
			goal:     decimal.NewFromInt(-1),
			expected: 0,
		},
		{
			name:     "over-funding is not clamped",
			saving:   decimal.NewFromInt(150000),
			goal:     decimal.NewFromInt(100000),
			expected: 150,
		},
		{
			name:     "rounds half away from zero",
			saving:   decimal.NewFromInt(335),
			goal:     decimal.NewFromInt(1000),
			expected: 34,
		},
		{
			name:     "rounds down below half",
			saving:   decimal.NewFromInt(333),
			goal:     decimal.NewFromInt(1000),
			expected: 33,
		},
		{
			name:     "zero saving",
			saving:   decimal.Zero,
			goal:     decimal.NewFromInt(100000),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MemberProgress(tt.saving, tt.goal))
		})
	}
}

func TestGroupAverageProgress(t *testing.T) {
	goal := decimal.NewFromInt(100000)

	tests := []struct {
		name     string
		savings  []decimal.Decimal
		goal     decimal.Decimal
		expected int
	}{
		{
			name:     "empty group",
			savings:  nil,
			goal:     goal,
			expected: 0,
		},
		{
			name:     "zero goal",
			savings:  []decimal.Decimal{decimal.NewFromInt(50000)},
			goal:     decimal.Zero,
			expected: 0,
		},
		{
			name:     "single member",
			savings:  []decimal.Decimal{decimal.NewFromInt(50000)},
			goal:     goal,
			expected: 50,
		},
		{
			name: "mean of amounts, then divide by goal",
			savings: []decimal.Decimal{
				decimal.NewFromInt(10000),
				decimal.NewFromInt(30000),
			},
			goal:     goal,
			expected: 20,
		},
		{
			name: "amounts are summed before any rounding",
			savings: []decimal.Decimal{
				decimal.NewFromInt(333),
				decimal.NewFromInt(333),
				decimal.NewFromInt(334),
			},
			goal:     decimal.NewFromInt(1000),
			expected: 33,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GroupAverageProgress(tt.savings, tt.goal))
		})
	}
}

func TestStageOf(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		expected   int
	}{
		{name: "zero", percentage: 0, expected: 0},
		{name: "below first boundary", percentage: 12.4, expected: 0},
		{name: "exact boundary opens the next stage", percentage: 12.5, expected: 1},
		{name: "quarter", percentage: 25, expected: 2},
		{name: "62.5 percent", percentage: 62.5, expected: 5},
		{name: "just under full", percentage: 99.9, expected: 7},
		{name: "full is the top stage", percentage: 100, expected: 8},
		{name: "over-funding stays at the top stage", percentage: 250, expected: 8},
		{name: "negative degrades to zero", percentage: -5, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StageOf(tt.percentage))
		})
	}
}

func TestStageOf_Monotone(t *testing.T) {
	previous := 0
	for pct := 0.0; pct <= 200; pct += 0.5 {
		stage := StageOf(pct)
		assert.GreaterOrEqual(t, stage, previous, "stage regressed at %.1f%%", pct)
		assert.GreaterOrEqual(t, stage, 0)
		assert.LessOrEqual(t, stage, MaxStage)
		previous = stage
	}
}

func TestExpectedProgress(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		start    time.Time
		deadline time.Time
		now      time.Time
		expected int
	}{
		{
			name:     "missing start",
			deadline: deadline,
			now:      start,
			expected: 0,
		},
		{
			name:     "missing deadline",
			start:    start,
			now:      start,
			expected: 0,
		},
		{
			name:     "before the window",
			start:    start,
			deadline: deadline,
			now:      start.AddDate(0, 0, -1),
			expected: 0,
		},
		{
			name:     "exactly at start",
			start:    start,
			deadline: deadline,
			now:      start,
			expected: 0,
		},
		{
			name:     "halfway through",
			start:    start,
			deadline: deadline,
			now:      start.Add(deadline.Sub(start) / 2),
			expected: 50,
		},
		{
			name:     "exactly at deadline",
			start:    start,
			deadline: deadline,
			now:      deadline,
			expected: 100,
		},
		{
			name:     "past the deadline",
			start:    start,
			deadline: deadline,
			now:      deadline.AddDate(0, 1, 0),
			expected: 100,
		},
		{
			name:     "zero-length window after start",
			start:    start,
			deadline: start,
			now:      start.Add(time.Hour),
			expected: 100,
		},
		{
			name:     "inverted window before start",
			start:    deadline,
			deadline: start,
			now:      start,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpectedProgress(tt.start, tt.deadline, tt.now))
		})
	}
}

func TestExpectedProgress_MonotoneInNow(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	previous := 0
	for now := start.AddDate(0, 0, -7); now.Before(deadline.AddDate(0, 0, 7)); now = now.AddDate(0, 0, 1) {
		pct := ExpectedProgress(start, deadline, now)
		assert.GreaterOrEqual(t, pct, previous, "pace regressed at %s", now)
		assert.GreaterOrEqual(t, pct, 0)
		assert.LessOrEqual(t, pct, 100)
		previous = pct
	}
}
