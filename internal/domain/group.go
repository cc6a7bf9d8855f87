package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Group represents a savings group. GoalAmount is the target contribution
// per member, not a pooled total.
type Group struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	DisplayName string          `json:"display_name" db:"display_name"`
	GoalAmount  decimal.Decimal `json:"goal_amount" db:"goal_amount"`
	Deadline    *time.Time      `json:"deadline,omitempty" db:"deadline"`
	PhotoURL    *string         `json:"photo_url,omitempty" db:"photo_url"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type CreateGroupRequest struct {
	DisplayName string          `json:"display_name" validate:"required"`
	GoalAmount  decimal.Decimal `json:"goal_amount" validate:"required"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	MemberIDs   []uuid.UUID     `json:"member_ids"`
}

type CreateGroupResponse struct {
	Group       *Group        `json:"group"`
	Memberships []*Membership `json:"memberships"`
}

// GroupProgressResponse is the group-level snapshot. Percentage is the mean
// of all members' saving amounts divided by the goal, not the mean of
// individual percentages.
type GroupProgressResponse struct {
	GroupID          uuid.UUID `json:"group_id"`
	Percentage       int       `json:"percentage"`
	Stage            int       `json:"stage"`
	ExpectedProgress int       `json:"expected_progress"`
	MemberCount      int       `json:"member_count"`
}

type MemberProgressResponse struct {
	UserID           uuid.UUID       `json:"user_id"`
	GroupID          uuid.UUID       `json:"group_id"`
	SavingAmount     decimal.Decimal `json:"saving_amount"`
	Percentage       int             `json:"percentage"`
	Stage            int             `json:"stage"`
	ExpectedProgress int             `json:"expected_progress"`
	Message          *string         `json:"message,omitempty"`
}
