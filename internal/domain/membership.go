package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor is the already-authenticated identity performing a request. Identity
// resolution happens upstream; this core only receives the result.
type Actor struct {
	ID          uuid.UUID
	DisplayName string
}

// Membership ties a user to a group and carries their cumulative saving
// amount. SavingAmount only ever grows, except for a withdrawal which resets
// it to zero.
type Membership struct {
	UserID       uuid.UUID       `json:"user_id" db:"user_id"`
	GroupID      uuid.UUID       `json:"group_id" db:"group_id"`
	SavingAmount decimal.Decimal `json:"saving_amount" db:"saving_amount"`
	IsRegular    bool            `json:"is_regular" db:"is_regular"`
	Message      *string         `json:"message,omitempty" db:"message"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

type ContributeRequest struct {
	Amount  decimal.Decimal `json:"amount" validate:"required"`
	Regular bool            `json:"regular"`
}

type SetMessageRequest struct {
	Message string `json:"message" validate:"max=120"`
}

// ContributionResult reports the committed saving amount plus whatever
// milestone fan-out the contribution produced. Notifications are persisted
// best-effort and returned for inspection only.
type ContributionResult struct {
	SavingAmount     decimal.Decimal `json:"saving_amount"`
	MilestoneCrossed bool            `json:"milestone_crossed"`
	Stage            int             `json:"stage"`
	Notifications    []*Notification `json:"-"`
}

type WithdrawalResult struct {
	SavingAmount  decimal.Decimal `json:"saving_amount"`
	Withdrawn     decimal.Decimal `json:"withdrawn"`
	Notifications []*Notification `json:"-"`
}
