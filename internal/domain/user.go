package domain

import (
	"time"

	"github.com/google/uuid"
)

// User profile as the core needs it: a display name for notification
// messages and an invite code for friend lookups.
type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	InviteCode  string    `json:"invite_code" db:"invite_code"`
	AvatarURL   *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type RegisterUserRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=40"`
}
