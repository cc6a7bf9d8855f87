package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an immutable peer message. Records are only ever inserted
// and listed, never updated.
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
