package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gyu5/Linkwallet/internal/domain"
)

// GroupRepository defines the interface for group data operations
type GroupRepository interface {
	// Create creates a new group
	Create(ctx context.Context, group *domain.Group) error

	// GetByID retrieves a group by its ID
	GetByID(ctx context.Context, groupID uuid.UUID) (*domain.Group, error)
}

// MembershipRepository defines the interface for membership data operations
type MembershipRepository interface {
	// Create creates a new membership with a zero saving amount
	Create(ctx context.Context, membership *domain.Membership) error

	// Get retrieves the membership of a user in a group
	Get(ctx context.Context, userID, groupID uuid.UUID) (*domain.Membership, error)

	// ListByGroup retrieves all memberships of a group
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Membership, error)

	// ListMemberIDs retrieves the user IDs of all members of a group
	ListMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)

	// UpdateSavingAmount conditionally writes the new saving amount. The
	// update only applies while the stored amount still equals expected;
	// it reports false when a concurrent writer got there first.
	UpdateSavingAmount(ctx context.Context, userID, groupID uuid.UUID, expected, updated decimal.Decimal, isRegular bool) (bool, error)

	// ResetSavingAmount unconditionally sets the saving amount to zero
	ResetSavingAmount(ctx context.Context, userID, groupID uuid.UUID) error

	// SetMessage updates the member's short status message
	SetMessage(ctx context.Context, userID, groupID uuid.UUID, message string) error

	// ListRegular retrieves all memberships with an active regular plan
	ListRegular(ctx context.Context) ([]*domain.Membership, error)
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	// InsertBatch inserts a batch of notifications in one transaction
	InsertBatch(ctx context.Context, notifications []*domain.Notification) error

	// ListByUser retrieves a user's notifications, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
}

// UserRepository defines the interface for user profile operations
type UserRepository interface {
	// Create creates a new user profile
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// InviteCodeExists reports whether an invite code is already taken
	InviteCodeExists(ctx context.Context, code string) (bool, error)
}
