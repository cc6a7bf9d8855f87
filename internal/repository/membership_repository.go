package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/gyu5/Linkwallet/internal/domain"
)

type membershipRepository struct {
	db *sqlx.DB
}

func NewMembershipRepository(db *sqlx.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	query := `
		INSERT INTO user_groups (user_id, group_id, saving_amount, is_regular, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		membership.UserID,
		membership.GroupID,
		membership.SavingAmount,
		membership.IsRegular,
		membership.Message,
		membership.CreatedAt,
		membership.UpdatedAt,
	)

	return err
}

func (r *membershipRepository) Get(ctx context.Context, userID, groupID uuid.UUID) (*domain.Membership, error) {
	query := `
		SELECT user_id, group_id, saving_amount, is_regular, message, created_at, updated_at
		FROM user_groups
		WHERE user_id = $1 AND group_id = $2
	`

	var membership domain.Membership
	err := r.db.GetContext(ctx, &membership, query, userID, groupID)
	if err != nil {
		return nil, err
	}

	return &membership, nil
}

func (r *membershipRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Membership, error) {
	query := `
		SELECT user_id, group_id, saving_amount, is_regular, message, created_at, updated_at
		FROM user_groups
		WHERE group_id = $1
		ORDER BY created_at
	`

	var memberships []*domain.Membership
	err := r.db.SelectContext(ctx, &memberships, query, groupID)
	if err != nil {
		return nil, err
	}

	return memberships, nil
}

func (r *membershipRepository) ListMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM user_groups
		WHERE group_id = $1
	`

	var memberIDs []uuid.UUID
	err := r.db.SelectContext(ctx, &memberIDs, query, groupID)
	if err != nil {
		return nil, err
	}

	return memberIDs, nil
}

// UpdateSavingAmount guards against lost updates with a conditional write:
// the row is only touched while saving_amount still holds the value the
// caller read. RowsAffected distinguishes a stale read from success.
func (r *membershipRepository) UpdateSavingAmount(ctx context.Context, userID, groupID uuid.UUID, expected, updated decimal.Decimal, isRegular bool) (bool, error) {
	query := `
		UPDATE user_groups
		SET saving_amount = $4, is_regular = $5, updated_at = $6
		WHERE user_id = $1 AND group_id = $2 AND saving_amount = $3
	`

	result, err := r.db.ExecContext(ctx, query, userID, groupID, expected, updated, isRegular, time.Now())
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *membershipRepository) ResetSavingAmount(ctx context.Context, userID, groupID uuid.UUID) error {
	query := `
		UPDATE user_groups
		SET saving_amount = 0, is_regular = false, updated_at = $3
		WHERE user_id = $1 AND group_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, userID, groupID, time.Now())
	return err
}

func (r *membershipRepository) SetMessage(ctx context.Context, userID, groupID uuid.UUID, message string) error {
	query := `
		UPDATE user_groups
		SET message = $3, updated_at = $4
		WHERE user_id = $1 AND group_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, userID, groupID, message, time.Now())
	return err
}

func (r *membershipRepository) ListRegular(ctx context.Context) ([]*domain.Membership, error) {
	query := `
		SELECT user_id, group_id, saving_amount, is_regular, message, created_at, updated_at
		FROM user_groups
		WHERE is_regular = true
		ORDER BY group_id, user_id
	`

	var memberships []*domain.Membership
	err := r.db.SelectContext(ctx, &memberships, query)
	if err != nil {
		return nil, err
	}

	return memberships, nil
}
