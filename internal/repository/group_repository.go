package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gyu5/Linkwallet/internal/domain"
)

type groupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	query := `
		INSERT INTO groups (id, display_name, goal_amount, deadline, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		group.ID,
		group.DisplayName,
		group.GoalAmount,
		group.Deadline,
		group.PhotoURL,
		group.CreatedAt,
		group.UpdatedAt,
	)

	return err
}

func (r *groupRepository) GetByID(ctx context.Context, groupID uuid.UUID) (*domain.Group, error) {
	query := `
		SELECT id, display_name, goal_amount, deadline, photo_url, created_at, updated_at
		FROM groups
		WHERE id = $1
	`

	var group domain.Group
	err := r.db.GetContext(ctx, &group, query, groupID)
	if err != nil {
		return nil, err
	}

	return &group, nil
}
