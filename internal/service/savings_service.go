package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/gyu5/Linkwallet/internal/config"
	"github.com/gyu5/Linkwallet/internal/domain"
	"github.com/gyu5/Linkwallet/internal/notifier"
	"github.com/gyu5/Linkwallet/internal/planner"
	"github.com/gyu5/Linkwallet/internal/progress"
	"github.com/gyu5/Linkwallet/internal/repository"
	customError "github.com/gyu5/Linkwallet/pkg/errors"
	"github.com/gyu5/Linkwallet/pkg/invite"
)

// SavingsService orchestrates contributions, withdrawals, progress
// snapshots and the regular contribution plan. The primary monetary write
// always comes first; notification fan-out and cache maintenance are
// best-effort secondaries that can fail without failing the request.
type SavingsService struct {
	groupRepo        repository.GroupRepository
	membershipRepo   repository.MembershipRepository
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	cache            *redis.Client
	config           *config.Config
	now              func() time.Time
}

func NewSavingsService(
	groupRepo repository.GroupRepository,
	membershipRepo repository.MembershipRepository,
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	cache *redis.Client,
	config *config.Config,
) *SavingsService {
	return &SavingsService{
		groupRepo:        groupRepo,
		membershipRepo:   membershipRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		cache:            cache,
		config:           config,
		now:              time.Now,
	}
}

// Contribute adds amount to the actor's saving amount in the group. The
// write is a conditional update on the previously read value, retried a
// bounded number of times so two concurrent contributions never lose one.
// A crossed growth-stage milestone fans out notifications to the other
// members; their persistence is best-effort and never rolls back the
// contribution.
func (s *SavingsService) Contribute(ctx context.Context, actor domain.Actor, groupID uuid.UUID, amount decimal.Decimal, regular bool) (*domain.ContributionResult, error) {
	if amount.Sign() <= 0 {
		return nil, customError.WrapInvalidAmount(amount.String())
	}

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var (
		updated  decimal.Decimal
		crossed  bool
		newStage int
	)

	for attempt := 1; ; attempt++ {
		membership, err := s.membershipRepo.Get(ctx, actor.ID, groupID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapMembershipNotFound(actor.ID.String(), groupID.String())
			}
			return nil, customError.WrapDatabaseError(err)
		}

		updated = membership.SavingAmount.Add(amount)
		crossed, newStage = notifier.EvaluateMilestone(membership.SavingAmount, updated, group.GoalAmount)

		ok, err := s.membershipRepo.UpdateSavingAmount(ctx, actor.ID, groupID, membership.SavingAmount, updated, regular)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		if ok {
			break
		}
		if attempt >= s.config.Business.ContributionRetries {
			return nil, customError.WrapConcurrentUpdate(actor.ID.String(), groupID.String())
		}
	}

	var notifications []*domain.Notification
	if crossed {
		notifications = s.fanOutMilestone(ctx, actor, groupID, newStage)
	}

	s.invalidateProgress(ctx, groupID)

	return &domain.ContributionResult{
		SavingAmount:     updated,
		MilestoneCrossed: crossed,
		Stage:            newStage,
		Notifications:    notifications,
	}, nil
}

// Withdraw resets the actor's saving amount to zero and announces the
// withdrawal to every other member. Unlike contributions there is no stage
// gating; a withdrawal always notifies.
func (s *SavingsService) Withdraw(ctx context.Context, actor domain.Actor, groupID uuid.UUID) (*domain.WithdrawalResult, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	membership, err := s.membershipRepo.Get(ctx, actor.ID, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMembershipNotFound(actor.ID.String(), groupID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.membershipRepo.ResetSavingAmount(ctx, actor.ID, groupID); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	var notifications []*domain.Notification
	memberIDs, err := s.membershipRepo.ListMemberIDs(ctx, groupID)
	if err != nil {
		slog.Warn("listing members for withdrawal fan-out failed", "group_id", groupID, "error", err)
	} else {
		notifications = notifier.WithdrawalNotifications(memberIDs, actor.ID, actor.DisplayName, group.DisplayName, s.now())
		s.insertNotifications(ctx, notifications)
	}

	s.invalidateProgress(ctx, groupID)

	return &domain.WithdrawalResult{
		SavingAmount:  decimal.Zero,
		Withdrawn:     membership.SavingAmount,
		Notifications: notifications,
	}, nil
}

// GroupProgress returns the group snapshot, served from the redis cache
// when a fresh entry exists. Cache failures degrade to a recompute.
func (s *SavingsService) GroupProgress(ctx context.Context, groupID uuid.UUID) (*domain.GroupProgressResponse, error) {
	if cached := s.cachedProgress(ctx, groupID); cached != nil {
		return cached, nil
	}

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.membershipRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	savings := make([]decimal.Decimal, 0, len(memberships))
	for _, membership := range memberships {
		savings = append(savings, membership.SavingAmount)
	}

	percentage := progress.GroupAverageProgress(savings, group.GoalAmount)
	snapshot := &domain.GroupProgressResponse{
		GroupID:          groupID,
		Percentage:       percentage,
		Stage:            progress.StageOf(float64(percentage)),
		ExpectedProgress: s.paceMarker(group),
		MemberCount:      len(memberships),
	}

	s.cacheProgress(ctx, groupID, snapshot)

	return snapshot, nil
}

// MemberProgress returns one member's snapshot within a group.
func (s *SavingsService) MemberProgress(ctx context.Context, userID, groupID uuid.UUID) (*domain.MemberProgressResponse, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	membership, err := s.membershipRepo.Get(ctx, userID, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMembershipNotFound(userID.String(), groupID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	percentage := progress.MemberProgress(membership.SavingAmount, group.GoalAmount)
	return &domain.MemberProgressResponse{
		UserID:           userID,
		GroupID:          groupID,
		SavingAmount:     membership.SavingAmount,
		Percentage:       percentage,
		Stage:            progress.StageOf(float64(percentage)),
		ExpectedProgress: s.paceMarker(group),
		Message:          membership.Message,
	}, nil
}

// PlanRegular previews the equal-installment schedule that would cover the
// member's remaining balance by the group deadline.
func (s *SavingsService) PlanRegular(ctx context.Context, userID, groupID uuid.UUID) (*domain.RegularPlan, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	membership, err := s.membershipRepo.Get(ctx, userID, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMembershipNotFound(userID.String(), groupID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return planner.BuildPlan(membership.SavingAmount, group.GoalAmount, group.Deadline, s.now())
}

// SetMessage updates the member's short status message shown to the group.
func (s *SavingsService) SetMessage(ctx context.Context, userID, groupID uuid.UUID, message string) error {
	if _, err := s.membershipRepo.Get(ctx, userID, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapMembershipNotFound(userID.String(), groupID.String())
		}
		return customError.WrapDatabaseError(err)
	}

	if err := s.membershipRepo.SetMessage(ctx, userID, groupID, message); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}

// ListNotifications returns the user's notifications, newest first.
func (s *SavingsService) ListNotifications(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return notifications, nil
}

// CreateGroup creates a group and a zero-amount membership for the creator
// plus every invited member.
func (s *SavingsService) CreateGroup(ctx context.Context, actor domain.Actor, request *domain.CreateGroupRequest) (*domain.CreateGroupResponse, error) {
	now := s.now()
	group := &domain.Group{
		ID:          uuid.New(),
		DisplayName: request.DisplayName,
		GoalAmount:  request.GoalAmount,
		Deadline:    request.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	memberIDs := append([]uuid.UUID{actor.ID}, request.MemberIDs...)
	memberships := make([]*domain.Membership, 0, len(memberIDs))
	seen := make(map[uuid.UUID]bool, len(memberIDs))
	for _, memberID := range memberIDs {
		if seen[memberID] {
			continue
		}
		seen[memberID] = true

		membership := &domain.Membership{
			UserID:       memberID,
			GroupID:      group.ID,
			SavingAmount: decimal.Zero,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.membershipRepo.Create(ctx, membership); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		memberships = append(memberships, membership)
	}

	return &domain.CreateGroupResponse{Group: group, Memberships: memberships}, nil
}

// RegisterUser creates a user profile with a fresh unique invite code.
func (s *SavingsService) RegisterUser(ctx context.Context, displayName string) (*domain.User, error) {
	code, err := invite.Generate(ctx, s.userRepo.InviteCodeExists)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:          uuid.New(),
		DisplayName: displayName,
		InviteCode:  code,
		CreatedAt:   s.now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return user, nil
}

// CollectRegularContributions applies one plan installment for every
// membership with an active regular plan. Each member is handled
// independently; a failing member is logged and skipped, never aborting
// the sweep.
func (s *SavingsService) CollectRegularContributions(ctx context.Context) error {
	memberships, err := s.membershipRepo.ListRegular(ctx)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	for _, membership := range memberships {
		if err := s.collectOne(ctx, membership); err != nil {
			slog.Warn("regular contribution skipped",
				"user_id", membership.UserID,
				"group_id", membership.GroupID,
				"error", err,
			)
		}
	}

	return nil
}

func (s *SavingsService) collectOne(ctx context.Context, membership *domain.Membership) error {
	group, err := s.getGroup(ctx, membership.GroupID)
	if err != nil {
		return err
	}

	plan, err := planner.BuildPlan(membership.SavingAmount, group.GoalAmount, group.Deadline, s.now())
	if err != nil {
		return err
	}
	if plan.PerPayment.Sign() <= 0 {
		// Goal already covered; nothing to collect this month.
		return nil
	}

	user, err := s.userRepo.GetByID(ctx, membership.UserID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	actor := domain.Actor{ID: user.ID, DisplayName: user.DisplayName}
	_, err = s.Contribute(ctx, actor, membership.GroupID, plan.PerPayment, true)
	return err
}

func (s *SavingsService) getGroup(ctx context.Context, groupID uuid.UUID) (*domain.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapGroupNotFound(groupID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return group, nil
}

func (s *SavingsService) paceMarker(group *domain.Group) int {
	deadline := time.Time{}
	if group.Deadline != nil {
		deadline = *group.Deadline
	}
	return progress.ExpectedProgress(group.CreatedAt, deadline, s.now())
}

func (s *SavingsService) fanOutMilestone(ctx context.Context, actor domain.Actor, groupID uuid.UUID, newStage int) []*domain.Notification {
	memberIDs, err := s.membershipRepo.ListMemberIDs(ctx, groupID)
	if err != nil {
		slog.Warn("listing members for milestone fan-out failed", "group_id", groupID, "error", err)
		return nil
	}

	notifications := notifier.MilestoneNotifications(memberIDs, actor.ID, actor.DisplayName, newStage, s.now())
	s.insertNotifications(ctx, notifications)
	return notifications
}

func (s *SavingsService) insertNotifications(ctx context.Context, notifications []*domain.Notification) {
	if len(notifications) == 0 {
		return
	}
	if err := s.notificationRepo.InsertBatch(ctx, notifications); err != nil {
		slog.Warn("notification insert failed", "count", len(notifications), "error", err)
	}
}

func progressCacheKey(groupID uuid.UUID) string {
	return fmt.Sprintf("progress:group:%s", groupID)
}

func (s *SavingsService) cachedProgress(ctx context.Context, groupID uuid.UUID) *domain.GroupProgressResponse {
	if s.cache == nil {
		return nil
	}

	payload, err := s.cache.Get(ctx, progressCacheKey(groupID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("progress cache read failed", "group_id", groupID, "error", err)
		}
		return nil
	}

	var snapshot domain.GroupProgressResponse
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		slog.Warn("progress cache entry corrupt", "group_id", groupID, "error", err)
		return nil
	}
	return &snapshot
}

func (s *SavingsService) cacheProgress(ctx context.Context, groupID uuid.UUID, snapshot *domain.GroupProgressResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, progressCacheKey(groupID), payload, s.config.GetProgressCacheTTL()).Err(); err != nil {
		slog.Warn("progress cache write failed", "group_id", groupID, "error", err)
	}
}

func (s *SavingsService) invalidateProgress(ctx context.Context, groupID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, progressCacheKey(groupID)).Err(); err != nil {
		slog.Warn("progress cache invalidation failed", "group_id", groupID, "error", err)
	}
}
