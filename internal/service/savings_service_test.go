package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gyu5/Linkwallet/internal/config"
	"github.com/gyu5/Linkwallet/internal/domain"
	customError "github.com/gyu5/Linkwallet/pkg/errors"
	"github.com/gyu5/Linkwallet/tests/mocks"
)

var testNow = time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

func newTestService(
	groupRepo *mocks.MockGroupRepository,
	membershipRepo *mocks.MockMembershipRepository,
	notificationRepo *mocks.MockNotificationRepository,
	userRepo *mocks.MockUserRepository,
) *SavingsService {
	return &SavingsService{
		groupRepo:        groupRepo,
		membershipRepo:   membershipRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		config: &config.Config{
			Business: config.BusinessConfig{
				ContributionRetries: 3,
				ProgressCacheTTL:    "5m",
			},
		},
		now: func() time.Time { return testNow },
	}
}

func testGroup(goal int64) *domain.Group {
	deadline := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Group{
		ID:          uuid.New(),
		DisplayName: "September Trip",
		GoalAmount:  decimal.NewFromInt(goal),
		Deadline:    &deadline,
		CreatedAt:   time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testMembership(userID, groupID uuid.UUID, saving int64) *domain.Membership {
	return &domain.Membership{
		UserID:       userID,
		GroupID:      groupID,
		SavingAmount: decimal.NewFromInt(saving),
	}
}

func decimalEq(expected int64) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(expected))
	})
}

func TestContribute_MilestoneCrossed(t *testing.T) {
	groupRepo := &mocks.MockGroupRepository{}
	membershipRepo := &mocks.MockMembershipRepository{}
	notificationRepo := &mocks.MockNotificationRepository{}
	userRepo := &mocks.MockUserRepository{}
	svc := newTestService(groupRepo, membershipRepo, notificationRepo, userRepo)

	group := testGroup(100000)
	actor := domain.Actor{ID: uuid.New(), DisplayName: "Hanako"}
	peerA := uuid.New()
	peerB := uuid.New()

	groupRepo.On("GetByID", mock.Anything, group.ID).Return(group, nil)
	membershipRepo.On("Get", mock.Anything, actor.ID, group.ID).
		Return(testMembership(actor.ID, group.ID, 10000), nil)
	membershipRepo.On("UpdateSavingAmount", mock.Anything, actor.ID, group.ID, decimalEq(10000), decimalEq(25000), false).
		Return(true, nil)
	membershipRepo.On("ListMemberIDs", mock.Anything, group.ID).
		Return([]uuid.UUID{actor.ID, peerA, peerB}, nil)
	notificationRepo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(ns []*domain.Notification) bool {
		return len(ns) == 2
	})).Return(nil)

	result, err := svc.Contribute(context.Background(), actor, group.ID, decimal.NewFromInt(15000), false)

	require.NoError(t, err)
	assert.True(t, result.SavingAmount.Equal(decimal.NewFromInt(25000)))
	assert.True(t, result.MilestoneCrossed)
	assert.Equal(t, 2, result.Stage)
	require.Len(t, result.Notifications, 2)
	for _, n := range result.Notifications {
		assert.NotEqual(t, actor.ID, n.UserID)
		assert.Contains(t, n.Message, "Hanako")
	}

	membershipRepo.AssertExpectations(t)
	notificationRepo.AssertExpectations(t)
}

func TestContribute_NoMilestone(t *testing.T) {
	groupRepo := &mocks.MockGroupRepository{}
	membershipRepo := &mocks.MockMembershipRepository{}
	notificationRepo := &mocks.MockNotificationRepository{}
	svc := newTestService(groupRepo, membershipRepo, notificationRepo, &mocks.MockUserRepository{})

	group := testGroup(100000)
	actor := domain.Actor{ID: uuid.New(), DisplayName: "Hanako"}

	groupRepo.On("GetByID", mock.Anything, group.ID).Return(group, nil)
	membershipRepo.On("Get", mock.Anything, actor.ID, group.ID).
		Return(testMembership(actor.ID, group.ID, 1000), nil)
	membershipRepo.On("UpdateSavingAmount", mock.Anything, actor.ID, group.ID, decimalEq(1000), decimalEq(5000), false).
		Return(true, nil)

	result, err := svc.Contribute(context.Background(), actor, group.ID, decimal.NewFromInt(4000), false)

	require.NoError(t, err)
	assert.False(t, result.MilestoneCrossed)
	assert.Empty(t, result.Notifications)

	// No fan-out when the stage did not change.
	membershipRepo.AssertNotCalled(t, "ListMemberIDs", mock.Anything, mock.Anything)
	notificationRepo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestContribute_InvalidAmount(t *testing.T) {
	svc := newTestService(&mocks.MockGroupRepository{}, &mocks.MockMembershipRepository{}, &mocks.MockNotificationRepository{}, &mocks.MockUserRepository{})
	actor := domain.Actor{ID: uuid.New()}

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-500)} {
		_, err := svc.Contribute(context.Background(), actor, uuid.New(), amount, false)
		assert.ErrorIs(t, err, customError.ErrInvalidAmount)
	}
}

func TestContribute_MembershipNotFound(t *testing.T) {
	groupRepo := &mocks.MockGroupRepository{}
	membershipRepo := &mocks.MockMembershipRepository{}
	svc := newTestService(groupRepo, membershipRepo, &mocks.MockNotificationRepository{}, &mocks.MockUserRepository{})

	group := testGroup(100000)
	actor := domain.Actor{ID: uuid.New()}

	groupRepo.On("GetByID", mock.Anything, group.ID).Return(group, nil)
	membershipRepo.On("Get", mock.Anything, actor.ID, group.ID).Return(nil, sql.ErrNoRows)

	_, err := svc.Contribute(context.Background(), actor, group.ID, decimal.NewFromInt(1000), false)

	assert.ErrorIs(t, err, customError.ErrMembershipNotFound)
}

func TestContribute_NotificationFailureDoesNotFailContribution(t *testing.T) {
	groupRepo := &mocks.MockGroupRepository{}
	membershipRepo := &mocks.MockMembershipRepository{}
	notificationRepo := &mocks.MockNotificationRepository{}
	svc := newTestService(groupRepo, membershipRepo, notificationRepo, &mocks.MockUserRepository{})

	group := testGroup(100000)
	actor := domain.Actor{ID: uuid.New(), DisplayName: "Hanako"}
	peer := uuid.New()

	groupRepo.On("GetByID", mock.Anything, group.ID).Return(group, nil)
	membershipRepo.On("Get", mock.Anything, actor.ID, group.ID).
		Return(testMembership(actor.ID, group.ID, 10000), nil)
	membershipRepo.On("UpdateSavingAmount", mock.Anything, actor.ID, group.ID, decimalEq(10000), decimalEq(25000), false).
		Return(true, nil)
	membershipRepo.On("ListMemberIDs", mock.Anything, group.ID).
		Return([]uuid.UUID{actor.ID, peer}, nil)
	notificationRepo.On("InsertBatch", mock.Anything, mock.Anything).
		Return(errors.New("notifications table unavailable"))

	result, err := svc.Contribute(context.Background(), actor, group.ID, decimal.NewFromInt(15000), false)

	require.NoError(t, err)
	assert.True(t, result.SavingAmount.Equal(decimal.NewFromInt(25000)))
	assert.True(t, result.MilestoneCrossed)
}

func TestContribute_RetriesConditionalUpdate(t *testing.T) {
	groupRepo := &mocks.MockGroupRepository{}
	membershipRepo := &mocks.MockMembershipRepository{}
	svc := newTestService(groupRepo, membershipRepo, &mocks.MockNotificationRepository{}, &mocks.MockUserRepository{})

	group := testGroup(100000)
	actor := domain.Actor{ID: uuid.New()}

	groupRepo.On("GetByID", mock.Anything, group.ID).Return(group, nil)

	// First read sees 1000, but a concurrent writer moves it to 2000
	// before our conditional update lands; the retry succeeds.
	membershipRepo.On("Get", mock.Anything, actor.ID, group.ID).
		Return(testMembership(actor.ID, group.ID, 1000), nil).Once()
	membershipRepo.On("UpdateSavingAmount", mock.Anything, actor.ID, group.ID, decimalEq(1000), decimalEq(1500), false).
		Return(false, nil).Once()
	membershipRepo.On("Get", mock.Anything, actor.ID, group.ID).
		Return(testMembership(actor.ID, group.ID, 2000), nil).Once()
	membershipRepo.On("UpdateSavingAmount", mock.Anything, actor.ID, group.ID, decimalEq(2000), decimalEq(2500), false).
		Return(true, nil).Once()

	result, err := svc.Contribute(context.Background(), actor, group.ID, decimal.NewFromInt(500), false)

	require.NoError(t, err)
	assert.True(t, result.SavingAmount.Equal(decimal.NewFromInt(2500)))
	membershipRepo.AssertExpectations(t)
}

func TestContribute_ConcurrentUpdateExhausted(t *testing.T) {
	groupRepo := &mocks.MockGroupRepository{}
	membershipRepo := &mocks.MockMembershipRepository{}
	svc := newTestService(groupRepo, membershipRepo, &mocks.MockNotificationRepository{}, &mocks.MockUserRepository{})

	group := testGroup(100000)
	actor := domain.Actor{ID: uuid.New()}

	groupRepo.On("GetByID", mock.Anything, group.ID).Return(group, nil)
	membershipRepo.On("Get", mock.Anything, actor.ID, group.ID).
		Return(testMembership(actor.ID, group.ID, 1000), nil)
	membershipRepo.On("UpdateSavingAmount", mock.Anything, actor.ID, group.ID, mock.Anything, mock.Anything, false).
		Return(false, nil)

	_, err := svc.Contribute(context.Background(), actor, group.ID, decimal.NewFromInt(500), false)

	assert.ErrorIs(t, err, customError.ErrConcurrentUpdate)
	membershipRepo.AssertNumberOfCalls(t, "UpdateSavingAmount", 3)
}

func TestWithdraw_AlwaysNotifies(t *testing.T) {
	groupRepo := &mocks.MockGroupRepository{}
	membershipRepo := &mocks.MockMembershipRepository{}
	notificationRepo := &mocks.MockNotificationRepository{}
	svc := newTestService(groupRepo, membershipRepo, notificationRepo, &mocks.MockUserRepository{})

	group := testGroup(100000)
	actor := domain.Actor{ID: uuid.New(), DisplayName: "Taro"}
	peer := uuid.New()

	groupRepo.On("GetByID", mock.Anything, group.ID).Return(group, nil)
	membershipRepo.On("Get", mock.Anything, actor.ID, group.ID).
		Return(testMembership(actor.ID, group.ID, 42000), nil)
	membershipRepo.On("ResetSavingAmount", mock.Anything, actor.ID, group.ID).Return(nil)
	membershipRepo.On("ListMemberIDs", mock.Anything, group.ID).
		Return([]uuid.UUID{actor.ID, peer}, nil)
	notificationRepo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(ns []*domain.Notification) bool {
		return len(ns) == 1 && ns[0].UserID == peer
	})).Return(nil)

	result, err := svc.Withdraw(context.Background(), actor, group.ID)

	require.NoError(t, err)
	assert.True(t, result.SavingAmount.IsZero())
	assert.True(t, result.Withdrawn.Equal(decimal.NewFromInt(42000)))
	require.Len(t, result.Notifications, 1)
	assert.Contains(t, result.Notifications[0].Message, "Taro")
	assert.Contains(t, result.Notifications[0].Message, "September Trip")

	membershipRepo.AssertExpectations(t)
	notificationRepo.AssertExpectations(t)
}

func TestGroupProgress(t *testing.T) {
	groupRepo := &mocks.MockGroupRepository{}
	membershipRepo := &mocks.MockMembershipRepository{}
	svc := newTestService(groupRepo, membershipRepo, &mocks.MockNotificationRepository{}, &mocks.MockUserRepository{})

	group := testGroup(100000)
	memberships := []*domain.Membership{
		testMembership(uuid.New(), group.ID, 10000),
		testMembership(uuid.New(), group.ID, 30000),
	}

	groupRepo.On("GetByID", mock.Anything, group.ID).Return(group, nil)
	membershipRepo.On("ListByGroup", mock.Anything, group.ID).Return(memberships, nil)

	snapshot, err := svc.GroupProgress(context.Background(), group.ID)

	require.NoError(t, err)
	assert.Equal(t, 20, snapshot.Percentage)
	assert.Equal(t, 1, snapshot.Stage)
	assert.Equal(t, 2, snapshot.MemberCount)
	// 2025-10-01 .. 2026-04-01 with now on 2026-01-15: a bit past halfway.
	assert.Greater(t, snapshot.ExpectedProgress, 50)
	assert.Less(t, snapshot.ExpectedProgress, 100)
}

func TestPlanRegular(t *testing.T) {
	groupRepo := &mocks.MockGroupRepository{}
	membershipRepo := &mocks.MockMembershipRepository{}
	svc := newTestService(groupRepo, membershipRepo, &mocks.MockNotificationRepository{}, &mocks.MockUserRepository{})

	group := testGroup(100000)
	userID := uuid.New()

	groupRepo.On("GetByID", mock.Anything, group.ID).Return(group, nil)
	membershipRepo.On("Get", mock.Anything, userID, group.ID).
		Return(testMembership(userID, group.ID, 50000), nil)

	plan, err := svc.PlanRegular(context.Background(), userID, group.ID)

	require.NoError(t, err)
	// Feb 1, Mar 1, Apr 1 remain before the deadline.
	assert.Equal(t, 3, plan.PaymentCount)
	assert.True(t, plan.Remaining.Equal(decimal.NewFromInt(50000)))
	assert.True(t, plan.PerPayment.Equal(decimal.NewFromInt(16667)))
}

func TestCollectRegularContributions(t *testing.T) {
	groupRepo := &mocks.MockGroupRepository{}
	membershipRepo := &mocks.MockMembershipRepository{}
	notificationRepo := &mocks.MockNotificationRepository{}
	userRepo := &mocks.MockUserRepository{}
	svc := newTestService(groupRepo, membershipRepo, notificationRepo, userRepo)

	group := testGroup(100000)
	userID := uuid.New()
	regular := testMembership(userID, group.ID, 40000)
	regular.IsRegular = true

	membershipRepo.On("ListRegular", mock.Anything).Return([]*domain.Membership{regular}, nil)
	groupRepo.On("GetByID", mock.Anything, group.ID).Return(group, nil)
	userRepo.On("GetByID", mock.Anything, userID).
		Return(&domain.User{ID: userID, DisplayName: "Hanako"}, nil)

	// Contribute path: remaining 60000 over 3 boundaries -> 20000 per month.
	membershipRepo.On("Get", mock.Anything, userID, group.ID).Return(regular, nil)
	membershipRepo.On("UpdateSavingAmount", mock.Anything, userID, group.ID, decimalEq(40000), decimalEq(60000), true).
		Return(true, nil)
	membershipRepo.On("ListMemberIDs", mock.Anything, group.ID).
		Return([]uuid.UUID{userID}, nil)

	err := svc.CollectRegularContributions(context.Background())

	require.NoError(t, err)
	membershipRepo.AssertExpectations(t)
	// Sole member means the milestone fan-out was empty.
	notificationRepo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestCollectRegularContributions_SkipsFailingMember(t *testing.T) {
	groupRepo := &mocks.MockGroupRepository{}
	membershipRepo := &mocks.MockMembershipRepository{}
	svc := newTestService(groupRepo, membershipRepo, &mocks.MockNotificationRepository{}, &mocks.MockUserRepository{})

	// Deadline already behind the clock: the plan fails with
	// NoRemainingWindow and the sweep carries on.
	pastDeadline := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	group := testGroup(100000)
	group.Deadline = &pastDeadline
	userID := uuid.New()
	regular := testMembership(userID, group.ID, 40000)
	regular.IsRegular = true

	membershipRepo.On("ListRegular", mock.Anything).Return([]*domain.Membership{regular}, nil)
	groupRepo.On("GetByID", mock.Anything, group.ID).Return(group, nil)

	err := svc.CollectRegularContributions(context.Background())

	assert.NoError(t, err)
	membershipRepo.AssertNotCalled(t, "UpdateSavingAmount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterUser(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	svc := newTestService(&mocks.MockGroupRepository{}, &mocks.MockMembershipRepository{}, &mocks.MockNotificationRepository{}, userRepo)

	userRepo.On("InviteCodeExists", mock.Anything, mock.Anything).Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.DisplayName == "Hanako" && len(u.InviteCode) == 8
	})).Return(nil)

	user, err := svc.RegisterUser(context.Background(), "Hanako")

	require.NoError(t, err)
	assert.Equal(t, "Hanako", user.DisplayName)
	assert.Len(t, user.InviteCode, 8)
	userRepo.AssertExpectations(t)
}

func TestCreateGroup_DeduplicatesMembers(t *testing.T) {
	groupRepo := &mocks.MockGroupRepository{}
	membershipRepo := &mocks.MockMembershipRepository{}
	svc := newTestService(groupRepo, membershipRepo, &mocks.MockNotificationRepository{}, &mocks.MockUserRepository{})

	actor := domain.Actor{ID: uuid.New(), DisplayName: "Hanako"}
	friend := uuid.New()

	groupRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	membershipRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	created, err := svc.CreateGroup(context.Background(), actor, &domain.CreateGroupRequest{
		DisplayName: "Bike Fund",
		GoalAmount:  decimal.NewFromInt(200000),
		MemberIDs:   []uuid.UUID{friend, actor.ID, friend},
	})

	require.NoError(t, err)
	assert.Len(t, created.Memberships, 2)
	membershipRepo.AssertNumberOfCalls(t, "Create", 2)
}
