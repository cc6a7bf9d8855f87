// Package notifier decides when a contribution crossed a growth-stage
// milestone and builds the notification records for the other group members.
// Persisting the records is the caller's job.
package notifier

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gyu5/Linkwallet/internal/domain"
	"github.com/gyu5/Linkwallet/internal/progress"
)

// EvaluateMilestone reports whether moving from the previous to the updated
// saving amount changed the member's growth stage, and what the new stage
// is. The comparison is symmetric: a correction that drops a member down a
// stage counts as a crossing too.
func EvaluateMilestone(previous, updated, goalAmount decimal.Decimal) (crossed bool, newStage int) {
	oldStage := progress.StageOf(float64(progress.MemberProgress(previous, goalAmount)))
	newStage = progress.StageOf(float64(progress.MemberProgress(updated, goalAmount)))
	return oldStage != newStage, newStage
}

// MilestoneNotifications builds one notification per group member, excluding
// the acting user. An empty result (actor is the only member) is valid.
func MilestoneNotifications(memberIDs []uuid.UUID, actorID uuid.UUID, actorName string, newStage int, now time.Time) []*domain.Notification {
	message := fmt.Sprintf("%s's savings have reached stage %d", actorName, newStage)
	return fanOut(memberIDs, actorID, message, now)
}

// WithdrawalNotifications builds the withdrawal announcement for every other
// group member. Withdrawals always notify; there is no stage gating.
func WithdrawalNotifications(memberIDs []uuid.UUID, actorID uuid.UUID, actorName, groupName string, now time.Time) []*domain.Notification {
	message := fmt.Sprintf("%s in %s has withdrawn their savings", actorName, groupName)
	return fanOut(memberIDs, actorID, message, now)
}

func fanOut(memberIDs []uuid.UUID, actorID uuid.UUID, message string, now time.Time) []*domain.Notification {
	notifications := make([]*domain.Notification, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		if memberID == actorID {
			continue
		}
		notifications = append(notifications, &domain.Notification{
			ID:        uuid.New(),
			UserID:    memberID,
			Message:   message,
			CreatedAt: now,
		})
	}
	return notifications
}
