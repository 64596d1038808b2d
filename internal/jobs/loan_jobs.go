package jobs

import (
	"context"
	"time"

	"equipshare-backend/internal/logger"
)

// MarkOverdueLoans runs the overdue reconciliation sweep: BORROWED loans
// past their expected return date are promoted to OVERDUE.
func (jr *JobRunner) MarkOverdueLoans() {
	jr.runWithRecovery("MarkOverdueLoans", func() {
		ctx := context.Background()

		marked, err := jr.services.Overdue.MarkOverdueLoans(ctx)
		if err != nil {
			logger.Error("Failed to mark overdue loans", "error", err)
			return
		}
		logger.Info("Marked loans as overdue", "count", marked)
	})
}

// CleanupExpiredNotifications removes notifications past their expiry.
func (jr *JobRunner) CleanupExpiredNotifications() {
	jr.runWithRecovery("CleanupExpiredNotifications", func() {
		ctx := context.Background()

		deleted, err := jr.store.NotificationRepository.DeleteExpired(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to clean up expired notifications", "error", err)
			return
		}
		logger.Info("Deleted expired notifications", "count", deleted)
	})
}
