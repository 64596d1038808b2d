package service

import (
	"context"
	"fmt"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/logger"
	"equipshare-backend/internal/metrics"
	"equipshare-backend/internal/repository"
)

type overdueService struct {
	loanRepo   repository.LoanRepository
	dispatcher NotificationDispatcher
	now        func() time.Time
}

func NewOverdueService(
	loanRepo repository.LoanRepository,
	dispatcher NotificationDispatcher,
	now func() time.Time,
) OverdueService {
	return &overdueService{
		loanRepo:   loanRepo,
		dispatcher: dispatcher,
		now:        now,
	}
}

// MarkOverdueLoans promotes every BORROWED loan whose expected return
// date has passed. It is a reconciliation pass: re-running once all
// eligible loans are promoted finds nothing to do.
func (s *overdueService) MarkOverdueLoans(ctx context.Context) (int, error) {
	candidates, err := s.loanRepo.ListOverdueCandidates(ctx, s.now())
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range candidates {
		loan := candidates[i]
		markedAt := s.now()
		ok, err := s.loanRepo.MarkOverdue(ctx, loan.ID, markedAt)
		if err != nil {
			logger.Error("Failed to mark loan overdue", "loan_id", loan.ID, "error", err)
			continue
		}
		if !ok {
			// Returned while the sweep was running.
			logger.Debug("Loan no longer borrowed, skipping", "loan_id", loan.ID)
			continue
		}
		loan.Status = domain.LoanStatusOverdue
		loan.OverdueMarkedAt = &markedAt
		marked++
		metrics.IncLoanTransition(string(domain.LoanStatusOverdue))

		runEffects("overdue.mark",
			effect{"borrower-notification", func() error {
				return s.dispatcher.NotifyUsers(ctx, []string{loan.RequesterID}, &domain.SystemNotification{
					Title: "Loan overdue",
					Content: fmt.Sprintf("%s was due back on %s, please return it",
						loan.EquipmentSnapshot.Name, loan.ExpectedReturnDate.Format("2006-01-02")),
					Type:     domain.NotificationTypeLoan,
					Priority: domain.NotificationPriorityHigh,
				})
			}},
		)
	}
	metrics.AddOverdueMarked(marked)
	return marked, nil
}

// IsOverdue gives a live-computed view independent of the stored status,
// which may lag real time by up to the sweep interval.
func (s *overdueService) IsOverdue(loan *domain.LoanRequest) bool {
	if loan.Status == domain.LoanStatusOverdue {
		return true
	}
	if loan.Status != domain.LoanStatusBorrowed {
		return false
	}
	return loan.ExpectedReturnDate.Before(s.now())
}

func (s *overdueService) DaysOverdue(loan *domain.LoanRequest) int {
	if !s.IsOverdue(loan) {
		return 0
	}
	days := int(s.now().Sub(loan.ExpectedReturnDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
