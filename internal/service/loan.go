package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/metrics"
	"equipshare-backend/internal/repository"
)

const minReasonLength = 10

type loanService struct {
	loanRepo   repository.LoanRepository
	equipRepo  repository.EquipmentRepository
	userRepo   repository.UserRepository
	damageRepo repository.DamageReportRepository
	activity   repository.ActivityLogRepository
	limits     CategoryLimitService
	calendar   CalendarService
	settings   SettingsService
	dispatcher NotificationDispatcher
	email      EmailService
	now        func() time.Time
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	equipRepo repository.EquipmentRepository,
	userRepo repository.UserRepository,
	damageRepo repository.DamageReportRepository,
	activity repository.ActivityLogRepository,
	limits CategoryLimitService,
	calendar CalendarService,
	settings SettingsService,
	dispatcher NotificationDispatcher,
	email EmailService,
	now func() time.Time,
) LoanService {
	return &loanService{
		loanRepo:   loanRepo,
		equipRepo:  equipRepo,
		userRepo:   userRepo,
		damageRepo: damageRepo,
		activity:   activity,
		limits:     limits,
		calendar:   calendar,
		settings:   settings,
		dispatcher: dispatcher,
		email:      email,
		now:        now,
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Create validates the request against dates, closed-date calendar,
// equipment availability, duplicate pending requests and the category
// limit, then writes a PENDING request. Equipment is not touched at this
// stage.
func (s *loanService) Create(ctx context.Context, input CreateLoanInput, requesterID string) (*domain.LoanRequest, error) {
	if input.EquipmentID == "" {
		return nil, domain.NewValidationError("equipmentId", "equipment is required")
	}
	if strings.TrimSpace(input.Purpose) == "" {
		return nil, domain.NewValidationError("purpose", "purpose is required")
	}

	borrow := startOfDay(input.BorrowDate)
	expectedReturn := startOfDay(input.ExpectedReturnDate)
	today := startOfDay(s.now())

	if !expectedReturn.After(borrow) {
		return nil, domain.NewValidationError("expectedReturnDate", "expected return date must be after borrow date")
	}
	if borrow.Before(today) {
		return nil, domain.NewValidationError("borrowDate", "borrow date cannot be in the past")
	}

	policy, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	duration := int(expectedReturn.Sub(borrow).Hours() / 24)
	if duration > policy.MaxLoanDuration {
		return nil, domain.NewValidationError("expectedReturnDate",
			fmt.Sprintf("loan duration %d days exceeds the maximum of %d", duration, policy.MaxLoanDuration))
	}
	if borrow.After(today.AddDate(0, 0, policy.MaxAdvanceBookingDays)) {
		return nil, domain.NewValidationError("borrowDate",
			fmt.Sprintf("borrow date is more than %d days ahead", policy.MaxAdvanceBookingDays))
	}

	for _, day := range []time.Time{borrow, expectedReturn} {
		closed, err := s.calendar.IsClosed(ctx, day)
		if err != nil {
			return nil, err
		}
		if closed {
			return nil, domain.NewValidationError("borrowDate",
				fmt.Sprintf("%s falls on a closed date", day.Format("2006-01-02")))
		}
	}

	equip, err := s.equipRepo.GetByID(ctx, input.EquipmentID)
	if err != nil {
		return nil, err
	}
	if equip.Status != domain.EquipmentStatusAvailable {
		return nil, domain.NewValidationError("equipmentId",
			fmt.Sprintf("equipment %q is not available (status %s)", equip.Name, equip.Status))
	}

	pending, err := s.loanRepo.HasPendingForEquipment(ctx, requesterID, input.EquipmentID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, domain.NewValidationError("equipmentId", "you already have a pending request for this equipment")
	}

	check, err := s.limits.Check(ctx, requesterID, equip.Category)
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, domain.NewValidationError("category", check.Message)
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	loan := &domain.LoanRequest{
		EquipmentID:        input.EquipmentID,
		RequesterID:        requesterID,
		Status:             domain.LoanStatusPending,
		RequestedAt:        s.now(),
		BorrowDate:         borrow,
		ExpectedReturnDate: expectedReturn,
		Purpose:            strings.TrimSpace(input.Purpose),
		Notes:              input.Notes,
		EquipmentSnapshot: domain.EquipmentSnapshot{
			Name:     equip.Name,
			Category: equip.Category,
			Location: equip.Location,
		},
		UserSnapshot: domain.UserSnapshot{
			DisplayName: requester.DisplayName,
			Email:       requester.Email,
			Department:  requester.Department,
		},
	}
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}
	metrics.IncLoanTransition(string(domain.LoanStatusPending))

	runEffects("loan.create", effect{"admin-notification", func() error {
		return s.dispatcher.NotifyAdmins(ctx, &domain.SystemNotification{
			Title:     "New loan request",
			Content:   fmt.Sprintf("%s requested %s (%s)", requester.DisplayName, equip.Name, loan.Purpose),
			Type:      domain.NotificationTypeLoan,
			Priority:  domain.NotificationPriorityNormal,
			CreatedBy: requesterID,
		})
	}})
	return loan, nil
}

// Approve moves PENDING → APPROVED. Equipment is deliberately left
// untouched so a concurrent pickup cannot act on stale state.
func (s *loanService) Approve(ctx context.Context, id string, approver Actor) (*domain.LoanRequest, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusPending {
		return nil, domain.NewInvalidTransitionError("loan request", loan.Status, domain.LoanStatusApproved)
	}

	equip, err := s.equipRepo.GetByID(ctx, loan.EquipmentID)
	if err != nil {
		return nil, err
	}
	if equip.Status != domain.EquipmentStatusAvailable {
		return nil, domain.NewValidationError("equipmentId",
			fmt.Sprintf("equipment %q is no longer available (status %s)", equip.Name, equip.Status))
	}

	approvedAt := s.now()
	loan.Status = domain.LoanStatusApproved
	loan.ApprovedBy = &approver.ID
	loan.ApprovedAt = &approvedAt
	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}
	metrics.IncLoanTransition(string(domain.LoanStatusApproved))

	s.staffEffects(ctx, loan, approver, "approve",
		"Loan request approved",
		fmt.Sprintf("Your request for %s was approved by %s", loan.EquipmentSnapshot.Name, approver.Name))
	return loan, nil
}

// Reject moves PENDING → REJECTED with a mandatory reason.
func (s *loanService) Reject(ctx context.Context, id, reason string, approver Actor) (*domain.LoanRequest, error) {
	if len(strings.TrimSpace(reason)) < minReasonLength {
		return nil, domain.NewValidationError("reason",
			fmt.Sprintf("rejection reason must be at least %d characters", minReasonLength))
	}

	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusPending {
		return nil, domain.NewInvalidTransitionError("loan request", loan.Status, domain.LoanStatusRejected)
	}

	trimmed := strings.TrimSpace(reason)
	loan.Status = domain.LoanStatusRejected
	loan.RejectionReason = &trimmed
	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}
	metrics.IncLoanTransition(string(domain.LoanStatusRejected))

	s.staffEffects(ctx, loan, approver, "reject",
		"Loan request rejected",
		fmt.Sprintf("Your request for %s was rejected: %s", loan.EquipmentSnapshot.Name, trimmed))
	return loan, nil
}

// MarkPickedUp is the only operation that takes equipment out of
// circulation. The loan and equipment updates commit in one transaction;
// two staff handing out the same item concurrently cannot both succeed.
func (s *loanService) MarkPickedUp(ctx context.Context, id string, staff Actor) (*domain.LoanRequest, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusApproved {
		return nil, domain.NewInvalidTransitionError("loan request", loan.Status, domain.LoanStatusBorrowed)
	}

	pickedUpAt := s.now()
	loan.PickedUpBy = &staff.ID
	loan.PickedUpAt = &pickedUpAt
	if err := s.loanRepo.BorrowTx(ctx, loan, loan.EquipmentID, loan.RequesterID); err != nil {
		return nil, err
	}
	metrics.IncLoanTransition(string(domain.LoanStatusBorrowed))

	s.staffEffects(ctx, loan, staff, "pickup",
		"Equipment picked up",
		fmt.Sprintf("%s is now checked out to you until %s",
			loan.EquipmentSnapshot.Name, loan.ExpectedReturnDate.Format("2006-01-02")))
	return loan, nil
}

// MarkReturned closes out a BORROWED or OVERDUE loan. Damaged or
// incomplete returns route the equipment to MAINTENANCE, file a damage
// report and escalate to administrators at high priority.
func (s *loanService) MarkReturned(ctx context.Context, id string, staff Actor, condition domain.ReturnCondition, notes string) (*domain.LoanRequest, error) {
	if condition == "" {
		condition = domain.ReturnConditionGood
	}
	if condition.NeedsMaintenance() && len(strings.TrimSpace(notes)) < minReasonLength {
		return nil, domain.NewValidationError("notes",
			fmt.Sprintf("notes of at least %d characters are required for condition %q", minReasonLength, condition))
	}

	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusBorrowed && loan.Status != domain.LoanStatusOverdue {
		return nil, domain.NewInvalidTransitionError("loan request", loan.Status, domain.LoanStatusReturned)
	}

	equipmentStatus := domain.EquipmentStatusAvailable
	if condition.NeedsMaintenance() {
		equipmentStatus = domain.EquipmentStatusMaintenance
	}

	returnedAt := s.now()
	loan.ReturnedBy = &staff.ID
	loan.ReturnedAt = &returnedAt
	loan.ActualReturnDate = &returnedAt
	loan.ReturnCondition = condition
	if notes != "" {
		loan.Notes = notes
	}
	if err := s.loanRepo.ReturnTx(ctx, loan, loan.EquipmentID, equipmentStatus); err != nil {
		return nil, err
	}
	metrics.IncLoanTransition(string(domain.LoanStatusReturned))

	s.staffEffects(ctx, loan, staff, "return",
		"Equipment returned",
		fmt.Sprintf("Your loan of %s is closed", loan.EquipmentSnapshot.Name))

	if condition.NeedsMaintenance() {
		s.escalateDamage(ctx, loan, staff, condition, notes)
	}
	return loan, nil
}

// Cancel removes a PENDING request. Only the requester may cancel.
func (s *loanService) Cancel(ctx context.Context, id, requesterID string) error {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if loan.RequesterID != requesterID {
		return domain.NewPermissionError(requesterID, "cancel this loan request")
	}
	if loan.Status != domain.LoanStatusPending {
		return domain.NewInvalidTransitionError("loan request", loan.Status, "CANCELLED")
	}
	return s.loanRepo.Delete(ctx, id)
}

func (s *loanService) Get(ctx context.Context, id string) (*domain.LoanRequest, error) {
	return s.loanRepo.GetByID(ctx, id)
}

func (s *loanService) ListByRequester(ctx context.Context, requesterID, status string, page, pageSize int32) ([]domain.LoanRequest, int32, error) {
	return s.loanRepo.ListByRequester(ctx, requesterID, status, page, pageSize)
}

func (s *loanService) List(ctx context.Context, status string, page, pageSize int32) ([]domain.LoanRequest, int32, error) {
	return s.loanRepo.List(ctx, status, page, pageSize)
}

// staffEffects runs the shared post-commit pipeline for staff actions:
// activity log entry, requester notification, admin fan-out. Each step is
// independently best-effort.
func (s *loanService) staffEffects(ctx context.Context, loan *domain.LoanRequest, staff Actor, action, title, requesterMsg string) {
	runEffects("loan."+action,
		effect{"activity-log", func() error {
			return s.activity.Append(ctx, &domain.ActivityLogEntry{
				Timestamp: s.now(),
				ActorID:   staff.ID,
				ActorName: staff.Name,
				Action:    action,
				LoanID:    loan.ID,
				Detail:    loan.EquipmentSnapshot.Name,
			})
		}},
		effect{"requester-notification", func() error {
			return s.dispatcher.NotifyUsers(ctx, []string{loan.RequesterID}, &domain.SystemNotification{
				Title:     title,
				Content:   requesterMsg,
				Type:      domain.NotificationTypeLoan,
				Priority:  domain.NotificationPriorityNormal,
				CreatedBy: staff.ID,
			})
		}},
		effect{"admin-notification", func() error {
			return s.dispatcher.NotifyAdmins(ctx, &domain.SystemNotification{
				Title: "Loan activity: " + action,
				Content: fmt.Sprintf("%s performed %q on loan of %s for %s",
					staff.Name, action, loan.EquipmentSnapshot.Name, loan.UserSnapshot.DisplayName),
				Type:      domain.NotificationTypeLoan,
				Priority:  domain.NotificationPriorityLow,
				CreatedBy: staff.ID,
			})
		}},
	)
}

func (s *loanService) escalateDamage(ctx context.Context, loan *domain.LoanRequest, staff Actor, condition domain.ReturnCondition, notes string) {
	report := &domain.DamageReport{
		LoanID:      loan.ID,
		EquipmentID: loan.EquipmentID,
		ReportedBy:  staff.ID,
		Condition:   condition,
		Notes:       notes,
		CreatedOn:   s.now(),
	}
	content := fmt.Sprintf("%s returned %s as %s: %s",
		loan.UserSnapshot.DisplayName, loan.EquipmentSnapshot.Name, condition, notes)

	runEffects("loan.damage",
		effect{"damage-report", func() error {
			return s.damageRepo.Create(ctx, report)
		}},
		effect{"admin-escalation", func() error {
			return s.dispatcher.NotifyAdmins(ctx, &domain.SystemNotification{
				Title:     "Equipment damage reported",
				Content:   content,
				Type:      domain.NotificationTypeDamage,
				Priority:  domain.NotificationPriorityHigh,
				CreatedBy: staff.ID,
			})
		}},
		effect{"admin-email", func() error {
			admins, err := s.userRepo.ListAdmins(ctx)
			if err != nil {
				return err
			}
			for _, admin := range admins {
				if err := s.email.SendAdminAlert(ctx, admin.Email, "Equipment damage reported", content); err != nil {
					return err
				}
			}
			return nil
		}},
	)
}
