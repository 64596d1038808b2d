package service

import (
	"context"
	"strings"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/metrics"
	"equipshare-backend/internal/repository"
)

type calendarService struct {
	closedRepo repository.ClosedDateRepository
	auditRepo  repository.AuditLogRepository
	dispatcher NotificationDispatcher
	now        func() time.Time
}

func NewCalendarService(
	closedRepo repository.ClosedDateRepository,
	auditRepo repository.AuditLogRepository,
	dispatcher NotificationDispatcher,
	now func() time.Time,
) CalendarService {
	return &calendarService{
		closedRepo: closedRepo,
		auditRepo:  auditRepo,
		dispatcher: dispatcher,
		now:        now,
	}
}

// IsClosed normalizes to the calendar day and matches exact entries plus
// yearly-recurring ones sharing month and day.
func (s *calendarService) IsClosed(ctx context.Context, date time.Time) (bool, error) {
	entries, err := s.closedRepo.List(ctx)
	if err != nil {
		return false, err
	}
	for i := range entries {
		if entries[i].Matches(date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *calendarService) Add(ctx context.Context, date time.Time, reason string, recurring bool, admin Actor) (*domain.ClosedDate, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("reason", "reason is required")
	}
	if date.IsZero() {
		return nil, domain.NewValidationError("date", "a valid date is required")
	}

	cd := &domain.ClosedDate{
		Date:        date,
		Reason:      strings.TrimSpace(reason),
		IsRecurring: recurring,
		CreatedBy:   admin.ID,
		CreatedAt:   s.now(),
	}
	if recurring {
		cd.RecurringPattern = domain.RecurringPatternYearly
	}
	if err := s.closedRepo.Create(ctx, cd); err != nil {
		return nil, err
	}
	metrics.IncSettingsChange(string(domain.SettingTypeClosedDate))

	if err := s.audit(ctx, admin, domain.AuditActionCreate, cd.ID, nil, cd); err != nil {
		return nil, err
	}
	s.notifyCritical(ctx, admin, "Closed date added",
		cd.Date.Format("2006-01-02")+": "+cd.Reason)
	return cd, nil
}

func (s *calendarService) Remove(ctx context.Context, id string, admin Actor) error {
	cd, err := s.closedRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.closedRepo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.IncSettingsChange(string(domain.SettingTypeClosedDate))

	if err := s.audit(ctx, admin, domain.AuditActionDelete, id, cd, nil); err != nil {
		return err
	}
	s.notifyCritical(ctx, admin, "Closed date removed",
		cd.Date.Format("2006-01-02")+": "+cd.Reason)
	return nil
}

func (s *calendarService) List(ctx context.Context) ([]domain.ClosedDate, error) {
	return s.closedRepo.List(ctx)
}

func (s *calendarService) audit(ctx context.Context, admin Actor, action domain.AuditAction, path string, oldVal, newVal any) error {
	return s.auditRepo.Append(ctx, &domain.AuditLogEntry{
		Timestamp:   s.now(),
		AdminID:     admin.ID,
		AdminName:   admin.Name,
		Action:      action,
		SettingType: domain.SettingTypeClosedDate,
		SettingPath: path,
		OldValue:    oldVal,
		NewValue:    newVal,
		IPAddress:   admin.IPAddress,
		UserAgent:   admin.UserAgent,
	})
}

// Closed dates are a critical setting: every change alerts the webhook and
// all administrators.
func (s *calendarService) notifyCritical(ctx context.Context, admin Actor, title, detail string) {
	content := detail + " (changed by " + admin.Name + ")"
	runEffects("calendar.notify",
		effect{"webhook", func() error {
			return s.dispatcher.SendWebhook(ctx, title, content)
		}},
		effect{"admin-notification", func() error {
			return s.dispatcher.NotifyAdmins(ctx, &domain.SystemNotification{
				Title:     title,
				Content:   content,
				Type:      domain.NotificationTypeSettings,
				Priority:  domain.NotificationPriorityHigh,
				CreatedBy: admin.ID,
			})
		}},
	)
}
