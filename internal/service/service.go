package service

import (
	"context"
	"time"

	"equipshare-backend/internal/domain"
)

// Actor is the authenticated identity performing an operation, with the
// request metadata the audit log captures.
type Actor struct {
	ID        string
	Name      string
	IPAddress string
	UserAgent string
}

// CreateLoanInput is the caller-supplied part of a new loan request.
// Everything else (snapshots, status, timestamps) is filled in by the
// service.
type CreateLoanInput struct {
	EquipmentID        string    `json:"equipmentId"`
	BorrowDate         time.Time `json:"borrowDate"`
	ExpectedReturnDate time.Time `json:"expectedReturnDate"`
	Purpose            string    `json:"purpose"`
	Notes              string    `json:"notes"`
}

type LoanService interface {
	Create(ctx context.Context, input CreateLoanInput, requesterID string) (*domain.LoanRequest, error)
	Approve(ctx context.Context, id string, approver Actor) (*domain.LoanRequest, error)
	Reject(ctx context.Context, id, reason string, approver Actor) (*domain.LoanRequest, error)
	MarkPickedUp(ctx context.Context, id string, staff Actor) (*domain.LoanRequest, error)
	MarkReturned(ctx context.Context, id string, staff Actor, condition domain.ReturnCondition, notes string) (*domain.LoanRequest, error)
	Cancel(ctx context.Context, id, requesterID string) error
	Get(ctx context.Context, id string) (*domain.LoanRequest, error)
	ListByRequester(ctx context.Context, requesterID, status string, page, pageSize int32) ([]domain.LoanRequest, int32, error)
	List(ctx context.Context, status string, page, pageSize int32) ([]domain.LoanRequest, int32, error)
}

// LimitCheckResult is the answer to "may this user borrow another item in
// this category right now".
type LimitCheckResult struct {
	Allowed      bool   `json:"allowed"`
	CurrentCount int    `json:"currentCount"`
	Limit        int    `json:"limit"`
	Message      string `json:"message,omitempty"`
}

type CategoryLimitService interface {
	Check(ctx context.Context, userID, category string) (*LimitCheckResult, error)
}

type CalendarService interface {
	IsClosed(ctx context.Context, date time.Time) (bool, error)
	Add(ctx context.Context, date time.Time, reason string, recurring bool, admin Actor) (*domain.ClosedDate, error)
	Remove(ctx context.Context, id string, admin Actor) error
	List(ctx context.Context) ([]domain.ClosedDate, error)
}

type OverdueService interface {
	// MarkOverdueLoans promotes BORROWED loans past due to OVERDUE and
	// returns how many it touched. Safe to re-run.
	MarkOverdueLoans(ctx context.Context) (int, error)
	IsOverdue(loan *domain.LoanRequest) bool
	DaysOverdue(loan *domain.LoanRequest) int
}

type SettingsService interface {
	GetSettings(ctx context.Context) (*domain.SystemSettings, error)
	UpdateSetting(ctx context.Context, key string, value any, admin Actor) error
	UpdateMultipleSettings(ctx context.Context, updates map[string]any, admin Actor) error
	SetCategoryLimit(ctx context.Context, categoryID, categoryName string, limit int, admin Actor) error
	RemoveCategoryLimit(ctx context.Context, categoryID string, admin Actor) error
	ListCategoryLimits(ctx context.Context) ([]domain.CategoryLimit, error)
	ExportSettings(ctx context.Context, includeSensitive bool, admin Actor) (*domain.SettingsExport, error)
	ImportSettings(ctx context.Context, data *domain.SettingsExport, admin Actor) (*domain.ImportStats, error)
	CreateBackup(ctx context.Context, admin Actor) (*domain.SettingsBackup, error)
}

// NotificationDispatcher decides nothing; it delivers what services hand
// it. All delivery is best-effort relative to the primary state change.
type NotificationDispatcher interface {
	NotifyUsers(ctx context.Context, userIDs []string, n *domain.SystemNotification) error
	NotifyAdmins(ctx context.Context, n *domain.SystemNotification) error
	SendWebhook(ctx context.Context, title, message string) error
}

type NotificationService interface {
	ListForUser(ctx context.Context, userID string, page, pageSize int32) ([]domain.SystemNotification, int32, error)
	MarkRead(ctx context.Context, id, userID string) error
	Respond(ctx context.Context, id, userID, response string) error
}

type EmailService interface {
	SendAdminAlert(ctx context.Context, email, subject, body string) error
}
