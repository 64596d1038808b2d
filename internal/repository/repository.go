package repository

import (
	"context"
	"time"

	"equipshare-backend/internal/domain"
)

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.LoanRequest) error
	GetByID(ctx context.Context, id string) (*domain.LoanRequest, error)
	Update(ctx context.Context, loan *domain.LoanRequest) error
	Delete(ctx context.Context, id string) error
	ListByRequester(ctx context.Context, requesterID string, status string, page, pageSize int32) ([]domain.LoanRequest, int32, error)
	List(ctx context.Context, status string, page, pageSize int32) ([]domain.LoanRequest, int32, error)

	// HasPendingForEquipment reports whether the user already has a
	// PENDING request for the equipment.
	HasPendingForEquipment(ctx context.Context, requesterID, equipmentID string) (bool, error)

	// CountBorrowedInCategory counts the user's still-out requests, both
	// BORROWED and OVERDUE, whose equipment snapshot category matches.
	// Overdue items keep occupying the borrower's category quota until
	// they come back.
	CountBorrowedInCategory(ctx context.Context, requesterID, category string) (int, error)

	// ListOverdueCandidates returns BORROWED requests whose expected
	// return date is strictly before the cutoff.
	ListOverdueCandidates(ctx context.Context, cutoff time.Time) ([]domain.LoanRequest, error)

	// MarkOverdue moves the loan to OVERDUE only if it is still BORROWED.
	// It reports false when the guard did not match, which happens when the
	// loan was returned between listing and marking.
	MarkOverdue(ctx context.Context, id string, markedAt time.Time) (bool, error)

	// BorrowTx atomically moves the loan to BORROWED and the equipment to
	// BORROWED with the borrower set. Both updates carry status guards;
	// if either guard fails nothing is written and an
	// InvalidStateTransitionError is returned.
	BorrowTx(ctx context.Context, loan *domain.LoanRequest, equipmentID, borrowerID string) error

	// ReturnTx atomically moves the loan to RETURNED and the equipment to
	// AVAILABLE or MAINTENANCE depending on the return condition.
	ReturnTx(ctx context.Context, loan *domain.LoanRequest, equipmentID string, equipmentStatus domain.EquipmentStatus) error
}

type EquipmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Equipment, error)
	Update(ctx context.Context, equipment *domain.Equipment) error
	ListByCategory(ctx context.Context, category string) ([]domain.Equipment, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListAdmins(ctx context.Context) ([]domain.User, error)
}

type SettingsRepository interface {
	// Get returns the singleton settings document, or a NotFoundError if
	// it was never initialized.
	Get(ctx context.Context) (*domain.SystemSettings, error)
	Put(ctx context.Context, settings *domain.SystemSettings) error
}

type ClosedDateRepository interface {
	Create(ctx context.Context, cd *domain.ClosedDate) error
	GetByID(ctx context.Context, id string) (*domain.ClosedDate, error)
	Delete(ctx context.Context, id string) error
	// List returns all closed dates in ascending date order.
	List(ctx context.Context) ([]domain.ClosedDate, error)
}

type CategoryLimitRepository interface {
	Get(ctx context.Context, categoryID string) (*domain.CategoryLimit, error)
	Put(ctx context.Context, limit *domain.CategoryLimit) error
	Delete(ctx context.Context, categoryID string) error
	List(ctx context.Context) ([]domain.CategoryLimit, error)
}

// AuditLogRepository is append-only; entries are never mutated or deleted.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
	List(ctx context.Context, settingType string, page, pageSize int32) ([]domain.AuditLogEntry, int32, error)
}

type ActivityLogRepository interface {
	Append(ctx context.Context, entry *domain.ActivityLogEntry) error
	ListByLoan(ctx context.Context, loanID string) ([]domain.ActivityLogEntry, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.SystemNotification) error
	GetByID(ctx context.Context, id string) (*domain.SystemNotification, error)
	ListForUser(ctx context.Context, userID string, page, pageSize int32) ([]domain.SystemNotification, int32, error)
	MarkRead(ctx context.Context, id, userID string) error
	AddResponse(ctx context.Context, id string, response domain.NotificationResponse) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type DamageReportRepository interface {
	Create(ctx context.Context, report *domain.DamageReport) error
	List(ctx context.Context, page, pageSize int32) ([]domain.DamageReport, int32, error)
}

type BackupRepository interface {
	Create(ctx context.Context, backup *domain.SettingsBackup) error
	GetByID(ctx context.Context, id string) (*domain.SettingsBackup, error)
	List(ctx context.Context) ([]domain.SettingsBackup, error)
}
