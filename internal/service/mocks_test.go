package service_test

import (
	"context"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockLoanRepo
type MockLoanRepo struct {
	mock.Mock
}

func (m *MockLoanRepo) Create(ctx context.Context, loan *domain.LoanRequest) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}
func (m *MockLoanRepo) GetByID(ctx context.Context, id string) (*domain.LoanRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanRequest), args.Error(1)
}
func (m *MockLoanRepo) Update(ctx context.Context, loan *domain.LoanRequest) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}
func (m *MockLoanRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockLoanRepo) ListByRequester(ctx context.Context, requesterID, status string, page, pageSize int32) ([]domain.LoanRequest, int32, error) {
	args := m.Called(ctx, requesterID, status, page, pageSize)
	return args.Get(0).([]domain.LoanRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockLoanRepo) List(ctx context.Context, status string, page, pageSize int32) ([]domain.LoanRequest, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.LoanRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockLoanRepo) HasPendingForEquipment(ctx context.Context, requesterID, equipmentID string) (bool, error) {
	args := m.Called(ctx, requesterID, equipmentID)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoanRepo) CountBorrowedInCategory(ctx context.Context, requesterID, category string) (int, error) {
	args := m.Called(ctx, requesterID, category)
	return args.Int(0), args.Error(1)
}
func (m *MockLoanRepo) ListOverdueCandidates(ctx context.Context, cutoff time.Time) ([]domain.LoanRequest, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanRequest), args.Error(1)
}
func (m *MockLoanRepo) MarkOverdue(ctx context.Context, id string, markedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, markedAt)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoanRepo) BorrowTx(ctx context.Context, loan *domain.LoanRequest, equipmentID, borrowerID string) error {
	args := m.Called(ctx, loan, equipmentID, borrowerID)
	return args.Error(0)
}
func (m *MockLoanRepo) ReturnTx(ctx context.Context, loan *domain.LoanRequest, equipmentID string, equipmentStatus domain.EquipmentStatus) error {
	args := m.Called(ctx, loan, equipmentID, equipmentStatus)
	return args.Error(0)
}

// MockEquipmentRepo
type MockEquipmentRepo struct {
	mock.Mock
}

func (m *MockEquipmentRepo) GetByID(ctx context.Context, id string) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) Update(ctx context.Context, equipment *domain.Equipment) error {
	args := m.Called(ctx, equipment)
	return args.Error(0)
}
func (m *MockEquipmentRepo) ListByCategory(ctx context.Context, category string) ([]domain.Equipment, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]domain.Equipment), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) ListAdmins(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockSettingsRepo
type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) Get(ctx context.Context) (*domain.SystemSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemSettings), args.Error(1)
}
func (m *MockSettingsRepo) Put(ctx context.Context, settings *domain.SystemSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockClosedDateRepo
type MockClosedDateRepo struct {
	mock.Mock
}

func (m *MockClosedDateRepo) Create(ctx context.Context, cd *domain.ClosedDate) error {
	args := m.Called(ctx, cd)
	return args.Error(0)
}
func (m *MockClosedDateRepo) GetByID(ctx context.Context, id string) (*domain.ClosedDate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClosedDate), args.Error(1)
}
func (m *MockClosedDateRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockClosedDateRepo) List(ctx context.Context) ([]domain.ClosedDate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ClosedDate), args.Error(1)
}

// MockCategoryLimitRepo
type MockCategoryLimitRepo struct {
	mock.Mock
}

func (m *MockCategoryLimitRepo) Get(ctx context.Context, categoryID string) (*domain.CategoryLimit, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryLimit), args.Error(1)
}
func (m *MockCategoryLimitRepo) Put(ctx context.Context, limit *domain.CategoryLimit) error {
	args := m.Called(ctx, limit)
	return args.Error(0)
}
func (m *MockCategoryLimitRepo) Delete(ctx context.Context, categoryID string) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}
func (m *MockCategoryLimitRepo) List(ctx context.Context) ([]domain.CategoryLimit, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CategoryLimit), args.Error(1)
}

// MockAuditLogRepo
type MockAuditLogRepo struct {
	mock.Mock
}

func (m *MockAuditLogRepo) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockAuditLogRepo) List(ctx context.Context, settingType string, page, pageSize int32) ([]domain.AuditLogEntry, int32, error) {
	args := m.Called(ctx, settingType, page, pageSize)
	return args.Get(0).([]domain.AuditLogEntry), args.Get(1).(int32), args.Error(2)
}

// MockActivityLogRepo
type MockActivityLogRepo struct {
	mock.Mock
}

func (m *MockActivityLogRepo) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockActivityLogRepo) ListByLoan(ctx context.Context, loanID string) ([]domain.ActivityLogEntry, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).([]domain.ActivityLogEntry), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.SystemNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockNotificationRepo) GetByID(ctx context.Context, id string) (*domain.SystemNotification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemNotification), args.Error(1)
}
func (m *MockNotificationRepo) ListForUser(ctx context.Context, userID string, page, pageSize int32) ([]domain.SystemNotification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.SystemNotification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
func (m *MockNotificationRepo) AddResponse(ctx context.Context, id string, response domain.NotificationResponse) error {
	args := m.Called(ctx, id, response)
	return args.Error(0)
}
func (m *MockNotificationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockDamageReportRepo
type MockDamageReportRepo struct {
	mock.Mock
}

func (m *MockDamageReportRepo) Create(ctx context.Context, report *domain.DamageReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
func (m *MockDamageReportRepo) List(ctx context.Context, page, pageSize int32) ([]domain.DamageReport, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.DamageReport), args.Get(1).(int32), args.Error(2)
}

// MockBackupRepo
type MockBackupRepo struct {
	mock.Mock
}

func (m *MockBackupRepo) Create(ctx context.Context, backup *domain.SettingsBackup) error {
	args := m.Called(ctx, backup)
	return args.Error(0)
}
func (m *MockBackupRepo) GetByID(ctx context.Context, id string) (*domain.SettingsBackup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettingsBackup), args.Error(1)
}
func (m *MockBackupRepo) List(ctx context.Context) ([]domain.SettingsBackup, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.SettingsBackup), args.Error(1)
}

// MockDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) NotifyUsers(ctx context.Context, userIDs []string, n *domain.SystemNotification) error {
	args := m.Called(ctx, userIDs, n)
	return args.Error(0)
}
func (m *MockDispatcher) NotifyAdmins(ctx context.Context, n *domain.SystemNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockDispatcher) SendWebhook(ctx context.Context, title, message string) error {
	args := m.Called(ctx, title, message)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendAdminAlert(ctx context.Context, email, subject, body string) error {
	args := m.Called(ctx, email, subject, body)
	return args.Error(0)
}

// MockCalendarService
type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) IsClosed(ctx context.Context, date time.Time) (bool, error) {
	args := m.Called(ctx, date)
	return args.Bool(0), args.Error(1)
}
func (m *MockCalendarService) Add(ctx context.Context, date time.Time, reason string, recurring bool, admin service.Actor) (*domain.ClosedDate, error) {
	args := m.Called(ctx, date, reason, recurring, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClosedDate), args.Error(1)
}
func (m *MockCalendarService) Remove(ctx context.Context, id string, admin service.Actor) error {
	args := m.Called(ctx, id, admin)
	return args.Error(0)
}
func (m *MockCalendarService) List(ctx context.Context) ([]domain.ClosedDate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ClosedDate), args.Error(1)
}

// MockLimitService
type MockLimitService struct {
	mock.Mock
}

func (m *MockLimitService) Check(ctx context.Context, userID, category string) (*service.LimitCheckResult, error) {
	args := m.Called(ctx, userID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LimitCheckResult), args.Error(1)
}

// MockSettingsService
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) GetSettings(ctx context.Context) (*domain.SystemSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemSettings), args.Error(1)
}
func (m *MockSettingsService) UpdateSetting(ctx context.Context, key string, value any, admin service.Actor) error {
	args := m.Called(ctx, key, value, admin)
	return args.Error(0)
}
func (m *MockSettingsService) UpdateMultipleSettings(ctx context.Context, updates map[string]any, admin service.Actor) error {
	args := m.Called(ctx, updates, admin)
	return args.Error(0)
}
func (m *MockSettingsService) SetCategoryLimit(ctx context.Context, categoryID, categoryName string, limit int, admin service.Actor) error {
	args := m.Called(ctx, categoryID, categoryName, limit, admin)
	return args.Error(0)
}
func (m *MockSettingsService) RemoveCategoryLimit(ctx context.Context, categoryID string, admin service.Actor) error {
	args := m.Called(ctx, categoryID, admin)
	return args.Error(0)
}
func (m *MockSettingsService) ListCategoryLimits(ctx context.Context) ([]domain.CategoryLimit, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CategoryLimit), args.Error(1)
}
func (m *MockSettingsService) ExportSettings(ctx context.Context, includeSensitive bool, admin service.Actor) (*domain.SettingsExport, error) {
	args := m.Called(ctx, includeSensitive, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettingsExport), args.Error(1)
}
func (m *MockSettingsService) ImportSettings(ctx context.Context, data *domain.SettingsExport, admin service.Actor) (*domain.ImportStats, error) {
	args := m.Called(ctx, data, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportStats), args.Error(1)
}
func (m *MockSettingsService) CreateBackup(ctx context.Context, admin service.Actor) (*domain.SettingsBackup, error) {
	args := m.Called(ctx, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettingsBackup), args.Error(1)
}
