package service_test

import (
	"context"
	"testing"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type settingsFixture struct {
	settingsRepo *MockSettingsRepo
	limitRepo    *MockCategoryLimitRepo
	closedRepo   *MockClosedDateRepo
	auditRepo    *MockAuditLogRepo
	backupRepo   *MockBackupRepo
	dispatcher   *MockDispatcher
	svc          service.SettingsService
}

func newSettingsFixture() *settingsFixture {
	f := &settingsFixture{
		settingsRepo: new(MockSettingsRepo),
		limitRepo:    new(MockCategoryLimitRepo),
		closedRepo:   new(MockClosedDateRepo),
		auditRepo:    new(MockAuditLogRepo),
		backupRepo:   new(MockBackupRepo),
		dispatcher:   new(MockDispatcher),
	}
	f.svc = service.NewSettingsService(
		f.settingsRepo, f.limitRepo, f.closedRepo, f.auditRepo, f.backupRepo,
		f.dispatcher, fixedClock,
	)
	return f
}

func (f *settingsFixture) allowCriticalNotify() {
	f.dispatcher.On("SendWebhook", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.dispatcher.On("NotifyAdmins", mock.Anything, mock.AnythingOfType("*domain.SystemNotification")).Return(nil)
}

var admin = service.Actor{ID: "admin-1", Name: "Root", IPAddress: "10.0.0.1", UserAgent: "cli"}

func TestSettingsService_GetSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("Initializes defaults on first access", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(nil, domain.NewNotFoundError("settings", "global"))
		f.settingsRepo.On("Put", ctx, mock.AnythingOfType("*domain.SystemSettings")).Return(nil)

		settings, err := f.svc.GetSettings(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 14, settings.MaxLoanDuration)
		assert.Equal(t, 30, settings.MaxAdvanceBookingDays)
		assert.Equal(t, 3, settings.DefaultCategoryLimit)
		assert.False(t, settings.DiscordEnabled)
		f.settingsRepo.AssertCalled(t, "Put", ctx, mock.AnythingOfType("*domain.SystemSettings"))
	})

	t.Run("Returns stored document", func(t *testing.T) {
		f := newSettingsFixture()
		stored := domain.DefaultSettings()
		stored.MaxLoanDuration = 7
		f.settingsRepo.On("Get", ctx).Return(stored, nil)

		settings, err := f.svc.GetSettings(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 7, settings.MaxLoanDuration)
		f.settingsRepo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})
}

func TestSettingsService_UpdateMultipleSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("All-or-nothing validation", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(domain.DefaultSettings(), nil)

		err := f.svc.UpdateMultipleSettings(ctx, map[string]any{
			"maxLoanDuration":      21,
			"defaultCategoryLimit": 0, // below minimum
		}, admin)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "between 1 and 100")
		f.settingsRepo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
		f.auditRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("Unknown key rejected", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(domain.DefaultSettings(), nil)

		err := f.svc.UpdateMultipleSettings(ctx, map[string]any{"color": "blue"}, admin)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown setting")
	})

	t.Run("Critical change writes audit and notifies", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(domain.DefaultSettings(), nil)
		f.settingsRepo.On("Put", ctx, mock.AnythingOfType("*domain.SystemSettings")).Return(nil)
		f.auditRepo.On("Append", ctx, mock.AnythingOfType("*domain.AuditLogEntry")).Return(nil)
		f.allowCriticalNotify()

		err := f.svc.UpdateMultipleSettings(ctx, map[string]any{"maxLoanDuration": 21}, admin)
		assert.NoError(t, err)
		f.auditRepo.AssertNumberOfCalls(t, "Append", 1)
		f.dispatcher.AssertCalled(t, "SendWebhook", mock.Anything, mock.Anything, mock.Anything)
		f.dispatcher.AssertCalled(t, "NotifyAdmins", mock.Anything, mock.AnythingOfType("*domain.SystemNotification"))
	})

	t.Run("Non-critical change skips fanout", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(domain.DefaultSettings(), nil)
		f.settingsRepo.On("Put", ctx, mock.AnythingOfType("*domain.SystemSettings")).Return(nil)
		f.auditRepo.On("Append", ctx, mock.AnythingOfType("*domain.AuditLogEntry")).Return(nil)

		err := f.svc.UpdateMultipleSettings(ctx, map[string]any{"discordEnabled": true}, admin)
		assert.NoError(t, err)
		f.auditRepo.AssertNumberOfCalls(t, "Append", 1)
		f.dispatcher.AssertNotCalled(t, "SendWebhook", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("No-op update writes nothing", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(domain.DefaultSettings(), nil)

		err := f.svc.UpdateMultipleSettings(ctx, map[string]any{"maxLoanDuration": 14}, admin)
		assert.NoError(t, err)
		f.settingsRepo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
		f.auditRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("JSON float values accepted", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(domain.DefaultSettings(), nil)
		f.settingsRepo.On("Put", ctx, mock.AnythingOfType("*domain.SystemSettings")).Return(nil)
		f.auditRepo.On("Append", ctx, mock.AnythingOfType("*domain.AuditLogEntry")).Return(nil)
		f.allowCriticalNotify()

		err := f.svc.UpdateMultipleSettings(ctx, map[string]any{"maxLoanDuration": float64(21)}, admin)
		assert.NoError(t, err)
	})

	t.Run("Fractional values rejected", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(domain.DefaultSettings(), nil)

		err := f.svc.UpdateMultipleSettings(ctx, map[string]any{"maxLoanDuration": 2.5}, admin)
		assert.Error(t, err)
	})

	t.Run("Return window must be ordered", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(domain.DefaultSettings(), nil)

		err := f.svc.UpdateMultipleSettings(ctx, map[string]any{
			"loanReturnStartTime": "17:00",
			"loanReturnEndTime":   "09:00",
		}, admin)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "before end")
	})

	t.Run("Malformed time rejected", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(domain.DefaultSettings(), nil)

		err := f.svc.UpdateMultipleSettings(ctx, map[string]any{"loanReturnStartTime": "25:99"}, admin)
		assert.Error(t, err)
	})

	t.Run("Webhook URL must be a Discord webhook", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(domain.DefaultSettings(), nil)

		err := f.svc.UpdateMultipleSettings(ctx, map[string]any{
			"discordWebhookUrl": "https://example.com/hook",
		}, admin)
		assert.Error(t, err)
	})
}

func TestSettingsService_CategoryLimits(t *testing.T) {
	ctx := context.Background()

	t.Run("Create new limit", func(t *testing.T) {
		f := newSettingsFixture()
		f.limitRepo.On("Get", ctx, "cat-1").Return(nil, domain.NewNotFoundError("category limit", "cat-1"))
		f.limitRepo.On("Put", ctx, mock.AnythingOfType("*domain.CategoryLimit")).Return(nil)
		f.auditRepo.On("Append", ctx, mock.MatchedBy(func(e *domain.AuditLogEntry) bool {
			return e.Action == domain.AuditActionCreate && e.SettingType == domain.SettingTypeCategoryLimit
		})).Return(nil)
		f.allowCriticalNotify()

		err := f.svc.SetCategoryLimit(ctx, "cat-1", "Cameras", 2, admin)
		assert.NoError(t, err)
	})

	t.Run("Zero disables the category", func(t *testing.T) {
		f := newSettingsFixture()
		f.limitRepo.On("Get", ctx, "cat-1").Return(&domain.CategoryLimit{CategoryID: "cat-1", Limit: 2}, nil)
		f.limitRepo.On("Put", ctx, mock.MatchedBy(func(cl *domain.CategoryLimit) bool {
			return cl.Limit == 0
		})).Return(nil)
		f.auditRepo.On("Append", ctx, mock.MatchedBy(func(e *domain.AuditLogEntry) bool {
			return e.Action == domain.AuditActionUpdate
		})).Return(nil)
		f.allowCriticalNotify()

		err := f.svc.SetCategoryLimit(ctx, "cat-1", "Cameras", 0, admin)
		assert.NoError(t, err)
	})

	t.Run("Negative limit rejected", func(t *testing.T) {
		f := newSettingsFixture()
		err := f.svc.SetCategoryLimit(ctx, "cat-1", "Cameras", -1, admin)
		assert.Error(t, err)
		f.limitRepo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})

	t.Run("Remove records the old value", func(t *testing.T) {
		f := newSettingsFixture()
		existing := &domain.CategoryLimit{CategoryID: "cat-1", CategoryName: "Cameras", Limit: 2}
		f.limitRepo.On("Get", ctx, "cat-1").Return(existing, nil)
		f.limitRepo.On("Delete", ctx, "cat-1").Return(nil)
		f.auditRepo.On("Append", ctx, mock.MatchedBy(func(e *domain.AuditLogEntry) bool {
			return e.Action == domain.AuditActionDelete && e.OldValue == existing && e.NewValue == nil
		})).Return(nil)
		f.allowCriticalNotify()

		err := f.svc.RemoveCategoryLimit(ctx, "cat-1", admin)
		assert.NoError(t, err)
	})

	t.Run("Remove missing limit fails", func(t *testing.T) {
		f := newSettingsFixture()
		f.limitRepo.On("Get", ctx, "cat-1").Return(nil, domain.NewNotFoundError("category limit", "cat-1"))

		err := f.svc.RemoveCategoryLimit(ctx, "cat-1", admin)
		assert.True(t, domain.IsNotFound(err))
	})
}
