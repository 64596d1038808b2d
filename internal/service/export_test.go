package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"equipshare-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func webhookURL() *string {
	url := "https://discord.com/api/webhooks/123/abc"
	return &url
}

func TestSettingsService_ExportSettings(t *testing.T) {
	ctx := context.Background()

	storedSettings := func() *domain.SystemSettings {
		s := domain.DefaultSettings()
		s.DiscordEnabled = true
		s.DiscordWebhookURL = webhookURL()
		return s
	}

	t.Run("Sensitive fields stripped by default", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(storedSettings(), nil)
		f.closedRepo.On("List", ctx).Return([]domain.ClosedDate{}, nil)
		f.limitRepo.On("List", ctx).Return([]domain.CategoryLimit{}, nil)
		f.auditRepo.On("Append", ctx, mock.MatchedBy(func(e *domain.AuditLogEntry) bool {
			return e.Action == domain.AuditActionExport
		})).Return(nil)

		export, err := f.svc.ExportSettings(ctx, false, admin)
		assert.NoError(t, err)
		assert.Nil(t, export.Settings.DiscordWebhookURL)
		assert.False(t, export.Metadata.IncludeSensitive)
		assert.Equal(t, domain.ExportVersion, export.Metadata.Version)
	})

	t.Run("Sensitive fields kept on request", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(storedSettings(), nil)
		f.closedRepo.On("List", ctx).Return([]domain.ClosedDate{}, nil)
		f.limitRepo.On("List", ctx).Return([]domain.CategoryLimit{}, nil)
		f.auditRepo.On("Append", ctx, mock.Anything).Return(nil)

		export, err := f.svc.ExportSettings(ctx, true, admin)
		assert.NoError(t, err)
		assert.NotNil(t, export.Settings.DiscordWebhookURL)
	})

	t.Run("Export does not mutate stored settings", func(t *testing.T) {
		f := newSettingsFixture()
		stored := storedSettings()
		f.settingsRepo.On("Get", ctx).Return(stored, nil)
		f.closedRepo.On("List", ctx).Return([]domain.ClosedDate{}, nil)
		f.limitRepo.On("List", ctx).Return([]domain.CategoryLimit{}, nil)
		f.auditRepo.On("Append", ctx, mock.Anything).Return(nil)

		_, err := f.svc.ExportSettings(ctx, false, admin)
		assert.NoError(t, err)
		assert.NotNil(t, stored.DiscordWebhookURL)
		f.settingsRepo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})
}

func TestSettingsService_CreateBackup(t *testing.T) {
	ctx := context.Background()
	f := newSettingsFixture()
	stored := domain.DefaultSettings()
	stored.DiscordWebhookURL = webhookURL()
	f.settingsRepo.On("Get", ctx).Return(stored, nil)
	f.closedRepo.On("List", ctx).Return([]domain.ClosedDate{}, nil)
	f.limitRepo.On("List", ctx).Return([]domain.CategoryLimit{}, nil)
	f.auditRepo.On("Append", ctx, mock.Anything).Return(nil)
	f.backupRepo.On("Create", ctx, mock.AnythingOfType("*domain.SettingsBackup")).Return(nil)

	backup, err := f.svc.CreateBackup(ctx, admin)
	assert.NoError(t, err)
	assert.Contains(t, backup.Name, "backup-")
	// Backups always carry the sensitive fields for restoration.
	assert.NotNil(t, backup.Data.Settings.DiscordWebhookURL)
}

func validImport() *domain.SettingsExport {
	settings := domain.DefaultSettings()
	settings.MaxLoanDuration = 21
	return &domain.SettingsExport{
		Metadata: domain.ExportMetadata{Version: domain.ExportVersion, ExportDate: time.Now()},
		Settings: *settings,
		ClosedDates: []domain.ClosedDate{
			{Date: time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC), Reason: "Holiday", IsRecurring: true},
		},
		CategoryLimits: []domain.CategoryLimit{
			{CategoryID: "cat-1", CategoryName: "Cameras", Limit: 2},
		},
	}
}

func TestSettingsService_ImportSettings(t *testing.T) {
	ctx := context.Background()

	setupHappyImport := func(f *settingsFixture) {
		f.settingsRepo.On("Get", ctx).Return(domain.DefaultSettings(), nil)
		f.settingsRepo.On("Put", ctx, mock.Anything).Return(nil)
		f.closedRepo.On("List", ctx).Return([]domain.ClosedDate{}, nil)
		f.closedRepo.On("Create", ctx, mock.AnythingOfType("*domain.ClosedDate")).Return(nil)
		f.limitRepo.On("List", ctx).Return([]domain.CategoryLimit{}, nil)
		f.limitRepo.On("Get", ctx, "cat-1").Return(nil, domain.NewNotFoundError("category limit", "cat-1"))
		f.limitRepo.On("Put", ctx, mock.Anything).Return(nil)
		f.auditRepo.On("Append", ctx, mock.Anything).Return(nil)
		f.backupRepo.On("Create", ctx, mock.AnythingOfType("*domain.SettingsBackup")).Return(nil)
		f.allowCriticalNotify()
	}

	t.Run("Success", func(t *testing.T) {
		f := newSettingsFixture()
		setupHappyImport(f)

		stats, err := f.svc.ImportSettings(ctx, validImport(), admin)
		assert.NoError(t, err)
		assert.Equal(t, 1, stats.ClosedDatesImported)
		assert.Equal(t, 1, stats.CategoryLimitsApplied)
		assert.Empty(t, stats.Errors)
		f.backupRepo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("Validation failure has zero side effects", func(t *testing.T) {
		f := newSettingsFixture()
		payload := validImport()
		payload.CategoryLimits[0].Limit = 0 // import is stricter than direct edits

		_, err := f.svc.ImportSettings(ctx, payload, admin)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "positive integer")
		f.backupRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.settingsRepo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})

	t.Run("Missing version rejected", func(t *testing.T) {
		f := newSettingsFixture()
		payload := validImport()
		payload.Metadata.Version = ""

		_, err := f.svc.ImportSettings(ctx, payload, admin)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "version is required")
	})

	t.Run("Closed date without reason rejected", func(t *testing.T) {
		f := newSettingsFixture()
		payload := validImport()
		payload.ClosedDates[0].Reason = ""

		_, err := f.svc.ImportSettings(ctx, payload, admin)
		assert.Error(t, err)
	})

	t.Run("Backup failure aborts the import", func(t *testing.T) {
		f := newSettingsFixture()
		f.settingsRepo.On("Get", ctx).Return(domain.DefaultSettings(), nil)
		f.closedRepo.On("List", ctx).Return([]domain.ClosedDate{}, nil)
		f.limitRepo.On("List", ctx).Return([]domain.CategoryLimit{}, nil)
		f.auditRepo.On("Append", ctx, mock.Anything).Return(nil)
		f.backupRepo.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

		_, err := f.svc.ImportSettings(ctx, validImport(), admin)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "pre-import backup failed")
		f.closedRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("One bad item does not block the rest", func(t *testing.T) {
		f := newSettingsFixture()
		setupHappyImport(f)
		f.closedRepo.ExpectedCalls = nil
		f.closedRepo.On("List", ctx).Return([]domain.ClosedDate{}, nil)
		f.closedRepo.On("Create", ctx, mock.Anything).Return(errors.New("constraint violation"))

		stats, err := f.svc.ImportSettings(ctx, validImport(), admin)
		assert.NoError(t, err)
		assert.Equal(t, 0, stats.ClosedDatesImported)
		assert.Equal(t, 1, stats.CategoryLimitsApplied)
		assert.Len(t, stats.Errors, 1)
	})
}
