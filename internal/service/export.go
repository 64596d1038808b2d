package service

import (
	"context"
	"fmt"

	"equipshare-backend/internal/domain"
)

// ExportSettings produces the full policy snapshot. The webhook URL is
// sensitive and only included when explicitly requested.
func (s *settingsService) ExportSettings(ctx context.Context, includeSensitive bool, admin Actor) (*domain.SettingsExport, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	closedDates, err := s.closedRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	limits, err := s.limitRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := *settings
	if !includeSensitive {
		snapshot.DiscordWebhookURL = nil
	}

	export := &domain.SettingsExport{
		Metadata: domain.ExportMetadata{
			ExportDate:       s.now(),
			ExportedBy:       admin.Name,
			ExportedByUserID: admin.ID,
			Version:          domain.ExportVersion,
			IncludeSensitive: includeSensitive,
		},
		Settings:       snapshot,
		ClosedDates:    closedDates,
		CategoryLimits: limits,
	}

	if err := s.auditRepo.Append(ctx, &domain.AuditLogEntry{
		Timestamp:   s.now(),
		AdminID:     admin.ID,
		AdminName:   admin.Name,
		Action:      domain.AuditActionExport,
		SettingType: domain.SettingTypeSystem,
		SettingPath: "export",
		NewValue:    map[string]any{"includeSensitive": includeSensitive},
		IPAddress:   admin.IPAddress,
		UserAgent:   admin.UserAgent,
	}); err != nil {
		return nil, err
	}
	return export, nil
}

// CreateBackup persists a sensitive-inclusive export as a named snapshot.
func (s *settingsService) CreateBackup(ctx context.Context, admin Actor) (*domain.SettingsBackup, error) {
	export, err := s.ExportSettings(ctx, true, admin)
	if err != nil {
		return nil, err
	}
	backup := &domain.SettingsBackup{
		Name:      "backup-" + s.now().Format("20060102-150405"),
		CreatedBy: admin.ID,
		CreatedAt: s.now(),
		Data:      *export,
	}
	if err := s.backupRepo.Create(ctx, backup); err != nil {
		return nil, err
	}

	if err := s.auditRepo.Append(ctx, &domain.AuditLogEntry{
		Timestamp:   s.now(),
		AdminID:     admin.ID,
		AdminName:   admin.Name,
		Action:      domain.AuditActionBackup,
		SettingType: domain.SettingTypeSystem,
		SettingPath: backup.ID,
		NewValue:    map[string]any{"name": backup.Name},
		IPAddress:   admin.IPAddress,
		UserAgent:   admin.UserAgent,
	}); err != nil {
		return nil, err
	}
	return backup, nil
}

// ImportSettings validates the whole payload up front (a validation
// failure has zero side effects), takes a mandatory sensitive backup,
// then applies items best-effort: one malformed closed date does not
// block the rest. The backup is kept for manual restoration and is never
// replayed automatically.
func (s *settingsService) ImportSettings(ctx context.Context, data *domain.SettingsExport, admin Actor) (*domain.ImportStats, error) {
	if err := validateImport(data); err != nil {
		return nil, err
	}

	// The backup is the safety net; if it cannot be created the import
	// does not proceed.
	backup, err := s.CreateBackup(ctx, admin)
	if err != nil {
		return nil, fmt.Errorf("pre-import backup failed: %w", err)
	}

	stats := &domain.ImportStats{BackupID: backup.ID}

	updates := settingsToUpdates(&data.Settings)
	for key, value := range updates {
		if err := s.UpdateMultipleSettings(ctx, map[string]any{key: value}, admin); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("setting %s: %v", key, err))
			continue
		}
		stats.SettingsApplied++
	}

	for i := range data.ClosedDates {
		cd := data.ClosedDates[i]
		if _, err := s.importClosedDate(ctx, &cd, admin); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("closed date %s: %v", cd.Date.Format("2006-01-02"), err))
			continue
		}
		stats.ClosedDatesImported++
	}

	for i := range data.CategoryLimits {
		cl := data.CategoryLimits[i]
		if err := s.SetCategoryLimit(ctx, cl.CategoryID, cl.CategoryName, cl.Limit, admin); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("category limit %s: %v", cl.CategoryID, err))
			continue
		}
		stats.CategoryLimitsApplied++
	}

	if err := s.auditRepo.Append(ctx, &domain.AuditLogEntry{
		Timestamp:   s.now(),
		AdminID:     admin.ID,
		AdminName:   admin.Name,
		Action:      domain.AuditActionImport,
		SettingType: domain.SettingTypeSystem,
		SettingPath: "import",
		NewValue:    stats,
		IPAddress:   admin.IPAddress,
		UserAgent:   admin.UserAgent,
	}); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *settingsService) importClosedDate(ctx context.Context, cd *domain.ClosedDate, admin Actor) (*domain.ClosedDate, error) {
	entry := &domain.ClosedDate{
		Date:             cd.Date,
		Reason:           cd.Reason,
		IsRecurring:      cd.IsRecurring,
		RecurringPattern: cd.RecurringPattern,
		CreatedBy:        admin.ID,
		CreatedAt:        s.now(),
	}
	if entry.IsRecurring && entry.RecurringPattern == "" {
		entry.RecurringPattern = domain.RecurringPatternYearly
	}
	if err := s.closedRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.auditRepo.Append(ctx, &domain.AuditLogEntry{
		Timestamp:   s.now(),
		AdminID:     admin.ID,
		AdminName:   admin.Name,
		Action:      domain.AuditActionCreate,
		SettingType: domain.SettingTypeClosedDate,
		SettingPath: entry.ID,
		NewValue:    entry,
		IPAddress:   admin.IPAddress,
		UserAgent:   admin.UserAgent,
	}); err != nil {
		return nil, err
	}
	return entry, nil
}

// validateImport checks the structure of the whole payload before any
// write happens. Import is stricter than direct edits: a category limit
// of 0 is rejected here rather than interpreted as "disabled".
func validateImport(data *domain.SettingsExport) error {
	if data == nil {
		return domain.NewValidationError("payload", "import payload is required")
	}
	if data.Metadata.Version == "" {
		return domain.NewValidationError("metadata.version", "version is required")
	}

	draft := *domain.DefaultSettings()
	for key, value := range settingsToUpdates(&data.Settings) {
		if err := applySetting(&draft, key, value); err != nil {
			return err
		}
	}
	if err := validateReturnWindow(&draft); err != nil {
		return err
	}

	for i := range data.ClosedDates {
		cd := &data.ClosedDates[i]
		if cd.Date.IsZero() {
			return domain.NewValidationError("closedDates", "closed date entry has no date")
		}
		if cd.Reason == "" {
			return domain.NewValidationError("closedDates", "closed date entry has no reason")
		}
		if cd.IsRecurring && cd.RecurringPattern != "" && cd.RecurringPattern != domain.RecurringPatternYearly {
			return domain.NewValidationError("closedDates", fmt.Sprintf("unsupported recurring pattern %q", cd.RecurringPattern))
		}
	}

	for i := range data.CategoryLimits {
		cl := &data.CategoryLimits[i]
		if cl.CategoryID == "" {
			return domain.NewValidationError("categoryLimits", "category limit entry has no categoryId")
		}
		if cl.Limit < 1 {
			return domain.NewValidationError("categoryLimits", "limit must be a positive integer >= 1")
		}
	}
	return nil
}

// settingsToUpdates flattens a settings document into the update map the
// governed write path accepts.
func settingsToUpdates(settings *domain.SystemSettings) map[string]any {
	updates := map[string]any{
		KeyMaxLoanDuration:       settings.MaxLoanDuration,
		KeyMaxAdvanceBookingDays: settings.MaxAdvanceBookingDays,
		KeyDefaultCategoryLimit:  settings.DefaultCategoryLimit,
		KeyDiscordEnabled:        settings.DiscordEnabled,
	}
	if settings.LoanReturnStartTime != nil {
		updates[KeyLoanReturnStartTime] = *settings.LoanReturnStartTime
	}
	if settings.LoanReturnEndTime != nil {
		updates[KeyLoanReturnEndTime] = *settings.LoanReturnEndTime
	}
	if settings.DiscordWebhookURL != nil {
		updates[KeyDiscordWebhookURL] = *settings.DiscordWebhookURL
	}
	return updates
}
