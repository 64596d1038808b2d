package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/metrics"
	"equipshare-backend/internal/repository"
)

// Settings keys accepted by UpdateSetting / UpdateMultipleSettings.
const (
	KeyMaxLoanDuration       = "maxLoanDuration"
	KeyMaxAdvanceBookingDays = "maxAdvanceBookingDays"
	KeyDefaultCategoryLimit  = "defaultCategoryLimit"
	KeyLoanReturnStartTime   = "loanReturnStartTime"
	KeyLoanReturnEndTime     = "loanReturnEndTime"
	KeyDiscordEnabled        = "discordEnabled"
	KeyDiscordWebhookURL     = "discordWebhookUrl"
)

// criticalKeys are the settings whose change must alert the webhook and
// every administrator. Category limits and closed dates are handled by
// their own mutation paths and are always critical.
var criticalKeys = map[string]bool{
	KeyMaxLoanDuration:       true,
	KeyMaxAdvanceBookingDays: true,
	KeyDefaultCategoryLimit:  true,
}

var (
	timeOfDayPattern  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	webhookURLPattern = regexp.MustCompile(`^https://(discord\.com|discordapp\.com)/api/webhooks/\d+/\S+$`)
)

type settingsService struct {
	settingsRepo repository.SettingsRepository
	limitRepo    repository.CategoryLimitRepository
	closedRepo   repository.ClosedDateRepository
	auditRepo    repository.AuditLogRepository
	backupRepo   repository.BackupRepository
	dispatcher   NotificationDispatcher
	now          func() time.Time
}

func NewSettingsService(
	settingsRepo repository.SettingsRepository,
	limitRepo repository.CategoryLimitRepository,
	closedRepo repository.ClosedDateRepository,
	auditRepo repository.AuditLogRepository,
	backupRepo repository.BackupRepository,
	dispatcher NotificationDispatcher,
	now func() time.Time,
) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		limitRepo:    limitRepo,
		closedRepo:   closedRepo,
		auditRepo:    auditRepo,
		backupRepo:   backupRepo,
		dispatcher:   dispatcher,
		now:          now,
	}
}

// GetSettings returns the singleton, initializing it to defaults on first
// access.
func (s *settingsService) GetSettings(ctx context.Context) (*domain.SystemSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}
	settings = domain.DefaultSettings()
	if err := s.settingsRepo.Put(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *settingsService) UpdateSetting(ctx context.Context, key string, value any, admin Actor) error {
	return s.UpdateMultipleSettings(ctx, map[string]any{key: value}, admin)
}

// UpdateMultipleSettings validates every key before writing any of them.
// A validation failure leaves stored state untouched. Each changed key
// yields one audit entry; a change touching any critical key triggers the
// webhook and a notification to every administrator.
func (s *settingsService) UpdateMultipleSettings(ctx context.Context, updates map[string]any, admin Actor) error {
	if len(updates) == 0 {
		return domain.NewValidationError("updates", "no settings provided")
	}

	current, err := s.GetSettings(ctx)
	if err != nil {
		return err
	}

	next := *current
	for key, value := range updates {
		if err := applySetting(&next, key, value); err != nil {
			return err
		}
	}
	if err := validateReturnWindow(&next); err != nil {
		return err
	}

	changed := changedKeys(current, &next, updates)
	if len(changed) == 0 {
		return nil
	}

	updatedAt := s.now()
	next.LastUpdated = &updatedAt
	next.LastUpdatedBy = &admin.ID
	if err := s.settingsRepo.Put(ctx, &next); err != nil {
		return err
	}
	metrics.IncSettingsChange(string(domain.SettingTypeSystem))

	critical := false
	for _, key := range changed {
		if criticalKeys[key] {
			critical = true
		}
		if err := s.auditRepo.Append(ctx, &domain.AuditLogEntry{
			Timestamp:   updatedAt,
			AdminID:     admin.ID,
			AdminName:   admin.Name,
			Action:      domain.AuditActionUpdate,
			SettingType: domain.SettingTypeSystem,
			SettingPath: key,
			OldValue:    settingValue(current, key),
			NewValue:    settingValue(&next, key),
			IPAddress:   admin.IPAddress,
			UserAgent:   admin.UserAgent,
		}); err != nil {
			return err
		}
	}

	if critical {
		s.notifyCritical(ctx, admin, "Borrowing policy changed",
			fmt.Sprintf("Settings %v were updated by %s", changed, admin.Name))
	}
	return nil
}

func (s *settingsService) SetCategoryLimit(ctx context.Context, categoryID, categoryName string, limit int, admin Actor) error {
	if categoryID == "" {
		return domain.NewValidationError("categoryId", "category id is required")
	}
	if limit < 0 {
		return domain.NewValidationError("limit", "limit must be a non-negative integer")
	}

	var oldValue any
	action := domain.AuditActionCreate
	if existing, err := s.limitRepo.Get(ctx, categoryID); err == nil {
		oldValue = existing
		action = domain.AuditActionUpdate
	} else if !domain.IsNotFound(err) {
		return err
	}

	cl := &domain.CategoryLimit{
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Limit:        limit,
		UpdatedBy:    admin.ID,
		UpdatedAt:    s.now(),
	}
	if err := s.limitRepo.Put(ctx, cl); err != nil {
		return err
	}
	metrics.IncSettingsChange(string(domain.SettingTypeCategoryLimit))

	if err := s.auditRepo.Append(ctx, &domain.AuditLogEntry{
		Timestamp:   s.now(),
		AdminID:     admin.ID,
		AdminName:   admin.Name,
		Action:      action,
		SettingType: domain.SettingTypeCategoryLimit,
		SettingPath: categoryID,
		OldValue:    oldValue,
		NewValue:    cl,
		IPAddress:   admin.IPAddress,
		UserAgent:   admin.UserAgent,
	}); err != nil {
		return err
	}

	s.notifyCritical(ctx, admin, "Category limit changed",
		fmt.Sprintf("Limit for category %q set to %d by %s", categoryName, limit, admin.Name))
	return nil
}

func (s *settingsService) RemoveCategoryLimit(ctx context.Context, categoryID string, admin Actor) error {
	existing, err := s.limitRepo.Get(ctx, categoryID)
	if err != nil {
		return err
	}
	if err := s.limitRepo.Delete(ctx, categoryID); err != nil {
		return err
	}
	metrics.IncSettingsChange(string(domain.SettingTypeCategoryLimit))

	if err := s.auditRepo.Append(ctx, &domain.AuditLogEntry{
		Timestamp:   s.now(),
		AdminID:     admin.ID,
		AdminName:   admin.Name,
		Action:      domain.AuditActionDelete,
		SettingType: domain.SettingTypeCategoryLimit,
		SettingPath: categoryID,
		OldValue:    existing,
		NewValue:    nil,
		IPAddress:   admin.IPAddress,
		UserAgent:   admin.UserAgent,
	}); err != nil {
		return err
	}

	s.notifyCritical(ctx, admin, "Category limit removed",
		fmt.Sprintf("Limit for category %q removed by %s; the default applies", existing.CategoryName, admin.Name))
	return nil
}

func (s *settingsService) ListCategoryLimits(ctx context.Context) ([]domain.CategoryLimit, error) {
	return s.limitRepo.List(ctx)
}

func (s *settingsService) notifyCritical(ctx context.Context, admin Actor, title, content string) {
	runEffects("settings.notify",
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

// applySetting validates one key/value pair and writes it onto the draft.
func applySetting(settings *domain.SystemSettings, key string, value any) error {
	switch key {
	case KeyMaxLoanDuration:
		n, ok := asInt(value)
		if !ok || n < 1 || n > 365 {
			return domain.NewValidationError(key, "must be an integer between 1 and 365")
		}
		settings.MaxLoanDuration = n
	case KeyMaxAdvanceBookingDays:
		n, ok := asInt(value)
		if !ok || n < 1 || n > 365 {
			return domain.NewValidationError(key, "must be an integer between 1 and 365")
		}
		settings.MaxAdvanceBookingDays = n
	case KeyDefaultCategoryLimit:
		n, ok := asInt(value)
		if !ok || n < 1 || n > 100 {
			return domain.NewValidationError(key, "must be an integer between 1 and 100")
		}
		settings.DefaultCategoryLimit = n
	case KeyLoanReturnStartTime, KeyLoanReturnEndTime:
		if value == nil {
			if key == KeyLoanReturnStartTime {
				settings.LoanReturnStartTime = nil
			} else {
				settings.LoanReturnEndTime = nil
			}
			return nil
		}
		str, ok := value.(string)
		if !ok || !timeOfDayPattern.MatchString(str) {
			return domain.NewValidationError(key, `must be a time in "HH:mm" format`)
		}
		if key == KeyLoanReturnStartTime {
			settings.LoanReturnStartTime = &str
		} else {
			settings.LoanReturnEndTime = &str
		}
	case KeyDiscordEnabled:
		b, ok := value.(bool)
		if !ok {
			return domain.NewValidationError(key, "must be a boolean")
		}
		settings.DiscordEnabled = b
	case KeyDiscordWebhookURL:
		if value == nil {
			settings.DiscordWebhookURL = nil
			return nil
		}
		str, ok := value.(string)
		if !ok || !webhookURLPattern.MatchString(str) {
			return domain.NewValidationError(key, "must be a Discord webhook URL")
		}
		settings.DiscordWebhookURL = &str
	default:
		return domain.NewValidationError(key, "unknown setting")
	}
	return nil
}

func validateReturnWindow(settings *domain.SystemSettings) error {
	if settings.LoanReturnStartTime == nil || settings.LoanReturnEndTime == nil {
		return nil
	}
	if *settings.LoanReturnStartTime >= *settings.LoanReturnEndTime {
		return domain.NewValidationError(KeyLoanReturnStartTime, "return window start must be before end")
	}
	return nil
}

func settingValue(settings *domain.SystemSettings, key string) any {
	switch key {
	case KeyMaxLoanDuration:
		return settings.MaxLoanDuration
	case KeyMaxAdvanceBookingDays:
		return settings.MaxAdvanceBookingDays
	case KeyDefaultCategoryLimit:
		return settings.DefaultCategoryLimit
	case KeyLoanReturnStartTime:
		return derefOrNil(settings.LoanReturnStartTime)
	case KeyLoanReturnEndTime:
		return derefOrNil(settings.LoanReturnEndTime)
	case KeyDiscordEnabled:
		return settings.DiscordEnabled
	case KeyDiscordWebhookURL:
		return derefOrNil(settings.DiscordWebhookURL)
	}
	return nil
}

func changedKeys(before, after *domain.SystemSettings, updates map[string]any) []string {
	var changed []string
	for key := range updates {
		if settingValue(before, key) != settingValue(after, key) {
			changed = append(changed, key)
		}
	}
	return changed
}

func derefOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// asInt accepts the numeric shapes JSON decoding produces.
func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}
