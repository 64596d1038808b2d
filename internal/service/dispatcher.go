package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/logger"
	"equipshare-backend/internal/repository"
)

type notificationDispatcher struct {
	noteRepo     repository.NotificationRepository
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
	httpClient   *http.Client
	now          func() time.Time
}

func NewNotificationDispatcher(
	noteRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	now func() time.Time,
) NotificationDispatcher {
	return &notificationDispatcher{
		noteRepo:     noteRepo,
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		now:          now,
	}
}

func (d *notificationDispatcher) NotifyUsers(ctx context.Context, userIDs []string, n *domain.SystemNotification) error {
	if len(userIDs) == 0 {
		return nil
	}
	n.SentTo = userIDs
	if n.ReadBy == nil {
		n.ReadBy = []string{}
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}
	if err := d.noteRepo.Create(ctx, n); err != nil {
		return &domain.ExternalServiceError{Service: "notification-store", Err: err}
	}
	return nil
}

func (d *notificationDispatcher) NotifyAdmins(ctx context.Context, n *domain.SystemNotification) error {
	admins, err := d.userRepo.ListAdmins(ctx)
	if err != nil {
		return &domain.ExternalServiceError{Service: "notification-store", Err: err}
	}
	ids := make([]string, 0, len(admins))
	for _, a := range admins {
		ids = append(ids, a.ID)
	}
	return d.NotifyUsers(ctx, ids, n)
}

// discordPayload is the webhook body shape Discord expects.
type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// SendWebhook posts an alert to the configured Discord webhook. It is a
// no-op when the webhook is disabled or unconfigured.
func (d *notificationDispatcher) SendWebhook(ctx context.Context, title, message string) error {
	settings, err := d.settingsRepo.Get(ctx)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return &domain.ExternalServiceError{Service: "webhook", Err: err}
	}
	if !settings.DiscordEnabled || settings.DiscordWebhookURL == nil || *settings.DiscordWebhookURL == "" {
		logger.Debug("Webhook disabled, skipping alert", "title", title)
		return nil
	}

	payload := discordPayload{Embeds: []discordEmbed{{
		Title:       title,
		Description: message,
		Timestamp:   d.now().UTC().Format(time.RFC3339),
	}}}
	body, err := json.Marshal(payload)
	if err != nil {
		return &domain.ExternalServiceError{Service: "webhook", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *settings.DiscordWebhookURL, bytes.NewReader(body))
	if err != nil {
		return &domain.ExternalServiceError{Service: "webhook", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return &domain.ExternalServiceError{Service: "webhook", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &domain.ExternalServiceError{
			Service: "webhook",
			Err:     fmt.Errorf("webhook returned status %d", resp.StatusCode),
		}
	}
	logger.ExternalServiceResult("webhook", "send", nil, "title", title)
	return nil
}
