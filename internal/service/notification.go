package service

import (
	"context"
	"strings"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
	now      func() time.Time
}

func NewNotificationService(noteRepo repository.NotificationRepository, now func() time.Time) NotificationService {
	return &notificationService{noteRepo: noteRepo, now: now}
}

func (s *notificationService) ListForUser(ctx context.Context, userID string, page, pageSize int32) ([]domain.SystemNotification, int32, error) {
	return s.noteRepo.ListForUser(ctx, userID, page, pageSize)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.noteRepo.MarkRead(ctx, id, userID)
}

// Respond appends one feedback entry. Recipients only.
func (s *notificationService) Respond(ctx context.Context, id, userID, response string) error {
	if strings.TrimSpace(response) == "" {
		return domain.NewValidationError("response", "response is required")
	}
	n, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	recipient := false
	for _, sentTo := range n.SentTo {
		if sentTo == userID {
			recipient = true
			break
		}
	}
	if !recipient {
		return domain.NewPermissionError(userID, "respond to this notification")
	}
	return s.noteRepo.AddResponse(ctx, id, domain.NotificationResponse{
		UserID:    userID,
		Response:  strings.TrimSpace(response),
		Timestamp: s.now(),
	})
}
