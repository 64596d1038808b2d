package service

import (
	"context"
	"fmt"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey   string
	from     string
	fromName string
}

func NewEmailService(apiKey, from, fromName string) EmailService {
	return &emailService{
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
	}
}

func (s *emailService) SendAdminAlert(ctx context.Context, email, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.from)
	recipient := mail.NewEmail("", email)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	resp, err := client.Send(message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "send", err, "to", email)
		return &domain.ExternalServiceError{Service: "sendgrid", Err: err}
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
		logger.ExternalServiceResult("sendgrid", "send", err, "to", email)
		return &domain.ExternalServiceError{Service: "sendgrid", Err: err}
	}
	logger.ExternalServiceResult("sendgrid", "send", nil, "to", email)
	return nil
}
