package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"compliance-platform/internal/config"
)

type Service interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error
	// SendNotificationEmail mirrors an in-app notification to the
	// recipient's inbox. Callers treat failures as best-effort.
	SendNotificationEmail(ctx context.Context, toEmail, fullName, title, message string) error
}

type service struct {
	client *resend.Client
	cfg    *config.Config
}

func NewService(cfg *config.Config) Service {
	return &service{
		client: resend.NewClient(cfg.ResendAPIKey),
		cfg:    cfg,
	}
}

func (s *service) send(toEmail, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Compliance Platform <%s>", s.cfg.FromEmail),
		To:      []string{toEmail},
		Text:    body,
		Subject: subject,
	}

	_, err := s.client.Emails.Send(params)
	return err
}

func (s *service) SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nA password reset was requested for your account. Open the link below to choose a new password. The link expires in one hour.\n\nhttps://%s/reset-password?token=%s\n\nIf you did not request this, you can ignore this email.\n",
		fullName, s.cfg.Domain, resetToken,
	)
	return s.send(toEmail, "Reset your password", body)
}

func (s *service) SendNotificationEmail(ctx context.Context, toEmail, fullName, title, message string) error {
	body := fmt.Sprintf("Hi %s,\n\n%s\n\nSign in at https://%s to respond.\n", fullName, message, s.cfg.Domain)
	return s.send(toEmail, title, body)
}
