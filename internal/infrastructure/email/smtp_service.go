package email

import (
	"context"
	"fmt"
	"net/smtp"

	"snippethub-backend/pkg/logger"
)

type WelcomeEmailData struct {
	Email string
	Name  string
}

type PublishedEmailData struct {
	Email       string
	SnippetName string
	SnippetURL  string
}

type EmailService interface {
	SendWelcomeEmail(ctx context.Context, data WelcomeEmailData) error
	SendPublishedEmail(ctx context.Context, data PublishedEmailData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

func NewSMTPEmailService(host, port, from string) EmailService {
	return &smtpEmailService{
		smtpAddr: host + ":" + port,
		smtpFrom: from,
	}
}

func (s *smtpEmailService) SendWelcomeEmail(ctx context.Context, data WelcomeEmailData) error {
	subject := "Welcome to SnippetHub"
	body := fmt.Sprintf(`Hi %s,

Your SnippetHub account is ready. Create your first snippet and publish it
when you want the world to see it.

If you did not sign up, please ignore this email.`, data.Name)

	return s.send(data.Email, subject, body)
}

func (s *smtpEmailService) SendPublishedEmail(ctx context.Context, data PublishedEmailData) error {
	subject := fmt.Sprintf("Your snippet %q is live", data.SnippetName)
	body := fmt.Sprintf(`Hi,

Your snippet %q has been published:
%s

You can archive it at any time from your dashboard.`, data.SnippetName, data.SnippetURL)

	return s.send(data.Email, subject, body)
}

func (s *smtpEmailService) send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, to, subject, body))

	if err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{to}, msg); err != nil {
		logger.Warn().Err(err).Str("to", to).Str("smtp_addr", s.smtpAddr).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
