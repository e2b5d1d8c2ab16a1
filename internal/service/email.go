package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	appURL    string
	appName   string
	isDev     bool
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		appURL:    appURL,
		appName:   appName,
		isDev:     isDev,
	}
}

// SendPartnerInvite emails the invite code to the counterpart. In
// development the email is logged instead of sent.
func (s *EmailService) SendPartnerInvite(email, code, inviterName string) error {
	inviteURL := fmt.Sprintf("%s/invite/%s", s.appURL, code)
	subject := fmt.Sprintf("%s invited you to %s", inviterName, s.appName)
	body := fmt.Sprintf(
		"Hi,\n\n%s wants to work on your relationship together on %s.\n\nAccept the invite here:\n%s\n\nThe link expires in 7 days.\n",
		inviterName, s.appName, inviteURL,
	)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "partner_invite", "to", email, "subject", subject, "url", inviteURL)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err == nil {
		slog.Info("email sent", "type", "partner_invite", "to", email)
	}
	return err
}
