package service

import (
	"context"
	"errors"
	"strings"

	"github.com/resendlabs/resend-go"
)

// ResendEmailSender delivers transactional email through the Resend API.
// When no API key is configured every send fails fast, which keeps the
// signup and recovery flows honest instead of silently dropping mail.
type ResendEmailSender struct {
	client *resend.Client
	from   string
}

func NewResendEmailSender(apiKey string, from string) *ResendEmailSender {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return &ResendEmailSender{}
	}
	return &ResendEmailSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendEmailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if s.client == nil {
		return errors.New("email sender not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	})
	return err
}
