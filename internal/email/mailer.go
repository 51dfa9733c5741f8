package email

import (
	"context"
	"fmt"
	"strings"
)

// Mailer sends the transactional mail the auth flows need. Settings come
// from the environment at startup; an unconfigured mailer fails loudly so
// a reset request never silently drops its email.
type Mailer struct {
	Settings  Settings
	FromEmail string
	FromName  string
}

func (m *Mailer) Configured() bool {
	return m.Settings.Host != "" && m.FromEmail != ""
}

func (m *Mailer) SendPasswordReset(_ context.Context, toEmail, resetURL string) error {
	if !m.Configured() {
		return fmt.Errorf("smtp not configured")
	}

	subject := "Password Reset Request"
	body := strings.Join([]string{
		"You have requested a password reset.",
		"",
		"Please go to this link to reset your password:",
		resetURL,
		"",
		"The link expires shortly. If you did not request this, you can ignore this email.",
	}, "\n")

	return SendSMTP(m.Settings, Message{
		FromName:  m.FromName,
		FromEmail: m.FromEmail,
		ToEmail:   toEmail,
		Subject:   subject,
		TextBody:  body,
	})
}
