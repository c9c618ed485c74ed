package client

import (
	"fmt"
	"net/smtp"
	"strings"

	appConfig "loan-portal-api/internal/config"
)

// EmailClient sends transactional mail (invites, password resets)
type EmailClient interface {
	SendInvite(to, inviteURL string) error
	SendPasswordReset(to, resetURL string) error
}

type smtpEmailClient struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewEmailClient creates an SMTP-backed email client. Returns an error when
// the SMTP host is not configured so callers fail at startup, not at send.
func NewEmailClient(cfg *appConfig.SMTPConfig) (EmailClient, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &smtpEmailClient{
		host: cfg.Host,
		port: cfg.Port,
		user: cfg.Username,
		pass: cfg.Password,
		from: cfg.From,
	}, nil
}

func (c *smtpEmailClient) SendInvite(to, inviteURL string) error {
	subject := "You have been invited to the loan portal"
	body := fmt.Sprintf(
		"Hello,\r\n\r\nAn account has been created for you. Use the link below to set your password and sign in:\r\n\r\n%s\r\n\r\nThis link expires in 7 days.\r\n",
		inviteURL,
	)
	return c.send(to, subject, body)
}

func (c *smtpEmailClient) SendPasswordReset(to, resetURL string) error {
	subject := "Password reset request"
	body := fmt.Sprintf(
		"Hello,\r\n\r\nA password reset was requested for your account. Use the link below to choose a new password:\r\n\r\n%s\r\n\r\nIf you did not request this, you can ignore this email.\r\n",
		resetURL,
	)
	return c.send(to, subject, body)
}

func (c *smtpEmailClient) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)

	var auth smtp.Auth
	if c.user != "" {
		auth = smtp.PlainAuth("", c.user, c.pass, c.host)
	}

	msg := strings.Join([]string{
		"From: " + c.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, c.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
