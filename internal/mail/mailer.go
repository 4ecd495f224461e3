package mail

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"bankelig/internal/config"
)

// Mailer sends transactional mail over SMTP. In development it logs the
// action links instead of dialing out.
type Mailer struct {
	cfg    config.MailConfig
	appURL string
	dev    bool
	dialer *gomail.Dialer
	log    zerolog.Logger
}

// New creates a mailer from SMTP settings.
func New(cfg config.MailConfig, appURL string, dev bool, log zerolog.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		appURL: appURL,
		dev:    dev,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		log:    log.With().Str("component", "mailer").Logger(),
	}
}

// SendPasswordReset mails a reset link. The link expires in 1 hour.
func (m *Mailer) SendPasswordReset(email, token string) error {
	resetURL := fmt.Sprintf("%s/auth/reset-password?token=%s", m.appURL, token)

	if m.dev {
		m.log.Info().Str("email", email).Str("url", resetURL).Msg("password reset link (dev, not sent)")
		return nil
	}

	body := fmt.Sprintf(
		"<h2>Password Reset Request</h2>"+
			"<p>You have requested to reset your password. Click the link below to reset it:</p>"+
			"<p><a href=%q>Reset Password</a></p>"+
			"<p>This link will expire in 1 hour.</p>"+
			"<p>If you didn't request this, please ignore this email.</p>",
		resetURL,
	)

	return m.send(email, "Password Reset Request", body)
}

// SendEmailVerification mails a verification link. The link expires in 24
// hours.
func (m *Mailer) SendEmailVerification(email, token string) error {
	verifyURL := fmt.Sprintf("%s/auth/verify-email?token=%s", m.appURL, token)

	if m.dev {
		m.log.Info().Str("email", email).Str("url", verifyURL).Msg("email verification link (dev, not sent)")
		return nil
	}

	body := fmt.Sprintf(
		"<h2>Verify your email</h2>"+
			"<p>Click the link below to verify your email address:</p>"+
			"<p><a href=%q>Verify Email</a></p>"+
			"<p>This link will expire in 24 hours.</p>",
		verifyURL,
	)

	return m.send(email, "Verify your email", body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error().Err(err).Str("email", to).Msg("send mail failed")
		return fmt.Errorf("send mail: %w", err)
	}
	m.log.Info().Str("email", to).Str("subject", subject).Msg("mail sent")
	return nil
}
