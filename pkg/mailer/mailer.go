package mailer

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/innovex/ideahub-api/pkg/config"
)

// Sender delivers transactional email. Implementations must be safe for
// concurrent use by queue workers.
type Sender interface {
	Send(to, subject, body string) error
}

// New returns an SMTP sender, or a logging no-op sender when no SMTP host
// is configured so local environments run without a mail server.
func New(cfg config.SMTPConfig, logger *zap.Logger) Sender {
	if cfg.Host == "" {
		if logger == nil {
			logger = zap.NewNop()
		}
		return &NopSender{logger: logger}
	}
	return NewSMTPSender(cfg)
}

// NopSender drops messages, logging each one instead of delivering it.
type NopSender struct {
	logger *zap.Logger
}

// Send logs the would-be delivery and succeeds.
func (s *NopSender) Send(to, subject, body string) error {
	s.logger.Info("email delivery skipped, no smtp host configured",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}

// SMTPSender sends email over SMTP using gomail.
type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewSMTPSender builds a sender from SMTP configuration.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

// Send dials the SMTP server and delivers a single HTML message.
func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}
