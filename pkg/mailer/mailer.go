// Package mailer delivers plain-text emails produced by the notification outbox.
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/pkg/config"
)

// Mailer sends a single message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New selects the mail transport configured for the environment.
func New(ctx context.Context, cfg config.NotificationsConfig, logger *zap.Logger) (Mailer, error) {
	switch cfg.MailDriver {
	case "", config.MailDriverLog:
		return NewLogMailer(logger), nil
	case config.MailDriverGmail:
		return NewGmailMailer(ctx, GmailConfig{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			RefreshToken: cfg.GmailRefreshToken,
			From:         cfg.MailFrom,
			Interval:     cfg.GmailSendInterval,
		})
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
	}
}

// LogMailer writes messages to the logger instead of delivering them.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message.
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info("email",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}
