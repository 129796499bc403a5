package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	scopeGmailSend         = "https://www.googleapis.com/auth/gmail.send"
	defaultGmailSendPeriod = 3 * time.Second
)

// GmailConfig holds the OAuth client credentials of the sending account.
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	From         string
	Interval     time.Duration
}

// GmailMailer sends through the Gmail API and spaces out consecutive sends.
type GmailMailer struct {
	service  *gmail.Service
	from     string
	interval time.Duration

	sendMutex    sync.Mutex
	lastSendTime time.Time
}

// NewGmailMailer builds a Gmail client that refreshes its access token from the stored refresh token.
func NewGmailMailer(ctx context.Context, cfg GmailConfig) (*GmailMailer, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("gmail mailer requires client id, client secret and refresh token")
	}
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{scopeGmailSend},
	}
	httpClient := oauthConfig.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultGmailSendPeriod
	}
	return &GmailMailer{service: service, from: cfg.From, interval: interval}, nil
}

// Send delivers one message, waiting out the throttle interval if needed.
func (m *GmailMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sendMutex.Lock()
	defer m.sendMutex.Unlock()

	if !m.lastSendTime.IsZero() {
		if wait := m.interval - time.Since(m.lastSendTime); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	raw := base64.URLEncoding.EncodeToString([]byte(buildMessage(m.from, to, subject, body)))
	if _, err := m.service.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("send gmail message: %w", err)
	}
	m.lastSendTime = time.Now()
	return nil
}

func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(body)
	return b.String()
}
