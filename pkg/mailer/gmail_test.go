package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/pkg/config"
)

func TestBuildMessageEncodesSubject(t *testing.T) {
	msg := buildMessage("hub@example.com", "v@example.com", "Annulation de l'événement : Collecte", "Bonjour")

	assert.Contains(t, msg, "From: hub@example.com\r\n")
	assert.Contains(t, msg, "To: v@example.com\r\n")
	assert.Contains(t, msg, "Subject: =?utf-8?q?")
	assert.Contains(t, msg, "charset=\"UTF-8\"\r\n\r\nBonjour")
}

func TestNewDefaultsToLogMailer(t *testing.T) {
	m, err := New(context.Background(), config.NotificationsConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), "a@example.com", "s", "b"))
}

func TestNewGmailRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), config.NotificationsConfig{MailDriver: config.MailDriverGmail}, nil)
	assert.Error(t, err)
}
