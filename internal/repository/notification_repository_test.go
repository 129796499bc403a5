package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

func TestNotificationInsertSkipsDuplicateDedupeKey(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (dedupe_key) WHERE dedupe_key IS NOT NULL DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (dedupe_key)")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	key := "reminder|e1|a@example.com|2026-10-18"
	first := &models.Notification{Kind: models.NotificationReminder, Recipient: "a@example.com", DedupeKey: &key}
	inserted, err := repo.Insert(context.Background(), first)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, models.OutboxQueued, first.Status)
	assert.NotEmpty(t, first.ID)

	inserted, err = repo.Insert(context.Background(), &models.Notification{Kind: models.NotificationReminder, Recipient: "a@example.com", DedupeKey: &key})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMarkDead(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_outbox SET status = 'dead', last_error = $2 WHERE id = $1")).
		WithArgs("n1", "smtp down").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkDead(context.Background(), "n1", "smtp down"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationListQueuedPagesAfterCursor(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	since := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "kind", "recipient", "status", "created_at"}).
		AddRow("n2", "event-reminder", "b@example.com", "queued", since.Add(time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("AND (created_at, id::text) > ($1, $2)")).
		WithArgs(since, "n1", 50).
		WillReturnRows(rows)

	page, err := repo.ListQueued(context.Background(), models.OutboxCursor{CreatedAt: since, ID: "n1"}, 50)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "n2", page[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
