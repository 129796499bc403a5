package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

const notificationColumns = `id, kind, recipient, subject, body, reference_type, reference_id, dedupe_key, status, attempts, last_error, created_at, sent_at`

// NotificationRepository persists the email outbox.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert adds a queued row. It reports false when a row with the same dedupe key already exists.
func (r *NotificationRepository) Insert(ctx context.Context, n *models.Notification) (bool, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	n.Status = models.OutboxQueued
	n.Attempts = 0
	const query = `INSERT INTO notification_outbox (id, kind, recipient, subject, body, reference_type, reference_id, dedupe_key, status, attempts, created_at)
VALUES (:id, :kind, :recipient, :subject, :body, :reference_type, :reference_id, :dedupe_key, :status, :attempts, :created_at)
ON CONFLICT (dedupe_key) WHERE dedupe_key IS NOT NULL DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, n)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	return affected > 0, nil
}

// FindByID returns an outbox row.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.GetContext(ctx, &n, `SELECT `+notificationColumns+` FROM notification_outbox WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return &n, nil
}

// ListQueued returns one page of rows still waiting for delivery, oldest first,
// strictly after the cursor. A zero cursor starts from the beginning.
func (r *NotificationRepository) ListQueued(ctx context.Context, after models.OutboxCursor, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 500
	}
	var rows []models.Notification
	query := `SELECT ` + notificationColumns + ` FROM notification_outbox
		WHERE status = 'queued' AND (created_at, id::text) > ($1, $2)
		ORDER BY created_at ASC, id::text ASC LIMIT $3`
	if err := r.db.SelectContext(ctx, &rows, query, after.CreatedAt, after.ID, limit); err != nil {
		return nil, fmt.Errorf("list queued notifications: %w", err)
	}
	return rows, nil
}

// MarkSent records a successful delivery.
func (r *NotificationRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE notification_outbox SET status = 'sent', attempts = attempts + 1, last_error = NULL, sent_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed records a failed attempt. The row stays queued.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id string, cause string) error {
	const query = `UPDATE notification_outbox SET attempts = attempts + 1, last_error = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, cause); err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	return nil
}

// MarkDead parks a row after its retries are exhausted.
func (r *NotificationRepository) MarkDead(ctx context.Context, id string, cause string) error {
	const query = `UPDATE notification_outbox SET status = 'dead', last_error = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, cause); err != nil {
		return fmt.Errorf("mark notification dead: %w", err)
	}
	return nil
}
