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

const messageSelect = `SELECT m.id, m.sender_id, m.recipient_id, m.subject, m.content, m.is_read, m.parent_id, m.created_at,
p.full_name AS sender_name
FROM messages m LEFT JOIN profiles p ON p.id = m.sender_id`

// MessageRepository persists inbox messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message.
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO messages (id, sender_id, recipient_id, subject, content, is_read, parent_id, created_at)
VALUES (:id, :sender_id, :recipient_id, :subject, :content, :is_read, :parent_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// FindByID returns a message.
func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	if err := r.db.GetContext(ctx, &msg, messageSelect+` WHERE m.id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &msg, nil
}

// Inbox lists the messages addressed to the box owner, newest first.
func (r *MessageRepository) Inbox(ctx context.Context, box models.MessageBox) ([]models.Message, error) {
	query := messageSelect + ` WHERE m.recipient_id = $1`
	if box.IncludeAdmins {
		query += ` OR m.recipient_id IS NULL`
	}
	query += ` ORDER BY m.created_at DESC`
	var msgs []models.Message
	if err := r.db.SelectContext(ctx, &msgs, query, box.ProfileID); err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return msgs, nil
}

// Sent lists the messages sent by a profile, newest first.
func (r *MessageRepository) Sent(ctx context.Context, senderID string) ([]models.Message, error) {
	var msgs []models.Message
	if err := r.db.SelectContext(ctx, &msgs, messageSelect+` WHERE m.sender_id = $1 ORDER BY m.created_at DESC`, senderID); err != nil {
		return nil, fmt.Errorf("list sent messages: %w", err)
	}
	return msgs, nil
}

// MarkRead flags a message as read.
func (r *MessageRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return expectAffected(res)
}

// CountUnread counts unread messages in the box.
func (r *MessageRepository) CountUnread(ctx context.Context, box models.MessageBox) (int, error) {
	query := `SELECT COUNT(*) FROM messages WHERE is_read = FALSE AND (recipient_id = $1`
	if box.IncludeAdmins {
		query += ` OR recipient_id IS NULL`
	}
	query += `)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, box.ProfileID); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}
