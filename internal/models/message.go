package models

import "time"

// Message is an inbox entry. A nil recipient addresses the administrators.
type Message struct {
	ID          string    `db:"id" json:"id"`
	SenderID    string    `db:"sender_id" json:"senderId"`
	RecipientID *string   `db:"recipient_id" json:"recipientId,omitempty"`
	Subject     string    `db:"subject" json:"subject"`
	Content     string    `db:"content" json:"content"`
	IsRead      bool      `db:"is_read" json:"isRead"`
	ParentID    *string   `db:"parent_id" json:"parentId,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`

	SenderName *string `db:"sender_name" json:"senderName,omitempty"`
}

// MessageBox selects which side of the conversation is listed.
type MessageBox struct {
	ProfileID     string
	IncludeAdmins bool
}
