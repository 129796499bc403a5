package models

import "time"

// NotificationKind names the message templates dispatched by the platform.
type NotificationKind string

const (
	NotificationAdminNewVolunteer NotificationKind = "notify-admin-new-volunteer"
	NotificationCancellation      NotificationKind = "notify-cancellation"
	NotificationTrainingCancelled NotificationKind = "notify-training-cancellation"
	NotificationApproved          NotificationKind = "volunteer-approved"
	NotificationRejected          NotificationKind = "volunteer-rejected"
	NotificationAttestation       NotificationKind = "attestation-processed"
	NotificationReminder          NotificationKind = "event-reminder"
)

// OutboxStatus is the delivery state of an outbox row.
type OutboxStatus string

const (
	OutboxQueued OutboxStatus = "queued"
	OutboxSent   OutboxStatus = "sent"
	OutboxDead   OutboxStatus = "dead"
)

// Notification is a single email addressed to one recipient.
type Notification struct {
	ID            string           `db:"id" json:"id"`
	Kind          NotificationKind `db:"kind" json:"kind"`
	Recipient     string           `db:"recipient" json:"recipient"`
	Subject       string           `db:"subject" json:"subject"`
	Body          string           `db:"body" json:"body"`
	ReferenceType string           `db:"reference_type" json:"referenceType"`
	ReferenceID   string           `db:"reference_id" json:"referenceId"`
	DedupeKey     *string          `db:"dedupe_key" json:"dedupeKey,omitempty"`
	Status        OutboxStatus     `db:"status" json:"status"`
	Attempts      int              `db:"attempts" json:"attempts"`
	LastError     *string          `db:"last_error" json:"lastError,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"createdAt"`
	SentAt        *time.Time       `db:"sent_at" json:"sentAt,omitempty"`
}

// OutboxCursor marks the last row seen while paging the queued outbox.
type OutboxCursor struct {
	CreatedAt time.Time
	ID        string
}

// DispatchStatus summarises the outcome of a notification fan-out.
type DispatchStatus string

const (
	DispatchSent    DispatchStatus = "sent"
	DispatchPartial DispatchStatus = "partial"
	DispatchFailed  DispatchStatus = "failed"
	DispatchNone    DispatchStatus = "none"
)

// DispatchResult reports how many notifications were accepted for delivery.
type DispatchResult struct {
	Queued  int `json:"queued"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Status classifies the result for client display.
func (r DispatchResult) Status() DispatchStatus {
	switch {
	case r.Queued == 0 && r.Failed == 0:
		return DispatchNone
	case r.Failed == 0:
		return DispatchSent
	case r.Queued == 0:
		return DispatchFailed
	default:
		return DispatchPartial
	}
}
