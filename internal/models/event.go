package models

import "time"

// EventStatus is shared by events and registrations.
type EventStatus string

const (
	EventStatusPending    EventStatus = "pending"
	EventStatusInProgress EventStatus = "in_progress"
	EventStatusCompleted  EventStatus = "completed"
	EventStatusCancelled  EventStatus = "cancelled"
)

// Valid reports whether the status is recognised.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPending, EventStatusInProgress, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle move is allowed.
func (s EventStatus) Terminal() bool {
	return s == EventStatusCompleted || s == EventStatusCancelled
}

// OpenForRegistration reports whether volunteers may still register.
func (s EventStatus) OpenForRegistration() bool {
	return s == EventStatusPending || s == EventStatusInProgress
}

// CanMoveTo reports whether an admin status change from s to next is allowed.
// Cancellation has its own operation and is not reachable here.
func (s EventStatus) CanMoveTo(next EventStatus) bool {
	switch s {
	case EventStatusPending:
		return next == EventStatusInProgress || next == EventStatusCompleted
	case EventStatusInProgress:
		return next == EventStatusCompleted
	}
	return false
}

// EventType distinguishes physical and remote events.
type EventType string

const (
	EventTypeInPerson EventType = "in_person"
	EventTypeOnline   EventType = "online"
)

// Event is a volunteering activity, stored in the tasks table.
type Event struct {
	ID            string      `db:"id" json:"id"`
	Title         string      `db:"title" json:"title"`
	Description   *string     `db:"description" json:"description,omitempty"`
	Category      *string     `db:"category" json:"category,omitempty"`
	EventType     EventType   `db:"event_type" json:"eventType"`
	Location      *string     `db:"location" json:"location,omitempty"`
	OnlineLink    *string     `db:"online_link" json:"onlineLink,omitempty"`
	Date          Date        `db:"date" json:"date"`
	Time          *string     `db:"time" json:"time,omitempty"`
	DurationHours float64     `db:"duration_hours" json:"durationHours"`
	MaxVolunteers int         `db:"max_volunteers" json:"maxVolunteers"`
	PosterURL     *string     `db:"poster_url" json:"posterUrl,omitempty"`
	IsPublic      bool        `db:"is_public" json:"isPublic"`
	Status        EventStatus `db:"status" json:"status"`
	CreatedBy     *string     `db:"created_by" json:"createdBy,omitempty"`
	CancelledAt   *time.Time  `db:"cancelled_at" json:"cancelledAt,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`

	RegisteredCount int `db:"registered_count" json:"registeredCount"`
}

// SpotsLeft is capacity minus live registrations. It may be negative while capacity is advisory.
func (e *Event) SpotsLeft() int {
	return e.MaxVolunteers - e.RegisteredCount
}

// EventView decorates an event with derived capacity figures.
type EventView struct {
	Event
	SpotsLeft int `json:"spotsLeft"`
}

// NewEventView computes derived fields for e.
func NewEventView(e Event) EventView {
	return EventView{Event: e, SpotsLeft: e.SpotsLeft()}
}

// EventFilter constrains event listings.
type EventFilter struct {
	Status           *EventStatus
	PublicOnly       bool
	ExcludeCancelled bool
	From             *Date
	Date             *Date
	Page             int
	PageSize         int
	SortOrder        string
}
