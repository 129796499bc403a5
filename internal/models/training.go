package models

import "time"

// TrainingStatus tracks whether a training session took place.
type TrainingStatus string

const (
	TrainingStatusScheduled TrainingStatus = "scheduled"
	TrainingStatusCompleted TrainingStatus = "completed"
)

// Training is a session volunteers join without approval.
type Training struct {
	ID              string         `db:"id" json:"id"`
	Title           string         `db:"title" json:"title"`
	Description     *string        `db:"description" json:"description,omitempty"`
	Date            Date           `db:"date" json:"date"`
	Time            *string        `db:"time" json:"time,omitempty"`
	Location        *string        `db:"location" json:"location,omitempty"`
	Trainer         *string        `db:"trainer" json:"trainer,omitempty"`
	DurationHours   float64        `db:"duration_hours" json:"durationHours"`
	MaxParticipants int            `db:"max_participants" json:"maxParticipants"`
	PosterURL       *string        `db:"poster_url" json:"posterUrl,omitempty"`
	Status          TrainingStatus `db:"status" json:"status"`
	CreatedBy       *string        `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`

	ParticipantCount int `db:"participant_count" json:"participantCount"`
}

// ParticipantStatus tracks a participant's progress.
type ParticipantStatus string

const (
	ParticipantStatusPending   ParticipantStatus = "pending"
	ParticipantStatusCompleted ParticipantStatus = "completed"
)

// TrainingParticipant links a volunteer profile to a training.
type TrainingParticipant struct {
	ID             string            `db:"id" json:"id"`
	TrainingID     string            `db:"training_id" json:"trainingId"`
	VolunteerID    string            `db:"volunteer_id" json:"volunteerId"`
	Status         ParticipantStatus `db:"status" json:"status"`
	Attended       bool              `db:"attended" json:"attended"`
	CompletionDate *Date             `db:"completion_date" json:"completionDate,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"createdAt"`

	VolunteerName  *string `db:"volunteer_name" json:"volunteerName,omitempty"`
	VolunteerEmail *string `db:"volunteer_email" json:"volunteerEmail,omitempty"`
}

// TrainingFilter constrains training listings.
type TrainingFilter struct {
	From     *Date
	Page     int
	PageSize int
}

// TrainingView decorates a training for the requesting volunteer.
type TrainingView struct {
	Training
	SpotsLeft int  `json:"spotsLeft"`
	Joined    bool `json:"joined"`
}
