package dto

import "github.com/noah-isme/volunteer-hub-api/internal/models"

// EventRequest creates or replaces an event.
type EventRequest struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description" validate:"max=5000"`
	Category      string  `json:"category" validate:"max=80"`
	EventType     string  `json:"eventType" validate:"required,oneof=in_person online"`
	Location      string  `json:"location" validate:"max=300"`
	OnlineLink    string  `json:"onlineLink" validate:"omitempty,url"`
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string  `json:"time" validate:"omitempty,datetime=15:04"`
	DurationHours float64 `json:"durationHours" validate:"gt=0,lte=72"`
	MaxVolunteers int     `json:"maxVolunteers" validate:"min=1,max=10000"`
	IsPublic      *bool   `json:"isPublic"`
}

// EventStatusRequest moves an event along its lifecycle.
type EventStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
}

// EventListQuery captures listing parameters.
type EventListQuery struct {
	Status   string `form:"status"`
	Upcoming bool   `form:"upcoming"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CancelEventResponse reports the cancelled event and the notification outcome.
type CancelEventResponse struct {
	Event              models.EventView      `json:"event"`
	Notified           int                   `json:"notified"`
	NotificationStatus models.DispatchStatus `json:"notificationStatus"`
}

// TrainingRequest creates or replaces a training.
type TrainingRequest struct {
	Title           string  `json:"title" validate:"required,max=200"`
	Description     string  `json:"description" validate:"max=5000"`
	Date            string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string  `json:"time" validate:"omitempty,datetime=15:04"`
	Location        string  `json:"location" validate:"max=300"`
	Trainer         string  `json:"trainer" validate:"max=200"`
	DurationHours   float64 `json:"durationHours" validate:"gt=0,lte=72"`
	MaxParticipants int     `json:"maxParticipants" validate:"min=1,max=10000"`
}

// AttendanceRequest records attendance for a training participant.
type AttendanceRequest struct {
	Attended bool `json:"attended"`
}

// CancelTrainingResponse reports the notification outcome of a training cancellation.
type CancelTrainingResponse struct {
	TrainingID         string                `json:"trainingId"`
	Title              string                `json:"title"`
	Notified           int                   `json:"notified"`
	NotificationStatus models.DispatchStatus `json:"notificationStatus"`
}

// UploadResponse returns the public URL of a stored image.
type UploadResponse struct {
	URL string `json:"url"`
}
