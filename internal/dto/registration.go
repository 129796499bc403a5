package dto

import "github.com/noah-isme/volunteer-hub-api/internal/models"

// CompleteRegistrationRequest logs the hours served.
type CompleteRegistrationRequest struct {
	Hours float64 `json:"hours" validate:"gt=0,lte=200"`
	Notes string  `json:"notes" validate:"max=1000"`
}

// AssignVolunteerRequest lets an admin register a volunteer directly.
type AssignVolunteerRequest struct {
	VolunteerID string `json:"volunteerId" validate:"required,uuid"`
	Notes       string `json:"notes" validate:"max=1000"`
}

// RegistrationTransitionResponse returns the moved assignment together with
// the remaining pending count so admin lists can update in place.
type RegistrationTransitionResponse struct {
	Assignment   models.Assignment `json:"assignment"`
	PendingCount int               `json:"pendingCount"`
}
