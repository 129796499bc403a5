package models

import "time"

// Assignment is a volunteer's registration to an event, stored in task_assignments.
type Assignment struct {
	ID          string      `db:"id" json:"id"`
	EventID     string      `db:"task_id" json:"eventId"`
	VolunteerID string      `db:"volunteer_id" json:"volunteerId"`
	Status      EventStatus `db:"status" json:"status"`
	HoursLogged *float64    `db:"hours_logged" json:"hoursLogged,omitempty"`
	AssignedBy  *string     `db:"assigned_by" json:"assignedBy,omitempty"`
	Notes       *string     `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

// ActiveAssignmentStatuses are the statuses counted as a live registration.
var ActiveAssignmentStatuses = []EventStatus{EventStatusPending, EventStatusInProgress, EventStatusCompleted}

// AssignmentDetail is an assignment joined with its event and volunteer.
// Either side may be missing when the joined row was deleted.
type AssignmentDetail struct {
	Assignment
	EventTitle     *string `db:"event_title" json:"eventTitle,omitempty"`
	EventDate      *Date   `db:"event_date" json:"eventDate,omitempty"`
	EventTime      *string `db:"event_time" json:"eventTime,omitempty"`
	EventLocation  *string `db:"event_location" json:"eventLocation,omitempty"`
	EventStatus    *string `db:"event_status" json:"eventStatus,omitempty"`
	VolunteerName  *string `db:"volunteer_name" json:"volunteerName,omitempty"`
	VolunteerEmail *string `db:"volunteer_email" json:"volunteerEmail,omitempty"`
	VolunteerPhone *string `db:"volunteer_phone" json:"volunteerPhone,omitempty"`
	Governorate    *string `db:"volunteer_governorate" json:"governorate,omitempty"`
	City           *string `db:"volunteer_city" json:"city,omitempty"`
}

// HasEvent reports whether the joined event row was found.
func (d AssignmentDetail) HasEvent() bool {
	return d.EventTitle != nil
}

// HasVolunteer reports whether the joined profile row was found.
func (d AssignmentDetail) HasVolunteer() bool {
	return d.VolunteerName != nil
}
