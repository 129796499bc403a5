package models

import "time"

// AdminStats aggregates platform-wide counters.
type AdminStats struct {
	TotalVolunteers      int       `db:"total_volunteers" json:"totalVolunteers"`
	ActiveVolunteers     int       `db:"active_volunteers" json:"activeVolunteers"`
	PendingVolunteers    int       `db:"pending_volunteers" json:"pendingVolunteers"`
	TotalTasks           int       `db:"total_tasks" json:"totalTasks"`
	CompletedTasks       int       `db:"completed_tasks" json:"completedTasks"`
	TotalHours           float64   `db:"total_hours" json:"totalHours"`
	PendingRequests      int       `db:"pending_requests" json:"pendingRequests"`
	UnreadMessages       int       `db:"unread_messages" json:"unreadMessages"`
	TotalTrainings       int       `db:"total_trainings" json:"totalTrainings"`
	PendingRegistrations int       `db:"pending_registrations" json:"pendingRegistrations"`
	GeneratedAt          time.Time `db:"-" json:"generatedAt"`
}

// VolunteerStats aggregates counters for a single volunteer.
type VolunteerStats struct {
	TotalTasks         int     `db:"total_tasks" json:"totalTasks"`
	CompletedTasks     int     `db:"completed_tasks" json:"completedTasks"`
	HoursVolunteered   float64 `db:"hours_volunteered" json:"hoursVolunteered"`
	UpcomingTasks      int     `db:"upcoming_tasks" json:"upcomingTasks"`
	TrainingsCompleted int     `db:"trainings_completed" json:"trainingsCompleted"`
	CertificatesEarned int     `db:"certificates_earned" json:"certificatesEarned"`
}
