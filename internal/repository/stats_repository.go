package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

// StatsRepository computes aggregate counters for dashboards.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// AdminStats aggregates platform-wide counters in one round trip.
func (r *StatsRepository) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	const query = `SELECT
(SELECT COUNT(*) FROM profiles p JOIN user_roles ur ON ur.user_id = p.user_id AND ur.role = 'volunteer') AS total_volunteers,
(SELECT COUNT(*) FROM profiles p JOIN user_roles ur ON ur.user_id = p.user_id AND ur.role = 'volunteer' WHERE p.status = 'active') AS active_volunteers,
(SELECT COUNT(*) FROM profiles WHERE status = 'pending') AS pending_volunteers,
(SELECT COUNT(*) FROM tasks) AS total_tasks,
(SELECT COUNT(*) FROM tasks WHERE status = 'completed') AS completed_tasks,
(SELECT COALESCE(SUM(hours_logged), 0) FROM task_assignments WHERE status = 'completed') AS total_hours,
(SELECT COUNT(*) FROM attestation_requests WHERE status = 'pending') AS pending_requests,
(SELECT COUNT(*) FROM messages WHERE is_read = FALSE AND recipient_id IS NULL) AS unread_messages,
(SELECT COUNT(*) FROM trainings) AS total_trainings,
(SELECT COUNT(*) FROM task_assignments WHERE status = 'pending') AS pending_registrations`
	var stats models.AdminStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return &stats, nil
}

// VolunteerStats aggregates the counters of one volunteer profile.
func (r *StatsRepository) VolunteerStats(ctx context.Context, profileID string) (*models.VolunteerStats, error) {
	const query = `SELECT
(SELECT COUNT(*) FROM task_assignments WHERE volunteer_id = $1 AND status <> 'cancelled') AS total_tasks,
(SELECT COUNT(*) FROM task_assignments WHERE volunteer_id = $1 AND status = 'completed') AS completed_tasks,
(SELECT COALESCE(hours_volunteered, 0) FROM profiles WHERE id = $1) AS hours_volunteered,
(SELECT COUNT(*) FROM task_assignments a JOIN tasks t ON t.id = a.task_id
  WHERE a.volunteer_id = $1 AND a.status IN ('pending', 'in_progress') AND t.status <> 'cancelled' AND t.date >= CURRENT_DATE) AS upcoming_tasks,
(SELECT COUNT(*) FROM training_participants WHERE volunteer_id = $1 AND status = 'completed') AS trainings_completed,
(SELECT COUNT(*) FROM certificates WHERE volunteer_id = $1) AS certificates_earned`
	var stats models.VolunteerStats
	if err := r.db.GetContext(ctx, &stats, query, profileID); err != nil {
		return nil, fmt.Errorf("volunteer stats: %w", err)
	}
	return &stats, nil
}
