package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

const assignmentColumns = `id, task_id, volunteer_id, status, hours_logged, assigned_by, notes, created_at, updated_at`

const assignmentDetailSelect = `SELECT a.id, a.task_id, a.volunteer_id, a.status, a.hours_logged, a.assigned_by, a.notes, a.created_at, a.updated_at,
t.title AS event_title, t.date AS event_date, t.time AS event_time, t.location AS event_location, t.status AS event_status,
p.full_name AS volunteer_name, p.email AS volunteer_email, p.phone AS volunteer_phone,
p.governorate AS volunteer_governorate, p.city AS volunteer_city
FROM task_assignments a
LEFT JOIN tasks t ON t.id = a.task_id
LEFT JOIN profiles p ON p.id = a.volunteer_id`

// AssignmentRepository persists event registrations.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID returns a single assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, `SELECT `+assignmentColumns+` FROM task_assignments WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// FindActive returns the volunteer's non-cancelled assignment for an event.
func (r *AssignmentRepository) FindActive(ctx context.Context, volunteerID, eventID string) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM task_assignments WHERE volunteer_id = $1 AND task_id = $2 AND status <> 'cancelled'`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, volunteerID, eventID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active assignment: %w", err)
	}
	return &assignment, nil
}

// ExistsActive reports whether the volunteer holds a non-cancelled assignment for the event.
func (r *AssignmentRepository) ExistsActive(ctx context.Context, volunteerID, eventID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM task_assignments WHERE volunteer_id = $1 AND task_id = $2 AND status <> 'cancelled')`
	if err := r.db.GetContext(ctx, &exists, query, volunteerID, eventID); err != nil {
		return false, fmt.Errorf("check active assignment: %w", err)
	}
	return exists, nil
}

// CountActive returns the number of non-cancelled assignments of an event.
func (r *AssignmentRepository) CountActive(ctx context.Context, eventID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM task_assignments WHERE task_id = $1 AND status <> 'cancelled'`, eventID); err != nil {
		return 0, fmt.Errorf("count active assignments: %w", err)
	}
	return count, nil
}

// CountPending returns the number of registrations awaiting validation.
func (r *AssignmentRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM task_assignments WHERE status = 'pending'`); err != nil {
		return 0, fmt.Errorf("count pending assignments: %w", err)
	}
	return count, nil
}

// Create inserts an assignment. A second live registration violates task_assignments_active_uniq.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	const query = `INSERT INTO task_assignments (id, task_id, volunteer_id, status, hours_logged, assigned_by, notes, created_at, updated_at)
VALUES (:id, :task_id, :volunteer_id, :status, :hours_logged, :assigned_by, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Transition changes the status when the assignment is still in the expected state.
func (r *AssignmentRepository) Transition(ctx context.Context, id string, from, to models.EventStatus) error {
	const query = `UPDATE task_assignments SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, string(from), string(to), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("transition assignment: %w", err)
	}
	return expectAffected(res)
}

// Complete closes an in-progress assignment with the logged hours and credits them to the volunteer.
func (r *AssignmentRepository) Complete(ctx context.Context, id string, hours float64, notes *string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complete assignment tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	var volunteerID string
	const update = `UPDATE task_assignments SET status = 'completed', hours_logged = $2, notes = COALESCE($3, notes), updated_at = $4
WHERE id = $1 AND status = 'in_progress' RETURNING volunteer_id`
	if err = tx.GetContext(ctx, &volunteerID, update, id, hours, notes, now); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("complete assignment: %w", err)
	}
	const credit = `UPDATE profiles SET hours_volunteered = hours_volunteered + $2, updated_at = $3 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, credit, volunteerID, hours, now); err != nil {
		return fmt.Errorf("credit volunteer hours: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit complete assignment tx: %w", err)
	}
	return nil
}

// DeleteWithdrawable removes the volunteer's pending or in-progress assignment for the event.
func (r *AssignmentRepository) DeleteWithdrawable(ctx context.Context, volunteerID, eventID string) error {
	const query = `DELETE FROM task_assignments WHERE volunteer_id = $1 AND task_id = $2 AND status IN ('pending', 'in_progress')`
	res, err := r.db.ExecContext(ctx, query, volunteerID, eventID)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return expectAffected(res)
}

// ListByVolunteer returns a volunteer's assignments joined with their events, newest event first.
func (r *AssignmentRepository) ListByVolunteer(ctx context.Context, volunteerID string) ([]models.AssignmentDetail, error) {
	var rows []models.AssignmentDetail
	query := assignmentDetailSelect + ` WHERE a.volunteer_id = $1 ORDER BY t.date DESC NULLS LAST, a.created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, volunteerID); err != nil {
		return nil, fmt.Errorf("list volunteer assignments: %w", err)
	}
	return rows, nil
}

// ListPending returns registrations awaiting validation, oldest first.
func (r *AssignmentRepository) ListPending(ctx context.Context) ([]models.AssignmentDetail, error) {
	var rows []models.AssignmentDetail
	query := assignmentDetailSelect + ` WHERE a.status = 'pending' ORDER BY a.created_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list pending assignments: %w", err)
	}
	return rows, nil
}

// ListByEvent returns the assignments of an event with volunteer details.
func (r *AssignmentRepository) ListByEvent(ctx context.Context, eventID string) ([]models.AssignmentDetail, error) {
	var rows []models.AssignmentDetail
	query := assignmentDetailSelect + ` WHERE a.task_id = $1 ORDER BY a.created_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("list event assignments: %w", err)
	}
	return rows, nil
}

// NotifiableContacts returns the distinct volunteers of an event whose assignment has one of the statuses.
func (r *AssignmentRepository) NotifiableContacts(ctx context.Context, eventID string, statuses []models.EventStatus) ([]models.ProfileContact, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	const query = `SELECT DISTINCT ON (LOWER(p.email)) p.id, p.full_name, p.email
FROM task_assignments a JOIN profiles p ON p.id = a.volunteer_id
WHERE a.task_id = $1 AND a.status = ANY($2) AND p.email <> ''
ORDER BY LOWER(p.email), p.id`
	var contacts []models.ProfileContact
	if err := r.db.SelectContext(ctx, &contacts, query, eventID, pq.Array(values)); err != nil {
		return nil, fmt.Errorf("list event contacts: %w", err)
	}
	return contacts, nil
}
