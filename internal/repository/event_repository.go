package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

const eventSelect = `SELECT t.id, t.title, t.description, t.category, t.event_type, t.location, t.online_link, t.date, t.time,
t.duration_hours, t.max_volunteers, t.poster_url, t.is_public, t.status, t.created_by, t.cancelled_at, t.created_at, t.updated_at,
(SELECT COUNT(*) FROM task_assignments a WHERE a.task_id = t.id AND a.status <> 'cancelled') AS registered_count
FROM tasks t`

// EventRepository persists events in the tasks table.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// FindByID returns an event with its live registration count.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.GetContext(ctx, &event, eventSelect+` WHERE t.id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &event, nil
}

// List returns events matching the filter ordered by date.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	where := " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", len(args)+1))
		args = append(args, string(*filter.Status))
	}
	if filter.ExcludeCancelled {
		conditions = append(conditions, "t.status <> 'cancelled'")
	}
	if filter.PublicOnly {
		conditions = append(conditions, "t.is_public = TRUE")
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("t.date >= $%d", len(args)+1))
		args = append(args, filter.From.String())
	}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("t.date = $%d", len(args)+1))
		args = append(args, filter.Date.String())
	}
	if len(conditions) > 0 {
		where += " AND " + strings.Join(conditions, " AND ")
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}
	page, pageSize := normalisePage(filter.Page, filter.PageSize)
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("%s%s ORDER BY t.date %s, t.time %s LIMIT %d OFFSET %d", eventSelect, where, sortOrder, sortOrder, pageSize, offset)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM tasks t"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// ListByDate returns the non-cancelled events held on a given day.
func (r *EventRepository) ListByDate(ctx context.Context, day models.Date) ([]models.Event, error) {
	var events []models.Event
	query := eventSelect + ` WHERE t.date = $1 AND t.status <> 'cancelled' ORDER BY t.time`
	if err := r.db.SelectContext(ctx, &events, query, day.String()); err != nil {
		return nil, fmt.Errorf("list events by date: %w", err)
	}
	return events, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Status == "" {
		event.Status = models.EventStatusPending
	}
	const query = `INSERT INTO tasks (id, title, description, category, event_type, location, online_link, date, time, duration_hours,
max_volunteers, poster_url, is_public, status, created_by, created_at, updated_at)
VALUES (:id, :title, :description, :category, :event_type, :location, :online_link, :date, :time, :duration_hours,
:max_volunteers, :poster_url, :is_public, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update stores editable event fields. Status is changed through SetStatus and Cancel.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tasks SET title = :title, description = :description, category = :category, event_type = :event_type,
location = :location, online_link = :online_link, date = :date, time = :time, duration_hours = :duration_hours,
max_volunteers = :max_volunteers, is_public = :is_public, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return expectAffected(res)
}

// SetStatus moves an event from one status to another if it is still in the expected state.
func (r *EventRepository) SetStatus(ctx context.Context, id string, from, to models.EventStatus) error {
	const query = `UPDATE tasks SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, string(from), string(to), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set event status: %w", err)
	}
	return expectAffected(res)
}

// Cancel marks the event cancelled. Calling it on a cancelled event keeps the first cancellation time.
func (r *EventRepository) Cancel(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE tasks SET status = 'cancelled', cancelled_at = COALESCE(cancelled_at, $2), updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("cancel event: %w", err)
	}
	return expectAffected(res)
}

// UpdatePoster sets the poster URL.
func (r *EventRepository) UpdatePoster(ctx context.Context, id, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET poster_url = $2, updated_at = $3 WHERE id = $1`, id, url, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update event poster: %w", err)
	}
	return expectAffected(res)
}

// Delete removes an event and, by cascade, its assignments.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return expectAffected(res)
}
