package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

const trainingSelect = `SELECT tr.id, tr.title, tr.description, tr.date, tr.time, tr.location, tr.trainer, tr.duration_hours,
tr.max_participants, tr.poster_url, tr.status, tr.created_by, tr.created_at, tr.updated_at,
(SELECT COUNT(*) FROM training_participants tp WHERE tp.training_id = tr.id) AS participant_count
FROM trainings tr`

// TrainingRepository persists trainings and their participants.
type TrainingRepository struct {
	db *sqlx.DB
}

// NewTrainingRepository constructs a TrainingRepository.
func NewTrainingRepository(db *sqlx.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

// FindByID returns a training with its participant count.
func (r *TrainingRepository) FindByID(ctx context.Context, id string) (*models.Training, error) {
	var training models.Training
	if err := r.db.GetContext(ctx, &training, trainingSelect+` WHERE tr.id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find training: %w", err)
	}
	return &training, nil
}

// List returns trainings ordered by date.
func (r *TrainingRepository) List(ctx context.Context, filter models.TrainingFilter) ([]models.Training, int, error) {
	where := ""
	var args []interface{}
	if filter.From != nil {
		where = " WHERE tr.date >= $1"
		args = append(args, filter.From.String())
	}
	page, pageSize := normalisePage(filter.Page, filter.PageSize)
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("%s%s ORDER BY tr.date ASC, tr.time ASC LIMIT %d OFFSET %d", trainingSelect, where, pageSize, offset)
	var trainings []models.Training
	if err := r.db.SelectContext(ctx, &trainings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list trainings: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM trainings tr"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count trainings: %w", err)
	}
	return trainings, total, nil
}

// Create inserts a training.
func (r *TrainingRepository) Create(ctx context.Context, training *models.Training) error {
	if training.ID == "" {
		training.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	training.CreatedAt = now
	training.UpdatedAt = now
	if training.Status == "" {
		training.Status = models.TrainingStatusScheduled
	}
	const query = `INSERT INTO trainings (id, title, description, date, time, location, trainer, duration_hours, max_participants,
poster_url, status, created_by, created_at, updated_at)
VALUES (:id, :title, :description, :date, :time, :location, :trainer, :duration_hours, :max_participants,
:poster_url, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, training); err != nil {
		return fmt.Errorf("create training: %w", err)
	}
	return nil
}

// Update stores editable training fields.
func (r *TrainingRepository) Update(ctx context.Context, training *models.Training) error {
	training.UpdatedAt = time.Now().UTC()
	const query = `UPDATE trainings SET title = :title, description = :description, date = :date, time = :time, location = :location,
trainer = :trainer, duration_hours = :duration_hours, max_participants = :max_participants, status = :status, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, training)
	if err != nil {
		return fmt.Errorf("update training: %w", err)
	}
	return expectAffected(res)
}

// UpdatePoster sets the poster URL.
func (r *TrainingRepository) UpdatePoster(ctx context.Context, id, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE trainings SET poster_url = $2, updated_at = $3 WHERE id = $1`, id, url, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update training poster: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a training and, by cascade, its participants.
func (r *TrainingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trainings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete training: %w", err)
	}
	return expectAffected(res)
}

// AddParticipant registers a volunteer. A duplicate violates training_participants_uniq.
func (r *TrainingRepository) AddParticipant(ctx context.Context, participant *models.TrainingParticipant) error {
	if participant.ID == "" {
		participant.ID = uuid.NewString()
	}
	participant.CreatedAt = time.Now().UTC()
	if participant.Status == "" {
		participant.Status = models.ParticipantStatusPending
	}
	const query = `INSERT INTO training_participants (id, training_id, volunteer_id, status, attended, completion_date, created_at)
VALUES (:id, :training_id, :volunteer_id, :status, :attended, :completion_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, participant); err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

// RemoveParticipant deletes a volunteer's participation.
func (r *TrainingRepository) RemoveParticipant(ctx context.Context, trainingID, volunteerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM training_participants WHERE training_id = $1 AND volunteer_id = $2`, trainingID, volunteerID)
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	return expectAffected(res)
}

// MarkAttendance records attendance. Attending completes the participation on the given day.
func (r *TrainingRepository) MarkAttendance(ctx context.Context, trainingID, volunteerID string, attended bool, day models.Date) error {
	status := models.ParticipantStatusPending
	var completion *models.Date
	if attended {
		status = models.ParticipantStatusCompleted
		completion = &day
	}
	const query = `UPDATE training_participants SET attended = $3, status = $4, completion_date = $5 WHERE training_id = $1 AND volunteer_id = $2`
	res, err := r.db.ExecContext(ctx, query, trainingID, volunteerID, attended, string(status), completion)
	if err != nil {
		return fmt.Errorf("mark attendance: %w", err)
	}
	return expectAffected(res)
}

// ListParticipants returns the participants of a training with their contact details.
func (r *TrainingRepository) ListParticipants(ctx context.Context, trainingID string) ([]models.TrainingParticipant, error) {
	const query = `SELECT tp.id, tp.training_id, tp.volunteer_id, tp.status, tp.attended, tp.completion_date, tp.created_at,
p.full_name AS volunteer_name, p.email AS volunteer_email
FROM training_participants tp LEFT JOIN profiles p ON p.id = tp.volunteer_id
WHERE tp.training_id = $1 ORDER BY tp.created_at`
	var participants []models.TrainingParticipant
	if err := r.db.SelectContext(ctx, &participants, query, trainingID); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// ListJoinedIDs returns the ids of the trainings a volunteer joined.
func (r *TrainingRepository) ListJoinedIDs(ctx context.Context, volunteerID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT training_id FROM training_participants WHERE volunteer_id = $1`, volunteerID); err != nil {
		return nil, fmt.Errorf("list joined trainings: %w", err)
	}
	return ids, nil
}
