package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/pkg/database"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type trainingStore interface {
	FindByID(ctx context.Context, id string) (*models.Training, error)
	List(ctx context.Context, filter models.TrainingFilter) ([]models.Training, int, error)
	Create(ctx context.Context, training *models.Training) error
	Update(ctx context.Context, training *models.Training) error
	UpdatePoster(ctx context.Context, id, url string) error
	Delete(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, participant *models.TrainingParticipant) error
	RemoveParticipant(ctx context.Context, trainingID, volunteerID string) error
	MarkAttendance(ctx context.Context, trainingID, volunteerID string, attended bool, day models.Date) error
	ListParticipants(ctx context.Context, trainingID string) ([]models.TrainingParticipant, error)
	ListJoinedIDs(ctx context.Context, volunteerID string) ([]string, error)
}

// TrainingService manages trainings and their participants.
type TrainingService struct {
	repo      trainingStore
	media     posterStore
	notifier  Notifier
	stats     statsInvalidator
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTrainingService constructs a TrainingService.
func NewTrainingService(repo trainingStore, media posterStore, notifier Notifier, stats statsInvalidator, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *TrainingService {
	return &TrainingService{
		repo:      repo,
		media:     media,
		notifier:  notifier,
		stats:     stats,
		audit:     audit,
		validator: newValidator(validate),
		logger:    newLogger(logger),
		now:       time.Now,
	}
}

// List returns trainings, flagging the ones the calling volunteer joined.
func (s *TrainingService) List(ctx context.Context, session *models.Session, upcoming bool, page, pageSize int) ([]models.TrainingView, *models.Pagination, error) {
	if err := requireSession(session); err != nil {
		return nil, nil, err
	}
	filter := models.TrainingFilter{Page: page, PageSize: pageSize}
	if upcoming {
		today := models.NewDate(s.now())
		filter.From = &today
	}
	trainings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list trainings")
	}
	joined := map[string]bool{}
	if session.ProfileID != "" && !session.IsAdmin() {
		ids, err := s.repo.ListJoinedIDs(ctx, session.ProfileID)
		if err != nil {
			return nil, nil, internalError(err, "failed to load joined trainings")
		}
		for _, id := range ids {
			joined[id] = true
		}
	}
	views := make([]models.TrainingView, 0, len(trainings))
	for _, t := range trainings {
		views = append(views, models.TrainingView{Training: t, SpotsLeft: t.MaxParticipants - t.ParticipantCount, Joined: joined[t.ID]})
	}
	return views, pagination(page, pageSize, total), nil
}

// Get returns one training.
func (s *TrainingService) Get(ctx context.Context, session *models.Session, id string) (*models.Training, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	training, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "training not found", "failed to load training")
	}
	return training, nil
}

// Create adds a scheduled training.
func (s *TrainingService) Create(ctx context.Context, session *models.Session, req dto.TrainingRequest) (*models.Training, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	training, err := s.buildTraining(req)
	if err != nil {
		return nil, err
	}
	training.CreatedBy = &session.UserID
	if err := s.repo.Create(ctx, training); err != nil {
		return nil, internalError(err, "failed to create training")
	}
	s.invalidate(ctx)
	return training, nil
}

// Update replaces the editable fields of a training.
func (s *TrainingService) Update(ctx context.Context, session *models.Session, id string, req dto.TrainingRequest) (*models.Training, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "training not found", "failed to load training")
	}
	training, err := s.buildTraining(req)
	if err != nil {
		return nil, err
	}
	training.ID = current.ID
	training.Status = current.Status
	training.PosterURL = current.PosterURL
	training.CreatedBy = current.CreatedBy
	training.CreatedAt = current.CreatedAt
	training.ParticipantCount = current.ParticipantCount
	if err := s.repo.Update(ctx, training); err != nil {
		return nil, notFoundOr(err, "training not found", "failed to update training")
	}
	return training, nil
}

func (s *TrainingService) buildTraining(req dto.TrainingRequest) (*models.Training, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid training payload")
	}
	day, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, validationError(err, "invalid training date")
	}
	return &models.Training{
		Title:           strings.TrimSpace(req.Title),
		Description:     nullIfEmpty(req.Description),
		Date:            day,
		Time:            nullIfEmpty(req.Time),
		Location:        nullIfEmpty(req.Location),
		Trainer:         nullIfEmpty(req.Trainer),
		DurationHours:   req.DurationHours,
		MaxParticipants: req.MaxParticipants,
		Status:          models.TrainingStatusScheduled,
	}, nil
}

// Delete removes a training without notifying participants.
func (s *TrainingService) Delete(ctx context.Context, session *models.Session, id string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "training not found", "failed to delete training")
	}
	s.invalidate(ctx)
	return nil
}

// Join registers the caller. No approval is involved.
func (s *TrainingService) Join(ctx context.Context, session *models.Session, trainingID string) (*models.TrainingParticipant, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, trainingID); err != nil {
		return nil, notFoundOr(err, "training not found", "failed to load training")
	}
	participant := &models.TrainingParticipant{TrainingID: trainingID, VolunteerID: session.ProfileID}
	if err := s.repo.AddParticipant(ctx, participant); err != nil {
		if database.IsUniqueViolation(err, "training_participants_uniq") {
			return nil, appErrors.Clone(appErrors.ErrConflict, "already joined this training")
		}
		return nil, internalError(err, "failed to join training")
	}
	return participant, nil
}

// Leave removes the caller from a training.
func (s *TrainingService) Leave(ctx context.Context, session *models.Session, trainingID string) error {
	if err := requireProfile(session); err != nil {
		return err
	}
	if err := s.repo.RemoveParticipant(ctx, trainingID, session.ProfileID); err != nil {
		return notFoundOr(err, "participation not found", "failed to leave training")
	}
	return nil
}

// Participants lists who joined a training. Admin only.
func (s *TrainingService) Participants(ctx context.Context, session *models.Session, trainingID string) ([]models.TrainingParticipant, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, trainingID); err != nil {
		return nil, notFoundOr(err, "training not found", "failed to load training")
	}
	participants, err := s.repo.ListParticipants(ctx, trainingID)
	if err != nil {
		return nil, internalError(err, "failed to list participants")
	}
	return participants, nil
}

// MarkAttendance records whether a volunteer attended.
func (s *TrainingService) MarkAttendance(ctx context.Context, session *models.Session, trainingID, volunteerID string, req dto.AttendanceRequest) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if err := s.repo.MarkAttendance(ctx, trainingID, volunteerID, req.Attended, models.NewDate(s.now())); err != nil {
		return notFoundOr(err, "participation not found", "failed to record attendance")
	}
	s.invalidate(ctx)
	return nil
}

// UploadPoster stores the poster image of a training.
func (s *TrainingService) UploadPoster(ctx context.Context, session *models.Session, id string, upload Upload) (string, error) {
	if err := requireAdmin(session); err != nil {
		return "", err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return "", notFoundOr(err, "training not found", "failed to load training")
	}
	url, err := s.media.StorePoster(ctx, "training-"+id, upload)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdatePoster(ctx, id, url); err != nil {
		return "", notFoundOr(err, "training not found", "failed to save poster")
	}
	return url, nil
}

// Cancel notifies the participants and then deletes the training.
func (s *TrainingService) Cancel(ctx context.Context, session *models.Session, trainingID string) (*dto.CancelTrainingResponse, []string, error) {
	if err := requireAdmin(session); err != nil {
		return nil, nil, err
	}
	training, err := s.repo.FindByID(ctx, trainingID)
	if err != nil {
		return nil, nil, notFoundOr(err, "training not found", "failed to load training")
	}
	participants, err := s.repo.ListParticipants(ctx, trainingID)
	if err != nil {
		return nil, nil, internalError(err, "failed to list participants")
	}

	seen := make(map[string]struct{}, len(participants))
	batch := make([]models.Notification, 0, len(participants))
	for _, p := range participants {
		email := strings.ToLower(strings.TrimSpace(valueOr(p.VolunteerEmail, "")))
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		batch = append(batch, trainingCancelledMail(models.ProfileContact{ID: p.VolunteerID, FullName: valueOr(p.VolunteerName, ""), Email: email}, training))
	}
	var result models.DispatchResult
	if len(batch) > 0 && s.notifier != nil {
		result = s.notifier.Enqueue(ctx, batch)
	}

	if err := s.repo.Delete(ctx, trainingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "training not found")
		}
		return nil, nil, internalError(err, "failed to delete training")
	}
	writeAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     &session.UserID,
		Action:     models.AuditActionTrainingCancel,
		Resource:   "training",
		ResourceID: &trainingID,
	})
	s.invalidate(ctx)

	var warnings []string
	if w := dispatchWarning("training cancelled", result); w != "" {
		warnings = append(warnings, w)
	}
	return &dto.CancelTrainingResponse{
		TrainingID:         training.ID,
		Title:              training.Title,
		Notified:           result.Queued,
		NotificationStatus: result.Status(),
	}, warnings, nil
}

func (s *TrainingService) invalidate(ctx context.Context) {
	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}
}
