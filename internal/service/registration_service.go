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

const activeAssignmentIndex = "task_assignments_active_uniq"

type registrationStore interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	FindActive(ctx context.Context, volunteerID, eventID string) (*models.Assignment, error)
	ExistsActive(ctx context.Context, volunteerID, eventID string) (bool, error)
	CountActive(ctx context.Context, eventID string) (int, error)
	CountPending(ctx context.Context) (int, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Transition(ctx context.Context, id string, from, to models.EventStatus) error
	Complete(ctx context.Context, id string, hours float64, notes *string) error
	DeleteWithdrawable(ctx context.Context, volunteerID, eventID string) error
	ListByVolunteer(ctx context.Context, volunteerID string) ([]models.AssignmentDetail, error)
	ListPending(ctx context.Context) ([]models.AssignmentDetail, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.AssignmentDetail, error)
	NotifiableContacts(ctx context.Context, eventID string, statuses []models.EventStatus) ([]models.ProfileContact, error)
}

type registrationEventStore interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Cancel(ctx context.Context, id string, at time.Time) error
}

type profileFinder interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// RegistrationConfig tunes registration rules.
type RegistrationConfig struct {
	EnforceCapacity bool
}

// RegistrationService runs the volunteer registration lifecycle and event cancellation.
type RegistrationService struct {
	repo      registrationStore
	events    registrationEventStore
	profiles  profileFinder
	notifier  Notifier
	stats     statsInvalidator
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	cfg       RegistrationConfig
	now       func() time.Time
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(repo registrationStore, events registrationEventStore, profiles profileFinder, notifier Notifier, stats statsInvalidator, audit auditWriter, validate *validator.Validate, logger *zap.Logger, cfg RegistrationConfig) *RegistrationService {
	return &RegistrationService{
		repo:      repo,
		events:    events,
		profiles:  profiles,
		notifier:  notifier,
		stats:     stats,
		audit:     audit,
		validator: newValidator(validate),
		logger:    newLogger(logger),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Register signs the calling volunteer up for an event. The registration starts pending.
func (s *RegistrationService) Register(ctx context.Context, session *models.Session, eventID string) (*models.Assignment, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByID(ctx, session.ProfileID)
	if err != nil {
		return nil, notFoundOr(err, "profile not found", "failed to load profile")
	}
	if err := RequireActiveProfile(profile); err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, notFoundOr(err, "event not found", "failed to load event")
	}
	if !event.Status.OpenForRegistration() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "event is not open for registration")
	}

	exists, err := s.repo.ExistsActive(ctx, profile.ID, eventID)
	if err != nil {
		return nil, internalError(err, "failed to check registration")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyRegistered, "already registered")
	}
	if err := s.checkCapacity(ctx, event); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{EventID: eventID, VolunteerID: profile.ID, Status: models.EventStatusPending}
	if err := s.create(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Assign registers a volunteer directly as confirmed. Admin only.
func (s *RegistrationService) Assign(ctx context.Context, session *models.Session, eventID string, req dto.AssignVolunteerRequest) (*models.Assignment, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, notFoundOr(err, "event not found", "failed to load event")
	}
	if !event.Status.OpenForRegistration() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "event is not open for registration")
	}
	if _, err := s.profiles.FindByID(ctx, req.VolunteerID); err != nil {
		return nil, notFoundOr(err, "volunteer not found", "failed to load volunteer")
	}
	exists, err := s.repo.ExistsActive(ctx, req.VolunteerID, eventID)
	if err != nil {
		return nil, internalError(err, "failed to check registration")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyRegistered, "volunteer already registered")
	}
	if err := s.checkCapacity(ctx, event); err != nil {
		return nil, err
	}
	assignment := &models.Assignment{
		EventID:     eventID,
		VolunteerID: req.VolunteerID,
		Status:      models.EventStatusInProgress,
		AssignedBy:  &session.UserID,
		Notes:       nullIfEmpty(req.Notes),
	}
	if err := s.create(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *RegistrationService) checkCapacity(ctx context.Context, event *models.Event) error {
	if !s.cfg.EnforceCapacity {
		return nil
	}
	count, err := s.repo.CountActive(ctx, event.ID)
	if err != nil {
		return internalError(err, "failed to count registrations")
	}
	if count >= event.MaxVolunteers {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "event is full")
	}
	return nil
}

func (s *RegistrationService) create(ctx context.Context, assignment *models.Assignment) error {
	if err := s.repo.Create(ctx, assignment); err != nil {
		if database.IsUniqueViolation(err, activeAssignmentIndex) {
			return appErrors.Clone(appErrors.ErrAlreadyRegistered, "already registered")
		}
		return internalError(err, "failed to create registration")
	}
	s.invalidate(ctx)
	return nil
}

// Validate confirms a pending registration.
func (s *RegistrationService) Validate(ctx context.Context, session *models.Session, assignmentID string) (*dto.RegistrationTransitionResponse, error) {
	return s.transition(ctx, session, assignmentID, models.EventStatusInProgress)
}

// Reject refuses a pending registration.
func (s *RegistrationService) Reject(ctx context.Context, session *models.Session, assignmentID string) (*dto.RegistrationTransitionResponse, error) {
	return s.transition(ctx, session, assignmentID, models.EventStatusCancelled)
}

func (s *RegistrationService) transition(ctx context.Context, session *models.Session, assignmentID string, to models.EventStatus) (*dto.RegistrationTransitionResponse, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if err := s.repo.Transition(ctx, assignmentID, models.EventStatusPending, to); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, internalError(err, "failed to update registration")
		}
		if _, findErr := s.repo.FindByID(ctx, assignmentID); findErr != nil {
			return nil, notFoundOr(findErr, "registration not found", "failed to load registration")
		}
		return nil, appErrors.Clone(appErrors.ErrConflict, "registration is not pending")
	}
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, notFoundOr(err, "registration not found", "failed to load registration")
	}
	writeAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     &session.UserID,
		Action:     models.AuditActionRegistrationMove,
		Resource:   "registration",
		ResourceID: &assignmentID,
		NewValues:  []byte(`{"status":"` + string(to) + `"}`),
	})
	s.invalidate(ctx)

	pending, err := s.repo.CountPending(ctx)
	if err != nil {
		s.logger.Warn("failed to count pending registrations", zap.Error(err))
	}
	return &dto.RegistrationTransitionResponse{Assignment: *assignment, PendingCount: pending}, nil
}

// Complete closes a confirmed registration and credits the hours to the volunteer.
func (s *RegistrationService) Complete(ctx context.Context, session *models.Session, assignmentID string, req dto.CompleteRegistrationRequest) (*models.Assignment, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid completion payload")
	}
	if err := s.repo.Complete(ctx, assignmentID, req.Hours, nullIfEmpty(req.Notes)); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, internalError(err, "failed to complete registration")
		}
		if _, findErr := s.repo.FindByID(ctx, assignmentID); findErr != nil {
			return nil, notFoundOr(findErr, "registration not found", "failed to load registration")
		}
		return nil, appErrors.Clone(appErrors.ErrConflict, "only confirmed registrations can be completed")
	}
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, notFoundOr(err, "registration not found", "failed to load registration")
	}
	s.invalidate(ctx)
	return assignment, nil
}

// Withdraw deletes the caller's pending or confirmed registration for an event.
func (s *RegistrationService) Withdraw(ctx context.Context, session *models.Session, eventID string) error {
	if err := requireProfile(session); err != nil {
		return err
	}
	current, err := s.repo.FindActive(ctx, session.ProfileID, eventID)
	if err != nil {
		return notFoundOr(err, "registration not found", "failed to load registration")
	}
	if current.Status != models.EventStatusPending && current.Status != models.EventStatusInProgress {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "registration can no longer be withdrawn")
	}
	if err := s.repo.DeleteWithdrawable(ctx, session.ProfileID, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "registration can no longer be withdrawn")
		}
		return internalError(err, "failed to withdraw registration")
	}
	s.invalidate(ctx)
	return nil
}

// ListMine returns the caller's registrations with their events. Orphans are dropped.
func (s *RegistrationService) ListMine(ctx context.Context, session *models.Session) ([]models.AssignmentDetail, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByVolunteer(ctx, session.ProfileID)
	if err != nil {
		return nil, internalError(err, "failed to list registrations")
	}
	out := make([]models.AssignmentDetail, 0, len(rows))
	for _, row := range rows {
		if row.HasEvent() {
			out = append(out, row)
		}
	}
	return out, nil
}

// ListPending returns registrations awaiting validation. Rows with a missing side are dropped.
func (s *RegistrationService) ListPending(ctx context.Context, session *models.Session) ([]models.AssignmentDetail, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list pending registrations")
	}
	out := make([]models.AssignmentDetail, 0, len(rows))
	for _, row := range rows {
		if row.HasEvent() && row.HasVolunteer() {
			out = append(out, row)
		}
	}
	return out, nil
}

// ListForEvent returns the registrations of an event with volunteer details.
func (s *RegistrationService) ListForEvent(ctx context.Context, session *models.Session, eventID string) ([]models.AssignmentDetail, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, notFoundOr(err, "event not found", "failed to load event")
	}
	rows, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, internalError(err, "failed to list event registrations")
	}
	out := make([]models.AssignmentDetail, 0, len(rows))
	for _, row := range rows {
		if row.HasVolunteer() {
			out = append(out, row)
		}
	}
	return out, nil
}

// CancelEvent cancels an event and emails every registered volunteer once.
// Calling it again keeps the event cancelled and sends another batch.
func (s *RegistrationService) CancelEvent(ctx context.Context, session *models.Session, eventID string) (*dto.CancelEventResponse, []string, error) {
	if err := requireAdmin(session); err != nil {
		return nil, nil, err
	}
	if err := s.events.Cancel(ctx, eventID, s.now().UTC()); err != nil {
		return nil, nil, notFoundOr(err, "event not found", "failed to cancel event")
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, nil, notFoundOr(err, "event not found", "failed to load event")
	}
	writeAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     &session.UserID,
		Action:     models.AuditActionEventCancel,
		Resource:   "event",
		ResourceID: &eventID,
	})
	s.invalidate(ctx)

	resp := &dto.CancelEventResponse{Event: models.NewEventView(*event), NotificationStatus: models.DispatchNone}
	var warnings []string

	contacts, err := s.repo.NotifiableContacts(ctx, eventID, models.ActiveAssignmentStatuses)
	if err != nil {
		s.logger.Warn("failed to resolve cancellation recipients", zap.String("event_id", eventID), zap.Error(err))
		resp.NotificationStatus = models.DispatchFailed
		return resp, append(warnings, "event cancelled but volunteers could not be notified"), nil
	}
	batch := make([]models.Notification, 0, len(contacts))
	seen := make(map[string]struct{}, len(contacts))
	for _, c := range contacts {
		key := strings.ToLower(strings.TrimSpace(c.Email))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		batch = append(batch, eventCancelledMail(c, event))
	}
	if len(batch) == 0 || s.notifier == nil {
		return resp, nil, nil
	}
	result := s.notifier.Enqueue(ctx, batch)
	resp.Notified = result.Queued
	resp.NotificationStatus = result.Status()
	if w := dispatchWarning("event cancelled", result); w != "" {
		warnings = append(warnings, w)
	}
	return resp, warnings, nil
}

func (s *RegistrationService) invalidate(ctx context.Context) {
	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}
}
