package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type eventStore interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	SetStatus(ctx context.Context, id string, from, to models.EventStatus) error
	UpdatePoster(ctx context.Context, id, url string) error
	Delete(ctx context.Context, id string) error
}

type posterStore interface {
	StorePoster(ctx context.Context, ownerID string, upload Upload) (string, error)
}

// EventService manages the event catalogue.
type EventService struct {
	repo      eventStore
	media     posterStore
	stats     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventService constructs an EventService.
func NewEventService(repo eventStore, media posterStore, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *EventService {
	return &EventService{
		repo:      repo,
		media:     media,
		stats:     stats,
		validator: newValidator(validate),
		logger:    newLogger(logger),
		now:       time.Now,
	}
}

// List returns events visible to the caller. Volunteers only see public, non-cancelled events.
func (s *EventService) List(ctx context.Context, session *models.Session, query dto.EventListQuery) ([]models.EventView, *models.Pagination, error) {
	if err := requireSession(session); err != nil {
		return nil, nil, err
	}
	filter := models.EventFilter{Page: query.Page, PageSize: query.PageSize}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status := models.EventStatus(raw)
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
		}
		filter.Status = &status
	}
	if query.Upcoming {
		today := models.NewDate(s.now())
		filter.From = &today
	}
	if !session.IsAdmin() {
		filter.PublicOnly = true
		filter.ExcludeCancelled = true
	}
	return s.list(ctx, filter)
}

// ListPublic returns upcoming public events for anonymous visitors.
func (s *EventService) ListPublic(ctx context.Context, page, pageSize int) ([]models.EventView, *models.Pagination, error) {
	today := models.NewDate(s.now())
	return s.list(ctx, models.EventFilter{PublicOnly: true, ExcludeCancelled: true, From: &today, Page: page, PageSize: pageSize})
}

func (s *EventService) list(ctx context.Context, filter models.EventFilter) ([]models.EventView, *models.Pagination, error) {
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list events")
	}
	views := make([]models.EventView, 0, len(events))
	for _, e := range events {
		views = append(views, models.NewEventView(e))
	}
	return views, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one event. Private events are hidden from volunteers.
func (s *EventService) Get(ctx context.Context, session *models.Session, id string) (*models.EventView, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "event not found", "failed to load event")
	}
	if !session.IsAdmin() && !event.IsPublic {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	view := models.NewEventView(*event)
	return &view, nil
}

// Create adds an event in pending status.
func (s *EventService) Create(ctx context.Context, session *models.Session, req dto.EventRequest) (*models.EventView, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	event.Status = models.EventStatusPending
	event.CreatedBy = &session.UserID
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, internalError(err, "failed to create event")
	}
	s.invalidate(ctx)
	view := models.NewEventView(*event)
	return &view, nil
}

// Update replaces the editable fields of an event.
func (s *EventService) Update(ctx context.Context, session *models.Session, id string, req dto.EventRequest) (*models.EventView, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "event not found", "failed to load event")
	}
	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	event.ID = current.ID
	event.Status = current.Status
	event.PosterURL = current.PosterURL
	event.CreatedBy = current.CreatedBy
	event.CreatedAt = current.CreatedAt
	event.CancelledAt = current.CancelledAt
	event.RegisteredCount = current.RegisteredCount
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, notFoundOr(err, "event not found", "failed to update event")
	}
	view := models.NewEventView(*event)
	return &view, nil
}

func (s *EventService) buildEvent(req dto.EventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid event payload")
	}
	eventType := models.EventType(req.EventType)
	if eventType == models.EventTypeOnline && strings.TrimSpace(req.OnlineLink) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "online events require an online link")
	}
	day, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, validationError(err, "invalid event date")
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	return &models.Event{
		Title:         strings.TrimSpace(req.Title),
		Description:   nullIfEmpty(req.Description),
		Category:      nullIfEmpty(req.Category),
		EventType:     eventType,
		Location:      nullIfEmpty(req.Location),
		OnlineLink:    nullIfEmpty(req.OnlineLink),
		Date:          day,
		Time:          nullIfEmpty(req.Time),
		DurationHours: req.DurationHours,
		MaxVolunteers: req.MaxVolunteers,
		IsPublic:      isPublic,
	}, nil
}

// SetStatus moves an event along pending, in_progress and completed.
func (s *EventService) SetStatus(ctx context.Context, session *models.Session, id string, req dto.EventStatusRequest) (*models.EventView, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	next := models.EventStatus(req.Status)
	if next == models.EventStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "use the cancel action to cancel an event")
	}
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "event not found", "failed to load event")
	}
	if !event.Status.CanMoveTo(next) {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot move event from %s to %s", event.Status, next))
	}
	if err := s.repo.SetStatus(ctx, id, event.Status, next); err != nil {
		return nil, conflictOr(err, "event status changed concurrently", "failed to update event status")
	}
	event.Status = next
	s.invalidate(ctx)
	view := models.NewEventView(*event)
	return &view, nil
}

// Delete removes an event and its registrations.
func (s *EventService) Delete(ctx context.Context, session *models.Session, id string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "event not found", "failed to delete event")
	}
	s.invalidate(ctx)
	return nil
}

// UploadPoster stores the poster image of an event.
func (s *EventService) UploadPoster(ctx context.Context, session *models.Session, id string, upload Upload) (string, error) {
	if err := requireAdmin(session); err != nil {
		return "", err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return "", notFoundOr(err, "event not found", "failed to load event")
	}
	url, err := s.media.StorePoster(ctx, id, upload)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdatePoster(ctx, id, url); err != nil {
		return "", notFoundOr(err, "event not found", "failed to save poster")
	}
	return url, nil
}

func (s *EventService) invalidate(ctx context.Context) {
	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}
}

func pagination(page, pageSize, total int) *models.Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
