package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

type eventService interface {
	List(ctx context.Context, session *models.Session, query dto.EventListQuery) ([]models.EventView, *models.Pagination, error)
	ListPublic(ctx context.Context, page, pageSize int) ([]models.EventView, *models.Pagination, error)
	Get(ctx context.Context, session *models.Session, id string) (*models.EventView, error)
	Create(ctx context.Context, session *models.Session, req dto.EventRequest) (*models.EventView, error)
	Update(ctx context.Context, session *models.Session, id string, req dto.EventRequest) (*models.EventView, error)
	SetStatus(ctx context.Context, session *models.Session, id string, req dto.EventStatusRequest) (*models.EventView, error)
	Delete(ctx context.Context, session *models.Session, id string) error
	UploadPoster(ctx context.Context, session *models.Session, id string, upload service.Upload) (string, error)
}

// EventHandler exposes event CRUD.
type EventHandler struct {
	service eventService
}

// NewEventHandler constructs the handler.
func NewEventHandler(svc eventService) *EventHandler {
	return &EventHandler{service: svc}
}

// ListPublic godoc
// @Summary Public upcoming events
// @Tags Events
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /events/public [get]
func (h *EventHandler) ListPublic(c *gin.Context) {
	events, pagination, err := h.service.ListPublic(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// List godoc
// @Summary List events
// @Description Volunteers only see public, non-cancelled events.
// @Tags Events
// @Produce json
// @Param status query string false "pending|in_progress|completed|cancelled"
// @Param upcoming query bool false "Only future events"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var query dto.EventListQuery
	if !bindQuery(c, &query) {
		return
	}
	events, pagination, err := h.service.List(c.Request.Context(), session, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Get godoc
// @Summary Event details
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	event, err := h.service.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.EventRequest true "Event"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/events [post]
func (h *EventHandler) Create(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.EventRequest
	if !bindJSON(c, &req, "invalid event payload") {
		return
	}
	event, err := h.service.Create(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.EventRequest true "Event"
// @Success 200 {object} response.Envelope
// @Router /admin/events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.EventRequest
	if !bindJSON(c, &req, "invalid event payload") {
		return
	}
	event, err := h.service.Update(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// SetStatus godoc
// @Summary Move an event through its lifecycle
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.EventStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/events/{id}/status [patch]
func (h *EventHandler) SetStatus(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.EventStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	event, err := h.service.SetStatus(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete an event
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204
// @Router /admin/events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadPoster godoc
// @Summary Upload an event poster
// @Tags Events
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Event ID"
// @Param file formData file true "Image up to 10 MiB"
// @Success 200 {object} response.Envelope
// @Router /admin/events/{id}/poster [post]
func (h *EventHandler) UploadPoster(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	upload, closeFn, ok := uploadFromForm(c, "file")
	if !ok {
		return
	}
	defer closeFn()
	url, err := h.service.UploadPoster(c.Request.Context(), session, c.Param("id"), upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.UploadResponse{URL: url}, nil)
}
