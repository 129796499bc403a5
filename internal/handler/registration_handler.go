package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/middleware"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

type registrationService interface {
	Register(ctx context.Context, session *models.Session, eventID string) (*models.Assignment, error)
	Withdraw(ctx context.Context, session *models.Session, eventID string) error
	Assign(ctx context.Context, session *models.Session, eventID string, req dto.AssignVolunteerRequest) (*models.Assignment, error)
	Validate(ctx context.Context, session *models.Session, assignmentID string) (*dto.RegistrationTransitionResponse, error)
	Reject(ctx context.Context, session *models.Session, assignmentID string) (*dto.RegistrationTransitionResponse, error)
	Complete(ctx context.Context, session *models.Session, assignmentID string, req dto.CompleteRegistrationRequest) (*models.Assignment, error)
	ListMine(ctx context.Context, session *models.Session) ([]models.AssignmentDetail, error)
	ListPending(ctx context.Context, session *models.Session) ([]models.AssignmentDetail, error)
	ListForEvent(ctx context.Context, session *models.Session, eventID string) ([]models.AssignmentDetail, error)
	CancelEvent(ctx context.Context, session *models.Session, eventID string) (*dto.CancelEventResponse, []string, error)
}

// RegistrationHandler drives the registration workflow.
type RegistrationHandler struct {
	service registrationService
}

// NewRegistrationHandler constructs the handler.
func NewRegistrationHandler(svc registrationService) *RegistrationHandler {
	return &RegistrationHandler{service: svc}
}

// Register godoc
// @Summary Register to an event
// @Tags Registrations
// @Produce json
// @Param id path string true "Event ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /events/{id}/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	assignment, err := h.service.Register(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Withdraw godoc
// @Summary Withdraw from an event
// @Tags Registrations
// @Param id path string true "Event ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /events/{id}/register [delete]
func (h *RegistrationHandler) Withdraw(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	if err := h.service.Withdraw(c.Request.Context(), session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMine godoc
// @Summary My registrations
// @Tags Registrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/registrations [get]
func (h *RegistrationHandler) ListMine(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	rows, err := h.service.ListMine(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ListPending godoc
// @Summary Registrations awaiting validation
// @Tags Registrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/pending [get]
func (h *RegistrationHandler) ListPending(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	rows, err := h.service.ListPending(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ListForEvent godoc
// @Summary Registrations of an event
// @Tags Registrations
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /admin/events/{id}/registrations [get]
func (h *RegistrationHandler) ListForEvent(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	rows, err := h.service.ListForEvent(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Assign godoc
// @Summary Assign a volunteer directly
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.AssignVolunteerRequest true "Volunteer"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/events/{id}/assign [post]
func (h *RegistrationHandler) Assign(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.AssignVolunteerRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	assignment, err := h.service.Assign(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Validate godoc
// @Summary Confirm a pending registration
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/registrations/{id}/validate [post]
func (h *RegistrationHandler) Validate(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	res, err := h.service.Validate(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Reject godoc
// @Summary Refuse a pending registration
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/registrations/{id}/reject [post]
func (h *RegistrationHandler) Reject(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	res, err := h.service.Reject(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Complete godoc
// @Summary Mark a registration completed and log hours
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body dto.CompleteRegistrationRequest true "Hours"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/registrations/{id}/complete [post]
func (h *RegistrationHandler) Complete(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.CompleteRegistrationRequest
	if !bindJSON(c, &req, "invalid completion payload") {
		return
	}
	assignment, err := h.service.Complete(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// CancelEvent godoc
// @Summary Cancel an event and notify its volunteers
// @Description Notification failures are reported in meta.warnings and meta.notification.
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/events/{id}/cancel [post]
func (h *RegistrationHandler) CancelEvent(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	res, warnings, err := h.service.CancelEvent(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetNotificationStatus(c, res.NotificationStatus)
	respond(c, http.StatusOK, res, nil, warnings)
}
