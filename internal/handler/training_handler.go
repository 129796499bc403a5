package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/middleware"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

type trainingService interface {
	List(ctx context.Context, session *models.Session, upcoming bool, page, pageSize int) ([]models.TrainingView, *models.Pagination, error)
	Get(ctx context.Context, session *models.Session, id string) (*models.Training, error)
	Create(ctx context.Context, session *models.Session, req dto.TrainingRequest) (*models.Training, error)
	Update(ctx context.Context, session *models.Session, id string, req dto.TrainingRequest) (*models.Training, error)
	Delete(ctx context.Context, session *models.Session, id string) error
	Join(ctx context.Context, session *models.Session, trainingID string) (*models.TrainingParticipant, error)
	Leave(ctx context.Context, session *models.Session, trainingID string) error
	Participants(ctx context.Context, session *models.Session, trainingID string) ([]models.TrainingParticipant, error)
	MarkAttendance(ctx context.Context, session *models.Session, trainingID, volunteerID string, req dto.AttendanceRequest) error
	UploadPoster(ctx context.Context, session *models.Session, id string, upload service.Upload) (string, error)
	Cancel(ctx context.Context, session *models.Session, trainingID string) (*dto.CancelTrainingResponse, []string, error)
}

// TrainingHandler exposes trainings and their participants.
type TrainingHandler struct {
	service trainingService
}

// NewTrainingHandler constructs the handler.
func NewTrainingHandler(svc trainingService) *TrainingHandler {
	return &TrainingHandler{service: svc}
}

// List godoc
// @Summary List trainings
// @Tags Trainings
// @Produce json
// @Param upcoming query bool false "Only future trainings"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /trainings [get]
func (h *TrainingHandler) List(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	upcoming := c.Query("upcoming") == "true"
	trainings, pagination, err := h.service.List(c.Request.Context(), session, upcoming, queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trainings, pagination)
}

// Get godoc
// @Summary Training details
// @Tags Trainings
// @Produce json
// @Param id path string true "Training ID"
// @Success 200 {object} response.Envelope
// @Router /trainings/{id} [get]
func (h *TrainingHandler) Get(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	training, err := h.service.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, training, nil)
}

// Create godoc
// @Summary Create a training
// @Tags Trainings
// @Accept json
// @Produce json
// @Param payload body dto.TrainingRequest true "Training"
// @Success 201 {object} response.Envelope
// @Router /admin/trainings [post]
func (h *TrainingHandler) Create(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.TrainingRequest
	if !bindJSON(c, &req, "invalid training payload") {
		return
	}
	training, err := h.service.Create(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, training)
}

// Update godoc
// @Summary Update a training
// @Tags Trainings
// @Accept json
// @Produce json
// @Param id path string true "Training ID"
// @Param payload body dto.TrainingRequest true "Training"
// @Success 200 {object} response.Envelope
// @Router /admin/trainings/{id} [put]
func (h *TrainingHandler) Update(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.TrainingRequest
	if !bindJSON(c, &req, "invalid training payload") {
		return
	}
	training, err := h.service.Update(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, training, nil)
}

// Delete godoc
// @Summary Delete a training without notifying participants
// @Tags Trainings
// @Param id path string true "Training ID"
// @Success 204
// @Router /admin/trainings/{id} [delete]
func (h *TrainingHandler) Delete(c *gin.Context) {
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

// Join godoc
// @Summary Join a training
// @Tags Trainings
// @Produce json
// @Param id path string true "Training ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /trainings/{id}/join [post]
func (h *TrainingHandler) Join(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	participant, err := h.service.Join(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, participant)
}

// Leave godoc
// @Summary Leave a training
// @Tags Trainings
// @Param id path string true "Training ID"
// @Success 204
// @Router /trainings/{id}/join [delete]
func (h *TrainingHandler) Leave(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	if err := h.service.Leave(c.Request.Context(), session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Participants godoc
// @Summary Training participants
// @Tags Trainings
// @Produce json
// @Param id path string true "Training ID"
// @Success 200 {object} response.Envelope
// @Router /admin/trainings/{id}/participants [get]
func (h *TrainingHandler) Participants(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	rows, err := h.service.Participants(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// MarkAttendance godoc
// @Summary Record attendance
// @Tags Trainings
// @Accept json
// @Param id path string true "Training ID"
// @Param volunteerId path string true "Profile ID"
// @Param payload body dto.AttendanceRequest true "Attendance"
// @Success 204
// @Router /admin/trainings/{id}/participants/{volunteerId} [patch]
func (h *TrainingHandler) MarkAttendance(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.AttendanceRequest
	if !bindJSON(c, &req, "invalid attendance payload") {
		return
	}
	if err := h.service.MarkAttendance(c.Request.Context(), session, c.Param("id"), c.Param("volunteerId"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadPoster godoc
// @Summary Upload a training poster
// @Tags Trainings
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Training ID"
// @Param file formData file true "Image up to 10 MiB"
// @Success 200 {object} response.Envelope
// @Router /admin/trainings/{id}/poster [post]
func (h *TrainingHandler) UploadPoster(c *gin.Context) {
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

// Cancel godoc
// @Summary Cancel a training and notify participants
// @Description The training is deleted once the notifications are queued.
// @Tags Trainings
// @Produce json
// @Param id path string true "Training ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/trainings/{id}/cancel [post]
func (h *TrainingHandler) Cancel(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	res, warnings, err := h.service.Cancel(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetNotificationStatus(c, res.NotificationStatus)
	respond(c, http.StatusOK, res, nil, warnings)
}
