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

type profileService interface {
	Get(ctx context.Context, session *models.Session) (*models.Profile, error)
	GetByID(ctx context.Context, session *models.Session, id string) (*models.Profile, error)
	List(ctx context.Context, session *models.Session, query dto.ProfileListQuery) ([]models.Profile, *models.Pagination, error)
	Update(ctx context.Context, session *models.Session, req dto.ProfileUpdateRequest) (*models.Profile, error)
	SubmitOnboarding(ctx context.Context, session *models.Session, req dto.OnboardingRequest) (*models.Profile, []string, error)
	CheckStatus(ctx context.Context, session *models.Session) (*dto.ProfileStatusResponse, error)
	ReplaceLanguages(ctx context.Context, session *models.Session, req dto.ReplaceLanguagesRequest) ([]models.VolunteerLanguage, error)
	UploadAvatar(ctx context.Context, session *models.Session, upload service.Upload) (string, error)
}

type approvalService interface {
	ListPending(ctx context.Context, session *models.Session) ([]models.Profile, error)
	Approve(ctx context.Context, session *models.Session, profileID string) (*models.Profile, []string, error)
	Reject(ctx context.Context, session *models.Session, profileID, reason string) (*models.Profile, []string, error)
}

// ProfileHandler serves the caller's own profile and the admin volunteer directory.
type ProfileHandler struct {
	profiles  profileService
	approvals approvalService
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(profiles profileService, approvals approvalService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, approvals: approvals}
}

// Get godoc
// @Summary Current profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	profile, err := h.profiles.Get(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Update godoc
// @Summary Edit contact details, bio and skills
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body dto.ProfileUpdateRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Router /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.ProfileUpdateRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}
	profile, err := h.profiles.Update(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// SubmitOnboarding godoc
// @Summary Submit the onboarding form
// @Description Moves the profile to pending and alerts the administrators.
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body dto.OnboardingRequest true "Onboarding form"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /profile/onboarding [post]
func (h *ProfileHandler) SubmitOnboarding(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.OnboardingRequest
	if !bindJSON(c, &req, "invalid onboarding payload") {
		return
	}
	profile, warnings, err := h.profiles.SubmitOnboarding(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetNotificationStatus(c, notificationOutcome(warnings))
	respond(c, http.StatusOK, profile, nil, warnings)
}

// Status godoc
// @Summary Re-check the approval status
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile/status [get]
func (h *ProfileHandler) Status(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	status, err := h.profiles.CheckStatus(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// ReplaceLanguages godoc
// @Summary Replace spoken languages
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceLanguagesRequest true "Languages"
// @Success 200 {object} response.Envelope
// @Router /profile/languages [put]
func (h *ProfileHandler) ReplaceLanguages(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.ReplaceLanguagesRequest
	if !bindJSON(c, &req, "invalid languages payload") {
		return
	}
	langs, err := h.profiles.ReplaceLanguages(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, langs, nil)
}

// UploadAvatar godoc
// @Summary Upload the profile picture
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image up to 5 MiB"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /profile/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	upload, closeFn, ok := uploadFromForm(c, "file")
	if !ok {
		return
	}
	defer closeFn()
	url, err := h.profiles.UploadAvatar(c.Request.Context(), session, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.UploadResponse{URL: url}, nil)
}

// List godoc
// @Summary List volunteers
// @Tags Volunteers
// @Produce json
// @Param status query string false "pending|active|rejected|incomplete"
// @Param search query string false "Name or email"
// @Param governorate query string false "Governorate"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/volunteers [get]
func (h *ProfileHandler) List(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var query dto.ProfileListQuery
	if !bindQuery(c, &query) {
		return
	}
	profiles, pagination, err := h.profiles.List(c.Request.Context(), session, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, pagination)
}

// GetByID godoc
// @Summary Volunteer details
// @Tags Volunteers
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/volunteers/{id} [get]
func (h *ProfileHandler) GetByID(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	profile, err := h.profiles.GetByID(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// ListPending godoc
// @Summary Volunteers awaiting approval
// @Tags Volunteers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/volunteers/pending [get]
func (h *ProfileHandler) ListPending(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	profiles, err := h.approvals.ListPending(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, nil)
}

// Approve godoc
// @Summary Approve a pending volunteer
// @Tags Volunteers
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/volunteers/{id}/approve [post]
func (h *ProfileHandler) Approve(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	profile, warnings, err := h.approvals.Approve(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetNotificationStatus(c, notificationOutcome(warnings))
	respond(c, http.StatusOK, profile, nil, warnings)
}

// Reject godoc
// @Summary Reject a pending volunteer
// @Tags Volunteers
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param payload body dto.RejectProfileRequest true "Reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/volunteers/{id}/reject [post]
func (h *ProfileHandler) Reject(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.RejectProfileRequest
	if !bindJSON(c, &req, "invalid rejection payload") {
		return
	}
	profile, warnings, err := h.approvals.Reject(c.Request.Context(), session, c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetNotificationStatus(c, notificationOutcome(warnings))
	respond(c, http.StatusOK, profile, nil, warnings)
}
