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

type attestationService interface {
	Request(ctx context.Context, session *models.Session, req dto.AttestationCreateRequest) (*models.AttestationRequest, error)
	ListMine(ctx context.Context, session *models.Session) ([]models.AttestationRequest, error)
	List(ctx context.Context, session *models.Session, status string) ([]models.AttestationRequest, error)
	Process(ctx context.Context, session *models.Session, id string, req dto.AttestationProcessRequest) (*models.AttestationRequest, []string, error)
	Certificates(ctx context.Context, session *models.Session) ([]models.Certificate, error)
	IssueCertificate(ctx context.Context, session *models.Session, req dto.IssueCertificateRequest) (*models.Certificate, error)
}

// AttestationHandler serves attestation requests and certificates.
type AttestationHandler struct {
	service attestationService
}

// NewAttestationHandler constructs the handler.
func NewAttestationHandler(svc attestationService) *AttestationHandler {
	return &AttestationHandler{service: svc}
}

// Request godoc
// @Summary Request an attestation
// @Tags Attestations
// @Accept json
// @Produce json
// @Param payload body dto.AttestationCreateRequest true "Request"
// @Success 201 {object} response.Envelope
// @Router /attestations [post]
func (h *AttestationHandler) Request(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.AttestationCreateRequest
	if !bindJSON(c, &req, "invalid attestation payload") {
		return
	}
	created, err := h.service.Request(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// ListMine godoc
// @Summary My attestation requests
// @Tags Attestations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attestations [get]
func (h *AttestationHandler) ListMine(c *gin.Context) {
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

// List godoc
// @Summary All attestation requests
// @Tags Attestations
// @Produce json
// @Param status query string false "pending|approved|rejected"
// @Success 200 {object} response.Envelope
// @Router /admin/attestations [get]
func (h *AttestationHandler) List(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	rows, err := h.service.List(c.Request.Context(), session, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Process godoc
// @Summary Approve or reject an attestation request
// @Tags Attestations
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.AttestationProcessRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/attestations/{id}/process [post]
func (h *AttestationHandler) Process(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.AttestationProcessRequest
	if !bindJSON(c, &req, "invalid decision payload") {
		return
	}
	processed, warnings, err := h.service.Process(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetNotificationStatus(c, notificationOutcome(warnings))
	respond(c, http.StatusOK, processed, nil, warnings)
}

// Certificates godoc
// @Summary My certificates
// @Tags Attestations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /certificates [get]
func (h *AttestationHandler) Certificates(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	rows, err := h.service.Certificates(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// IssueCertificate godoc
// @Summary Issue a certificate
// @Tags Attestations
// @Accept json
// @Produce json
// @Param payload body dto.IssueCertificateRequest true "Certificate"
// @Success 201 {object} response.Envelope
// @Router /admin/certificates [post]
func (h *AttestationHandler) IssueCertificate(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.IssueCertificateRequest
	if !bindJSON(c, &req, "invalid certificate payload") {
		return
	}
	cert, err := h.service.IssueCertificate(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cert)
}
