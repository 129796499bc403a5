package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/middleware"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

type reportService interface {
	AdminStats(ctx context.Context, session *models.Session) (*models.AdminStats, bool, error)
	VolunteerStats(ctx context.Context, session *models.Session) (*models.VolunteerStats, error)
	ExportVolunteers(ctx context.Context, session *models.Session, format string) (*service.GeneratedExport, error)
	ExportEventVolunteers(ctx context.Context, session *models.Session, eventID, format string) (*service.GeneratedExport, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportHandler serves dashboard counters and exports.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// AdminStats godoc
// @Summary Platform statistics
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *ReportHandler) AdminStats(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	stats, hit, err := h.service.AdminStats(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	respond(c, http.StatusOK, stats, nil, nil)
}

// VolunteerStats godoc
// @Summary My statistics
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/stats [get]
func (h *ReportHandler) VolunteerStats(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	stats, err := h.service.VolunteerStats(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ExportVolunteers godoc
// @Summary Export all volunteers
// @Description Returns a signed download link, or the file itself with download=1.
// @Tags Reports
// @Produce json
// @Param format query string false "csv|pdf"
// @Param download query bool false "Stream the file"
// @Success 200 {object} response.Envelope
// @Router /admin/exports/volunteers [get]
func (h *ReportHandler) ExportVolunteers(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	generated, err := h.service.ExportVolunteers(c.Request.Context(), session, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.writeExport(c, generated)
}

// ExportEventVolunteers godoc
// @Summary Export the volunteers of an event
// @Tags Reports
// @Produce json
// @Param id path string true "Event ID"
// @Param format query string false "xlsx|csv"
// @Param download query bool false "Stream the file"
// @Success 200 {object} response.Envelope
// @Router /admin/exports/events/{id}/volunteers [get]
func (h *ReportHandler) ExportEventVolunteers(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	generated, err := h.service.ExportEventVolunteers(c.Request.Context(), session, c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.writeExport(c, generated)
}

func (h *ReportHandler) writeExport(c *gin.Context, generated *service.GeneratedExport) {
	record := generated.Record
	if c.Query("download") == "1" || c.Query("download") == "true" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", record.FileName))
		c.Header("Cache-Control", "no-store")
		c.DataFromReader(http.StatusOK, int64(len(generated.Payload)), record.Format.ContentType(), bytes.NewReader(generated.Payload), nil)
		return
	}
	response.JSON(c, http.StatusOK, dto.ExportResponse{
		Filename:    record.FileName,
		Format:      string(record.Format),
		Rows:        record.RowCount,
		DownloadURL: generated.DownloadURL,
		ExpiresAt:   record.ExpiresAt,
	}, nil)
}

// Download godoc
// @Summary Download a generated export
// @Tags Reports
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /exports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	info, err := result.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), result.ContentType, result.File, nil)
}
