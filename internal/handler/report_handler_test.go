package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/middleware"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type reportServiceMock struct {
	stats       *models.AdminStats
	hit         bool
	generated   *service.GeneratedExport
	download    *service.ReportDownload
	downloadErr error
	format      string
}

func (m *reportServiceMock) AdminStats(ctx context.Context, session *models.Session) (*models.AdminStats, bool, error) {
	return m.stats, m.hit, nil
}

func (m *reportServiceMock) VolunteerStats(ctx context.Context, session *models.Session) (*models.VolunteerStats, error) {
	return &models.VolunteerStats{}, nil
}

func (m *reportServiceMock) ExportVolunteers(ctx context.Context, session *models.Session, format string) (*service.GeneratedExport, error) {
	m.format = format
	return m.generated, nil
}

func (m *reportServiceMock) ExportEventVolunteers(ctx context.Context, session *models.Session, eventID, format string) (*service.GeneratedExport, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
}

func (m *reportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error) {
	return m.download, m.downloadErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func withSession(c *gin.Context, role models.UserRole) {
	middleware.SetSession(c, &models.Session{UserID: "user-1", ProfileID: "profile-1", Role: role})
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestReportHandlerAdminStatsFlagsCacheHit(t *testing.T) {
	h := NewReportHandler(&reportServiceMock{stats: &models.AdminStats{TotalVolunteers: 4}, hit: true})
	c, w := newGinContext(http.MethodGet, "/api/v1/admin/stats", nil)
	withSession(c, models.RoleAdmin)

	h.AdminStats(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, string(env.Data), `"totalVolunteers":4`)
}

func TestReportHandlerAdminStatsRequiresSession(t *testing.T) {
	h := NewReportHandler(&reportServiceMock{})
	c, w := newGinContext(http.MethodGet, "/api/v1/admin/stats", nil)

	h.AdminStats(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandlerExportReturnsLink(t *testing.T) {
	expires := time.Now().Add(time.Hour).UTC()
	mock := &reportServiceMock{generated: &service.GeneratedExport{
		Record: models.ExportRecord{
			ID:        "exp-1",
			Format:    models.ExportFormatCSV,
			FileName:  "benevoles_20260101.csv",
			RowCount:  2,
			ExpiresAt: expires,
		},
		Payload:     []byte("a,b\n"),
		DownloadURL: "/exports/download?token=abc",
	}}
	h := NewReportHandler(mock)
	c, w := newGinContext(http.MethodGet, "/api/v1/admin/exports/volunteers?format=csv", nil)
	withSession(c, models.RoleAdmin)

	h.ExportVolunteers(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mock.format)
	env := decodeEnvelope(t, w)
	assert.Contains(t, string(env.Data), `"downloadUrl":"/exports/download?token=abc"`)
	assert.Contains(t, string(env.Data), `"rows":2`)
}

func TestReportHandlerExportStreamsWhenRequested(t *testing.T) {
	h := NewReportHandler(&reportServiceMock{generated: &service.GeneratedExport{
		Record:  models.ExportRecord{Format: models.ExportFormatCSV, FileName: "benevoles.csv"},
		Payload: []byte("a,b\n1,2\n"),
	}})
	c, w := newGinContext(http.MethodGet, "/api/v1/admin/exports/volunteers?download=1", nil)
	withSession(c, models.RoleAdmin)

	h.ExportVolunteers(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a,b\n1,2\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "benevoles.csv")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}

func TestReportHandlerEventExportNotFound(t *testing.T) {
	h := NewReportHandler(&reportServiceMock{})
	c, w := newGinContext(http.MethodGet, "/api/v1/admin/exports/events/missing/volunteers", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	withSession(c, models.RoleAdmin)

	h.ExportEventVolunteers(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	h := NewReportHandler(&reportServiceMock{download: &service.ReportDownload{
		File:        file,
		Filename:    "export.csv",
		ContentType: models.ExportFormatCSV.ContentType(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}})
	c, w := newGinContext(http.MethodGet, "/exports/download?token=t", nil)

	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "data", w.Body.String())
	assert.Equal(t, `attachment; filename="export.csv"`, w.Header().Get("Content-Disposition"))
}

func TestReportHandlerDownloadErrors(t *testing.T) {
	h := NewReportHandler(&reportServiceMock{downloadErr: appErrors.Clone(appErrors.ErrForbidden, "invalid token")})

	c, w := newGinContext(http.MethodGet, "/exports/download", nil)
	h.Download(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/exports/download?token=forged", nil)
	h.Download(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
