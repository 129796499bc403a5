package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/logger"
)

type stubTokens map[string]*models.JWTClaims

func (s stubTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}

type stubProfiles map[string]*models.Profile

func (s stubProfiles) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	p, ok := s[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

type failingAudit struct{ calls int }

func (f *failingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.calls++
	return errors.New("db down")
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string                 `json:"code"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func sessionRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	tokens := stubTokens{
		"vol":   {UserID: "u-1", ProfileID: "p-1", Role: models.RoleVolunteer},
		"admin": {UserID: "u-2", ProfileID: "p-2", Role: models.RoleAdmin},
		"fresh": {UserID: "u-3", ProfileID: "p-3", Role: models.RoleVolunteer},
		"gone":  {UserID: "u-4", ProfileID: "p-4", Role: models.RoleVolunteer},
	}
	chain := append([]gin.HandlerFunc{JWT(tokens)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		session := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"profile": session.ProfileID, "log_user": c.GetString(logger.ContextUserIDKey)})
	})
	router.GET("/", chain...)
	return router
}

func serve(router *gin.Engine, token string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAttachesSession(t *testing.T) {
	router := sessionRouter()

	rec := serve(router, "vol")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"profile":"p-1","log_user":"u-1"}`, rec.Body.String())

	rec = serve(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	router := sessionRouter(RequireRoles(models.RoleAdmin))

	assert.Equal(t, http.StatusOK, serve(router, "admin").Code)
	rec := serve(router, "vol")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
}

func TestRequireActiveVolunteer(t *testing.T) {
	reason := "Dossier incomplet"
	profiles := stubProfiles{
		"p-1": completeProfile("p-1", models.ProfileStatusActive),
		"p-3": completeProfile("p-3", models.ProfileStatusRejected),
	}
	profiles["p-3"].RejectionReason = &reason
	router := sessionRouter(RequireActiveVolunteer(profiles))

	assert.Equal(t, http.StatusOK, serve(router, "vol").Code)
	assert.Equal(t, http.StatusOK, serve(router, "admin").Code)

	rec := serve(router, "fresh")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "PROFILE_REJECTED", errorCode(t, rec))
	assert.Contains(t, rec.Body.String(), reason)

	rec = serve(router, "gone")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "PROFILE_INCOMPLETE", errorCode(t, rec))
}

func TestAuditIgnoresWriterFailure(t *testing.T) {
	audit := &failingAudit{}
	router := sessionRouter(Audit(audit, nil, models.AuditActionExport, "volunteers"))

	assert.Equal(t, http.StatusOK, serve(router, "admin").Code)
	assert.Equal(t, 1, audit.calls)
}

func TestResponseMetaHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	SetCacheHit(c, true)
	SetNotificationStatus(c, models.DispatchPartial)
	SetNotificationStatus(c, "")

	meta := ExtractMeta(c)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, "partial", meta["notification"])
}

func completeProfile(id string, status models.ProfileStatus) *models.Profile {
	text := func(v string) *string { return &v }
	dob := models.NewDate(time.Date(1998, 4, 2, 0, 0, 0, 0, time.UTC))
	return &models.Profile{
		ID:          id,
		Phone:       text("+21620000000"),
		Gender:      text("female"),
		DateOfBirth: &dob,
		Governorate: text("Tunis"),
		City:        text("La Marsa"),
		Status:      &status,
	}
}
