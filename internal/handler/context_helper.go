package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/middleware"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

// sessionOrAbort writes 401 when the request carries no session.
func sessionOrAbort(c *gin.Context) (*models.Session, bool) {
	session := middleware.SessionFrom(c)
	if !session.Authenticated() {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return session, true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return false
	}
	return true
}

// respond merges request-scoped meta (cache and notification state) with warnings.
func respond(c *gin.Context, status int, data interface{}, pagination *models.Pagination, warnings []string) {
	meta := map[string]interface{}{}
	for k, v := range middleware.ExtractMeta(c) {
		meta[k] = v
	}
	if len(warnings) > 0 {
		meta[response.MetaWarnings] = warnings
	}
	response.JSON(c, status, data, pagination, meta)
}

func notificationOutcome(warnings []string) models.DispatchStatus {
	if len(warnings) > 0 {
		return models.DispatchFailed
	}
	return ""
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// uploadFromForm opens the multipart file under field.
func uploadFromForm(c *gin.Context, field string) (service.Upload, func(), bool) {
	header, err := c.FormFile(field)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, field+" file is required"))
		return service.Upload{}, nil, false
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read uploaded file"))
		return service.Upload{}, nil, false
	}
	closeFn := func() { _ = file.Close() }
	return service.Upload{Filename: header.Filename, Size: header.Size, Content: file}, closeFn, true
}
