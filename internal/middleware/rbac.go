package middleware

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

// RequireRoles only lets sessions holding one of roles through.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if !session.Authenticated() {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[session.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ProfileLookup loads profiles by id.
type ProfileLookup interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// RequireActiveVolunteer keeps incomplete, pending and rejected profiles off volunteer routes.
// Administrators pass through.
func RequireActiveVolunteer(profiles ProfileLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if !session.Authenticated() {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if session.IsAdmin() {
			c.Next()
			return
		}
		if session.ProfileID == "" {
			response.Error(c, appErrors.ErrProfileIncomplete)
			c.Abort()
			return
		}
		profile, err := profiles.FindByID(c.Request.Context(), session.ProfileID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.Error(c, appErrors.ErrProfileIncomplete)
			} else {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile"))
			}
			c.Abort()
			return
		}
		if err := service.RequireActiveProfile(profile); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
