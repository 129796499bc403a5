package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/logger"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the request session.
const ContextSessionKey = "session"

// TokenValidator verifies access tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token and attaches the session.
func JWT(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		SetSession(c, models.SessionFromClaims(claims))
		c.Next()
	}
}

// SetSession stores the session on the context and tags request logs with the user.
func SetSession(c *gin.Context, session *models.Session) {
	c.Set(ContextSessionKey, session)
	if session != nil {
		c.Set(logger.ContextUserIDKey, session.UserID)
	}
}

// SessionFrom returns the session attached by JWT, or nil.
func SessionFrom(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, _ := value.(*models.Session)
	return session
}
