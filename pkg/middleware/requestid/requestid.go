package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the correlation id in both directions.
const Header = "X-Request-ID"

const contextKey = "request_id"

// maxInboundLength bounds ids accepted from callers.
const maxInboundLength = 128

// Middleware tags every request with an id, reusing a caller-supplied one when sane.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" || len(id) > maxInboundLength {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Header(Header, id)
		c.Next()
	}
}

// Value returns the id assigned by Middleware, or "" outside a tagged request.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}
