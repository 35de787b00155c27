package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is propagated on requests and responses
const RequestIDHeader = "X-Request-ID"

// RequestID attaches a unique request id to each request, honoring one the
// caller already supplied
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDHeader, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID returns the request id stored by RequestID
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(RequestIDHeader); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
