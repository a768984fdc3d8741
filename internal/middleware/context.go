package middleware

import (
	"log/slog"

	"agenda/internal/access"
	"agenda/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	requestIDKey = "request_id"
	loggerKey    = "logger"
	sessionKey   = "session"

	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"
)

// RequestID returns the ID assigned to the request, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger returns the request-scoped logger, falling back to slog.Default.
func Logger(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}

// Session returns the identity resolved by Identify. Without it the request
// is anonymous.
func Session(c *gin.Context) auth.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(auth.Session); ok {
			return s
		}
	}
	return auth.Session{Status: auth.StatusAnonymous}
}

// Requester is the access identity of the request.
func Requester(c *gin.Context) access.Requester {
	return Session(c).Requester()
}
