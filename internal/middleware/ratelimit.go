package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"agenda/internal/model"
	"agenda/internal/observability/metrics"
	"agenda/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

const maxPeekBody = 64 << 10

// LoginRateLimit throttles login attempts per client IP and email. Limiter
// errors let the request through.
func LoginRateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + "|" + peekEmail(c)

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			Logger(c).Warn("login rate limiter failed; allowing", "error", err)
			c.Next()
			return
		}
		if !allowed {
			metrics.ObserveLoginThrottled()
			Logger(c).Warn("login throttled", "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.NewErrorResponse("Too many login attempts, try again later", "TooManyRequests"))
			return
		}
		c.Next()
	}
}

// peekEmail reads the email from a JSON body and restores the body for the handler.
func peekEmail(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPeekBody))
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))

	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return strings.TrimSpace(payload.Email)
}
