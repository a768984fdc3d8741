package middleware

import (
	"errors"
	"net/http"

	"agenda/internal/auth"
	"agenda/internal/common"
	"agenda/internal/model"

	"github.com/gin-gonic/gin"
)

// TokenQueryParam is accepted in place of the Authorization header on
// websocket upgrades, where browsers cannot set headers.
const TokenQueryParam = "token"

// Identify resolves the bearer token of every request. No token leaves the
// request anonymous; an invalid or expired token is rejected with 401.
func Identify(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if token := c.Query(TokenQueryParam); token != "" && isUpgrade(c.Request) {
				header = "Bearer " + token
			}
		}

		session, err := authn.AuthenticateHeader(c.Request.Context(), header)
		if err != nil {
			Logger(c).Error("session lookup failed", "error", err)
			status := http.StatusInternalServerError
			if errors.Is(err, common.ErrUnavailable) {
				status = http.StatusServiceUnavailable
			}
			c.AbortWithStatusJSON(status, model.NewErrorResponse("Service temporarily unavailable", "Unavailable"))
			return
		}
		if session.Status == auth.StatusInvalid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse("Invalid or expired token", "Unauthenticated"))
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Session(c).Status != auth.StatusAuthenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse("Authentication required", "Unauthenticated"))
			return
		}
		c.Next()
	}
}

func isUpgrade(r *http.Request) bool {
	return r.Header.Get("Upgrade") != ""
}
