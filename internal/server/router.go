package server

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"agenda/internal/config"
	"agenda/internal/handler"
	"agenda/internal/middleware"
	"agenda/internal/model"
	"agenda/internal/observability/metrics"
	"agenda/internal/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const eventsPath = "/api/contacts/events"

// NewRouter builds the HTTP routes.
func NewRouter(cfg *config.Config, log *slog.Logger, h *Handlers, s *Services, loginLimiter ratelimit.Limiter) *gin.Engine {
	handler.RegisterValidation()

	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(log),
		metrics.GinMiddleware(),
		cors.New(corsConfig(cfg.Server.CORSOrigins)),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{eventsPath, "/metrics"})),
	)

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.Identify(s.Authenticator))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", middleware.LoginRateLimit(loginLimiter), h.Auth.Login)
		authGroup.GET("/me", middleware.RequireUser(), h.Auth.Me)
		authGroup.PUT("/profile", middleware.RequireUser(), h.Auth.UpdateProfile)
	}

	contacts := api.Group("/contacts")
	{
		// anonymous callers get an empty list
		contacts.GET("", h.Contact.List)

		protected := contacts.Group("")
		protected.Use(middleware.RequireUser())
		protected.GET("/events", h.Events.Stream)
		protected.POST("", h.Contact.Create)
		protected.PUT("/:id", h.Contact.Update)
		protected.DELETE("/:id", h.Contact.Delete)
		protected.PATCH("/:id/visibility", h.Contact.TogglePublic)
		protected.PATCH("/:id/admin-visibility", h.Contact.ToggleAdminVisible)
	}

	r.NoRoute(noRoute(cfg.Server.StaticDir))
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader}
	c.ExposeHeaders = []string{middleware.RequestIDHeader}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}

// noRoute answers unknown API paths with a JSON 404 and, when staticDir is
// set, serves the single-page client for everything else.
func noRoute(staticDir string) gin.HandlerFunc {
	var files http.Handler
	if staticDir != "" {
		files = http.FileServer(http.Dir(staticDir))
	}
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if files == nil || strings.HasPrefix(p, "/api/") || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse("Route not found", "NotFound"))
			return
		}
		if info, err := os.Stat(filepath.Join(staticDir, filepath.FromSlash(path.Clean("/"+p)))); err == nil && !info.IsDir() {
			files.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	}
}
