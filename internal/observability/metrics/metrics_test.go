package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"agenda/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "invalid", Outcome(common.NewValidationError("name", "is required")))
	assert.Equal(t, "not_found", Outcome(fmt.Errorf("find: %w", common.ErrNotFound)))
	assert.Equal(t, "invalid_state", Outcome(common.ErrInvalidState))
	assert.Equal(t, "unavailable", Outcome(common.ErrUnavailable))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestGinMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/contacts/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := counterValue(t, httpRequestsTotal.WithLabelValues("GET", "/api/contacts/:id", "204"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contacts/abc", nil))

	assert.Equal(t, before+1, counterValue(t, httpRequestsTotal.WithLabelValues("GET", "/api/contacts/:id", "204")))
}

func TestObserveContactOperation(t *testing.T) {
	before := counterValue(t, contactOperations.WithLabelValues("delete", "forbidden"))
	ObserveContactOperation("delete", "forbidden")
	assert.Equal(t, before+1, counterValue(t, contactOperations.WithLabelValues("delete", "forbidden")))
}
