package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddlewareCountsByRoute(t *testing.T) {
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/courses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/"+id, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/courses/:id", "200"))
	assert.Equal(t, float64(2), got)
}

func TestObserveEnrollment(t *testing.T) {
	m := New()
	m.ObserveEnrollment("approve", "ok")
	m.ObserveEnrollment("approve", "ok")
	m.ObserveEnrollment("approve", "already_approved")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.EnrollmentTransitions.WithLabelValues("approve", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EnrollmentTransitions.WithLabelValues("approve", "already_approved")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveEnrollment("deny", "ok")
	m.ObserveAuth("login", "ok")

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveAuth("login", "ok")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "pathsala_auth_events_total"))
}
