package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()
	m.ObserveJoin("joined")
	m.ObserveJoin("joined")
	m.ObserveJoin("full")
	m.ObserveTransition("start", "applied")

	if got := testutil.ToFloat64(m.joins.WithLabelValues("joined")); got != 2 {
		t.Fatalf("expected 2 joins, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `quiz_transitions_total{command="start",outcome="applied"} 1`) {
		t.Fatalf("expected transition counter in output, got %s", body)
	}
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/quizzes/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quizzes/abc", nil))

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/quizzes/:id", "204"))
	if got != 1 {
		t.Fatalf("expected one request recorded, got %v", got)
	}
}

func TestSeparateRegistries(t *testing.T) {
	New()
	New()
}
