package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSessionLifecycle(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SessionStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))

	m.CodeDispatched("MULTITAP")
	m.CodeDispatched("MULTITAP")
	m.ForcedKill()
	m.SessionEnded("aborted", 3*time.Second)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CodesDispatched.WithLabelValues("MULTITAP")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionOutcomes.WithLabelValues("aborted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ForcedKills))
}

func TestWindowCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.WindowActivated()
	m.WindowSearchFailed()
	m.LaunchRejected()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.WindowActivations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WindowSearchFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsBusy))
}

func TestMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/items/1", "/items/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/items/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
