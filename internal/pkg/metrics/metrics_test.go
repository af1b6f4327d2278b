package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Denied("delete_task")
	m.Denied("delete_task")
	m.HistoryWritten("status", 3)
	m.HistoryWritten("status", 0)
	m.HistoryPurged(5)
	m.HistoryPurged(-1)
	m.ObserveRequest("GET", "/api/tasks", 200, 15*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.accessDenied.WithLabelValues("delete_task")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.historyEntries.WithLabelValues("status")))
	require.Equal(t, 5.0, testutil.ToFloat64(m.historyPurged))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/tasks", "200")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.Denied("view_task")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, `task_manager_access_denied_total{operation="view_task"} 1`))
	require.Contains(t, body, "go_goroutines")
}
