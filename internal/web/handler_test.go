package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbob/openbob/internal/config"
	"github.com/openbob/openbob/internal/database"
	"github.com/openbob/openbob/internal/metrics"
	"github.com/openbob/openbob/internal/models"
	"github.com/openbob/openbob/internal/tracker"
	"github.com/openbob/openbob/pkg/window"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// liveAccumulator holds "term" (closed) and "browser" (open, focused)
func liveAccumulator() *tracker.Accumulator {
	acc := tracker.NewAccumulator()
	at := time.Now()
	term := window.Record{ID: 1, AppName: "term", Title: "zsh"}
	browser := window.Record{ID: 2, AppName: "browser", Title: "<docs>"}

	frames := []struct {
		windows []window.Record
		focused window.ID
	}{
		{[]window.Record{term}, 1},
		{[]window.Record{term, browser}, 2},
		{[]window.Record{browser}, 2},
	}
	for i, f := range frames {
		acc.ApplyPoll(tracker.Poll{
			At:      at.Add(time.Duration(i) * time.Second),
			Elapsed: time.Second,
			Windows: f.windows,
			Events:  tracker.Detect(acc.State(), f.windows, f.focused),
		})
	}
	return acc
}

func newTestServer(t *testing.T, withJournal bool) (*Server, *database.Repository, *metrics.Metrics) {
	t.Helper()
	cfg := config.Default()
	m := metrics.New()

	var repo *database.Repository
	if withJournal {
		db, err := database.Connect(database.MemoryPath)
		require.NoError(t, err)
		require.NoError(t, db.Initialize())
		t.Cleanup(func() { db.Close() })
		repo = database.NewRepository(db)
	}

	return NewServer(cfg, liveAccumulator(), repo, m, 0), repo, m
}

func get(t *testing.T, s *Server, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHandleWindows(t *testing.T) {
	s, _, _ := newTestServer(t, false)

	tests := []struct {
		name string
		path string
		ids  []uint64
	}{
		{"all", "/api/windows", []uint64{1, 2}},
		{"open only", "/api/windows?open=true", []uint64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, s, tt.path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

			var body struct {
				Count   int          `json:"count"`
				Windows []windowView `json:"windows"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, len(tt.ids), body.Count)

			ids := make([]uint64, 0, len(body.Windows))
			for _, v := range body.Windows {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestHandleWindowsValues(t *testing.T) {
	s, _, _ := newTestServer(t, false)

	var body struct {
		Windows []windowView `json:"windows"`
	}
	require.NoError(t, json.Unmarshal(get(t, s, "/api/windows").Body.Bytes(), &body))
	require.Len(t, body.Windows, 2)

	term, browser := body.Windows[0], body.Windows[1]
	assert.False(t, term.Open)
	assert.Equal(t, 2.0, term.OpenSeconds)
	assert.Equal(t, 1.0, term.FocusSeconds)
	assert.True(t, browser.Focused)
	assert.Equal(t, 2.0, browser.FocusSeconds)
}

func TestHandleWindowsHTML(t *testing.T) {
	s, _, _ := newTestServer(t, false)

	w := get(t, s, "/api/windows", "HX-Request", "true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `<tr class="focused">`)
	assert.Contains(t, w.Body.String(), "&lt;docs&gt;", "titles are escaped")
}

func TestHandleStats(t *testing.T) {
	s, _, _ := newTestServer(t, false)

	w := get(t, s, "/api/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2.0, body["tracked"])
	assert.Equal(t, 1.0, body["open"])
	assert.Equal(t, 3.0, body["polls"])
	assert.Equal(t, "1s", body["poll_interval"])

	focused, ok := body["focused"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "browser", focused["app_name"])
}

func TestHandleReport(t *testing.T) {
	s, repo, _ := newTestServer(t, true)
	now := time.Now()
	require.NoError(t, repo.CreateSession(&models.WindowSession{
		SessionID: "s", WindowID: 1, AppName: "code", Title: "main.go",
		FirstSeenAt: now, LastSeenAt: now, OpenSeconds: 120, FocusSeconds: 90,
	}))

	w := get(t, s, "/api/report?period=day")
	require.Equal(t, http.StatusOK, w.Code)

	var report models.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Apps, 1)
	assert.Equal(t, "code", report.Apps[0].AppName)
	assert.Equal(t, 90.0, report.TotalFocusSeconds)

	w = get(t, s, "/api/summary?period=day")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<span class="app-name">code</span>`)
}

func TestHandleReportErrors(t *testing.T) {
	withJournal, _, _ := newTestServer(t, true)
	without, _, _ := newTestServer(t, false)

	tests := []struct {
		name   string
		server *Server
		path   string
		status int
	}{
		{"invalid period", withJournal, "/api/report?period=year", http.StatusBadRequest},
		{"journal disabled", without, "/api/report", http.StatusServiceUnavailable},
		{"summary disabled", without, "/api/summary", http.StatusServiceUnavailable},
		{"events disabled", without, "/api/events", http.StatusServiceUnavailable},
		{"events invalid period", withJournal, "/api/events?period=decade", http.StatusBadRequest},
		{"sessions disabled", without, "/api/sessions", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, get(t, tt.server, tt.path).Code)
		})
	}
}

func TestHandleEventsAndSessions(t *testing.T) {
	s, repo, _ := newTestServer(t, true)
	now := time.Now()

	var events []*models.WindowEvent
	for i, kind := range []string{"appeared", "focus_gained", "focus_lost", "disappeared"} {
		events = append(events, &models.WindowEvent{
			SessionID: "s", Timestamp: now.Add(time.Duration(i) * time.Millisecond),
			Kind: kind, WindowID: 7, AppName: "code", Title: "main.go",
		})
	}
	require.NoError(t, repo.CreateEvents(events))
	require.NoError(t, repo.CreateSession(&models.WindowSession{
		SessionID: "s", WindowID: 7, AppName: "Code", Title: "main.go",
		FirstSeenAt: now, LastSeenAt: now, OpenSeconds: 3, FocusSeconds: 1, Closed: true,
	}))

	w := get(t, s, "/api/events?period=day&limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	var eventsBody struct {
		Events []models.WindowEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eventsBody))
	require.Len(t, eventsBody.Events, 2)
	assert.Equal(t, "focus_lost", eventsBody.Events[0].Kind)
	assert.Equal(t, "disappeared", eventsBody.Events[1].Kind)

	w = get(t, s, "/api/sessions")
	require.Equal(t, http.StatusOK, w.Code)
	var sessionsBody struct {
		Sessions []models.WindowSession `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessionsBody))
	require.Len(t, sessionsBody.Sessions, 1)
	assert.Equal(t, "code", sessionsBody.Sessions[0].AppName)
	assert.True(t, sessionsBody.Sessions[0].Closed)
}

func TestHandleHealthAndIndex(t *testing.T) {
	s, _, _ := newTestServer(t, false)

	w := get(t, s, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = get(t, s, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `hx-get="/api/windows"`)

	assert.Equal(t, http.StatusNotFound, get(t, s, "/nope").Code)
}

func TestHandleMetrics(t *testing.T) {
	s, _, m := newTestServer(t, false)
	m.ObserveWindows(1, 2)

	w := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openbob_windows_tracked 2")

	bare := NewServer(config.Default(), tracker.NewAccumulator(), nil, nil, 0)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, bare, "/metrics").Code)
}

func TestCORSPreflight(t *testing.T) {
	s, _, _ := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/windows", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestServerAddress(t *testing.T) {
	cfg := config.Default()
	cfg.Web.Host = "127.0.0.1"
	cfg.Web.Port = 8080

	assert.Equal(t, "127.0.0.1:8080", NewServer(cfg, tracker.NewAccumulator(), nil, nil, 0).GetAddress())
	assert.Equal(t, "127.0.0.1:9090", NewServer(cfg, tracker.NewAccumulator(), nil, nil, 9090).GetAddress())
}
