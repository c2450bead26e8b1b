package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbob/openbob/internal/tracker"
)

var _ tracker.Recorder = (*Metrics)(nil)

func TestObserve(t *testing.T) {
	m := New()

	m.ObservePoll(tracker.PollOK, 2*time.Millisecond)
	m.ObservePoll(tracker.PollOK, 3*time.Millisecond)
	m.ObservePoll(tracker.PollUnavailable, time.Millisecond)
	m.ObserveEvents([]tracker.Event{
		{Kind: tracker.EventAppeared, ID: 1},
		{Kind: tracker.EventAppeared, ID: 2},
		{Kind: tracker.EventFocusGained, ID: 1},
	})
	m.ObserveWindows(2, 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Polls.WithLabelValues(tracker.PollOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Polls.WithLabelValues(tracker.PollUnavailable)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Events.WithLabelValues(string(tracker.EventAppeared))))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OpenWindows))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.Tracked))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveWindows(3, 3)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.OpenWindows))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObservePoll(tracker.PollOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `openbob_polls_total{result="ok"} 1`)
	assert.Contains(t, string(body), "openbob_poll_duration_seconds_bucket")
}
