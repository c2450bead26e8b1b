package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbob/openbob/internal/config"
	"github.com/openbob/openbob/pkg/integrations/simulation"
	"github.com/openbob/openbob/pkg/window"
)

type frame struct {
	windows []window.Record
	focused window.ID
	err     error
}

// fakeProvider replays frames, repeating the last one once exhausted
type fakeProvider struct {
	mu     sync.Mutex
	frames []frame
	pos    int
	calls  int
	delay  time.Duration
}

func (f *fakeProvider) current() frame {
	if f.pos >= len(f.frames) {
		return f.frames[len(f.frames)-1]
	}
	return f.frames[f.pos]
}

func (f *fakeProvider) EnumerateWindows() ([]window.Record, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	fr := f.current()
	if f.pos < len(f.frames) {
		f.pos++
	}
	return fr.windows, fr.err
}

func (f *fakeProvider) FocusedWindow() (window.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.pos - 1
	if idx < 0 {
		idx = 0
	}
	return f.frames[idx].focused, nil
}

func (f *fakeProvider) IsSupported() bool { return true }
func (f *fakeProvider) Name() string      { return "fake" }
func (f *fakeProvider) Close() error      { return nil }

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingSink struct {
	mu          sync.Mutex
	events      []Event
	closed      []Entry
	unavailable []error
	shutdown    []Entry
	shutdowns   int
}

func (r *recordingSink) HandleEvents(at time.Time, events []Event, lookup EntryLookup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	for _, ev := range events {
		if ev.Kind == EventDisappeared {
			if e, ok := lookup(ev.ID); ok {
				r.closed = append(r.closed, e)
			}
		}
	}
	return nil
}

func (r *recordingSink) HandleUnavailable(at time.Time, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unavailable = append(r.unavailable, err)
	return nil
}

func (r *recordingSink) HandleShutdown(at time.Time, open []Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdown = open
	r.shutdowns++
	return nil
}

type countingRecorder struct {
	results map[string]int
	events  int
	open    int
}

func (c *countingRecorder) ObservePoll(result string, took time.Duration) {
	if c.results == nil {
		c.results = make(map[string]int)
	}
	c.results[result]++
}

func (c *countingRecorder) ObserveEvents(events []Event) { c.events += len(events) }
func (c *countingRecorder) ObserveWindows(open, tracked int) {
	c.open = open
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Tracker.PollInterval = time.Second
	return cfg
}

func fakeClock() func() time.Time {
	n := 0
	return func() time.Time {
		at := t0.Add(time.Duration(n) * time.Second)
		n++
		return at
	}
}

func TestServicePollOnceScenario(t *testing.T) {
	a := rec(1, "editor", "A")
	b := rec(2, "browser", "B")
	provider := &fakeProvider{frames: []frame{
		{windows: []window.Record{a}},
		{windows: []window.Record{a, b}, focused: 2},
		{windows: []window.Record{b}, focused: 2},
	}}
	sink := &recordingSink{}
	svc := NewService(testConfig(), provider, WithSink(sink), WithClock(fakeClock()))

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.PollOnce())
	}

	snap := svc.Snapshot()
	require.Len(t, snap, 2)
	assert.False(t, snap[0].Open)
	assert.Equal(t, 2*time.Second, snap[0].OpenDuration)
	assert.True(t, snap[1].Open)
	assert.True(t, snap[1].Focused)

	require.Len(t, sink.closed, 1)
	assert.Equal(t, window.ID(1), sink.closed[0].ID)
	assert.Equal(t, 2*time.Second, sink.closed[0].OpenDuration)
}

func TestServiceUnavailableSkipsPoll(t *testing.T) {
	a := rec(1, "editor", "A")
	provider := &fakeProvider{frames: []frame{
		{windows: []window.Record{a}, focused: 1},
		{err: errors.New("display gone")},
		{windows: []window.Record{a}, focused: 1},
	}}
	sink := &recordingSink{}
	recorder := &countingRecorder{}
	svc := NewService(testConfig(), provider, WithSink(sink), WithRecorder(recorder))

	require.NoError(t, svc.PollOnce())
	before := svc.Snapshot()

	err := svc.PollOnce()
	require.Error(t, err)
	assert.ErrorIs(t, err, window.ErrEnumerationUnavailable)
	assert.Equal(t, before, svc.Snapshot())
	require.Len(t, sink.unavailable, 1)

	require.NoError(t, svc.PollOnce())
	e, _ := svc.Accumulator().Entry(1)
	assert.Equal(t, 2*time.Second, e.OpenDuration)
	assert.Equal(t, 2, recorder.results[PollOK])
	assert.Equal(t, 1, recorder.results[PollUnavailable])
}

func TestServiceSelfExclusion(t *testing.T) {
	self := window.Record{ID: 10, AppName: "openbob", Title: "OpenBob - Watch Your Apps Live!", PID: 4242}
	other := window.Record{ID: 11, AppName: "editor", Title: "notes", PID: 7}
	provider := &fakeProvider{frames: []frame{
		{windows: []window.Record{self, other}, focused: 10},
	}}
	svc := NewService(testConfig(), provider, WithExclude(window.ExcludeProcess(4242)))

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.PollOnce())
	}

	snap := svc.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, window.ID(11), snap[0].ID)
	assert.False(t, snap[0].Focused)
	_, ok := svc.Accumulator().Entry(10)
	assert.False(t, ok)
}

func TestServiceExcludedTitlesFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Tracker.ExcludeTitles = []string{"Overlay"}
	provider := &fakeProvider{frames: []frame{
		{windows: []window.Record{rec(1, "hud", "Overlay"), rec(2, "editor", "notes"), rec(3, "ime", "Default IME")}},
	}}
	svc := NewService(cfg, provider)

	require.NoError(t, svc.PollOnce())
	snap := svc.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, window.ID(2), snap[0].ID)
}

func TestServiceMalformedEntriesSkipped(t *testing.T) {
	provider := &fakeProvider{frames: []frame{
		{windows: []window.Record{{ID: 0, AppName: "x", Title: "x"}, {ID: 4, AppName: "", Title: "t"}, rec(5, "ok", "ok")}},
	}}
	svc := NewService(testConfig(), provider)

	require.NoError(t, svc.PollOnce())
	assert.Len(t, svc.Snapshot(), 1)
}

func TestServiceScriptedReplayIsDeterministic(t *testing.T) {
	script := []simulation.Frame{
		{Windows: []window.Record{rec(1, "a", "a")}, Focused: 1},
		{Windows: []window.Record{rec(1, "a", "a"), rec(2, "b", "b")}, Focused: 2},
		{Windows: []window.Record{rec(2, "b", "b"), rec(3, "c", "c")}, Focused: 3},
		{Windows: []window.Record{rec(2, "b", "b2"), rec(3, "c", "c")}, Focused: window.NoWindow},
		{Windows: []window.Record{rec(1, "a", "a"), rec(3, "c", "c")}, Focused: 1},
	}

	run := func() []Entry {
		provider := simulation.NewScripted(script)
		svc := NewService(testConfig(), provider, WithClock(fakeClock()))
		for range script {
			require.NoError(t, svc.PollOnce())
		}
		assert.True(t, provider.Done())
		return svc.Snapshot()
	}

	first := run()
	assert.Equal(t, first, run())
	require.Len(t, first, 3)

	assert.True(t, first[0].Open)
	assert.Equal(t, 3*time.Second, first[0].OpenDuration)
	assert.Equal(t, 2*time.Second, first[0].FocusDuration)

	assert.False(t, first[1].Open)
	assert.Equal(t, "b2", first[1].Title)
	assert.Equal(t, 3*time.Second, first[1].OpenDuration)
	assert.Equal(t, time.Second, first[1].FocusDuration)

	assert.Equal(t, time.Second, first[2].FocusDuration)
}

func TestServiceHouseReplayIsDeterministic(t *testing.T) {
	run := func(seed int64) []Entry {
		svc := NewService(testConfig(), simulation.NewHouse(seed, 0), WithClock(fakeClock()))
		for i := 0; i < 200; i++ {
			require.NoError(t, svc.PollOnce())
		}
		return svc.Snapshot()
	}

	first := run(42)
	require.NotEmpty(t, first)
	assert.Equal(t, first, run(42))

	var focus time.Duration
	for _, e := range first {
		assert.LessOrEqual(t, e.FocusDuration, e.OpenDuration)
		focus += e.FocusDuration
	}
	// the house always focuses someone, so every poll credits one window
	assert.Equal(t, 200*time.Second, focus)
}

func TestServiceOverrunningPollDoesNotCatchUp(t *testing.T) {
	cfg := testConfig()
	cfg.Tracker.PollInterval = 10 * time.Millisecond
	delay := 35 * time.Millisecond
	provider := &fakeProvider{
		frames: []frame{{windows: []window.Record{rec(1, "a", "a")}, focused: 1}},
		delay:  delay,
	}
	svc := NewService(cfg, provider)

	began := time.Now()
	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()

	require.Eventually(t, func() bool { return provider.Calls() >= 4 }, 2*time.Second, 5*time.Millisecond)
	svc.Stop()
	require.NoError(t, <-done)
	elapsed := time.Since(began)

	calls := provider.Calls()
	assert.LessOrEqual(t, calls, int(elapsed/delay)+1, "polls ran back to back without a burst")

	stats := svc.Accumulator().Stats()
	assert.Equal(t, uint64(calls), stats.Polls)

	e, ok := svc.Accumulator().Entry(1)
	require.True(t, ok)
	assert.Equal(t, time.Duration(calls)*cfg.Tracker.PollInterval, e.OpenDuration)
	assert.Equal(t, e.OpenDuration, e.FocusDuration)
}

func TestServiceStartAndStop(t *testing.T) {
	cfg := testConfig()
	cfg.Tracker.PollInterval = 10 * time.Millisecond
	provider := &fakeProvider{frames: []frame{{windows: []window.Record{rec(1, "a", "a")}, focused: 1}}}
	sink := &recordingSink{}
	svc := NewService(cfg, provider, WithSink(sink))

	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()

	require.Eventually(t, func() bool { return provider.Calls() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, svc.IsRunning())
	assert.Error(t, svc.Start(context.Background()))

	svc.Stop()
	svc.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("tracker did not stop")
	}

	assert.False(t, svc.IsRunning())
	assert.Equal(t, 1, sink.shutdowns)
	require.Len(t, sink.shutdown, 1)
	assert.Equal(t, window.ID(1), sink.shutdown[0].ID)
}

func TestServiceStartCancelledContext(t *testing.T) {
	cfg := testConfig()
	cfg.Tracker.PollInterval = time.Hour
	provider := &fakeProvider{frames: []frame{{windows: []window.Record{rec(1, "a", "a")}}}}
	svc := NewService(cfg, provider)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	require.Eventually(t, func() bool { return provider.Calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("tracker ignored cancellation")
	}
	assert.Equal(t, 1, provider.Calls())
}
