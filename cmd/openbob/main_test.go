package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbob/openbob/internal/tracker"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want func(t *testing.T, o *options)
	}{
		{
			name: "positional then flag",
			args: []string{"week", "--json"},
			want: func(t *testing.T, o *options) {
				assert.Equal(t, "week", o.arg(0, "day"))
				assert.True(t, o.jsonOut)
			},
		},
		{
			name: "flag then positional",
			args: []string{"--json", "month"},
			want: func(t *testing.T, o *options) {
				assert.Equal(t, "month", o.arg(0, "day"))
				assert.True(t, o.jsonOut)
			},
		},
		{
			name: "no positional",
			args: []string{"--simulate", "--seed", "9"},
			want: func(t *testing.T, o *options) {
				assert.Equal(t, "day", o.arg(0, "day"))
				assert.True(t, o.set["seed"])
				assert.Equal(t, int64(9), o.seed)
				assert.False(t, o.set["web"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseOptions("test", tt.args, io.Discard)
			require.NoError(t, err)
			tt.want(t, o)
		})
	}
}

func TestParseOptionsUnknownFlag(t *testing.T) {
	_, err := parseOptions("test", []string{"--bogus"}, io.Discard)
	assert.Error(t, err)
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	t.Setenv("OPENBOB_TRACKER_POLL_INTERVAL", "5s")
	t.Setenv("OPENBOB_DATABASE_PATH", "")

	o, err := parseOptions("run", []string{"--seed", "3", "--port", "18080", "--interval", "2s", "--config", "/nonexistent/openbob.yaml"}, io.Discard)
	require.NoError(t, err)

	_, err = loadConfig(o)
	assert.Error(t, err, "an explicit config path must exist")

	o.configPath = ""
	o.set["config"] = false
	cfg, err := loadConfig(o)
	require.NoError(t, err)
	assert.True(t, cfg.Tracker.Simulate, "--seed implies --simulate")
	assert.Equal(t, int64(3), cfg.Tracker.SimulationSeed)
	assert.True(t, cfg.Web.Enabled)
	assert.Equal(t, 18080, cfg.Web.Port)
	assert.Equal(t, 2*time.Second, cfg.Tracker.PollInterval, "flags beat env")
}

func TestLoadConfigRejectsBadInterval(t *testing.T) {
	o, err := parseOptions("run", []string{"--interval", "5ms"}, io.Discard)
	require.NoError(t, err)
	_, err = loadConfig(o)
	assert.Error(t, err)
}

func TestRenderLive(t *testing.T) {
	color.NoColor = true

	entries := []tracker.Entry{
		{ID: 1, AppName: "term", Title: "zsh", OpenDuration: 90 * time.Second, FocusDuration: 30 * time.Second},
		{ID: 2, AppName: "browser", Title: "docs", OpenDuration: 61 * time.Second, FocusDuration: 61 * time.Second, Open: true, Focused: true},
		{ID: 3, AppName: "editor", Title: "main.go", OpenDuration: 5 * time.Second, Open: true},
	}
	stats := tracker.Stats{Tracked: 3, Open: 2, Polls: 90}

	var buf bytes.Buffer
	renderLive(&buf, entries, stats, "simulation")
	out := buf.String()

	assert.Contains(t, out, "polls: 90  open: 2  tracked: 3")
	assert.Contains(t, out, "1m 1s")

	browser := strings.Index(out, "browser")
	editor := strings.Index(out, "editor")
	term := strings.Index(out, "term")
	assert.True(t, browser < editor && editor < term, "focused, then open, then closed")
	assert.Contains(t, out, "* browser")
}

func TestRenderLiveEmpty(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	renderLive(&buf, nil, tracker.Stats{}, "x11")
	assert.Contains(t, buf.String(), "No windows yet")
}
