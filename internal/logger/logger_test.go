package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			SetLevel(tt.in)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestOutputAndLevels(t *testing.T) {
	defer SetOutput(os.Stderr)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("info")

	Debugf("hidden %d", 1)
	Infof("poll took %s", "3ms")
	Error("enumeration failed", errors.New("access denied"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "poll took 3ms")
	assert.Contains(t, out, "access denied")
}

func TestSetOutputFile(t *testing.T) {
	defer CloseLogFile()

	path := filepath.Join(t.TempDir(), "logs", "openbob.log")
	require.NoError(t, SetOutputFile(path))

	Info("written to file")
	CloseLogFile()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
