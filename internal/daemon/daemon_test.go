package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pidPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "openbob.pid")
}

func TestPIDFile(t *testing.T) {
	d := New(pidPath(t))

	pid, err := d.ReadPID()
	require.NoError(t, err)
	assert.Zero(t, pid, "missing file reads as no daemon")

	require.NoError(t, d.WritePID())
	pid, err = d.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, d.RemovePID())
	require.NoError(t, d.RemovePID(), "removing twice is fine")
}

func TestReadPIDInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"garbage", "not-a-pid"},
		{"negative", "-4"},
		{"zero", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := pidPath(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := New(path).ReadPID()
			assert.Error(t, err)
		})
	}
}

func TestReadPIDTrimsNewline(t *testing.T) {
	path := pidPath(t)
	require.NoError(t, os.WriteFile(path, []byte("1234\n"), 0644))
	pid, err := New(path).ReadPID()
	require.NoError(t, err)
	assert.Equal(t, 1234, pid)
}

func TestIsRunning(t *testing.T) {
	d := New(pidPath(t))

	running, _, err := d.IsRunning()
	require.NoError(t, err)
	assert.False(t, running)

	require.NoError(t, d.WritePID())
	running, pid, err := d.IsRunning()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)
}

func TestIsRunningRemovesStalePID(t *testing.T) {
	path := pidPath(t)
	require.NoError(t, os.WriteFile(path, []byte("999999999"), 0644))

	running, _, err := New(path).IsRunning()
	require.NoError(t, err)
	assert.False(t, running)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStopNotRunning(t *testing.T) {
	err := New(pidPath(t)).Stop()
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestIsChild(t *testing.T) {
	t.Setenv(ChildEnv, "")
	assert.False(t, IsChild())
	t.Setenv(ChildEnv, "1")
	assert.True(t, IsChild())
}
