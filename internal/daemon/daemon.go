// Package daemon manages the background tracker process through a PID file.
package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	psutil "github.com/shirou/gopsutil/v3/process"
)

// ChildEnv marks the detached child so it runs instead of spawning again
const ChildEnv = "OPENBOB_DAEMON_CHILD"

var ErrNotRunning = errors.New("daemon is not running or PID file is stale")

type Daemon struct {
	pidFile string
}

func New(pidFile string) *Daemon {
	return &Daemon{pidFile: pidFile}
}

// IsChild reports whether this process was started by Spawn
func IsChild() bool {
	return os.Getenv(ChildEnv) == "1"
}

func (d *Daemon) WritePID() error {
	pid := os.Getpid()
	return os.WriteFile(d.pidFile, fmt.Appendf([]byte{}, "%d", pid), 0644)
}

// ReadPID returns 0 when no PID file exists
func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read PID file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, errors.Errorf("invalid PID in file %s: %q", d.pidFile, data)
	}

	return pid, nil
}

func (d *Daemon) RemovePID() error {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove PID file")
	}
	return nil
}

// IsRunning checks the recorded PID and removes a stale PID file
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if err != nil {
		return false, 0, err
	}

	if pid == 0 {
		return false, 0, nil
	}

	alive, err := psutil.PidExists(int32(pid))
	if err != nil || !alive {
		_ = d.RemovePID()
		return false, 0, nil
	}

	return true, pid, nil
}

// Stop asks the running daemon to terminate and removes its PID file
func (d *Daemon) Stop() error {
	running, pid, err := d.IsRunning()
	if err != nil {
		return errors.Wrap(err, "error checking daemon status")
	}

	if !running {
		return ErrNotRunning
	}

	proc, err := psutil.NewProcess(int32(pid))
	if err != nil {
		_ = d.RemovePID()
		return errors.Wrap(ErrNotRunning, "daemon process already terminated")
	}

	if err := proc.Terminate(); err != nil {
		return errors.Wrapf(err, "failed to terminate PID %d", pid)
	}

	return d.RemovePID()
}
