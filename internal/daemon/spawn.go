package daemon

import (
	"os"

	"github.com/pkg/errors"
)

// Spawn re-executes the current binary detached, with ChildEnv set and
// stdio closed. It returns the child's PID.
func Spawn(args []string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		exe = args[0]
	}

	env := append(os.Environ(), ChildEnv+"=1")
	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil},
		Sys:   detachAttr(),
	}

	process, err := os.StartProcess(exe, args, procAttr)
	if err != nil {
		return 0, errors.Wrap(err, "failed to start daemon process")
	}

	pid := process.Pid
	_ = process.Release()
	return pid, nil
}
