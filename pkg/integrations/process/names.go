// Package process resolves owning-process names for window providers.
package process

import (
	"path/filepath"
	"strings"
	"sync"

	psutil "github.com/shirou/gopsutil/v3/process"
)

// Resolver maps PIDs to executable names. Names are cached per PID together
// with the process creation time so a recycled PID is looked up again.
type Resolver struct {
	mu    sync.Mutex
	cache map[int32]cached
}

type cached struct {
	created int64
	name    string
}

func NewResolver() *Resolver {
	return &Resolver{cache: make(map[int32]cached)}
}

// Name returns the executable name of pid, or "" when it cannot be read
func (r *Resolver) Name(pid int) string {
	if pid <= 0 {
		return ""
	}

	p, err := psutil.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	created, _ := p.CreateTime()

	r.mu.Lock()
	if c, ok := r.cache[p.Pid]; ok && c.created == created {
		r.mu.Unlock()
		return c.name
	}
	r.mu.Unlock()

	name, err := p.Name()
	if err != nil || name == "" {
		exe, exeErr := p.Exe()
		if exeErr != nil {
			return ""
		}
		name = filepath.Base(exe)
	}
	name = CleanName(name)

	r.mu.Lock()
	r.cache[p.Pid] = cached{created: created, name: name}
	r.mu.Unlock()

	return name
}

// Forget drops cached names for PIDs not in live
func (r *Resolver) Forget(live map[int]struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for pid := range r.cache {
		if _, ok := live[int(pid)]; !ok {
			delete(r.cache, pid)
		}
	}
}

// CleanName trims whitespace, NUL padding and any directory part
func CleanName(name string) string {
	name = strings.TrimRight(name, "\x00")
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}
