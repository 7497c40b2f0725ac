// Package procguard tracks child processes from start until they are
// reaped, so that KillAll can kill and reap any still running when the
// supervisor exits. Callers still signal and reap their own children on
// their normal paths (timeout, cancellation, shutdown) and Release them
// afterwards; the guard is the backstop for whatever remains.
package procguard

import (
	"os/exec"
	"sync"
)

// Guard tracks every child process started during a run so the supervisor
// can guarantee none survive it.
type Guard struct {
	mu       sync.Mutex
	tracked  map[*exec.Cmd]struct{}
}

// New returns an empty Guard.
func New() *Guard {
	return &Guard{tracked: make(map[*exec.Cmd]struct{})}
}

// Track registers cmd for guaranteed cleanup. Call Release once the caller
// has reaped it through its own Wait.
func (g *Guard) Track(cmd *exec.Cmd) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tracked[cmd] = struct{}{}
}

// Release removes cmd from tracking after the caller has reaped it.
func (g *Guard) Release(cmd *exec.Cmd) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.tracked, cmd)
}

// KillAll force-kills and reaps every still-tracked process. Called once at
// shutdown as a last line of defense — normal exit paths should already
// have released everything.
func (g *Guard) KillAll() {
	g.mu.Lock()
	cmds := make([]*exec.Cmd, 0, len(g.tracked))
	for cmd := range g.tracked {
		cmds = append(cmds, cmd)
	}
	g.tracked = make(map[*exec.Cmd]struct{})
	g.mu.Unlock()

	for _, cmd := range cmds {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	}
}

// Len reports how many processes are currently tracked, used by tests
// asserting no child survives past a run.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tracked)
}
