// Package pause holds the operator-pause request flag: set by a SIGUSR1
// handler in main, read by the loop at the same point it checks for
// operator-cancel, the way the teacher checks its own signal-derived
// context between iterations.
package pause

import "sync/atomic"

// Controller is a one-shot, concurrency-safe pause request flag.
type Controller struct {
	requested atomic.Bool
}

// New returns a cleared Controller.
func New() *Controller { return &Controller{} }

// Request marks a pause as requested. Idempotent.
func (c *Controller) Request() { c.requested.Store(true) }

// Requested reports whether a pause is pending.
func (c *Controller) Requested() bool { return c.requested.Load() }

// Clear resets the flag once the loop has acted on it.
func (c *Controller) Clear() { c.requested.Store(false) }
