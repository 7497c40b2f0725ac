package adapter

import "github.com/ralph-core/ralph-core/internal/procguard"

// guard tracks every child process spawned by any adapter in this process,
// so a single call at shutdown can guarantee none survive the run even if an
// individual adapter's own cleanup path was skipped.
var guard = procguard.New()

// KillAllChildren force-kills and reaps every still-tracked adapter child.
// The supervisor calls this once on its way out, after any adapter-specific
// Shutdown has already run.
func KillAllChildren() {
	guard.KillAll()
}
