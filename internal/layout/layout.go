// Package layout centralizes the filesystem tree the supervisor reads from
// and writes to, relative to a run directory. Keeping the paths in one place
// means every component agrees on where e.g. the coordination directory
// lives without importing each other.
package layout

import "path/filepath"

const (
	// PromptFile is the mutable prompt document; the completion marker
	// lives here.
	PromptFile = "PROMPT.md"

	agentDir        = ".agent"
	scratchpadFile  = "scratchpad.md"
	taskListFile    = "task-list.json"
	progressFile    = "progress.md"
	coordinationDir = "coordination"
	promptsDir      = "prompts"
	resultsDir      = "results"
	statusDir       = "status"
	checkpointsDir  = "checkpoints"
	metricsDir      = "metrics"
	logsDir         = "logs"
	pidFile         = "run.pid"
	resumeSignalFile = "resume-signal"

	// EvidenceDir is the directory scanned by the EvidenceValidator.
	EvidenceDir = "validation-evidence"
)

// Tree resolves every well-known path under a single run directory.
type Tree struct {
	RunDir string
}

// New returns a Tree rooted at runDir.
func New(runDir string) Tree { return Tree{RunDir: runDir} }

// Prompt returns the path to PROMPT.md.
func (t Tree) Prompt() string { return filepath.Join(t.RunDir, PromptFile) }

// AgentDir returns the .agent/ coordination root.
func (t Tree) AgentDir() string { return filepath.Join(t.RunDir, agentDir) }

// Scratchpad returns .agent/scratchpad.md.
func (t Tree) Scratchpad() string { return filepath.Join(t.AgentDir(), scratchpadFile) }

// TaskList returns .agent/task-list.json.
func (t Tree) TaskList() string { return filepath.Join(t.AgentDir(), taskListFile) }

// Progress returns .agent/progress.md.
func (t Tree) Progress() string { return filepath.Join(t.AgentDir(), progressFile) }

// CoordinationDir returns .agent/coordination.
func (t Tree) CoordinationDir() string { return filepath.Join(t.AgentDir(), coordinationDir) }

// CoordinationPrompts returns .agent/coordination/prompts.
func (t Tree) CoordinationPrompts() string { return filepath.Join(t.CoordinationDir(), promptsDir) }

// CoordinationResults returns .agent/coordination/results.
func (t Tree) CoordinationResults() string { return filepath.Join(t.CoordinationDir(), resultsDir) }

// CoordinationStatus returns .agent/coordination/status.
func (t Tree) CoordinationStatus() string { return filepath.Join(t.CoordinationDir(), statusDir) }

// Checkpoints returns .agent/checkpoints.
func (t Tree) Checkpoints() string { return filepath.Join(t.AgentDir(), checkpointsDir) }

// Metrics returns .agent/metrics.
func (t Tree) Metrics() string { return filepath.Join(t.AgentDir(), metricsDir) }

// Logs returns .agent/logs.
func (t Tree) Logs() string { return filepath.Join(t.AgentDir(), logsDir) }

// Evidence returns validation-evidence.
func (t Tree) Evidence() string { return filepath.Join(t.RunDir, EvidenceDir) }

// PidFile returns .agent/run.pid, written at startup so an operator `pause`
// invocation can locate the running supervisor process.
func (t Tree) PidFile() string { return filepath.Join(t.AgentDir(), pidFile) }

// ResumeSignal returns .agent/resume-signal, the marker file an operator
// `resume` invocation creates to wake a Paused run.
func (t Tree) ResumeSignal() string { return filepath.Join(t.AgentDir(), resumeSignalFile) }

// AllDirs lists every directory that must exist before a run starts.
func (t Tree) AllDirs() []string {
	return []string{
		t.AgentDir(),
		t.CoordinationDir(),
		t.CoordinationPrompts(),
		t.CoordinationResults(),
		t.CoordinationStatus(),
		t.Checkpoints(),
		t.Metrics(),
		t.Logs(),
	}
}
