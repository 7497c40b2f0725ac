// Package context implements the ContextManager: it owns the prompt file
// descriptor, the bounded history of recent iterations, and the task queue,
// and exposes the single getPrompt entry point the loop calls each
// iteration. The checkpoint store also touches the prompt file directly:
// it copies it into snapshots and rewrites it on rollback.
package context

import (
	"fmt"
	"os"

	"github.com/ralph-core/ralph-core/internal/plan"
	"github.com/ralph-core/ralph-core/internal/prompt"
	"github.com/ralph-core/ralph-core/internal/ringbuffer"
)

// Config controls the ring buffer capacities and stable prefix. Zero values
// fall back to the documented defaults (5 dynamic, 5 error, 3 success).
type Config struct {
	StablePrefix    string
	DynamicCap      int
	ErrorCap        int
	SuccessCap      int
}

func (c Config) withDefaults() Config {
	if c.DynamicCap <= 0 {
		c.DynamicCap = 5
	}
	if c.ErrorCap <= 0 {
		c.ErrorCap = 5
	}
	if c.SuccessCap <= 0 {
		c.SuccessCap = 3
	}
	if c.StablePrefix == "" {
		c.StablePrefix = prompt.DefaultStablePrefix
	}
	return c
}

// Manager is the ContextManager. It is not safe for concurrent use; the
// state machine guarantees only one iteration is in flight at a time.
type Manager struct {
	promptPath string
	cfg        Config

	dynamic  *ringbuffer.Buffer[string]
	errors   *ringbuffer.Buffer[string]
	successes *ringbuffer.Buffer[string]

	tasks   *plan.Manager
	taskList *plan.List
}

// New constructs a Manager backed by the prompt file at promptPath and the
// task list at taskListPath. It does not read either from disk; call Load.
func New(promptPath, taskListPath string, cfg Config) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		promptPath: promptPath,
		cfg:        cfg,
		dynamic:    ringbuffer.New[string](cfg.DynamicCap),
		errors:     ringbuffer.New[string](cfg.ErrorCap),
		successes:  ringbuffer.New[string](cfg.SuccessCap),
		tasks:      plan.NewManager(taskListPath),
	}
}

// Load reads the on-disk task list into memory. Called once at Run start;
// the prompt file itself is re-read fresh on every getPrompt call instead,
// since the agent may rewrite it between iterations.
func (m *Manager) Load() error {
	l, err := m.tasks.Load()
	if err != nil {
		return fmt.Errorf("context: loading task list: %w", err)
	}
	m.taskList = l
	return nil
}

// GetPrompt re-reads the prompt file from disk and returns it concatenated
// with the bounded context block built from dynamic/error/success history,
// most-recent-first.
func (m *Manager) GetPrompt() (string, error) {
	raw, err := os.ReadFile(m.promptPath)
	if err != nil {
		return "", fmt.Errorf("context: reading prompt file: %w", err)
	}

	return prompt.Render(string(raw), m.cfg.StablePrefix,
		prompt.Section{Heading: "Recent iterations", Entries: m.dynamic.Recent()},
		prompt.Section{Heading: "Recent errors", Entries: m.errors.Recent()},
		prompt.Section{Heading: "Recent successes", Entries: m.successes.Recent()},
	), nil
}

// AppendErrorNote records a bounded note about an iteration failure.
func (m *Manager) AppendErrorNote(note string) { m.errors.Push(note) }

// AppendSuccessNote records a bounded note about an iteration success.
func (m *Manager) AppendSuccessNote(note string) { m.successes.Push(note) }

// AppendIterationSummary records a bounded note summarizing what happened
// during an iteration, independent of its pass/fail outcome.
func (m *Manager) AppendIterationSummary(summary string) { m.dynamic.Push(summary) }

// Tasks returns the in-memory task list. Callers must call SaveTasks after
// mutating it through the plan package's helpers.
func (m *Manager) Tasks() *plan.List { return m.taskList }

// SaveTasks persists the in-memory task list to disk.
func (m *Manager) SaveTasks() error {
	if err := m.tasks.Save(m.taskList); err != nil {
		return fmt.Errorf("context: saving task list: %w", err)
	}
	return nil
}

// PromoteTask transitions a pending task to in_progress and persists the
// change.
func (m *Manager) PromoteTask(id string) error {
	if err := plan.Promote(m.taskList, id); err != nil {
		return err
	}
	return m.SaveTasks()
}

// CompleteTask transitions an in_progress task to completed and persists
// the change.
func (m *Manager) CompleteTask(id string) error {
	if err := plan.Complete(m.taskList, id); err != nil {
		return err
	}
	return m.SaveTasks()
}

// FailTask transitions an in_progress task to failed and persists the
// change.
func (m *Manager) FailTask(id string) error {
	if err := plan.Fail(m.taskList, id); err != nil {
		return err
	}
	return m.SaveTasks()
}
