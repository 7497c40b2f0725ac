// Package plan manages the task queue owned by the ContextManager, persisted
// as task-list.json using the same crash-safe tmp+rename write strategy the
// teacher used for its own state file. The schema and status set follow
// spec section 3 (ContextState's task queue) and section 6 (Task list JSON)
// exactly: a task may only move pending -> in_progress -> {completed,
// failed}, and its description is immutable once recorded.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Task describes a single unit of work tracked by the run. Title, Priority,
// RetryCount, MaxRetries and ValidationCommand are supplemental fields
// carried over from the corpus's own task-queue implementations; they are
// not required by the core spec but are harmless additional detail a
// complete implementation would keep.
type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title,omitempty"`
	Description       string     `json:"description"`
	Priority          int        `json:"priority,omitempty"`
	Status            string     `json:"status"`
	RetryCount        int        `json:"retryCount,omitempty"`
	MaxRetries        int        `json:"maxRetries,omitempty"`
	ValidationCommand string     `json:"validationCommand,omitempty"`
	CompletedAt       *time.Time `json:"completed_at"`
}

// List is the on-disk task-list.json document shape (spec section 6).
type List struct {
	PromptFile     string `json:"prompt_file"`
	TotalTasks     int    `json:"total_tasks"`
	CompletedTasks int    `json:"completed_tasks"`
	Tasks          []Task `json:"tasks"`
}

// ErrImmutableDescription is returned when a caller attempts to change a
// task's description after it has already been recorded.
var ErrImmutableDescription = errors.New("plan: task description is immutable once recorded")

// ErrInvalidTransition is returned when a status change does not follow
// pending -> in_progress -> {completed, failed}.
var ErrInvalidTransition = errors.New("plan: invalid task status transition")

// ErrTaskNotFound is returned when an operation names an unknown task id.
var ErrTaskNotFound = errors.New("plan: task not found")

// Manager reads and writes the task queue for one run directory.
type Manager struct {
	path string
}

// NewManager returns a Manager backed by the task-list.json file at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

func (m *Manager) tmpPath() string { return m.path + ".tmp" }

// Load reads the task list. A missing file yields an empty, zeroed List
// rather than an error, mirroring the teacher's LoadTasks behavior.
func (m *Manager) Load() (*List, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return &List{Tasks: []Task{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("plan: reading task list: %w", err)
	}

	var l List
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("plan: parsing task list: %w", err)
	}
	if l.Tasks == nil {
		l.Tasks = []Task{}
	}
	return &l, nil
}

// Save recomputes TotalTasks/CompletedTasks and persists the list with a
// crash-safe tmp+rename write.
func (m *Manager) Save(l *List) error {
	l.TotalTasks = len(l.Tasks)
	completed := 0
	for _, t := range l.Tasks {
		if t.Status == StatusCompleted {
			completed++
		}
	}
	l.CompletedTasks = completed

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("plan: creating task list directory: %w", err)
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("plan: encoding task list: %w", err)
	}

	if err := os.WriteFile(m.tmpPath(), data, 0o644); err != nil {
		return fmt.Errorf("plan: writing tmp task list: %w", err)
	}
	if err := os.Rename(m.tmpPath(), m.path); err != nil {
		return fmt.Errorf("plan: committing task list: %w", err)
	}
	return nil
}

// AddTask appends a new pending task with an immutable description and
// returns it. The caller-supplied id must be unique; callers typically
// derive it from a monotonic counter or a uuid.
func AddTask(l *List, id, description string) Task {
	t := Task{ID: id, Description: description, Status: StatusPending}
	l.Tasks = append(l.Tasks, t)
	return t
}

// Promote transitions a pending task to in_progress.
func Promote(l *List, id string) error {
	return transition(l, id, StatusPending, StatusInProgress)
}

// Complete transitions an in_progress task to completed, stamping
// CompletedAt.
func Complete(l *List, id string) error {
	if err := transition(l, id, StatusInProgress, StatusCompleted); err != nil {
		return err
	}
	now := time.Now()
	for i := range l.Tasks {
		if l.Tasks[i].ID == id {
			l.Tasks[i].CompletedAt = &now
			return nil
		}
	}
	return ErrTaskNotFound
}

// Fail transitions an in_progress task to failed.
func Fail(l *List, id string) error {
	return transition(l, id, StatusInProgress, StatusFailed)
}

func transition(l *List, id, from, to string) error {
	for i := range l.Tasks {
		if l.Tasks[i].ID != id {
			continue
		}
		if l.Tasks[i].Status != from {
			return fmt.Errorf("%w: task %s is %s, not %s", ErrInvalidTransition, id, l.Tasks[i].Status, from)
		}
		l.Tasks[i].Status = to
		return nil
	}
	return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// SetDescription sets a task's description exactly once; subsequent calls
// with a different value return ErrImmutableDescription.
func SetDescription(l *List, id, description string) error {
	for i := range l.Tasks {
		if l.Tasks[i].ID != id {
			continue
		}
		if l.Tasks[i].Description != "" && l.Tasks[i].Description != description {
			return ErrImmutableDescription
		}
		l.Tasks[i].Description = description
		return nil
	}
	return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// NextPending returns the first pending task ordered by Priority (ascending,
// 1 = highest), or nil if none remain.
func NextPending(l *List) *Task {
	var best *Task
	for i := range l.Tasks {
		if l.Tasks[i].Status != StatusPending {
			continue
		}
		if best == nil || l.Tasks[i].Priority < best.Priority {
			best = &l.Tasks[i]
		}
	}
	return best
}

// AllTerminal reports whether every task is completed or failed, i.e. no
// pending or in_progress work remains. An empty list is never considered
// done.
func AllTerminal(l *List) bool {
	if len(l.Tasks) == 0 {
		return false
	}
	for _, t := range l.Tasks {
		if t.Status == StatusPending || t.Status == StatusInProgress {
			return false
		}
	}
	return true
}
