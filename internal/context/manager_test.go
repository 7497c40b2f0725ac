package context

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralph-core/ralph-core/internal/plan"
)

func newTestManager(t *testing.T) (*Manager, string, string) {
	t.Helper()
	dir := t.TempDir()
	promptPath := filepath.Join(dir, "PROMPT.md")
	taskListPath := filepath.Join(dir, "task-list.json")
	require.NoError(t, os.WriteFile(promptPath, []byte("# Task\ndo the thing"), 0o644))

	m := New(promptPath, taskListPath, Config{})
	require.NoError(t, m.Load())
	return m, promptPath, taskListPath
}

func TestGetPromptReadsFileFreshEachCall(t *testing.T) {
	m, promptPath, _ := newTestManager(t)

	out, err := m.GetPrompt()
	require.NoError(t, err)
	assert.Contains(t, out, "do the thing")

	require.NoError(t, os.WriteFile(promptPath, []byte("# Task\nnew content"), 0o644))
	out, err = m.GetPrompt()
	require.NoError(t, err)
	assert.Contains(t, out, "new content")
	assert.NotContains(t, out, "do the thing")
}

func TestGetPromptIncludesAppendedNotes(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.AppendErrorNote("iteration 1 failed: panic")
	m.AppendSuccessNote("iteration 2 passed validation")
	m.AppendIterationSummary("iteration 1: touched foo.go")

	out, err := m.GetPrompt()
	require.NoError(t, err)
	assert.Contains(t, out, "iteration 1 failed: panic")
	assert.Contains(t, out, "iteration 2 passed validation")
	assert.Contains(t, out, "iteration 1: touched foo.go")
}

func TestGetPromptMissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	m := New(filepath.Join(dir, "missing.md"), filepath.Join(dir, "task-list.json"), Config{})
	require.NoError(t, m.Load())

	_, err := m.GetPrompt()
	assert.Error(t, err)
}

func TestTaskLifecycleDelegatesAndPersists(t *testing.T) {
	m, _, taskListPath := newTestManager(t)

	list := m.Tasks()
	plan.AddTask(list, "t1", "do a thing")
	require.NoError(t, m.SaveTasks())

	require.NoError(t, m.PromoteTask("t1"))
	require.NoError(t, m.CompleteTask("t1"))

	data, err := os.ReadFile(taskListPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"completed"`)
	assert.Contains(t, string(data), `"completed_tasks": 1`)
}

func TestFailTaskRequiresInProgress(t *testing.T) {
	m, _, _ := newTestManager(t)
	list := m.Tasks()
	plan.AddTask(list, "t1", "do a thing")
	require.NoError(t, m.SaveTasks())

	err := m.FailTask("t1")
	assert.ErrorIs(t, err, plan.ErrInvalidTransition)
}

func TestConfigDefaultsApplyWhenZero(t *testing.T) {
	m := New("prompt.md", "tasks.json", Config{})
	assert.Equal(t, 5, m.cfg.DynamicCap)
	assert.Equal(t, 5, m.cfg.ErrorCap)
	assert.Equal(t, 3, m.cfg.SuccessCap)
	assert.NotEmpty(t, m.cfg.StablePrefix)
}
