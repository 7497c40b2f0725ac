package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{Initializing, Running, true},
		{Initializing, Complete, false},
		{Running, Running, true},
		{Running, Completing, true},
		{Running, Paused, true},
		{Running, Validating, true},
		{Running, Complete, false},
		{Paused, Running, true},
		{Paused, Completing, false},
		{Completing, Complete, true},
		{Completing, Running, false},
		{Validating, Complete, true},
		{Validating, Running, true},
		{Validating, Failed, true},
		{Validating, Paused, false},
	}
	for _, c := range cases {
		err := Transition(c.from, c.to)
		if c.ok {
			assert.NoErrorf(t, err, "%s -> %s should be allowed", c.from, c.to)
		} else {
			assert.ErrorIsf(t, err, ErrInvalidTransition, "%s -> %s should be rejected", c.from, c.to)
		}
	}
}

func TestTransitionWildcardAbortFailed(t *testing.T) {
	for _, from := range []Status{Initializing, Running, Paused, Completing, Validating} {
		assert.NoError(t, Transition(from, Aborted))
		assert.NoError(t, Transition(from, Failed))
	}
}

func TestTransitionTerminalIsClosed(t *testing.T) {
	for _, from := range []Status{Complete, Aborted, Failed} {
		err := Transition(from, Running)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestRunMoveToRecordsVerdictOnTerminal(t *testing.T) {
	r := New("run-1", "claude", "PROMPT.md")
	require.NoError(t, r.MoveTo(Running, ""))
	require.NoError(t, r.MoveTo(Failed, "consecutive_failures"))

	assert.Equal(t, Failed, r.Status)
	require.NotNil(t, r.Verdict)
	assert.Equal(t, Failed, r.Verdict.Status)
	assert.Equal(t, "consecutive_failures", r.Verdict.Reason)
}

func TestRunMoveToRejectsInvalidTransition(t *testing.T) {
	r := New("run-1", "claude", "PROMPT.md")
	err := r.MoveTo(Complete, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Initializing, r.Status)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := New("run-1", "claude", filepath.Join(dir, "PROMPT.md"))
	require.NoError(t, r.MoveTo(Running, ""))
	r.Iteration = 3
	r.CumulativeCost = 1.25

	require.NoError(t, Save(dir, r))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, r.ID, loaded.ID)
	assert.Equal(t, r.Status, loaded.Status)
	assert.Equal(t, r.Iteration, loaded.Iteration)
	assert.Equal(t, r.CumulativeCost, loaded.CumulativeCost)
}

func TestLoadMissingFileReturnsNilNil(t *testing.T) {
	dir := t.TempDir()
	r, err := Load(dir)
	assert.NoError(t, err)
	assert.Nil(t, r)
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []Status{Complete, Aborted, Failed} {
		assert.True(t, s.IsTerminal())
	}
	for _, s := range []Status{Initializing, Running, Paused, Completing, Validating} {
		assert.False(t, s.IsTerminal())
	}
}
