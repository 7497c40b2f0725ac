package procguard

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackReleaseLifecycle(t *testing.T) {
	g := New()
	assert.Equal(t, 0, g.Len())

	cmd := exec.Command("true")
	g.Track(cmd)
	assert.Equal(t, 1, g.Len())

	g.Release(cmd)
	assert.Equal(t, 0, g.Len())
}

func TestReleaseUntrackedIsNoop(t *testing.T) {
	g := New()
	cmd := exec.Command("true")
	g.Release(cmd)
	assert.Equal(t, 0, g.Len())
}

func TestKillAllReapsTrackedProcesses(t *testing.T) {
	g := New()
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	g.Track(cmd)

	assert.Equal(t, 1, g.Len())
	g.KillAll()
	assert.Equal(t, 0, g.Len())
}

func TestKillAllOnEmptyGuardDoesNotPanic(t *testing.T) {
	g := New()
	assert.NotPanics(t, g.KillAll)
}

func TestTrackMultipleDistinctCommands(t *testing.T) {
	g := New()
	cmd1 := exec.Command("true")
	cmd2 := exec.Command("true")
	g.Track(cmd1)
	g.Track(cmd2)
	assert.Equal(t, 2, g.Len())

	g.Release(cmd1)
	assert.Equal(t, 1, g.Len())
}
