package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPatternChecksCheckboxLine(t *testing.T) {
	d, err := New("")
	require.NoError(t, err)

	assert.True(t, d.Check("- [x] TASK_COMPLETE\n"))
	assert.True(t, d.Check("Some notes\n- [x] done, TASK_COMPLETE reached\n"))
}

func TestDefaultPatternRejectsBareMentionOfMarker(t *testing.T) {
	d, err := New("")
	require.NoError(t, err)

	assert.False(t, d.Check("The marker is TASK_COMPLETE, remember to check it off."))
	assert.False(t, d.Check("- [ ] TASK_COMPLETE\n"), "unchecked box does not count")
}

func TestCustomPattern(t *testing.T) {
	d, err := New(`(?m)^\s*-\s\[x\]\s.*DONE`)
	require.NoError(t, err)

	assert.True(t, d.Check("- [x] DONE\n"))
	assert.False(t, d.Check("- [x] TASK_COMPLETE\n"))
}

func TestNewInvalidPattern(t *testing.T) {
	_, err := New("(unterminated")
	assert.Error(t, err)
}
