package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunProcessSuccessCapturesOutput(t *testing.T) {
	cfg := CommandConfig{Command: []string{"echo"}}
	resp := runProcess(context.Background(), cfg, "hello world", "", "")

	assert.True(t, resp.Success)
	assert.Contains(t, resp.Output, "hello world")
	require.NotNil(t, resp.ExitCode)
	assert.Equal(t, 0, *resp.ExitCode)
}

func TestRunProcessNonZeroExitIsFailure(t *testing.T) {
	cfg := CommandConfig{Command: []string{"false"}}
	resp := runProcess(context.Background(), cfg, "irrelevant", "", "")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.ExitCode)
	assert.NotEqual(t, 0, *resp.ExitCode)
}

func TestRunProcessTimeoutKillsChild(t *testing.T) {
	cfg := CommandConfig{Command: []string{"sleep", "30"}}
	ctx := withDeadline(context.Background(), time.Now().Add(100*time.Millisecond))

	start := time.Now()
	resp := runProcess(ctx, cfg, "x", "", "")
	elapsed := time.Since(start)

	assert.False(t, resp.Success)
	assert.Equal(t, "timeout", resp.Error)
	assert.Less(t, elapsed, killGrace+5*time.Second)
}

func TestRunProcessUnknownBinaryErrors(t *testing.T) {
	cfg := CommandConfig{Command: []string{"definitely-not-a-real-binary-xyz"}}
	resp := runProcess(context.Background(), cfg, "x", "", "")

	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestRunProcessModelFlagInsertedBeforePrompt(t *testing.T) {
	// "echo" just echoes its args; the prompt and --model flag should both
	// appear in the captured output, in order.
	cfg := CommandConfig{Command: []string{"echo"}}
	resp := runProcess(context.Background(), cfg, "do the task", "", "gpt-5")

	assert.Contains(t, resp.Output, "--model gpt-5 do the task")
}

func TestBuildEnvIncludesExtraVars(t *testing.T) {
	env := buildEnv(map[string]string{"FOO": "bar"})
	found := false
	for _, e := range env {
		if e == "FOO=bar" {
			found = true
		}
	}
	assert.True(t, found)
}
