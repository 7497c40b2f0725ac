package adapter

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeACPAgent is a tiny shell script that reads one JSON-RPC request line
// from stdin and writes back a canned "session/prompt" success response
// carrying the same id, exercising the adapter's request/response
// correlation without a real agent binary.
func fakeACPAgent(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake shell agent not supported on windows")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "acp-agent")
	body := `#!/bin/sh
read line
id=$(echo "$line" | sed -n 's/.*"id":\([0-9]*\).*/\1/p')
printf '{"jsonrpc":"2.0","id":%s,"result":{"output":"did the work","tokensIn":10,"tokensOut":4}}\n' "$id"
sleep 5
`
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script
}

func TestACPExecuteRoundTrip(t *testing.T) {
	script := fakeACPAgent(t)
	a := NewACPAdapter()
	a.command = []string{script}
	defer a.Shutdown()

	resp := a.Execute(context.Background(), "do the task", "", time.Now().Add(5*time.Second))

	assert.True(t, resp.Success)
	assert.Equal(t, "did the work", resp.Output)
	require.NotNil(t, resp.TokensIn)
	assert.Equal(t, 10, *resp.TokensIn)
}

func TestACPAvailableFalseForMissingBinary(t *testing.T) {
	a := NewACPAdapter()
	a.command = []string{"definitely-not-a-real-acp-binary-xyz"}
	assert.False(t, a.Available(context.Background()))
}

func TestACPShutdownBeforeStartIsNoop(t *testing.T) {
	a := NewACPAdapter()
	assert.NoError(t, a.Shutdown())
}

func TestACPExecuteTimesOutWithoutResponse(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake shell agent not supported on windows")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "silent-agent")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\n"), 0o755))

	a := NewACPAdapter()
	a.command = []string{script}
	defer a.Shutdown()

	resp := a.Execute(context.Background(), "x", "", time.Now().Add(100*time.Millisecond))
	assert.False(t, resp.Success)
	assert.Equal(t, "timeout", resp.Error)
}
