package adapter

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFakeBinary(t *testing.T, dir, name, script string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
}

func withFakeBinaryOnPath(t *testing.T, dir string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake shell binaries not supported on windows")
	}
	old := os.Getenv("PATH")
	require.NoError(t, os.Setenv("PATH", dir+string(os.PathListSeparator)+old))
	t.Cleanup(func() { _ = os.Setenv("PATH", old) })
}

func TestFetchModelsUnsupportedAgentReturnsEmpty(t *testing.T) {
	models, err := FetchModels(context.Background(), AgentClaude)
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestFetchModelsGeminiParsesLines(t *testing.T) {
	ClearModelCache()
	dir := t.TempDir()
	writeFakeBinary(t, dir, "gemini", `echo "gemini-2.5-pro"
echo ""
echo "gemini-2.5-flash"`)
	withFakeBinaryOnPath(t, dir)

	models, err := FetchModels(context.Background(), AgentGemini)
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.5-flash"}, models)
}

func TestFetchModelsIsCachedAcrossCalls(t *testing.T) {
	ClearModelCache()
	dir := t.TempDir()
	writeFakeBinary(t, dir, "gemini", `echo "only-once"`)
	withFakeBinaryOnPath(t, dir)

	first, err := FetchModels(context.Background(), AgentGemini)
	require.NoError(t, err)

	// Remove the binary; a cache hit should not need to re-exec it.
	require.NoError(t, os.Remove(filepath.Join(dir, "gemini")))

	second, err := FetchModels(context.Background(), AgentGemini)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFetchModelsQChatSkipsHeaderAndJoinsProviderModel(t *testing.T) {
	ClearModelCache()
	dir := t.TempDir()
	writeFakeBinary(t, dir, "q", `echo "Provider  Model"
echo "anthropic claude-sonnet"
echo "warning: deprecated flag"`)
	withFakeBinaryOnPath(t, dir)

	models, err := FetchModels(context.Background(), AgentQChat)
	require.NoError(t, err)
	assert.Equal(t, []string{"anthropic/claude-sonnet"}, models)
}
