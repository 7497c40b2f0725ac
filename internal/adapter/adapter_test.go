package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReturnsConcreteAdapterPerAgentType(t *testing.T) {
	assert.IsType(t, &ClaudeAdapter{}, New(AgentClaude, ""))
	assert.IsType(t, &GeminiAdapter{}, New(AgentGemini, "flash"))
	assert.IsType(t, &QChatAdapter{}, New(AgentQChat, "sonnet"))
	assert.IsType(t, &ACPAdapter{}, New(AgentACP, ""))
}

func TestNewFallsBackToClaudeForUnknownAgent(t *testing.T) {
	assert.IsType(t, &ClaudeAdapter{}, New(AgentType("unknown"), ""))
}

func TestGeminiAdapterConfiguredWithModel(t *testing.T) {
	a := NewGeminiAdapter("gemini-2.5-pro")
	assert.True(t, a.SupportsModelSelection())
	assert.Equal(t, AgentGemini, a.Name())
}

func TestClaudeAdapterDoesNotSupportModelSelection(t *testing.T) {
	a := NewClaudeAdapter()
	assert.False(t, a.SupportsModelSelection())
	assert.Equal(t, AgentClaude, a.Name())
}

func TestQChatAdapterName(t *testing.T) {
	a := NewQChatAdapter("")
	assert.Equal(t, AgentQChat, a.Name())
	assert.True(t, a.SupportsModelSelection())
}

func TestACPAdapterDefaultsToDenyAll(t *testing.T) {
	a := NewACPAdapter()
	assert.Equal(t, PermissionDenyAll, a.mode)
	assert.IsType(t, AutoDenyPrompter{}, a.prompter)
	assert.False(t, a.SupportsModelSelection())
}

func TestACPAdapterWithPermissionsOverridesModeAndPrompter(t *testing.T) {
	a := NewACPAdapter()
	custom := &fakePrompter{allow: true}
	a.WithPermissions(PermissionAsk, custom)
	assert.Equal(t, PermissionAsk, a.mode)
	assert.Same(t, custom, a.prompter)
}

type fakePrompter struct{ allow bool }

func (f *fakePrompter) Prompt(_ context.Context, _ PermissionRequest) bool {
	return f.allow
}
