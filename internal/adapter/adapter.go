// Package adapter provides a uniform interface over the external AI coding
// agent CLIs the supervisor spawns as subprocesses.
package adapter

import (
	"context"
	"time"
)

// AgentType identifies a supported AI coding agent.
type AgentType string

const (
	AgentClaude AgentType = "claude"
	AgentGemini AgentType = "gemini"
	AgentQChat  AgentType = "qchat"
	AgentACP    AgentType = "acp"
)

// ValidAgents is the ordered list of all supported agent types.
var ValidAgents = []AgentType{AgentClaude, AgentGemini, AgentQChat, AgentACP}

// AgentsSupportingModel is the subset of agents that accept a --model flag
// and expose a model listing command.
var AgentsSupportingModel = []AgentType{AgentGemini, AgentQChat}

// AgentResponse is what every adapter variant returns for one invocation.
type AgentResponse struct {
	Success         bool
	Output          string
	Error           string
	TokensIn        *int
	TokensOut       *int
	Cost            *float64
	DurationSeconds float64
	ExitCode        *int
}

// Adapter executes one agent invocation against a deadline and reports
// availability cheaply before the loop commits to it.
type Adapter interface {
	// Name returns the agent type identifier.
	Name() AgentType

	// Available performs a cheap readiness check: binary on PATH,
	// credentials present. It does not invoke the agent.
	Available(ctx context.Context) bool

	// Execute runs the agent against prompt, which is also available to it
	// as the file at promptFilePath. It blocks until the child exits, the
	// deadline passes, or ctx is canceled — whichever comes first.
	Execute(ctx context.Context, prompt, promptFilePath string, deadline time.Time) AgentResponse

	// SupportsModelSelection reports whether this adapter accepts a model flag.
	SupportsModelSelection() bool
}

// ModelFetcher is implemented by adapters that can enumerate available
// models. Agents in AgentsSupportingModel implement both Adapter and
// ModelFetcher.
type ModelFetcher interface {
	FetchModels(ctx context.Context) ([]string, error)
}

// New returns the concrete Adapter for the given agent type and model.
// model is only meaningful for agents in AgentsSupportingModel; it is
// ignored for others. An unknown agent type falls back to Claude.
func New(agent AgentType, model string) Adapter {
	switch agent {
	case AgentGemini:
		return NewGeminiAdapter(model)
	case AgentQChat:
		return NewQChatAdapter(model)
	case AgentACP:
		return NewACPAdapter()
	default:
		return NewClaudeAdapter()
	}
}
