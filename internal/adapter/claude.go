package adapter

import (
	"context"
	"os/exec"
	"time"
)

// ClaudeAdapter executes prompts via the Claude CLI.
type ClaudeAdapter struct{}

// NewClaudeAdapter returns a ClaudeAdapter. Claude does not support model
// selection via a flag in the current command configuration.
func NewClaudeAdapter() *ClaudeAdapter {
	return &ClaudeAdapter{}
}

func (a *ClaudeAdapter) Name() AgentType { return AgentClaude }

func (a *ClaudeAdapter) SupportsModelSelection() bool { return false }

func (a *ClaudeAdapter) Available(ctx context.Context) bool {
	_, err := exec.LookPath(AgentCommands[AgentClaude].Command[0])
	return err == nil
}

func (a *ClaudeAdapter) Execute(ctx context.Context, prompt, promptFilePath string, deadline time.Time) AgentResponse {
	return runProcess(withDeadline(ctx, deadline), AgentCommands[AgentClaude], prompt, promptFilePath, "")
}
