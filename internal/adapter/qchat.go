package adapter

import (
	"context"
	"os/exec"
	"time"
)

// QChatAdapter executes prompts via the Amazon Q CLI's chat mode and
// supports model selection via the --model flag.
type QChatAdapter struct {
	model string
}

// NewQChatAdapter returns a QChatAdapter configured for the given model.
// Pass an empty string to use the agent's default model.
func NewQChatAdapter(model string) *QChatAdapter {
	return &QChatAdapter{model: model}
}

func (a *QChatAdapter) Name() AgentType { return AgentQChat }

func (a *QChatAdapter) SupportsModelSelection() bool { return true }

func (a *QChatAdapter) Available(ctx context.Context) bool {
	_, err := exec.LookPath(AgentCommands[AgentQChat].Command[0])
	return err == nil
}

func (a *QChatAdapter) Execute(ctx context.Context, prompt, promptFilePath string, deadline time.Time) AgentResponse {
	return runProcess(withDeadline(ctx, deadline), AgentCommands[AgentQChat], prompt, promptFilePath, a.model)
}

// FetchModels returns the list of models available through qchat.
func (a *QChatAdapter) FetchModels(ctx context.Context) ([]string, error) {
	return FetchModels(ctx, AgentQChat)
}
