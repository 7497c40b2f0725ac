package adapter

import (
	"context"
	"os/exec"
	"time"
)

// GeminiAdapter executes prompts via the Gemini CLI and supports model
// selection via the --model flag.
type GeminiAdapter struct {
	model string
}

// NewGeminiAdapter returns a GeminiAdapter configured for the given model.
// Pass an empty string to use the agent's default model.
func NewGeminiAdapter(model string) *GeminiAdapter {
	return &GeminiAdapter{model: model}
}

func (a *GeminiAdapter) Name() AgentType { return AgentGemini }

func (a *GeminiAdapter) SupportsModelSelection() bool { return true }

func (a *GeminiAdapter) Available(ctx context.Context) bool {
	_, err := exec.LookPath(AgentCommands[AgentGemini].Command[0])
	return err == nil
}

func (a *GeminiAdapter) Execute(ctx context.Context, prompt, promptFilePath string, deadline time.Time) AgentResponse {
	return runProcess(withDeadline(ctx, deadline), AgentCommands[AgentGemini], prompt, promptFilePath, a.model)
}

// FetchModels returns the list of models available through gemini.
func (a *GeminiAdapter) FetchModels(ctx context.Context) ([]string, error) {
	return FetchModels(ctx, AgentGemini)
}
