// Package looprun implements the IterationLoop supervisor: it sequences
// subprocess invocations through the Run state machine, composing the
// SafetyGuard, ContextManager, adapter layer, CostTracker,
// PromptCompletionDetector, Checkpoint/Rollback, and EvidenceValidator into
// one control loop.
package looprun

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ralph-core/ralph-core/internal/adapter"
	"github.com/ralph-core/ralph-core/internal/checkpoint"
	"github.com/ralph-core/ralph-core/internal/completion"
	contextmgr "github.com/ralph-core/ralph-core/internal/context"
	"github.com/ralph-core/ralph-core/internal/cost"
	"github.com/ralph-core/ralph-core/internal/errs"
	"github.com/ralph-core/ralph-core/internal/evidence"
	"github.com/ralph-core/ralph-core/internal/layout"
	"github.com/ralph-core/ralph-core/internal/metrics"
	"github.com/ralph-core/ralph-core/internal/pause"
	"github.com/ralph-core/ralph-core/internal/resume"
	"github.com/ralph-core/ralph-core/internal/safety"
	"github.com/ralph-core/ralph-core/internal/state"
	"github.com/ralph-core/ralph-core/internal/suborchestrator"
)

const maxConsecutiveFailures = 3

// Config wires every component the loop composes.
type Config struct {
	Tree   layout.Tree
	Logger zerolog.Logger

	Adapter      adapter.Adapter
	Orchestrator *suborchestrator.Orchestrator // nil disables orchestrated iterations
	ContextMgr   *contextmgr.Manager
	Guard        *safety.Guard
	Cost         *cost.Tracker
	Checkpoints  *checkpoint.Store
	Detector     *completion.Detector

	EnableOrchestration bool
	EnableValidation    bool
	EvidenceConfig      evidence.Config
	MaxValidationRetries int

	AdapterTimeout      time.Duration
	InterIterationSleep time.Duration
	MaxRuntime          time.Duration

	// Pause and Resume are both optional. A nil Pause means the loop never
	// honors an operator pause request; a nil Resume means a Paused run
	// returns its document immediately rather than blocking for a resume
	// signal (a caller-driven resume, as opposed to a loop-driven one).
	Pause  *pause.Controller
	Resume *resume.Watcher
}

// Loop is one run's supervisor.
type Loop struct {
	cfg Config
	run *state.Run

	iterations          []metrics.IterationStats
	priorOutputs        []string // most-recent-first
	consecutiveFailures int
	validationAttempts  int
	launchedSubagents   []string
}

// New returns a Loop ready to drive run through its lifecycle.
func New(cfg Config, run *state.Run) *Loop {
	if cfg.MaxValidationRetries <= 0 {
		cfg.MaxValidationRetries = 1
	}
	return &Loop{cfg: cfg, run: run}
}

// Run drives the state machine to a terminal state and returns the Document
// describing the run, or an error if it could not even start. With no
// Resume watcher configured, it also returns as soon as the run pauses.
func (l *Loop) Run(ctx context.Context) (metrics.Document, error) {
	if err := l.run.MoveTo(state.Running, ""); err != nil {
		return metrics.Document{}, fmt.Errorf("%w: %v", errs.ErrConfig, err)
	}

	for !l.run.Status.IsTerminal() {
		select {
		case <-ctx.Done():
			_ = l.run.MoveTo(state.Aborted, "operator_cancel")
		default:
		}
		if l.run.Status.IsTerminal() {
			break
		}

		if l.run.Status == state.Running && l.cfg.Pause != nil && l.cfg.Pause.Requested() {
			l.cfg.Pause.Clear()
			_ = l.run.MoveTo(state.Paused, "operator_signal")
		}

		switch l.run.Status {
		case state.Running:
			l.stepRunning(ctx)
		case state.Paused:
			if l.cfg.Resume == nil {
				// No resume channel configured: the caller drives resumption
				// out of band, so hand back the document as-is.
				return l.document(), nil
			}
			if err := l.cfg.Resume.Wait(ctx); err != nil {
				_ = l.run.MoveTo(state.Aborted, "operator_cancel")
				continue
			}
			_ = l.run.MoveTo(state.Running, "")
		case state.Completing:
			_ = l.run.MoveTo(state.Complete, "completion_marker")
		case state.Validating:
			l.stepValidating()
		}
	}

	return l.document(), nil
}

func (l *Loop) stepRunning(ctx context.Context) {
	elapsed := time.Since(l.run.StartedAt).Seconds()
	verdict := l.cfg.Guard.Check(safety.Snapshot{
		Iteration:           l.run.Iteration,
		ElapsedSeconds:      elapsed,
		Cost:                l.run.CumulativeCost,
		ConsecutiveFailures: l.consecutiveFailures,
		LastOutput:          first(l.priorOutputs),
		PriorOutputs:        rest(l.priorOutputs),
	})
	if verdict.Action == safety.ActionAbort {
		_ = l.run.MoveTo(state.Aborted, verdict.Reason)
		return
	}

	prompt, err := l.cfg.ContextMgr.GetPrompt()
	if err != nil {
		l.recordFailure(metrics.OutcomeToolError, err.Error())
		return
	}

	if err := l.cfg.Checkpoints.Checkpoint(l.run.Iteration + 1); err != nil {
		l.cfg.Logger.Warn().Err(err).Msg("checkpoint failed")
	}
	l.cfg.Checkpoints.RunSnapshotCommand(ctx)

	deadline := l.iterationDeadline()
	start := time.Now()

	resp := l.invoke(ctx, prompt, deadline)

	outcome := metrics.OutcomeSuccess
	switch {
	case resp.Error == "timeout":
		outcome = metrics.OutcomeTimeout
	case !resp.Success:
		outcome = metrics.OutcomeToolError
	}

	l.cfg.Cost.Record(string(l.cfg.Adapter.Name()), resp.TokensIn, resp.TokensOut, resp.Cost)
	l.run.CumulativeCost = l.cfg.Cost.TotalCost()
	l.run.Iteration++

	stats := metrics.IterationStats{
		Sequence:  l.run.Iteration,
		StartedAt: start,
		EndedAt:   time.Now(),
		AgentTag:  string(l.cfg.Adapter.Name()),
		Outcome:   outcome,
		TokensIn:  resp.TokensIn,
		TokensOut: resp.TokensOut,
		Cost:      resp.Cost,
	}
	l.iterations = append(l.iterations, stats)
	l.priorOutputs = append([]string{resp.Output}, l.priorOutputs...)

	if resp.Success {
		l.consecutiveFailures = 0
		l.cfg.ContextMgr.AppendSuccessNote(fmt.Sprintf("iteration %d succeeded", l.run.Iteration))
	} else {
		l.consecutiveFailures++
		l.cfg.ContextMgr.AppendErrorNote(fmt.Sprintf("iteration %d: %s", l.run.Iteration, resp.Error))
		if l.consecutiveFailures >= maxConsecutiveFailures {
			_ = l.run.MoveTo(state.Failed, "consecutive_failures")
			return
		}
	}
	l.cfg.ContextMgr.AppendIterationSummary(summarize(resp))

	promptText, err := l.cfg.ContextMgr.GetPrompt()
	complete := err == nil && l.cfg.Detector.Check(promptText)
	orchestrationPass := l.cfg.EnableOrchestration && l.lastOrchestrationPassed()

	if complete || orchestrationPass {
		if l.cfg.EnableValidation {
			_ = l.run.MoveTo(state.Validating, "")
		} else {
			_ = l.run.MoveTo(state.Completing, "")
		}
		return
	}

	if l.cfg.InterIterationSleep > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(l.cfg.InterIterationSleep):
		}
	}
}

func (l *Loop) invoke(ctx context.Context, prompt string, deadline time.Time) adapter.AgentResponse {
	if l.cfg.EnableOrchestration && l.cfg.Orchestrator != nil {
		id := fmt.Sprintf("iter-%d", l.run.Iteration+1)
		l.launchedSubagents = append(l.launchedSubagents, id)
		resp, err := l.cfg.Orchestrator.ExecuteOne(ctx, id, prompt, deadline)
		if err != nil {
			return adapter.AgentResponse{Success: false, Error: err.Error()}
		}
		return resp
	}
	return l.cfg.Adapter.Execute(ctx, prompt, l.cfg.Tree.Prompt(), deadline)
}

func (l *Loop) lastOrchestrationPassed() bool {
	if len(l.launchedSubagents) == 0 {
		return false
	}
	verdict, _, err := l.cfg.Orchestrator.Aggregate(l.launchedSubagents)
	return err == nil && verdict == suborchestrator.VerdictPass
}

func (l *Loop) stepValidating() {
	result := evidence.Validate(l.cfg.Tree.Evidence(), l.cfg.EvidenceConfig)
	l.validationAttempts++

	if result.Success {
		_ = l.run.MoveTo(state.Complete, "evidence_passed")
		return
	}
	if l.validationAttempts < l.cfg.MaxValidationRetries {
		_ = l.run.MoveTo(state.Running, "evidence_retry")
		return
	}
	_ = l.run.MoveTo(state.Failed, "evidence_failed")
}

func (l *Loop) recordFailure(outcome metrics.ExitOutcome, msg string) {
	l.consecutiveFailures++
	l.cfg.ContextMgr.AppendErrorNote(msg)
	l.iterations = append(l.iterations, metrics.IterationStats{
		Sequence: l.run.Iteration + 1,
		Outcome:  outcome,
	})
	if l.consecutiveFailures >= maxConsecutiveFailures {
		_ = l.run.MoveTo(state.Failed, "consecutive_failures")
	}
}

func (l *Loop) iterationDeadline() time.Time {
	if l.cfg.AdapterTimeout > 0 {
		return time.Now().Add(l.cfg.AdapterTimeout)
	}
	if l.cfg.MaxRuntime > 0 {
		remaining := l.cfg.MaxRuntime - time.Since(l.run.StartedAt)
		if remaining > 0 {
			return time.Now().Add(remaining)
		}
	}
	return time.Now().Add(10 * time.Minute)
}

func (l *Loop) document() metrics.Document {
	doc := metrics.Document{
		Summary: metrics.Summary{
			RunID:          l.run.ID,
			AgentTag:       l.run.AgentTag,
			StartedAt:      l.run.StartedAt,
			EndedAt:        time.Now(),
			Iterations:     l.run.Iteration,
			TotalTokensIn:  l.cfg.Cost.TokensIn(),
			TotalTokensOut: l.cfg.Cost.TokensOut(),
			TotalCost:      l.cfg.Cost.TotalCost(),
			FinalStatus:    string(l.run.Status),
		},
		Iterations: l.iterations,
	}
	if l.run.Verdict != nil {
		doc.Summary.FinalReason = l.run.Verdict.Reason
	}
	if l.cfg.EnableOrchestration && l.cfg.Orchestrator != nil && len(l.launchedSubagents) > 0 {
		verdict, summary, _ := l.cfg.Orchestrator.Aggregate(l.launchedSubagents)
		orch := &metrics.Orchestration{Enabled: true}
		orch.Results.Verdict = string(verdict)
		orch.Results.Summary = summary
		doc.Orchestration = orch
	}
	return doc
}

func summarize(resp adapter.AgentResponse) string {
	out := resp.Output
	if len(out) > 200 {
		out = out[:200] + "..."
	}
	return out
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func rest(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s[1:]
}
