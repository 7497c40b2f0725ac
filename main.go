// ralph-core is the entry point for the supervisor: it wires CLI flags,
// configuration, logging, the adapter layer, and the iteration loop, the way
// the teacher's main.go wired its Cobra command, config loader, and
// zerolog logger.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"regexp"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ralph-core/ralph-core/cmd"
	"github.com/ralph-core/ralph-core/config"
	"github.com/ralph-core/ralph-core/internal/adapter"
	"github.com/ralph-core/ralph-core/internal/checkpoint"
	"github.com/ralph-core/ralph-core/internal/completion"
	contextmgr "github.com/ralph-core/ralph-core/internal/context"
	"github.com/ralph-core/ralph-core/internal/coordination"
	"github.com/ralph-core/ralph-core/internal/cost"
	"github.com/ralph-core/ralph-core/internal/evidence"
	"github.com/ralph-core/ralph-core/internal/layout"
	applogger "github.com/ralph-core/ralph-core/internal/logger"
	"github.com/ralph-core/ralph-core/internal/looprun"
	"github.com/ralph-core/ralph-core/internal/metrics"
	"github.com/ralph-core/ralph-core/internal/pause"
	"github.com/ralph-core/ralph-core/internal/resume"
	"github.com/ralph-core/ralph-core/internal/safety"
	"github.com/ralph-core/ralph-core/internal/state"
	"github.com/ralph-core/ralph-core/internal/summary"
	"github.com/ralph-core/ralph-core/internal/suborchestrator"
)

// exit codes per the supervisor's documented contract.
const (
	exitComplete       = 0
	exitFailed         = 1
	exitAbortedByLimit = 2
	exitAbortedByOp    = 3
	exitConfigError    = 4
)

func main() {
	cmd.RunFunc = runLoop
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ralph-core: %v\n", err)
		os.Exit(exitConfigError)
	}
}

// runLoop is invoked by the `run` subcommand. It owns the whole lifecycle:
// config, logging, component wiring, execution, and the final report.
func runLoop() error {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ralph-core: configuration error: %v\n", err)
		os.Exit(exitConfigError)
	}

	logger, err := applogger.New(applogger.Config{
		Level:  applogger.Level(cfg.LogLevel),
		Format: logFormat(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ralph-core: logger error: %v\n", err)
		os.Exit(exitConfigError)
	}

	tree := layout.New(cfg.ProjectDir)
	for _, dir := range tree.AllDirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "ralph-core: creating %s: %v\n", dir, err)
			os.Exit(exitConfigError)
		}
	}
	ensurePromptFile(cfg, tree)

	runID := uuid.NewString()
	run := state.New(runID, cfg.Agent, tree.Prompt())
	runLogger := applogger.ForRun(logger, runID, cfg.Agent)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.WriteFile(tree.PidFile(), []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644); err != nil {
		runLogger.Warn().Err(err).Msg("writing pidfile")
	}
	defer os.Remove(tree.PidFile())

	pauseCtl := pause.New()
	pauseSignals := make(chan os.Signal, 1)
	signal.Notify(pauseSignals, syscall.SIGUSR1)
	defer signal.Stop(pauseSignals)
	go func() {
		for range pauseSignals {
			pauseCtl.Request()
		}
	}()

	adpt := adapter.New(adapter.AgentType(cfg.Agent), cfg.AgentModel)
	if !waitForAdapter(ctx, adpt, runLogger) {
		runLogger.Error().Str("agent", cfg.Agent).Msg("adapter unavailable")
		os.Exit(exitConfigError)
	}

	ctxMgr := contextmgr.New(tree.Prompt(), tree.TaskList(), contextmgr.Config{})
	if err := ctxMgr.Load(); err != nil {
		runLogger.Error().Err(err).Msg("loading task list")
		os.Exit(exitConfigError)
	}

	guard := safety.New(safety.Limits{
		MaxIterations:          cfg.MaxIterations,
		MaxRuntimeSeconds:      cfg.MaxRuntimeSeconds,
		MaxCost:                cfg.MaxCost,
		MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
		SimilarityThreshold:    cfg.LoopSimilarityThreshold,
		LoopDetectionK:         cfg.LoopDetectionK,
	}, nil)

	tracker := cost.New(nil)
	store := checkpoint.New(tree.Prompt(), tree.Checkpoints(), cfg.CheckpointDepth)
	detector, err := completion.New(completionPattern(cfg.CompletionMarker))
	if err != nil {
		runLogger.Error().Err(err).Msg("compiling completion pattern")
		os.Exit(exitConfigError)
	}

	var orch *suborchestrator.Orchestrator
	if cfg.EnableOrchestration {
		coordStore := coordination.New(tree)
		if err := coordStore.EnsureDirs(); err != nil {
			runLogger.Error().Err(err).Msg("preparing coordination directories")
			os.Exit(exitConfigError)
		}
		orch = suborchestrator.New(coordStore, pathCatalog{}, 1,
			func(ctx context.Context, profileType coordination.SubAgentType, prompt string, deadline time.Time) (coordination.Result, error) {
				resp := adpt.Execute(ctx, prompt, tree.Prompt(), deadline)
				var errPtr *string
				if resp.Error != "" {
					errPtr = &resp.Error
				}
				code := 0
				if resp.ExitCode != nil {
					code = *resp.ExitCode
				} else if !resp.Success {
					code = -1
				}
				return coordination.Result{
					Success:    resp.Success,
					Output:     resp.Output,
					TokensUsed: resp.TokensOut,
					Error:      errPtr,
					ReturnCode: code,
				}, nil
			})
	}

	loop := looprun.New(looprun.Config{
		Tree:                 tree,
		Logger:               runLogger,
		Adapter:              adpt,
		Orchestrator:         orch,
		ContextMgr:           ctxMgr,
		Guard:                guard,
		Cost:                 tracker,
		Checkpoints:          store,
		Detector:             detector,
		EnableOrchestration:  cfg.EnableOrchestration,
		EnableValidation:     cfg.EnableValidation,
		EvidenceConfig:       evidence.Config{FailOnEmptyEvidence: true},
		MaxValidationRetries: 2,
		AdapterTimeout:       time.Duration(cfg.AdapterTimeoutSeconds) * time.Second,
		InterIterationSleep:  time.Duration(cfg.InterIterationSleepSecs) * time.Second,
		MaxRuntime:           time.Duration(cfg.MaxRuntimeSeconds) * time.Second,
		Pause:                pauseCtl,
		Resume:               resume.New(tree.ResumeSignal()),
	}, run)

	doc, err := loop.Run(ctx)
	if err != nil {
		runLogger.Error().Err(err).Msg("loop failed to start")
		os.Exit(exitConfigError)
	}

	now := time.Now()
	if err := metrics.Write(tree.Metrics(), doc, now); err != nil {
		runLogger.Warn().Err(err).Msg("writing metrics document")
	}
	if err := state.Save(tree.RunDir, run); err != nil {
		runLogger.Warn().Err(err).Msg("saving run state")
	}

	fmt.Println(summary.Render(doc))

	shutdownAdapter(adpt, runLogger)
	adapter.KillAllChildren()

	os.Exit(exitCodeFor(run))
	return nil
}

// shutdownAdapter tears down an adapter's persistent child process, if it
// has one. os.Exit runs no deferred functions, so every exit path reached
// after the loop could have invoked the adapter must call this explicitly
// rather than relying on defer.
type shutdownCapable interface {
	Shutdown() error
}

func shutdownAdapter(adpt adapter.Adapter, logger zerolog.Logger) {
	sd, ok := adpt.(shutdownCapable)
	if !ok {
		return
	}
	if err := sd.Shutdown(); err != nil {
		logger.Warn().Err(err).Msg("shutting down adapter")
	}
}

// waitForAdapter retries the adapter's cheap availability probe with
// exponential backoff: a just-started agent CLI or a credentials file still
// being written by another process can make the first probe a false
// negative.
func waitForAdapter(ctx context.Context, adpt adapter.Adapter, logger zerolog.Logger) bool {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		if adpt.Available(ctx) {
			return nil
		}
		logger.Warn().Int("attempt", attempt).Str("agent", string(adpt.Name())).Msg("adapter not yet available, retrying")
		return fmt.Errorf("adapter not available")
	}, b)
	return err == nil
}

func exitCodeFor(run *state.Run) int {
	switch run.Status {
	case state.Complete:
		return exitComplete
	case state.Failed:
		return exitFailed
	case state.Aborted:
		if run.Verdict != nil && run.Verdict.Reason == "operator_cancel" {
			return exitAbortedByOp
		}
		return exitAbortedByLimit
	default:
		return exitFailed
	}
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := cmd.GetConfigFile(); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if cmd.IsDebugMode() {
		cfg.Debug = true
		cfg.LogLevel = "trace"
	}
	if cmd.WasLogLevelSet() {
		cfg.LogLevel = cmd.GetLogLevel()
	}
	if cmd.WasProjectDirSet() {
		cfg.ProjectDir = cmd.GetProjectDir()
	}
	if cmd.WasAgentSet() {
		cfg.Agent = cmd.GetAgent()
	}
	if cmd.WasModelSet() {
		cfg.AgentModel = cmd.GetModel()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func logFormat() string {
	if os.Getenv("ENV") == "production" {
		return "json"
	}
	return "console"
}

func completionPattern(marker string) string {
	if marker == "" || marker == "TASK_COMPLETE" {
		return completion.DefaultPattern
	}
	return `(?m)^\s*-\s\[x\]\s.*` + regexp.QuoteMeta(marker)
}

// ensurePromptFile creates an empty prompt document if the configured one
// does not exist yet, so a first run against a fresh project directory
// doesn't fail before the loop even starts.
func ensurePromptFile(cfg *config.Config, tree layout.Tree) {
	path := tree.Prompt()
	if _, err := os.Stat(path); err == nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte("# Task\n\nDescribe the work for the agent here.\n"), 0o644)
}

// pathCatalog checks tool availability against PATH, used by the
// sub-agent orchestrator to gate profiles that require an external tool.
type pathCatalog struct{}

func (pathCatalog) Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
