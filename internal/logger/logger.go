// Package logger wraps zerolog the way the teacher's main.go wires it
// (console format for a TTY, JSON when ENV=production), but threads the
// logger explicitly through the Run rather than installing a package-level
// global — resolving the "global singletons" redesign flag while keeping
// the library choice.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors zerolog's level names as a small closed type so callers
// don't need to import zerolog directly just to configure a level.
type Level string

const (
	LevelTrace Level = "trace"
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelTrace:
		return zerolog.TraceLevel
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelFatal:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Config configures a single logger instance.
type Config struct {
	Level  Level
	Format string // "console" or "json"
	Output io.Writer
}

// New returns a zerolog.Logger configured per cfg. Unlike the teacher's
// applogger.Init, this never touches a package-level variable: the caller
// owns the returned value and threads it through the Run.
func New(cfg Config) (zerolog.Logger, error) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	var w io.Writer = cfg.Output
	switch cfg.Format {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	case "json":
		// w stays as cfg.Output; zerolog writes JSON lines natively.
	default:
		return zerolog.Logger{}, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	logger := zerolog.New(w).Level(cfg.Level.zerolog()).With().Timestamp().Logger()
	return logger, nil
}

// ForRun returns a child logger with run_id and agent fields attached, so
// every subsequent log line from this run is traceable without passing
// those fields at every call site.
func ForRun(base zerolog.Logger, runID, agent string) zerolog.Logger {
	return base.With().Str("run_id", runID).Str("agent", agent).Logger()
}

// ForIteration returns a child logger scoped to one iteration number.
func ForIteration(run zerolog.Logger, iteration int) zerolog.Logger {
	return run.With().Int("iteration", iteration).Logger()
}
