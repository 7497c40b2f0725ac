// Package metrics serializes a run's final metrics document: the summary,
// the per-iteration stats, and (when orchestration was enabled) the
// sub-agent aggregation verdict. Field order is stable across
// marshal/unmarshal so re-serializing a loaded document is byte-equivalent.
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ExitOutcome is the closed set of per-iteration outcomes.
type ExitOutcome string

const (
	OutcomeSuccess    ExitOutcome = "Success"
	OutcomeToolError  ExitOutcome = "ToolError"
	OutcomeTimeout    ExitOutcome = "Timeout"
	OutcomeKilled     ExitOutcome = "Killed"
	OutcomeParseError ExitOutcome = "ParseError"
)

// IterationStats records one iteration's outcome.
type IterationStats struct {
	Sequence       int         `json:"sequence"`
	StartedAt      time.Time   `json:"started_at"`
	EndedAt        time.Time   `json:"ended_at"`
	AgentTag       string      `json:"agent_tag"`
	Outcome        ExitOutcome `json:"outcome"`
	TokensIn       *int        `json:"tokens_in"`
	TokensOut      *int        `json:"tokens_out"`
	Cost           *float64    `json:"cost"`
	SuspectedLoop  bool        `json:"suspected_loop"`
	TriggerReason  string      `json:"trigger_reason,omitempty"`
}

// Summary is the run-level rollup.
type Summary struct {
	RunID           string    `json:"run_id"`
	AgentTag        string    `json:"agent_tag"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	Iterations      int       `json:"iterations"`
	TotalTokensIn   int       `json:"total_tokens_in"`
	TotalTokensOut  int       `json:"total_tokens_out"`
	TotalCost       float64   `json:"total_cost"`
	FinalStatus     string    `json:"final_status"`
	FinalReason     string    `json:"final_reason,omitempty"`
}

// SubagentResult mirrors coordination.Result for embedding in the
// orchestration section without creating an import cycle.
type SubagentResult struct {
	SubagentType string `json:"subagent_type"`
	Success      bool   `json:"success"`
	ReturnCode   int    `json:"return_code"`
}

// Orchestration captures the end-of-run sub-agent aggregation, present only
// when orchestration was enabled for this run.
type Orchestration struct {
	Enabled bool `json:"enabled"`
	Results struct {
		Verdict         string           `json:"verdict"`
		Summary         string           `json:"summary"`
		SubagentResults []SubagentResult `json:"subagent_results"`
	} `json:"results"`
}

// Document is the top-level metrics JSON shape for one run.
type Document struct {
	Summary       Summary          `json:"summary"`
	Iterations    []IterationStats `json:"iterations"`
	Orchestration *Orchestration   `json:"orchestration,omitempty"`
}

// WritePath returns the metrics file path for a run, stamped per the
// filesystem layout's naming convention.
func WritePath(metricsDir string, when time.Time) string {
	return filepath.Join(metricsDir, fmt.Sprintf("metrics_%s.json", when.Format("20060102_150405")))
}

// Write persists doc to metricsDir, creating it if needed.
func Write(metricsDir string, doc Document, when time.Time) error {
	if err := os.MkdirAll(metricsDir, 0o755); err != nil {
		return fmt.Errorf("metrics: creating directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("metrics: encoding document: %w", err)
	}
	if err := os.WriteFile(WritePath(metricsDir, when), data, 0o644); err != nil {
		return fmt.Errorf("metrics: writing document: %w", err)
	}
	return nil
}

// Load reads a metrics document back from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("metrics: reading document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("metrics: parsing document: %w", err)
	}
	return &doc, nil
}
