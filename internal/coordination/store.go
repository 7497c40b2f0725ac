// Package coordination implements the filesystem coordination area the
// SubAgentOrchestrator uses to hand prompts to sub-agents and collect their
// results: one prompt/result/status file per sub-agent invocation, named by
// a caller-supplied id.
package coordination

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ralph-core/ralph-core/internal/layout"
)

// SubAgentType is one of the five specialist profiles.
type SubAgentType string

const (
	TypeValidator   SubAgentType = "validator"
	TypeResearcher  SubAgentType = "researcher"
	TypeImplementer SubAgentType = "implementer"
	TypeAnalyst     SubAgentType = "analyst"
	TypeDebugger    SubAgentType = "debugger"
)

// Result is the sub-agent result JSON schema (spec section 6), bit-stable
// across write/read round trips.
type Result struct {
	SubagentType SubAgentType    `json:"subagent_type"`
	Success      bool            `json:"success"`
	Output       string          `json:"output"`
	TokensUsed   *int            `json:"tokens_used"`
	Error        *string         `json:"error"`
	ReturnCode   int             `json:"return_code"`
	ParsedJSON   json.RawMessage `json:"parsed_json"`
}

// Status is a point-in-time snapshot of a sub-agent invocation, written
// while it's still running and superseded once its Result lands.
type Status struct {
	ID      string       `json:"id"`
	Type    SubAgentType `json:"type"`
	Stage   string       `json:"stage"`
	Updated string       `json:"updated"`
}

// Store owns one run's coordination directory: prompts/, results/, status/.
type Store struct {
	tree layout.Tree
}

// New returns a Store rooted at tree's coordination directory.
func New(tree layout.Tree) *Store {
	return &Store{tree: tree}
}

// EnsureDirs creates the prompts/results/status subdirectories.
func (s *Store) EnsureDirs() error {
	for _, dir := range []string{s.tree.CoordinationPrompts(), s.tree.CoordinationResults(), s.tree.CoordinationStatus()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("coordination: creating %s: %w", dir, err)
		}
	}
	return nil
}

// WritePrompt writes a sub-agent's rendered prompt to prompts/<id>.md.
func (s *Store) WritePrompt(id, prompt string) error {
	path := filepath.Join(s.tree.CoordinationPrompts(), id+".md")
	if err := os.WriteFile(path, []byte(prompt), 0o644); err != nil {
		return fmt.Errorf("coordination: writing prompt %s: %w", id, err)
	}
	return nil
}

// WriteStatus records a point-in-time status snapshot for a sub-agent.
func (s *Store) WriteStatus(id string, status Status) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("coordination: encoding status %s: %w", id, err)
	}
	path := filepath.Join(s.tree.CoordinationStatus(), id+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("coordination: writing status %s: %w", id, err)
	}
	return nil
}

// ReadResult reads back the result JSON a sub-agent wrote for id. Called
// only after the sub-agent's process has exited.
func (s *Store) ReadResult(id string) (*Result, error) {
	path := filepath.Join(s.tree.CoordinationResults(), id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("coordination: reading result %s: %w", id, err)
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("coordination: parsing result %s: %w", id, err)
	}
	return &r, nil
}

// WriteResult persists a sub-agent's result, used by tests and by any
// in-process sub-agent stand-in that doesn't write its own file.
func (s *Store) WriteResult(id string, r Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("coordination: encoding result %s: %w", id, err)
	}
	path := filepath.Join(s.tree.CoordinationResults(), id+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("coordination: writing result %s: %w", id, err)
	}
	return nil
}

// ListResultIDs returns the ids of every result file currently present.
func (s *Store) ListResultIDs() ([]string, error) {
	entries, err := os.ReadDir(s.tree.CoordinationResults())
	if err != nil {
		return nil, fmt.Errorf("coordination: listing results: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ids = append(ids, name[:len(name)-len(filepath.Ext(name))])
	}
	return ids, nil
}
