// Package suborchestrator implements the optional SubAgentOrchestrator: for
// one iteration it selects a specialist sub-agent type from the prompt
// text, spawns it through the adapter layer, and aggregates the written
// results into a single AgentResponse (or, at the end of a run, a verdict
// across every sub-agent launched).
package suborchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ralph-core/ralph-core/internal/adapter"
	"github.com/ralph-core/ralph-core/internal/coordination"
	"github.com/ralph-core/ralph-core/internal/errs"
)

// selectionRules is the deterministic, ordered keyword-priority table; the
// first matching rule wins.
var selectionRules = []struct {
	typ      coordination.SubAgentType
	keywords []string
}{
	{coordination.TypeDebugger, []string{"debug", "fix bug", "troubleshoot", "diagnose", "error"}},
	{coordination.TypeValidator, []string{"validate", "verify", "test", "check", "confirm", "assert"}},
	{coordination.TypeResearcher, []string{"research", "find", "search", "explore", "discover", "investigate"}},
	{coordination.TypeAnalyst, []string{"analyze", "review", "assess", "audit", "examine", "evaluate"}},
}

// SelectType applies the priority keyword match against prompt, defaulting
// to implementer when nothing else matches.
func SelectType(prompt string) coordination.SubAgentType {
	lower := strings.ToLower(prompt)
	for _, rule := range selectionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.typ
			}
		}
	}
	return coordination.TypeImplementer
}

var (
	checkboxItem  = regexp.MustCompile(`(?m)^\s*-?\s*\[ \]\s*(.+)$`)
	mustShouldShall = regexp.MustCompile(`(?i)[^.!?]*\b(must|should|shall)\b[^.!?]*[.!?]`)
)

// ExtractCriteria pulls up to 10 acceptance criteria from prompt: first
// unchecked checkbox items, then must/should/shall sentences. If nothing
// matches, a single default criterion is returned.
func ExtractCriteria(prompt string) []string {
	var criteria []string

	for _, m := range checkboxItem.FindAllStringSubmatch(prompt, -1) {
		criteria = append(criteria, strings.TrimSpace(m[1]))
		if len(criteria) == 10 {
			return criteria
		}
	}
	for _, m := range mustShouldShall.FindAllString(prompt, -1) {
		criteria = append(criteria, strings.TrimSpace(m))
		if len(criteria) == 10 {
			return criteria
		}
	}

	if len(criteria) == 0 {
		return []string{"Execute the task as specified in the prompt"}
	}
	return criteria
}

// Profile is a static sub-agent specialist record.
type Profile struct {
	Type               coordination.SubAgentType
	SystemPrompt       string
	RequiredTools      []string
}

// DefaultProfiles is the built-in profile-per-type table. RequiredTools is
// intentionally minimal (most profiles need nothing beyond the shell and
// the adapter's own binary, which Available already checks).
var DefaultProfiles = map[coordination.SubAgentType]Profile{
	coordination.TypeDebugger: {
		Type:         coordination.TypeDebugger,
		SystemPrompt: "You are a debugging specialist. Diagnose the root cause before proposing a fix.",
	},
	coordination.TypeValidator: {
		Type:         coordination.TypeValidator,
		SystemPrompt: "You are a validation specialist. Verify the acceptance criteria hold; do not modify code.",
		RequiredTools: []string{"git"},
	},
	coordination.TypeResearcher: {
		Type:         coordination.TypeResearcher,
		SystemPrompt: "You are a research specialist. Investigate and report findings; do not modify code.",
	},
	coordination.TypeAnalyst: {
		Type:         coordination.TypeAnalyst,
		SystemPrompt: "You are an analysis specialist. Review and assess; do not modify code.",
	},
	coordination.TypeImplementer: {
		Type:         coordination.TypeImplementer,
		SystemPrompt: "You are an implementation specialist. Make the minimal change that satisfies the criteria.",
	},
}

// BuildPrompt composes a sub-agent's prompt from its profile, the extracted
// criteria, and the original prompt body.
func BuildPrompt(profile Profile, criteria []string, originalPrompt string) string {
	var b strings.Builder
	b.WriteString(profile.SystemPrompt)
	b.WriteString("\n\nAcceptance criteria:\n")
	for _, c := range criteria {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\n---\n")
	b.WriteString(originalPrompt)
	return b.String()
}

// ToolCatalog reports whether a named external tool is available in the
// current environment. The concrete implementation used by the core walks
// PATH; tests substitute a fake.
type ToolCatalog interface {
	Available(name string) bool
}

// Verdict summarizes an orchestrated iteration's outcome across every
// sub-agent launched.
type Verdict string

const (
	VerdictPass         Verdict = "PASS"
	VerdictFail         Verdict = "FAIL"
	VerdictInconclusive Verdict = "INCONCLUSIVE"
	VerdictNoResults    Verdict = "NO_RESULTS"
)

// Orchestrator drives one orchestrated iteration.
type Orchestrator struct {
	store        *coordination.Store
	catalog      ToolCatalog
	profiles     map[coordination.SubAgentType]Profile
	maxParallel  int
	spawn        func(ctx context.Context, profileType coordination.SubAgentType, prompt string, deadline time.Time) (coordination.Result, error)
}

// New returns an Orchestrator spawning sub-agents via spawnFn, which wraps
// an adapter invocation and the coordination result write/read.
func New(store *coordination.Store, catalog ToolCatalog, maxParallel int, spawnFn func(ctx context.Context, profileType coordination.SubAgentType, prompt string, deadline time.Time) (coordination.Result, error)) *Orchestrator {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Orchestrator{
		store:       store,
		catalog:     catalog,
		profiles:    DefaultProfiles,
		maxParallel: maxParallel,
		spawn:       spawnFn,
	}
}

// verifyTools checks every required tool for profileType is present,
// returning an OrchestrationError if any are missing.
func (o *Orchestrator) verifyTools(profileType coordination.SubAgentType) error {
	profile := o.profiles[profileType]
	for _, tool := range profile.RequiredTools {
		if !o.catalog.Available(tool) {
			return fmt.Errorf("%w: required tool %q not available for %s", errs.ErrOrchestration, tool, profileType)
		}
	}
	return nil
}

// ExecuteOne selects a type from prompt, verifies its tools, spawns it, and
// returns the resulting AgentResponse built from the sub-agent's result.
func (o *Orchestrator) ExecuteOne(ctx context.Context, id, prompt string, deadline time.Time) (adapter.AgentResponse, error) {
	profileType := SelectType(prompt)
	if err := o.verifyTools(profileType); err != nil {
		return adapter.AgentResponse{}, err
	}

	profile := o.profiles[profileType]
	criteria := ExtractCriteria(prompt)
	subPrompt := BuildPrompt(profile, criteria, prompt)

	if err := o.store.WritePrompt(id, subPrompt); err != nil {
		return adapter.AgentResponse{}, fmt.Errorf("%w: %v", errs.ErrOrchestration, err)
	}

	result, err := o.spawn(ctx, profileType, subPrompt, deadline)
	if err != nil {
		return adapter.AgentResponse{}, fmt.Errorf("%w: %v", errs.ErrOrchestration, err)
	}
	result.SubagentType = profileType
	if err := o.store.WriteResult(id, result); err != nil {
		return adapter.AgentResponse{}, fmt.Errorf("%w: %v", errs.ErrOrchestration, err)
	}

	resp := adapter.AgentResponse{
		Success:   result.Success,
		Output:    result.Output,
		TokensOut: result.TokensUsed,
		ExitCode:  &result.ReturnCode,
	}
	if result.Error != nil {
		resp.Error = *result.Error
	}
	return resp, nil
}

// ExecuteParallel spawns every id/prompt pair bounded by maxParallel using
// errgroup, one sub-agent per element.
func (o *Orchestrator) ExecuteParallel(ctx context.Context, items map[string]string, deadline time.Time) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxParallel)

	for id, prompt := range items {
		id, prompt := id, prompt
		g.Go(func() error {
			_, err := o.ExecuteOne(ctx, id, prompt, deadline)
			return err
		})
	}
	return g.Wait()
}

// Aggregate computes the run-end verdict across every result file written
// to the coordination directory relative to the ids launched.
func (o *Orchestrator) Aggregate(launchedIDs []string) (Verdict, string, error) {
	resultIDs, err := o.store.ListResultIDs()
	if err != nil {
		return VerdictNoResults, "", err
	}
	if len(resultIDs) == 0 {
		return VerdictNoResults, "no sub-agent results were written", nil
	}

	present := make(map[string]bool, len(resultIDs))
	for _, id := range resultIDs {
		present[id] = true
	}

	missing := 0
	allSucceeded := true
	anyFailed := false
	for _, id := range launchedIDs {
		if !present[id] {
			missing++
			continue
		}
		result, err := o.store.ReadResult(id)
		if err != nil {
			missing++
			continue
		}
		if !result.Success {
			anyFailed = true
		}
		allSucceeded = allSucceeded && result.Success
	}

	switch {
	case anyFailed:
		return VerdictFail, fmt.Sprintf("%d of %d sub-agents failed", countFailed(launchedIDs, present, o.store), len(launchedIDs)), nil
	case missing > 0:
		return VerdictInconclusive, fmt.Sprintf("%d of %d sub-agent results missing", missing, len(launchedIDs)), nil
	case allSucceeded:
		return VerdictPass, "all sub-agents succeeded", nil
	default:
		return VerdictNoResults, "no sub-agent results were written", nil
	}
}

func countFailed(ids []string, present map[string]bool, store *coordination.Store) int {
	n := 0
	for _, id := range ids {
		if !present[id] {
			continue
		}
		if result, err := store.ReadResult(id); err == nil && !result.Success {
			n++
		}
	}
	return n
}
