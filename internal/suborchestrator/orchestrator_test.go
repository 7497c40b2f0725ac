package suborchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralph-core/ralph-core/internal/coordination"
	"github.com/ralph-core/ralph-core/internal/layout"
)

func TestSelectTypeKeywordPriority(t *testing.T) {
	cases := []struct {
		prompt string
		want   coordination.SubAgentType
	}{
		{"please debug this error", coordination.TypeDebugger},
		{"validate the output against the schema", coordination.TypeValidator},
		{"research how other libraries solve this", coordination.TypeResearcher},
		{"review and assess the approach", coordination.TypeAnalyst},
		{"build the feature described below", coordination.TypeImplementer},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SelectType(c.prompt))
	}
}

func TestSelectTypeDebuggerBeatsValidator(t *testing.T) {
	assert.Equal(t, coordination.TypeDebugger, SelectType("debug and then verify the fix"))
}

func TestExtractCriteriaFromCheckboxes(t *testing.T) {
	prompt := "- [ ] handle empty input\n- [ ] return an error on timeout\n"
	criteria := ExtractCriteria(prompt)
	assert.Equal(t, []string{"handle empty input", "return an error on timeout"}, criteria)
}

func TestExtractCriteriaFromMustShouldShall(t *testing.T) {
	prompt := "The system must reject invalid input. It should log a warning."
	criteria := ExtractCriteria(prompt)
	require.Len(t, criteria, 2)
}

func TestExtractCriteriaDefaultWhenNoneFound(t *testing.T) {
	criteria := ExtractCriteria("just do something useful")
	assert.Equal(t, []string{"Execute the task as specified in the prompt"}, criteria)
}

func TestExtractCriteriaCapsAtTen(t *testing.T) {
	prompt := ""
	for i := 0; i < 15; i++ {
		prompt += "- [ ] item\n"
	}
	assert.Len(t, ExtractCriteria(prompt), 10)
}

type fakeCatalog map[string]bool

func (f fakeCatalog) Available(name string) bool { return f[name] }

func newTestOrchestrator(t *testing.T, catalog ToolCatalog, spawn func(ctx context.Context, profileType coordination.SubAgentType, prompt string, deadline time.Time) (coordination.Result, error)) (*Orchestrator, *coordination.Store) {
	t.Helper()
	tree := layout.New(t.TempDir())
	store := coordination.New(tree)
	require.NoError(t, store.EnsureDirs())
	return New(store, catalog, 2, spawn), store
}

func TestExecuteOneWritesResultAndReturnsResponse(t *testing.T) {
	orch, store := newTestOrchestrator(t, fakeCatalog{}, func(ctx context.Context, profileType coordination.SubAgentType, prompt string, deadline time.Time) (coordination.Result, error) {
		return coordination.Result{Success: true, Output: "done", ReturnCode: 0}, nil
	})

	resp, err := orch.ExecuteOne(context.Background(), "iter-1", "just do something", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "done", resp.Output)

	result, err := store.ReadResult("iter-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, coordination.TypeImplementer, result.SubagentType)
}

func TestExecuteOneMissingToolFails(t *testing.T) {
	orch, _ := newTestOrchestrator(t, fakeCatalog{}, func(ctx context.Context, profileType coordination.SubAgentType, prompt string, deadline time.Time) (coordination.Result, error) {
		t.Fatal("spawn should not be called when a required tool is missing")
		return coordination.Result{}, nil
	})

	_, err := orch.ExecuteOne(context.Background(), "iter-1", "validate the result", time.Now().Add(time.Minute))
	assert.Error(t, err)
}

func TestExecuteOneToolAvailableSucceeds(t *testing.T) {
	orch, _ := newTestOrchestrator(t, fakeCatalog{"git": true}, func(ctx context.Context, profileType coordination.SubAgentType, prompt string, deadline time.Time) (coordination.Result, error) {
		return coordination.Result{Success: true}, nil
	})

	_, err := orch.ExecuteOne(context.Background(), "iter-1", "validate the result", time.Now().Add(time.Minute))
	assert.NoError(t, err)
}

func TestAggregateAllPass(t *testing.T) {
	orch, store := newTestOrchestrator(t, fakeCatalog{}, nil)
	require.NoError(t, store.WriteResult("iter-1", coordination.Result{Success: true}))
	require.NoError(t, store.WriteResult("iter-2", coordination.Result{Success: true}))

	verdict, _, err := orch.Aggregate([]string{"iter-1", "iter-2"})
	require.NoError(t, err)
	assert.Equal(t, VerdictPass, verdict)
}

func TestAggregateAnyFailed(t *testing.T) {
	orch, store := newTestOrchestrator(t, fakeCatalog{}, nil)
	require.NoError(t, store.WriteResult("iter-1", coordination.Result{Success: true}))
	require.NoError(t, store.WriteResult("iter-2", coordination.Result{Success: false}))

	verdict, _, err := orch.Aggregate([]string{"iter-1", "iter-2"})
	require.NoError(t, err)
	assert.Equal(t, VerdictFail, verdict)
}

func TestAggregateMissingResults(t *testing.T) {
	orch, store := newTestOrchestrator(t, fakeCatalog{}, nil)
	require.NoError(t, store.WriteResult("iter-1", coordination.Result{Success: true}))

	verdict, _, err := orch.Aggregate([]string{"iter-1", "iter-2"})
	require.NoError(t, err)
	assert.Equal(t, VerdictInconclusive, verdict)
}

func TestAggregateNoResultsAtAll(t *testing.T) {
	orch, _ := newTestOrchestrator(t, fakeCatalog{}, nil)
	verdict, _, err := orch.Aggregate([]string{"iter-1"})
	require.NoError(t, err)
	assert.Equal(t, VerdictNoResults, verdict)
}

func TestExecuteParallelBounded(t *testing.T) {
	orch, _ := newTestOrchestrator(t, fakeCatalog{}, func(ctx context.Context, profileType coordination.SubAgentType, prompt string, deadline time.Time) (coordination.Result, error) {
		return coordination.Result{Success: true}, nil
	})

	items := map[string]string{
		"iter-1": "build the feature",
		"iter-2": "build another feature",
	}
	err := orch.ExecuteParallel(context.Background(), items, time.Now().Add(time.Minute))
	assert.NoError(t, err)
}
