package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPlanIsEmpty(t *testing.T) {
	assert.True(t, (&SearchPlan{GlobalIntent: "  "}).IsEmpty())
	assert.False(t, (&SearchPlan{GlobalIntent: "x"}).IsEmpty())
	assert.False(t, (&SearchPlan{Workers: []WorkerPlan{{WorkerID: "a"}}}).IsEmpty())
}

func TestNormalize(t *testing.T) {
	p := &SearchPlan{
		GlobalIntent:  " intent ",
		SearchQueries: []SearchQuery{{Query: " a "}, {Query: ""}},
		Workers: []WorkerPlan{
			{WorkerID: " ", Queries: []SearchQuery{{Query: "lost"}}},
			{WorkerID: "w", Queries: []SearchQuery{{Query: "\t"}, {Query: "b"}}},
		},
	}
	p.Normalize()

	assert.Equal(t, "intent", p.GlobalIntent)
	assert.Equal(t, []SearchQuery{{Query: "a"}}, p.SearchQueries)
	require.Len(t, p.Workers, 1)
	assert.Equal(t, []SearchQuery{{Query: "b"}}, p.Workers[0].Queries)
}

func TestWorkerLookupAndKind(t *testing.T) {
	p := &SearchPlan{Workers: []WorkerPlan{{WorkerID: "a", Description: "first"}}}

	w, ok := p.Worker("a")
	require.True(t, ok)
	assert.Equal(t, "first", w.Description)
	_, ok = p.Worker("b")
	assert.False(t, ok)

	assert.Equal(t, "any", SearchQuery{}.KindOrAny())
	assert.Equal(t, "type", SearchQuery{Kind: "type"}.KindOrAny())
}

func TestSaveAndLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	p := &SearchPlan{
		GlobalIntent:      "x",
		SearchQueries:     []SearchQuery{{Query: "Button", Kind: "component"}},
		Workers:           []WorkerPlan{{WorkerID: "frontend_scanner"}},
		ExecutionSchedule: []string{"frontend_scanner"},
	}
	require.NoError(t, SavePlan(p, path))

	loaded, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, p.GlobalIntent, loaded.GlobalIntent)
	assert.Equal(t, p.ExecutionSchedule, loaded.ExecutionSchedule)

	require.NoError(t, os.WriteFile(path, []byte(`{"global_intent": ""}`), 0o600))
	_, err = LoadPlan(path)
	assert.Error(t, err)
}
