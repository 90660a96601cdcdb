package plan

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/miow-context-master/internal/log"
	"github.com/DhavalSuthar-24/miow-context-master/internal/provider"
	"github.com/DhavalSuthar-24/miow-context-master/internal/worker"
)

// scriptedLLM replies with the next scripted entry on every call.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []scriptedReply
	calls   [][]provider.Message
}

type scriptedReply struct {
	content string
	err     error
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string) (*provider.Response, error) {
	return s.GenerateWithContext(ctx, provider.UserPrompt(prompt))
}

func (s *scriptedLLM) GenerateWithContext(_ context.Context, messages []provider.Message) (*provider.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, messages)
	if len(s.replies) == 0 {
		return nil, fmt.Errorf("no scripted reply")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	if r.err != nil {
		return nil, r.err
	}
	return &provider.Response{Content: r.content}, nil
}

func newTestPlanner(llm provider.Provider) *Planner {
	return NewPlanner(llm, worker.Default(), WithLogger(log.Discard()))
}

func TestPlanFromModel(t *testing.T) {
	llm := &scriptedLLM{replies: []scriptedReply{
		{content: "```json\n{\"task_type\": \"Feature\"}\n```"},
		{content: `{
			"global_intent": "create_login_page",
			"search_queries": [{"query": " login form ", "kind": "component"}, {"query": "  "}],
			"workers": [
				{"worker_id": "test_scanner", "description": "tests", "queries": [{"query": "login test"}]},
				{"worker_id": "frontend_scanner", "description": "ui", "queries": [{"query": "Button"}]},
				{"worker_id": "stack_detector", "description": "stack"},
				{"worker_id": "backend_scanner", "description": "api"}
			]
		}`},
	}}

	r, err := newTestPlanner(llm).PlanWithDetails(context.Background(), "add a login page", "Language: typescript")
	require.NoError(t, err)

	assert.Equal(t, "feature", r.TaskType)
	assert.Equal(t, SourceModel, r.Source)
	assert.Equal(t, "create_login_page", r.Plan.GlobalIntent)
	require.Len(t, r.Plan.SearchQueries, 1)
	assert.Equal(t, "login form", r.Plan.SearchQueries[0].Query)
	assert.Equal(t, []string{"stack_detector", "backend_scanner", "frontend_scanner", "test_scanner"}, r.Plan.ExecutionSchedule)
	assert.Equal(t, []string{"login form", "login test", "Button"}, r.Plan.AllQueryStrings())

	require.Len(t, llm.calls, 2)
	classifyPrompt := llm.calls[0][1].Content
	assert.Contains(t, classifyPrompt, "add a login page")
	assert.Contains(t, classifyPrompt, "Project stack: Language: typescript")

	system := llm.calls[1][0]
	assert.Equal(t, provider.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "- frontend_scanner: Find UI components")
	user := llm.calls[1][1].Content
	assert.Contains(t, user, "Recommended workers based on task type: frontend_scanner, backend_scanner, data_scanner, api_scanner")
}

func TestPlanFallbackOnUnparseableReply(t *testing.T) {
	llm := &scriptedLLM{replies: []scriptedReply{
		{content: `{"task_type": "bugfix"}`},
		{content: "I think you should look at the login code."},
	}}

	r, err := newTestPlanner(llm).PlanWithDetails(context.Background(), "fix login crash", "")
	require.NoError(t, err)

	p := r.Plan
	assert.Equal(t, SourceFallback, r.Source)
	assert.Equal(t, FallbackIntent, p.GlobalIntent)
	require.Len(t, p.SearchQueries, 1)
	assert.Equal(t, "fix login crash", p.SearchQueries[0].Query)
	assert.LessOrEqual(t, len(p.Workers), 3)
	assert.Equal(t, []string{"error_analyzer", "test_scanner", "frontend_scanner"}, p.WorkerIDs())
	for _, w := range p.Workers {
		require.Len(t, w.Queries, 1)
		assert.Equal(t, "fix login crash", w.Queries[0].Query)
		assert.Equal(t, "any", w.Queries[0].Kind)
	}
	assert.ElementsMatch(t, p.WorkerIDs(), p.ExecutionSchedule)
}

func TestPlanFallbackOnEmptyPlan(t *testing.T) {
	llm := &scriptedLLM{replies: []scriptedReply{
		{content: `{"task_type": "refactor"}`},
		{content: `{"global_intent": "", "search_queries": [], "workers": []}`},
	}}

	p, err := newTestPlanner(llm).Plan(context.Background(), "clean up services", "")
	require.NoError(t, err)
	assert.Equal(t, FallbackIntent, p.GlobalIntent)
	assert.Equal(t, []string{"refactor_advisor", "dependency_analyzer", "performance_analyzer"}, p.WorkerIDs())
}

func TestPlanSurvivesBackendExhaustion(t *testing.T) {
	llm := &scriptedLLM{replies: []scriptedReply{
		{err: fmt.Errorf("exhausted")},
		{err: fmt.Errorf("exhausted")},
	}}

	r, err := newTestPlanner(llm).PlanWithDetails(context.Background(), "anything", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTaskType, r.TaskType)
	assert.Equal(t, FallbackIntent, r.Plan.GlobalIntent)
	assert.Len(t, r.Plan.Workers, 3)
}

func TestPlanReturnsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &scriptedLLM{replies: []scriptedReply{{err: context.Canceled}}}
	_, err := newTestPlanner(llm).Plan(ctx, "anything", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassifyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"valid", `{"task_type": "security"}`, "security"},
		{"missing field", `{"complexity": "simple"}`, DefaultTaskType},
		{"not json", "it is a bugfix", DefaultTaskType},
		{"wrong type", `{"task_type": 3}`, DefaultTaskType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &scriptedLLM{replies: []scriptedReply{{content: tt.reply}}}
			got, err := newTestPlanner(llm).Classify(context.Background(), "task", "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyWithoutClassifierWorker(t *testing.T) {
	reg, err := worker.NewRegistry([]worker.Spec{{Key: "only"}}, nil)
	require.NoError(t, err)

	llm := &scriptedLLM{}
	got, err := NewPlanner(llm, reg, WithLogger(log.Discard())).Classify(context.Background(), "task", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTaskType, got)
	assert.Empty(t, llm.calls)
}

func TestFallbackPlanSkipsUnregistered(t *testing.T) {
	reg := worker.Default()
	p := FallbackPlan("task", reg, []string{"ghost", worker.KeyFrontendScanner, worker.KeyBackendScanner, worker.KeyDataScanner})

	assert.Equal(t, []string{worker.KeyFrontendScanner, worker.KeyBackendScanner}, p.WorkerIDs())
	assert.True(t, strings.HasPrefix(p.Workers[0].Description, "Find UI"))
}
