package question

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
	"github.com/DhavalSuthar-24/miow-context-master/internal/project"
)

func TestGenerate(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"```json\n" + `[
		{"question": "Is there a Button component?", "search_query": "Button", "expected_type": "component", "priority": "critical"},
		{"question": "Is there a theme?", "search_query": "theme", "priority": "high"},
		{"question": "", "search_query": "dropped"},
		{"question": "No query?", "search_query": " "},
		{"question": "Any hooks?", "search_query": "useAuth", "expected_type": "function", "priority": "low"}
	]` + "\n```"}}

	got, err := Generate(context.Background(), llm, "add a settings page", "typescript", "nextjs")
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, CriticalQuestion{Question: "Is there a Button component?", SearchQuery: "Button", ExpectedType: "component", Priority: PriorityCritical}, got[0])
	assert.Equal(t, "unknown", got[1].ExpectedType)
	assert.Equal(t, PriorityHigh, got[1].Priority)
	assert.Equal(t, PriorityMedium, got[2].Priority)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "typescript project using nextjs framework")
	assert.Contains(t, llm.prompts[0], `"add a settings page"`)
}

func TestGenerateMalformed(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"Here are some questions: ..."}}

	_, err := Generate(context.Background(), llm, "task", "", "")
	assert.True(t, errors.HasCode(err, errors.ErrCodeDecode))
	assert.Contains(t, llm.prompts[0], "unknown project for")
}

func TestGenerateBackendError(t *testing.T) {
	llm := &scriptedLLM{errs: map[int]error{0: fmt.Errorf("boom")}}

	_, err := Generate(context.Background(), llm, "task", "go", "")
	assert.EqualError(t, err, "boom")
}

func TestFromTemplates(t *testing.T) {
	got := FromTemplates([]project.QuestionTemplate{
		{Question: "What Zod schemas are defined?", SearchQuery: "z.object", ExpectedType: "schema"},
		{Question: "No query", SearchQuery: ""},
		{Question: "What types are defined?", SearchQuery: "type"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, CriticalQuestion{Question: "What Zod schemas are defined?", SearchQuery: "z.object", ExpectedType: "schema", Priority: PriorityMedium}, got[0])
	assert.Equal(t, "unknown", got[1].ExpectedType)
	assert.Equal(t, PriorityMedium, got[1].Priority)

	sig := &project.Signature{Language: "go"}
	assert.Len(t, FromTemplates(sig.QuestionTemplates()), 2)
}
