package audit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/miow-context-master/internal/contextdata"
	"github.com/DhavalSuthar-24/miow-context-master/internal/log"
	"github.com/DhavalSuthar-24/miow-context-master/internal/provider"
	"github.com/DhavalSuthar-24/miow-context-master/internal/search"
)

// categoryLLM answers per category, keyed by the "Category: x" line.
type categoryLLM struct {
	mu      sync.Mutex
	replies map[contextdata.Category]string
	fail    map[contextdata.Category]bool
	asked   []contextdata.Category
	prompts []string
}

func (l *categoryLLM) Generate(ctx context.Context, prompt string) (*provider.Response, error) {
	return l.GenerateWithContext(ctx, provider.UserPrompt(prompt))
}

func (l *categoryLLM) GenerateWithContext(_ context.Context, messages []provider.Message) (*provider.Response, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	user := messages[len(messages)-1].Content
	l.prompts = append(l.prompts, user)
	for _, c := range contextdata.Categories {
		if strings.Contains(user, "Category: "+string(c)+"\n") {
			l.asked = append(l.asked, c)
			if l.fail[c] {
				return nil, fmt.Errorf("backend down")
			}
			return &provider.Response{Content: l.replies[c]}, nil
		}
	}
	return nil, fmt.Errorf("unexpected prompt")
}

func symbols(prefix string, n int) []search.SymbolMatch {
	out := make([]search.SymbolMatch, n)
	for i := range out {
		out[i] = search.SymbolMatch{Name: fmt.Sprintf("%s%d", prefix, i), Kind: "function", FilePath: "src/x.ts", Content: "body"}
	}
	return out
}

func newTestAuditor(llm provider.Provider) *Auditor {
	return New(llm, WithLogger(log.Discard()))
}

func TestAuditBelowGlobalGate(t *testing.T) {
	llm := &categoryLLM{}
	d := &contextdata.ContextData{RelevantSymbols: symbols("R", 12)}

	report := newTestAuditor(llm).Audit(context.Background(), "task", d)
	assert.False(t, report.Engaged)
	assert.Empty(t, llm.asked)
	assert.Len(t, d.RelevantSymbols, 12)
}

func TestAuditKeepsIndices(t *testing.T) {
	llm := &categoryLLM{replies: map[contextdata.Category]string{
		contextdata.CategoryRelevant: "```json\n{\"keep_indices\": [7, 2, 2, 99, -1, 0]}\n```",
	}}
	d := &contextdata.ContextData{
		RelevantSymbols: symbols("R", 10),
		SimilarSymbols:  symbols("S", 5),
	}

	report := newTestAuditor(llm).Audit(context.Background(), "add login", d)
	require.True(t, report.Engaged)

	assert.Equal(t, []contextdata.Category{contextdata.CategoryRelevant}, llm.asked)
	assert.Equal(t, OutcomeOK, report.Outcome(contextdata.CategoryRelevant))
	assert.Equal(t, OutcomeSkipped, report.Outcome(contextdata.CategorySimilar))

	require.Len(t, d.RelevantSymbols, 3)
	assert.Equal(t, "R0", d.RelevantSymbols[0].Name)
	assert.Equal(t, "R2", d.RelevantSymbols[1].Name)
	assert.Equal(t, "R7", d.RelevantSymbols[2].Name)
	assert.Len(t, d.SimilarSymbols, 5)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "User task:\nadd login")
	assert.Contains(t, llm.prompts[0], `"name": "R9"`)
}

func TestAuditFailOpen(t *testing.T) {
	replies := map[contextdata.Category]string{
		contextdata.CategoryRelevant: "I would keep the first three.",
		contextdata.CategorySimilar:  `{"keep_indices": []}`,
		contextdata.CategoryTypes:    `{"keep_indices": [42]}`,
	}
	llm := &categoryLLM{replies: replies, fail: map[contextdata.Category]bool{contextdata.CategorySchemas: true}}

	d := &contextdata.ContextData{
		RelevantSymbols: symbols("R", 9),
		SimilarSymbols:  symbols("S", 9),
	}
	for i := 0; i < 9; i++ {
		d.Types = append(d.Types, contextdata.TypeDef{Name: fmt.Sprintf("T%d", i)})
		d.Schemas = append(d.Schemas, contextdata.Schema{Name: fmt.Sprintf("Z%d", i)})
	}
	want := d.Clone()

	report := newTestAuditor(llm).Audit(context.Background(), "task", d)

	assert.Equal(t, want, d)
	assert.Equal(t, OutcomeError, report.Outcome(contextdata.CategoryRelevant))
	assert.Equal(t, OutcomeUnchanged, report.Outcome(contextdata.CategorySimilar))
	assert.Equal(t, OutcomeUnchanged, report.Outcome(contextdata.CategoryTypes))
	assert.Equal(t, OutcomeError, report.Outcome(contextdata.CategorySchemas))
	assert.Len(t, llm.asked, 4, "one failing category does not block the others")
}

func TestAuditCustomThresholds(t *testing.T) {
	llm := &categoryLLM{replies: map[contextdata.Category]string{
		contextdata.CategoryConstants: `{"keep_indices": [1]}`,
	}}
	d := &contextdata.ContextData{Constants: []contextdata.Constant{
		{Name: "A", Value: "1"}, {Name: "B", Value: "2"}, {Name: "C", Value: "3"},
	}}

	report := New(llm, WithLogger(log.Discard()), WithThresholds(2, 2)).Audit(context.Background(), "task", d)
	assert.Equal(t, OutcomeOK, report.Outcome(contextdata.CategoryConstants))
	assert.Equal(t, []contextdata.Constant{{Name: "B", Value: "2"}}, d.Constants)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 320))
	assert.Equal(t, "abc…", Preview("abcdef", 3))
	assert.Equal(t, "héé…", Preview("héééé", 3))

	long := strings.Repeat("x", 400)
	assert.Equal(t, strings.Repeat("x", 320)+"…", Preview(long, DefaultPreviewChars))
}
