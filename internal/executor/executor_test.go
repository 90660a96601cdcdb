package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
	"github.com/DhavalSuthar-24/miow-context-master/internal/log"
	"github.com/DhavalSuthar-24/miow-context-master/internal/plan"
	"github.com/DhavalSuthar-24/miow-context-master/internal/provider"
	"github.com/DhavalSuthar-24/miow-context-master/internal/worker"
)

type fakeLLM struct {
	reply    string
	err      error
	messages []provider.Message
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (*provider.Response, error) {
	return f.GenerateWithContext(ctx, provider.UserPrompt(prompt))
}

func (f *fakeLLM) GenerateWithContext(_ context.Context, messages []provider.Message) (*provider.Response, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Response{Content: f.reply}, nil
}

func newTestExecutor(llm provider.Provider) *Executor {
	return New(llm, worker.Default(), WithLogger(log.Discard()))
}

func TestExecuteUnknownWorker(t *testing.T) {
	llm := &fakeLLM{}
	_, err := newTestExecutor(llm).Execute(context.Background(), "ghost", "task", "", nil)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownWorker, errors.CodeOf(err))
	assert.Nil(t, llm.messages, "no backend call for an unknown worker")
}

func TestExecuteParsesJSONArray(t *testing.T) {
	llm := &fakeLLM{reply: "```json\n" + `[
		{"name": "Button", "content": "export const Button = () => null", "file_path": "src/Button.tsx", "language": "typescript", "kind": "component", "description": "primary button"},
		{"definition": "interface Props {}", "path": "src/types.ts", "type": "interface"},
		"not an object",
		{}
	]` + "\n```"}

	res, err := newTestExecutor(llm).Execute(context.Background(), worker.KeyFrontendScanner, "add a button", "Language: typescript",
		[]plan.SearchQuery{{Query: "Button", Kind: "component"}, {Query: "theme"}})
	require.NoError(t, err)

	assert.Equal(t, worker.KeyFrontendScanner, res.WorkerID)
	assert.Equal(t, "Executed frontend_scanner worker", res.Summary)
	assert.InDelta(t, 0.8, res.Confidence, 1e-9)
	require.Len(t, res.Chunks, 3)

	first := res.Chunks[0]
	assert.Equal(t, "frontend_scanner-0", first.ID)
	assert.Equal(t, "src/Button.tsx", first.FilePath)
	assert.Equal(t, "component", first.Kind)
	assert.Equal(t, "Button", first.Name())
	assert.Equal(t, "primary button", first.Metadata["description"])
	assert.Equal(t, 0, first.StartLine)

	second := res.Chunks[1]
	assert.Equal(t, "frontend_scanner-1", second.ID)
	assert.Equal(t, "interface Props {}", second.Content)
	assert.Equal(t, "src/types.ts", second.FilePath)
	assert.Equal(t, "interface", second.Kind)
	assert.Equal(t, "unknown", second.Language)

	third := res.Chunks[2]
	assert.Equal(t, "unknown", third.Kind)
	assert.Empty(t, third.FilePath)
	assert.False(t, third.IsFallback())

	require.Len(t, llm.messages, 2)
	prompt := llm.messages[1].Content
	assert.Contains(t, prompt, "Task: add a button")
	assert.Contains(t, prompt, "Project: Language: typescript")
	assert.Contains(t, prompt, "- Button (component)\n- theme (any)")
}

func TestExecuteFallbackChunk(t *testing.T) {
	llm := &fakeLLM{reply: "The auth code lives in src/auth."}

	res, err := newTestExecutor(llm).Execute(context.Background(), worker.KeyAuthScanner, "task", "", nil)
	require.NoError(t, err)
	require.Len(t, res.Chunks, 1)

	c := res.Chunks[0]
	assert.Equal(t, "auth_scanner-fallback", c.ID)
	assert.Equal(t, "auth_scanner_analysis.txt", c.FilePath)
	assert.Equal(t, "The auth code lives in src/auth.", c.Content)
	assert.Equal(t, "text", c.Language)
	assert.Equal(t, "analysis", c.Kind)
	assert.True(t, c.IsFallback())
}

func TestExecuteObjectReplyIsFallback(t *testing.T) {
	llm := &fakeLLM{reply: `{"language": "go"}`}

	res, err := newTestExecutor(llm).Execute(context.Background(), worker.KeyStackDetector, "task", "", nil)
	require.NoError(t, err)
	require.Len(t, res.Chunks, 1)
	assert.True(t, res.Chunks[0].IsFallback())
}

func TestParseChunksRequiresArray(t *testing.T) {
	chunks, fallback := ParseChunks(worker.KeyFrontendScanner, "null")
	assert.True(t, fallback)
	require.Len(t, chunks, 1)
	assert.Equal(t, "null", chunks[0].Content)
	assert.Equal(t, "frontend_scanner_analysis.txt", chunks[0].FilePath)

	chunks, fallback = ParseChunks(worker.KeyFrontendScanner, "[]")
	assert.False(t, fallback)
	assert.Empty(t, chunks)
}

func TestExecuteBackendError(t *testing.T) {
	cause := errors.NewBackendExhaustedError("fake", 6, fmt.Errorf("503"))
	llm := &fakeLLM{err: cause}

	_, err := newTestExecutor(llm).Execute(context.Background(), worker.KeyBackendScanner, "task", "", nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeBackendExhausted))
}

func TestRenderPromptBlanksReservedPlaceholders(t *testing.T) {
	got := RenderPrompt("[{file_path}][{error_message}][{file_list}][{package_managers}][{config_files}] {user_prompt} / {project_stack}", "task", "desc", nil)
	assert.Equal(t, "[][][][][] task / desc", got)
}

func TestFingerprintStable(t *testing.T) {
	assert.Equal(t, Fingerprint("abc"), Fingerprint("abc"))
	assert.NotEqual(t, Fingerprint("abc"), Fingerprint("abd"))
	assert.Len(t, Fingerprint(""), 16)
}
