package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAITransport(t *testing.T) {
	_, err := NewOpenAITransport(Config{Name: NameOpenAI})
	assert.Error(t, err)

	o, err := NewOpenAITransport(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, defaultOpenAIBaseURL, o.baseURL)
	assert.Equal(t, defaultOpenAIModel, o.model)
	assert.Equal(t, NameOpenAI, o.Name())
}

func TestOpenAISend(t *testing.T) {
	var captured openAIRequest
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = w.Write([]byte(`{
			"model": "gpt-test",
			"choices": [{"message": {"role": "assistant", "content": "[]"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 7, "completion_tokens": 1}
		}`))
	}))

	o, err := NewOpenAITransport(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-test"})
	require.NoError(t, err)

	resp, err := o.Send(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hi"},
	})
	require.NoError(t, err)

	assert.Equal(t, "[]", resp.Content)
	assert.Equal(t, "gpt-test", resp.Model)
	assert.Equal(t, 7, resp.InputTokens)
	assert.Equal(t, "stop", resp.FinishReason)

	assert.Equal(t, "gpt-test", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
}

func TestOpenAISendServerError(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream"))
	}))

	o, err := NewOpenAITransport(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = o.Send(context.Background(), UserPrompt("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "This is retryable.")
}

func TestOpenAISendNoChoices(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))

	o, err := NewOpenAITransport(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = o.Send(context.Background(), UserPrompt("x"))
	assert.ErrorContains(t, err, "no choices")
}
