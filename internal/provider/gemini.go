package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DhavalSuthar-24/miow-context-master/internal/version"
)

// GeminiTransport calls the Google Gemini generateContent API once per Send.
type GeminiTransport struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	client      *http.Client
}

var _ Transport = (*GeminiTransport)(nil)

// Gemini API request/response structures
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata *geminiUsage      `json:"usageMetadata,omitempty"`
	ModelVersion  string            `json:"modelVersion,omitempty"`
	Error         *apiError         `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
}

type apiError struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

// NewGeminiTransport creates a Gemini transport from cfg.
func NewGeminiTransport(cfg Config) (*GeminiTransport, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key not found in provider config")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &GeminiTransport{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

// Name implements Transport.
func (g *GeminiTransport) Name() string { return NameGemini }

// Send implements Transport.
func (g *GeminiTransport) Send(ctx context.Context, messages []Message) (*Response, error) {
	startTime := time.Now()

	reqBody, err := json.Marshal(g.buildRequest(messages))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request to Gemini API: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := statusError("Gemini", httpResp.StatusCode, respBody); err != nil {
		return nil, err
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, fmt.Errorf("parse Gemini API response: %w", err)
	}
	if geminiResp.Error != nil {
		return nil, fmt.Errorf("Gemini API error: %s (code: %v)", geminiResp.Error.Message, geminiResp.Error.Code)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("failed to extract text from Gemini response")
	}

	candidate := geminiResp.Candidates[0]
	resp := &Response{
		Content:      candidate.Content.Parts[0].Text,
		Model:        g.model,
		Provider:     NameGemini,
		FinishReason: candidate.FinishReason,
		Latency:      time.Since(startTime),
	}
	if geminiResp.ModelVersion != "" {
		resp.Model = geminiResp.ModelVersion
	}
	if geminiResp.UsageMetadata != nil {
		resp.InputTokens = geminiResp.UsageMetadata.PromptTokenCount
		resp.OutputTokens = geminiResp.UsageMetadata.CandidatesTokenCount
	}
	return resp, nil
}

// buildRequest converts messages to Gemini contents. Gemini has no system
// role in contents, so system and assistant turns are sent as "model".
func (g *GeminiTransport) buildRequest(messages []Message) *geminiRequest {
	req := &geminiRequest{Contents: make([]geminiContent, 0, len(messages))}
	for _, msg := range messages {
		role := "user"
		if msg.Role == RoleSystem || msg.Role == RoleAssistant {
			role = "model"
		}
		req.Contents = append(req.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	if g.temperature > 0 {
		temp := g.temperature
		req.GenerationConfig = &geminiGenerationConfig{Temperature: &temp}
	}
	return req
}

// statusError builds the error for a non-2xx response. Server errors are
// annotated as retryable; the retry loop does not distinguish them.
func statusError(api string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	text := strings.TrimSpace(string(body))
	if status >= 500 {
		return fmt.Errorf("%s API server error (%d): %s. This is retryable.", api, status, text)
	}
	return fmt.Errorf("%s API error (%d): %s", api, status, text)
}
