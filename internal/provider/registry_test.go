package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
	"github.com/DhavalSuthar-24/miow-context-master/internal/log"
)

func TestNewTransport(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantCode errors.ErrorCode
	}{
		{name: "default is gemini", cfg: Config{APIKey: "k"}, wantName: NameGemini},
		{name: "gemini", cfg: Config{Name: "Gemini", APIKey: "k"}, wantName: NameGemini},
		{name: "openai", cfg: Config{Name: "openai", APIKey: "k"}, wantName: NameOpenAI},
		{name: "missing key", cfg: Config{Name: "openai"}, wantCode: errors.ErrCodeBackendConfig},
		{name: "unknown", cfg: Config{Name: "claude", APIKey: "k"}, wantCode: errors.ErrCodeBackendConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTransport(tt.cfg)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, tr.Name())
		})
	}
}

func TestNew(t *testing.T) {
	caller, err := New(Config{APIKey: "k"}, DefaultRetryPolicy(), WithLogger(log.Discard()))
	require.NoError(t, err)
	assert.Equal(t, NameGemini, caller.Name())
	assert.Equal(t, 5, caller.Policy().MaxRetries)

	_, err = New(Config{Name: "nope"}, DefaultRetryPolicy())
	assert.Error(t, err)
}
