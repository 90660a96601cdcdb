package provider

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
	"github.com/DhavalSuthar-24/miow-context-master/internal/log"
	"github.com/DhavalSuthar-24/miow-context-master/internal/metrics"
)

// scriptedTransport fails the first failures calls then succeeds.
type scriptedTransport struct {
	mu       sync.Mutex
	failures int
	calls    int
	messages [][]Message
}

func (s *scriptedTransport) Name() string { return "fake" }

func (s *scriptedTransport) Send(_ context.Context, messages []Message) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.messages = append(s.messages, messages)
	if s.calls <= s.failures {
		return nil, fmt.Errorf("fake API server error (503): unavailable. This is retryable.")
	}
	return &Response{Content: "ok", Provider: "fake"}, nil
}

type recordedSleeps struct {
	delays []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func noJitter(time.Duration) time.Duration { return 0 }

func newTestCaller(t Transport, policy RetryPolicy, sleeps *recordedSleeps, opts ...Option) *ResilientCaller {
	opts = append([]Option{
		WithLogger(log.Discard()),
		WithSleep(sleeps.sleep),
		WithJitter(noJitter),
	}, opts...)
	return NewResilientCaller(t, policy, opts...)
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		jitter  time.Duration
		want    time.Duration
	}{
		{1, 0, 2 * time.Second},
		{2, 0, 4 * time.Second},
		{3, 500 * time.Millisecond, 8*time.Second + 500*time.Millisecond},
		{5, 0, 32 * time.Second},
		{0, 0, 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.want, Backoff(2*time.Second, tt.attempt, tt.jitter))
		})
	}
}

func TestResilientCallerSucceedsAfterRetries(t *testing.T) {
	transport := &scriptedTransport{failures: 2}
	sleeps := &recordedSleeps{}
	caller := newTestCaller(transport, DefaultRetryPolicy(), sleeps)

	resp, err := caller.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, 3, transport.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeps.delays)

	require.Len(t, transport.messages[0], 1)
	assert.Equal(t, RoleUser, transport.messages[0][0].Role)
	assert.Equal(t, "hello", transport.messages[0][0].Content)
}

func TestResilientCallerExhausts(t *testing.T) {
	transport := &scriptedTransport{failures: 100}
	sleeps := &recordedSleeps{}
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: time.Second}
	_, m := metrics.NewRegistry()
	caller := newTestCaller(transport, policy, sleeps, WithMetrics(m))

	_, err := caller.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeBackendExhausted))
	assert.Contains(t, err.Error(), "This is retryable.")
	assert.Contains(t, err.Error(), "4 attempts")

	assert.Equal(t, 4, transport.calls, "first attempt plus three retries")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, sleeps.delays)
}

func TestResilientCallerZeroRetries(t *testing.T) {
	transport := &scriptedTransport{failures: 1}
	sleeps := &recordedSleeps{}
	caller := newTestCaller(transport, RetryPolicy{MaxRetries: 0}, sleeps)

	_, err := caller.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 1, transport.calls)
	assert.Empty(t, sleeps.delays)
}

func TestResilientCallerJitterAdded(t *testing.T) {
	transport := &scriptedTransport{failures: 1}
	sleeps := &recordedSleeps{}
	caller := newTestCaller(transport, DefaultRetryPolicy(), sleeps,
		WithJitter(func(limit time.Duration) time.Duration { return limit - time.Millisecond }))

	_, err := caller.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2*time.Second + 999*time.Millisecond}, sleeps.delays)
}

func TestResilientCallerStopsOnCancel(t *testing.T) {
	transport := &scriptedTransport{failures: 100}
	ctx, cancel := context.WithCancel(context.Background())

	caller := NewResilientCaller(transport, DefaultRetryPolicy(),
		WithLogger(log.Discard()),
		WithJitter(noJitter),
		WithSleep(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}))

	_, err := caller.Generate(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, transport.calls)
}

func TestUniformJitterBounds(t *testing.T) {
	assert.Equal(t, time.Duration(0), uniformJitter(0))
	for range 100 {
		j := uniformJitter(time.Second)
		assert.GreaterOrEqual(t, j, time.Duration(0))
		assert.Less(t, j, time.Second)
	}
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), 0))
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
