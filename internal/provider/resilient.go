package provider

import (
	"context"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
	"github.com/DhavalSuthar-24/miow-context-master/internal/log"
	"github.com/DhavalSuthar-24/miow-context-master/internal/metrics"
	"github.com/DhavalSuthar-24/miow-context-master/internal/telemetry"
)

// RetryPolicy controls the backoff of a ResilientCaller.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// BaseDelay is the delay before the first retry
	BaseDelay time.Duration `yaml:"base_delay" json:"base_delay"`

	// MaxJitter bounds the uniform random delay added to every backoff
	MaxJitter time.Duration `yaml:"max_jitter" json:"max_jitter"`
}

// DefaultRetryPolicy returns five retries starting at two seconds with up to
// one second of jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 5,
		BaseDelay:  2 * time.Second,
		MaxJitter:  time.Second,
	}
}

// Backoff returns the delay before retry number attempt (1-based):
// base * 2^(attempt-1) + jitter.
func Backoff(base time.Duration, attempt int, jitter time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base*time.Duration(1<<(attempt-1)) + jitter
}

// ResilientCaller wraps a Transport with exponential backoff and jitter.
// Every failure class is retried the same way.
type ResilientCaller struct {
	transport Transport
	policy    RetryPolicy
	logger    *log.Logger
	metrics   *metrics.Metrics
	sleep     func(context.Context, time.Duration) error
	jitter    func(limit time.Duration) time.Duration
}

var _ Provider = (*ResilientCaller)(nil)

// Option configures a ResilientCaller.
type Option func(*ResilientCaller)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *ResilientCaller) { c.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *ResilientCaller) { c.metrics = m }
}

// WithSleep replaces the backoff sleep. Tests use it to skip waiting.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(c *ResilientCaller) { c.sleep = fn }
}

// WithJitter replaces the jitter source.
func WithJitter(fn func(limit time.Duration) time.Duration) Option {
	return func(c *ResilientCaller) { c.jitter = fn }
}

// NewResilientCaller wraps t with policy.
func NewResilientCaller(t Transport, policy RetryPolicy, opts ...Option) *ResilientCaller {
	c := &ResilientCaller{
		transport: t,
		policy:    policy,
		sleep:     sleepContext,
		jitter:    uniformJitter,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.OrDefault(c.logger).Named("provider").With("provider", t.Name())
	return c
}

// Name returns the wrapped transport's name.
func (c *ResilientCaller) Name() string {
	return c.transport.Name()
}

// Policy returns the retry policy in effect.
func (c *ResilientCaller) Policy() RetryPolicy {
	return c.policy
}

// Generate sends prompt as a single user message.
func (c *ResilientCaller) Generate(ctx context.Context, prompt string) (*Response, error) {
	return c.GenerateWithContext(ctx, UserPrompt(prompt))
}

// GenerateWithContext sends messages, retrying failures up to MaxRetries
// times. After the last failure it returns a BACKEND-001 error wrapping the
// final cause. Context cancellation stops the loop immediately.
func (c *ResilientCaller) GenerateWithContext(ctx context.Context, messages []Message) (*Response, error) {
	ctx, span := telemetry.StartProviderSpan(ctx, c.transport.Name(), "generate")
	defer span.End()

	start := time.Now()
	maxRetries := max(c.policy.MaxRetries, 0)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := c.transport.Send(ctx, messages)
		if err == nil {
			resp.Attempts = attempt + 1
			c.logger.Debug("generation succeeded", "attempt", resp.Attempts, "latency", resp.Latency)
			c.metrics.RecordLLMCall(c.transport.Name(), true, resp.Attempts, time.Since(start))
			telemetry.RecordSuccess(span, attribute.Int("attempts", resp.Attempts))
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			telemetry.RecordError(span, ctx.Err())
			return nil, ctx.Err()
		}

		failures := attempt + 1
		c.logger.Warn("generation attempt failed", "attempt", failures, "error", err.Error())
		if failures > maxRetries {
			break
		}

		delay := Backoff(c.policy.BaseDelay, failures, c.jitter(c.policy.MaxJitter))
		c.logger.Warn("retrying generation", "delay", delay, "retry", failures, "max_retries", maxRetries)
		c.metrics.RecordLLMRetry(c.transport.Name())
		if err := c.sleep(ctx, delay); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	attempts := maxRetries + 1
	c.metrics.RecordLLMCall(c.transport.Name(), false, attempts, time.Since(start))
	exhausted := errors.NewBackendExhaustedError(c.transport.Name(), attempts, lastErr)
	c.metrics.RecordError(string(exhausted.Code), "provider")
	c.logger.Error("all generation attempts failed", "attempts", attempts)
	telemetry.RecordError(span, exhausted)
	return nil, exhausted
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func uniformJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return rand.N(limit)
}
