package llm

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient returns the scripted errors in order, then succeeds.
type scriptedClient struct {
	mu     sync.Mutex
	errs   []error
	calls  int
	always error
}

func (c *scriptedClient) Complete(_ context.Context, messages []Message) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.always != nil {
		return nil, c.always
	}
	if c.calls <= len(c.errs) {
		return nil, c.errs[c.calls-1]
	}
	return &Response{
		ID:      "resp",
		Content: "reply to " + messages[len(messages)-1].Content,
		Usage:   Usage{InputTokens: 100, OutputTokens: 50},
	}, nil
}

func (c *scriptedClient) Model() string { return "gpt-4o-mini" }
func (c *scriptedClient) Close() error  { return nil }

type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func TestRetryingClient_ExhaustsAttempts(t *testing.T) {
	inner := &scriptedClient{always: errors.New("connection reset")}
	sleeper := &recordingSleeper{}
	client := NewRetryingClient(inner, WithSleeper(sleeper.sleep))

	_, err := client.Complete(context.Background(), []Message{UserMessage("hi")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 15, inner.calls)
	assert.Len(t, sleeper.delays, 14)
	assert.Equal(t, 10*time.Second, sleeper.delays[0])
	assert.Equal(t, 20*time.Second, sleeper.delays[1])
	assert.Equal(t, 40*time.Second, sleeper.delays[2])
}

func TestRetryingClient_RateLimitedThenSucceeds(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "http 429", err: &StatusError{StatusCode: http.StatusTooManyRequests, Body: "too many requests"}},
		{name: "rate limit without hint", err: &RateLimitError{Message: "slow down"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &scriptedClient{errs: []error{tt.err, tt.err}}
			sleeper := &recordingSleeper{}
			client := NewRetryingClient(inner, WithSleeper(sleeper.sleep))

			resp, err := client.Complete(context.Background(), []Message{UserMessage("hi")})
			require.NoError(t, err)
			assert.Equal(t, "reply to hi", resp.Content)
			assert.Equal(t, 3, inner.calls)

			require.Len(t, sleeper.delays, 2)
			assert.Equal(t, 2*sleeper.delays[0], sleeper.delays[1])
		})
	}
}

func TestRetryingClient_SuggestedWaitKeepsBackoff(t *testing.T) {
	inner := &scriptedClient{errs: []error{
		&RateLimitError{Message: "Please try again in 20s."},
		errors.New("temporary failure"),
		&RateLimitError{Message: "Please try again in 350ms."},
		errors.New("temporary failure"),
	}}
	sleeper := &recordingSleeper{}
	client := NewRetryingClient(inner, WithSleeper(sleeper.sleep))

	_, err := client.Complete(context.Background(), []Message{UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{
		20 * time.Second,
		10 * time.Second,
		350 * time.Millisecond,
		20 * time.Second,
	}, sleeper.delays)
}

func TestRetryingClient_CustomConfig(t *testing.T) {
	inner := &scriptedClient{always: errors.New("down")}
	sleeper := &recordingSleeper{}
	client := NewRetryingClient(inner,
		WithSleeper(sleeper.sleep),
		WithRetryConfig(RetryConfig{MaxAttempts: 4, InitialDelay: time.Second, Multiplier: 2, MaxDelay: 3 * time.Second}),
	)

	_, err := client.Complete(context.Background(), []Message{UserMessage("hi")})
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 4, inner.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, sleeper.delays)
}

func TestRetryingClient_ContextCancelled(t *testing.T) {
	inner := &scriptedClient{always: errors.New("down")}
	ctx, cancel := context.WithCancel(context.Background())
	sleeps := 0
	client := NewRetryingClient(inner, WithSleeper(func(ctx context.Context, d time.Duration) error {
		sleeps++
		cancel()
		return ctx.Err()
	}))

	_, err := client.Complete(ctx, []Message{UserMessage("hi")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, sleeps)
}

func TestRetryingClient_WritesUsageRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "llm_calls.jsonl")
	inner := &scriptedClient{errs: []error{errors.New("flaky")}}
	sleeper := &recordingSleeper{}
	fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	client := NewRetryingClient(inner, WithSleeper(sleeper.sleep), WithUsageSink(NewFileUsageLog(path)))
	client.now = func() time.Time { return fixed }

	_, err := client.Complete(context.Background(), []Message{SystemMessage("be brief"), UserMessage("hi")})
	require.NoError(t, err)

	records, err := ReadUsageLog(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "gpt-4o-mini", rec.Model)
	assert.Equal(t, "2024-05-01 09:30:00", rec.Time)
	assert.Equal(t, map[string]string{"prompt_1": "be brief", "prompt_2": "hi"}, rec.Prompts)
	assert.Equal(t, "reply to hi", rec.Replies)
	assert.Equal(t, 150, rec.TotalTokens)
	assert.InDelta(t, 100*0.00000015+50*0.0000006, rec.TotalCost, 1e-12)
}

type failingSink struct{}

func (failingSink) Record(context.Context, UsageRecord) error { return errors.New("disk full") }

func TestRetryingClient_UsageSinkFailureStillReturnsResponse(t *testing.T) {
	inner := &scriptedClient{}
	client := NewRetryingClient(inner, WithUsageSink(failingSink{}))

	resp, err := client.Complete(context.Background(), []Message{UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "reply to hi", resp.Content)
	assert.Equal(t, 1, inner.calls)
}

type countingLimiter struct {
	waits int
	err   error
}

func (l *countingLimiter) Wait(context.Context) error {
	l.waits++
	return l.err
}

func TestRetryingClient_LimiterGatesEveryAttempt(t *testing.T) {
	inner := &scriptedClient{errs: []error{errors.New("boom")}}
	limiter := &countingLimiter{}
	client := NewRetryingClient(inner, WithSleeper((&recordingSleeper{}).sleep), WithLimiter(limiter))

	_, err := client.Complete(context.Background(), []Message{UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, 2, limiter.waits)
}

func TestRetryingClient_LimiterErrorStops(t *testing.T) {
	inner := &scriptedClient{}
	limiter := &countingLimiter{err: context.Canceled}
	client := NewRetryingClient(inner, WithLimiter(limiter))

	_, err := client.Complete(context.Background(), []Message{UserMessage("hi")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, inner.calls)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}
