package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jonathan/resume-builder/internal/llm"

// RetryConfig controls the retry schedule of a RetryingClient
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	// MaxDelay caps the backoff delay; zero means uncapped.
	MaxDelay time.Duration
}

// DefaultRetryConfig returns 15 attempts starting at 10s and doubling, uncapped.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  15,
		InitialDelay: 10 * time.Second,
		Multiplier:   2,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	def := DefaultRetryConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = def.InitialDelay
	}
	if c.Multiplier < 1 {
		c.Multiplier = def.Multiplier
	}
	return c
}

func (c RetryConfig) schedule() *backoff.ExponentialBackOff {
	maxDelay := c.MaxDelay
	if maxDelay <= 0 {
		maxDelay = time.Duration(math.MaxInt64)
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     c.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          c.Multiplier,
		MaxInterval:         maxDelay,
	}
	b.Reset()
	return b
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryingClient wraps a Client with the rate-limit aware retry loop and
// writes one usage record per successful completion.
type RetryingClient struct {
	inner   Client
	cfg     RetryConfig
	sink    UsageSink
	pricing Pricing
	sleep   Sleeper
	limiter Limiter
	log     logrus.FieldLogger
	now     func() time.Time
}

// Limiter paces requests to the provider. *ratelimit.TokenBucket satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// RetryOption configures a RetryingClient
type RetryOption func(*RetryingClient)

// WithRetryConfig overrides the retry schedule.
func WithRetryConfig(cfg RetryConfig) RetryOption {
	return func(c *RetryingClient) { c.cfg = cfg.normalized() }
}

// WithUsageSink sets where usage records are written.
func WithUsageSink(sink UsageSink) RetryOption {
	return func(c *RetryingClient) { c.sink = sink }
}

// WithPricing overrides the per-token prices used for cost.
func WithPricing(p Pricing) RetryOption {
	return func(c *RetryingClient) { c.pricing = p }
}

// WithSleeper replaces the wait between attempts.
func WithSleeper(s Sleeper) RetryOption {
	return func(c *RetryingClient) { c.sleep = s }
}

// WithLimiter makes every attempt wait for the limiter first.
func WithLimiter(l Limiter) RetryOption {
	return func(c *RetryingClient) { c.limiter = l }
}

// WithLogger sets the logger for attempt diagnostics.
func WithLogger(log logrus.FieldLogger) RetryOption {
	return func(c *RetryingClient) { c.log = log }
}

// NewRetryingClient wraps inner with the default retry policy.
func NewRetryingClient(inner Client, opts ...RetryOption) *RetryingClient {
	c := &RetryingClient{
		inner:   inner,
		cfg:     DefaultRetryConfig(),
		pricing: DefaultPricing,
		sleep:   SleepContext,
		log:     discardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model of the wrapped client.
func (c *RetryingClient) Model() string {
	return c.inner.Model()
}

// Close closes the wrapped client.
func (c *RetryingClient) Close() error {
	return c.inner.Close()
}

// Complete calls the wrapped client until it succeeds or the attempts run out.
// Explicit rate-limit errors wait the server-suggested time without advancing
// the backoff; HTTP 429 and all other errors wait the current delay and double it.
func (c *RetryingClient) Complete(ctx context.Context, messages []Message) (*Response, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm.complete", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.inner.Model()),
		attribute.Int("llm.messages", len(messages)),
	)

	schedule := c.cfg.schedule()
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
		}
		resp, err := c.inner.Complete(ctx, messages)
		if err == nil {
			resp = parseResponse(resp, c.inner.Model())
			c.recordUsage(ctx, messages, resp)
			span.SetAttributes(attribute.Int("llm.attempts", attempt))
			return resp, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			span.RecordError(ctxErr)
			span.SetStatus(codes.Error, ctxErr.Error())
			return nil, ctxErr
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}

		delay := c.nextDelay(schedule, err, attempt)
		if err := c.sleep(ctx, delay); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, ErrRetriesExhausted.Error())
	return nil, fmt.Errorf("%w (%d attempts): %w", ErrRetriesExhausted, c.cfg.MaxAttempts, lastErr)
}

func (c *RetryingClient) nextDelay(schedule *backoff.ExponentialBackOff, err error, attempt int) time.Duration {
	entry := c.log.WithFields(logrus.Fields{
		"attempt":      attempt,
		"max_attempts": c.cfg.MaxAttempts,
	})

	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		if wait, ok := rateErr.SuggestedWait(); ok {
			entry.WithField("delay", wait).Warn("rate limit exceeded, waiting suggested time")
			return wait
		}
		delay := schedule.NextBackOff()
		entry.WithField("delay", delay).Warn("rate limit exceeded without suggested wait, backing off")
		return delay
	}

	delay := schedule.NextBackOff()
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.TooManyRequests() {
		entry.WithField("delay", delay).Warn("HTTP 429 Too Many Requests, backing off")
		return delay
	}

	entry.WithError(err).WithField("delay", delay).Error("completion failed, retrying")
	return delay
}

func (c *RetryingClient) recordUsage(ctx context.Context, messages []Message, resp *Response) {
	if c.sink == nil {
		return
	}
	record := NewUsageRecord(c.now(), messages, resp, c.pricing)
	if err := c.sink.Record(ctx, record); err != nil {
		c.log.WithError(err).Warn("failed to write usage log entry")
	}
}
