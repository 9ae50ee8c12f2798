package llm

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRetriesExhausted is returned once the retrying client has used every attempt.
var ErrRetriesExhausted = errors.New("failed to get a response from the model after multiple attempts")

// StatusError is a non-success HTTP status returned by a provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm api error (status %d): %s", e.StatusCode, e.Body)
}

// TooManyRequests reports whether the status is HTTP 429.
func (e *StatusError) TooManyRequests() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// RateLimitError is an explicit rate-limit signal from a provider. Message is
// the provider's own text, which often carries a suggested wait
// ("Please try again in 20s").
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
	Cause      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s", e.Message)
}

func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// SuggestedWait returns the server-suggested wait: the Retry-After value when
// present, otherwise the first duration found in the message text.
func (e *RateLimitError) SuggestedWait() (time.Duration, bool) {
	if e.RetryAfter > 0 {
		return e.RetryAfter, true
	}
	return ParseWaitTime(e.Message)
}

// IsRateLimited reports whether err is an explicit rate-limit error or an HTTP 429.
func IsRateLimited(err error) bool {
	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.TooManyRequests()
}
