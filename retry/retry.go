// Package retry implements the invocation retry policy used for upstream
// model-provider calls: exponential backoff on transient failures (overload,
// rate limiting) honoring a server-supplied retry-after hint when one is
// present. Failures that do not classify as transient are propagated
// unchanged on first occurrence.
package retry

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gisard/deepresearch/logging"
)

// Reason categories recognized by classifiers.
const (
	ReasonOverloaded  = "overloaded"
	ReasonRateLimited = "rate_limited"
)

// DefaultMaxAttempts bounds the total number of invocation attempts.
const DefaultMaxAttempts = 3

// DefaultBaseDelay is the backoff unit: the delay before attempt k+1 is
// BaseDelay * 2^(k-1) absent a larger retry-after hint.
const DefaultBaseDelay = time.Second

// Transient describes a retryable failure classification. RetryAfter carries
// the optional server-supplied delay hint; HasHint distinguishes "no hint"
// from an explicit zero.
type Transient struct {
	Reason     string
	RetryAfter time.Duration
	HasHint    bool
}

// Classifier decides whether a failure is transient and extracts the optional
// retry-after hint. Implementations own all "attribute might be missing"
// tolerance; callers never inspect provider errors directly.
type Classifier interface {
	Transient(err error) (Transient, bool)
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(err error) (Transient, bool)

// Transient implements Classifier.
func (f ClassifierFunc) Transient(err error) (Transient, bool) { return f(err) }

// Policy configures Do. The zero value degrades safely: no classifier means
// no failure is ever recognized as transient, so every error propagates
// immediately after a single attempt.
type Policy struct {
	// MaxAttempts is the total attempt budget (default 3, minimum 1).
	MaxAttempts int
	// Classifier recognizes transient failures. Nil recognizes nothing.
	Classifier Classifier
	// BaseDelay is the exponential backoff unit (default 1s).
	BaseDelay time.Duration
	// Logger receives a human-readable notice before each retry sleep.
	Logger logging.Logger
	// Sleep is injectable for tests; defaults to a context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.Logger == nil {
		p.Logger = logging.NoOpLogger{}
	}
	if p.Sleep == nil {
		p.Sleep = sleepCtx
	}
	return p
}

// Do performs op up to p.MaxAttempts times. On success the result is returned
// immediately. A failure that does not classify as transient, or occurs on
// the final attempt, is returned unchanged. Between attempts Do sleeps for
// max(BaseDelay * 2^(attempt-1), retry-after hint).
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	p = p.normalized()

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if attempt >= p.MaxAttempts {
			return zero, err
		}
		if p.Classifier == nil {
			return zero, err
		}
		tr, ok := p.Classifier.Transient(err)
		if !ok {
			return zero, err
		}

		delay := p.BaseDelay << (attempt - 1)
		if tr.HasHint && tr.RetryAfter > delay {
			delay = tr.RetryAfter
		}

		p.Logger.Warn("transient upstream failure, retrying",
			"reason", tr.Reason,
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"delay", delay,
			"error", err.Error(),
		)

		if serr := p.Sleep(ctx, delay); serr != nil {
			return zero, serr
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ParseRetryAfter interprets a Retry-After header value as a delay. Only
// plain second counts (integer or decimal) are recognized; anything else,
// including HTTP-dates and garbage, yields no hint.
func ParseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}
