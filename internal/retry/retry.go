// Package retry runs outbound calls under an explicit backoff policy.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"leadhunt-engine/internal/apperr"
	"leadhunt-engine/internal/metrics"
)

// StatusCoder is implemented by results that carry an HTTP status. A
// retryable status on a successful return is treated as a failure.
type StatusCoder interface {
	StatusCode() int
}

// Attempt describes one failed try that is about to be retried.
type Attempt struct {
	Index  int
	Delay  time.Duration
	Err    error
	Status int
}

// Policy is the inspectable retry configuration each adapter owns.
type Policy struct {
	Source          string
	MaxRetries      int
	InitialDelay    time.Duration
	BackoffFactor   float64
	Jitter          bool
	RetryableKinds  []apperr.Kind
	RetryableStatus []int

	// Sleep and Rand are swapped out in tests.
	Sleep   func(ctx context.Context, d time.Duration) error
	Rand    func() float64
	OnRetry func(Attempt)
}

// DefaultStatus is the set of status codes retried when a policy does not
// list its own.
var DefaultStatus = []int{429, 500, 502, 503, 504}

// Default is the policy the search-backed adapters start from.
func Default(source string) Policy {
	return Policy{
		Source:          source,
		MaxRetries:      3,
		InitialDelay:    2 * time.Second,
		BackoffFactor:   2,
		Jitter:          true,
		RetryableKinds:  []apperr.Kind{apperr.Network, apperr.RateLimit, apperr.HTTP},
		RetryableStatus: DefaultStatus,
	}
}

// Do calls op until it succeeds, fails with a non-retryable error, or the
// policy runs out of retries. op is called at most MaxRetries+1 times.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	rnd := p.Rand
	if rnd == nil {
		rnd = rand.Float64
	}
	factor := p.BackoffFactor
	if factor <= 0 {
		factor = 1
	}

	delay := p.InitialDelay
	var last error
	for attempt := 0; ; attempt++ {
		res, err := op(ctx)
		status := 0
		switch {
		case err == nil:
			sc, ok := any(res).(StatusCoder)
			if !ok || !slices.Contains(p.RetryableStatus, sc.StatusCode()) {
				metrics.RetryAttempts.WithLabelValues(p.Source, "ok").Inc()
				return res, nil
			}
			status = sc.StatusCode()
			last = &apperr.Error{
				Kind:   apperr.HTTP,
				Source: p.Source,
				Status: status,
				Err:    fmt.Errorf("status code %d", status),
			}
		case apperr.Is(err, apperr.Auth):
			// auth failures never consume a retry, even if Auth is listed
			metrics.RetryAttempts.WithLabelValues(p.Source, "fatal").Inc()
			return zero, err
		case slices.Contains(p.RetryableKinds, apperr.KindOf(err)) && retryableStatus(p, err):
			last = err
		default:
			metrics.RetryAttempts.WithLabelValues(p.Source, "fatal").Inc()
			return zero, err
		}

		if attempt >= p.MaxRetries {
			metrics.RetryAttempts.WithLabelValues(p.Source, "exhausted").Inc()
			slog.Error("max retries reached", "source", p.Source, "retries", p.MaxRetries, "err", last)
			return zero, last
		}
		metrics.RetryAttempts.WithLabelValues(p.Source, "retry").Inc()

		wait := delay
		if p.Jitter {
			wait += time.Duration(rnd() * float64(delay) * 0.1)
		}
		if p.OnRetry != nil {
			p.OnRetry(Attempt{Index: attempt, Delay: wait, Err: last, Status: status})
		}
		slog.Warn("retrying",
			"source", p.Source,
			"attempt", attempt+1,
			"of", p.MaxRetries,
			"wait", wait,
			"err", last,
		)
		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
		delay = time.Duration(float64(delay) * factor)
	}
}

// retryableStatus limits HTTP errors that carry a status to the policy's
// status set; a 404 is not worth another call.
func retryableStatus(p Policy, err error) bool {
	code := apperr.StatusOf(err)
	if code == 0 || apperr.KindOf(err) != apperr.HTTP {
		return true
	}
	return slices.Contains(p.RetryableStatus, code)
}

// Delays returns the jitter-free wait before each retry.
func Delays(p Policy) []time.Duration {
	out := make([]time.Duration, 0, p.MaxRetries)
	for k := 0; k < p.MaxRetries; k++ {
		out = append(out, time.Duration(float64(p.InitialDelay)*math.Pow(p.BackoffFactor, float64(k))))
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
