package util

import (
	"context"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter rate-limits per hostname (serpapi.com, api.lever.co, ...)
// and adds a randomized courtesy pause on top of the token bucket.
type HostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int

	// MinPause/MaxPause bound the extra random wait before each call.
	MinPause time.Duration
	MaxPause time.Duration
	Sleep    func(ctx context.Context, d time.Duration) error
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		m: make(map[string]*rate.Limiter),
		r: rate.Limit(reqPerSec),
		b: burst,
	}
}

// WithPause sets the courtesy pause range.
func (hl *HostLimiter) WithPause(minPause, maxPause time.Duration) *HostLimiter {
	hl.MinPause, hl.MaxPause = minPause, maxPause
	return hl
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.m[host] = lim
	return lim
}

// WaitURL blocks until a call to raw's host is allowed.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	if hl == nil {
		return nil
	}
	host := "_"
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		host = u.Host
	}
	if err := hl.limiterFor(host).Wait(ctx); err != nil {
		return err
	}
	return hl.pause(ctx)
}

func (hl *HostLimiter) pause(ctx context.Context) error {
	if hl.MaxPause <= 0 {
		return nil
	}
	d := hl.MinPause
	if span := hl.MaxPause - hl.MinPause; span > 0 {
		d += time.Duration(rand.Int64N(int64(span)))
	}
	sleep := hl.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	return sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
