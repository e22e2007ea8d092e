package retry

import (
	"context"
	"math/rand"
	"time"
)

const (
	defaultMaxRetries = 3
	defaultBaseWait   = 250 * time.Millisecond
	defaultMaxWait    = 10 * time.Second
)

// Option configures a call to Do.
type Option func(*options)

type options struct {
	maxRetries int
	baseWait   time.Duration
	maxWait    time.Duration
}

// WithMaxRetries sets how many times the operation is retried after the
// first attempt. Zero means a single attempt.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

// WithBaseWait sets the wait before the first retry; each subsequent wait
// doubles, capped by WithMaxWait.
func WithBaseWait(d time.Duration) Option {
	return func(o *options) { o.baseWait = d }
}

// WithMaxWait caps the backoff wait between attempts.
func WithMaxWait(d time.Duration) Option {
	return func(o *options) { o.maxWait = d }
}

// Do runs fn, retrying recoverable failures with jittered exponential
// backoff until the retry budget or the context is exhausted. The last
// error is returned unchanged.
func Do(ctx context.Context, fn func() error, opts ...Option) error {
	o := options{
		maxRetries: defaultMaxRetries,
		baseWait:   defaultBaseWait,
		maxWait:    defaultMaxWait,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var lastErr error
	wait := o.baseWait
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			jittered := wait/2 + time.Duration(rand.Int63n(int64(wait/2)+1))
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(jittered):
			}
			wait *= 2
			if wait > o.maxWait {
				wait = o.maxWait
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRecoverable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
