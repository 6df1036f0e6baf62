package retry

import (
	"context"
	"time"

	"video_moderation_service/pkg/config"

	"github.com/cenkalti/backoff/v4"
)

// Policy definition task level retry policy
type Policy struct {
	MaxAttempts int
	Base        time.Duration
	Factor      float64
	Cap         time.Duration
	// Jitter randomization factor in [0,1], 0.5 => wait in [0.5x, 1.5x]
	Jitter float64
}

// DefaultPolicy 3 attempts, 1s doubling, jittered, at most 10s between attempts
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Base:        time.Second,
		Factor:      2,
		Cap:         10 * time.Second,
		Jitter:      0.5,
	}
}

// FromConfig build a Policy from the pipeline retry section
func FromConfig(c config.RetryConfig) Policy {
	return Policy{
		MaxAttempts: c.MaxAttempts,
		Base:        c.Base,
		Factor:      c.Factor,
		Cap:         c.Cap,
		Jitter:      c.Jitter,
	}
}

// NotifyFunc is called after a failed attempt, before waiting
type NotifyFunc func(attempt int, err error, wait time.Duration)

// Do runs op until it succeeds, returns a Permanent error, exhausts MaxAttempts or ctx is done.
// The returned error is the last attempt's error (unwrapped when permanent).
func Do(ctx context.Context, p Policy, op func(attempt int) error, notify NotifyFunc) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.Base
	exp.Multiplier = p.Factor
	exp.MaxInterval = p.Cap
	exp.RandomizationFactor = p.Jitter
	exp.MaxElapsedTime = 0
	exp.Reset()

	var b backoff.BackOff = &capped{
		BackOff: backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)),
		max:     p.Cap,
	}
	b = backoff.WithContext(b, ctx)

	attempt := 0
	operation := func() error {
		attempt++
		return op(attempt)
	}
	onRetry := func(err error, wait time.Duration) {
		if notify != nil {
			notify(attempt, err, wait)
		}
	}
	return backoff.RetryNotify(operation, b, onRetry)
}

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// capped 避免 jitter 讓等待時間超過上限
type capped struct {
	backoff.BackOff
	max time.Duration
}

func (c *capped) NextBackOff() time.Duration {
	d := c.BackOff.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	if c.max > 0 && d > c.max {
		return c.max
	}
	return d
}
