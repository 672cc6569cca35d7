package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

type retrying struct {
	inner  Provider
	cfg    RetryConfig
	logger *zap.Logger
}

// WithRetry re-issues failed requests per cfg. A nil logger discards
// retry logs.
func WithRetry(p Provider, cfg RetryConfig, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.MaxAttempts = max(cfg.MaxAttempts, 1)
	return &retrying{inner: p, cfg: cfg, logger: logger}
}

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	reasked := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt == r.cfg.MaxAttempts || !worthRepeating(err, &reasked) {
			return nil, err
		}

		wait := r.cfg.delay(attempt, err)
		r.logger.Warn("repeating model request",
			zap.String("task", TaskFrom(ctx)),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (r *retrying) ModelID() string {
	return r.inner.ModelID()
}

// worthRepeating classifies a failed attempt. A schema failure is re-asked
// once; a truncated reply would be cut off again.
func worthRepeating(err error, reasked *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		if inv.Truncated || *reasked {
			return false
		}
		*reasked = true
		return true
	}

	var un *ErrUnavailable
	if errors.As(err, &un) {
		return un.Temporary()
	}
	return true
}

// delay is the wait before attempt+1: the provider's Retry-After when it
// sent one, otherwise exponential growth capped at MaxWait with ±20%
// jitter.
func (c RetryConfig) delay(attempt int, err error) time.Duration {
	var un *ErrUnavailable
	if errors.As(err, &un) && un.RetryAfter > 0 {
		return un.RetryAfter
	}

	d := float64(c.InitialWait) * math.Pow(c.Multiplier, float64(attempt-1))
	if c.MaxWait > 0 {
		d = math.Min(d, float64(c.MaxWait))
	}
	return time.Duration(d * (0.8 + 0.4*rand.Float64()))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
