package scan

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateGate enforces a fixed minimum interval between successive requests.
type RateGate struct {
	limiter *rate.Limiter
}

// NewRateGate creates a gate that admits one request per interval.
func NewRateGate(interval time.Duration) *RateGate {
	return &RateGate{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may proceed or ctx is done.
func (g *RateGate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}
