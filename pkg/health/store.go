package health

import (
	"context"
	"time"

	"github.com/cuemby/syncd/pkg/store"
)

// pinger is the narrow slice of store.Store this checker depends on.
type pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker probes connectivity to the document store with a bounded
// timeout, standing in for the spec's "SELECT 1-equivalent" probe.
type StoreChecker struct {
	store   pinger
	timeout time.Duration
}

// NewStoreChecker builds a StoreChecker against s. A zero timeout defaults
// to 2s.
func NewStoreChecker(s store.Store, timeout time.Duration) *StoreChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &StoreChecker{store: s, timeout: timeout}
}

func (c *StoreChecker) Type() CheckType { return CheckTypeStore }

func (c *StoreChecker) Check(ctx context.Context) Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.store.Ping(ctx)
	result := Result{
		CheckedAt: start,
		Duration:  time.Since(start),
		Healthy:   err == nil,
	}
	if err != nil {
		result.Message = err.Error()
	} else {
		result.Message = "ok"
	}
	return result
}
