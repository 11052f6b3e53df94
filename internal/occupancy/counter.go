package occupancy

import (
	"context"
	"sync"
)

// MaxVisitors is the venue capacity. Hardcoded on purpose: it only changes
// if the venue itself is rebuilt, and keeping it out of config prevents an
// accidental override from blocking check-ins.
const MaxVisitors = 500

type OwnerDirectory interface {
	CountCheckedIn(ctx context.Context) (int, error)
	CheckOutAll(ctx context.Context) error
}

// Counter tracks how many visitors are inside: the number of checked-in
// owners plus a manual adjustment operators use for visitors without an
// account. The adjustment lives in process memory for the lifetime of the
// backend, matching the single-instance deployment.
type Counter struct {
	mu         sync.Mutex
	adjustment int
	owners     OwnerDirectory
}

func NewCounter(owners OwnerDirectory) *Counter {
	return &Counter{owners: owners}
}

// Current returns checked-in owners plus the manual adjustment.
func (c *Counter) Current(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	total, err := c.owners.CountCheckedIn(ctx)
	if err != nil {
		return 0, err
	}
	return total + c.adjustment, nil
}

// Increment bumps the manual adjustment unless the venue would reach
// capacity; at the bound it is a no-op. Always returns the resulting count.
func (c *Counter) Increment(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	total, err := c.owners.CountCheckedIn(ctx)
	if err != nil {
		return 0, err
	}
	if total+c.adjustment < MaxVisitors-1 {
		c.adjustment++
	}
	return total + c.adjustment, nil
}

// Decrement lowers the manual adjustment unless the count is already zero.
func (c *Counter) Decrement(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	total, err := c.owners.CountCheckedIn(ctx)
	if err != nil {
		return 0, err
	}
	if total+c.adjustment > 0 {
		c.adjustment--
	}
	return total + c.adjustment, nil
}

// ResetOnVenueClose zeroes the adjustment and checks out every owner in one
// bulk update. The check-in ledger is untouched; history is permanent.
func (c *Counter) ResetOnVenueClose(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.adjustment = 0
	return c.owners.CheckOutAll(ctx)
}
