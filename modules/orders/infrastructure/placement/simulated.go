// Package placement hands accepted orders to fulfillment.
package placement

import (
	"context"
	"time"

	"github.com/agrilink/marketplace/modules/orders/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// DefaultDelay is how long a simulated placement takes.
const DefaultDelay = 1500 * time.Millisecond

// Simulated stands in for a fulfillment backend: it waits a fixed delay and
// issues a locally generated order id.
type Simulated struct {
	delay time.Duration
	newID func() types.OrderID
}

func NewSimulated(delay time.Duration) *Simulated {
	if delay < 0 {
		delay = 0
	}
	return &Simulated{delay: delay, newID: types.NewOrderID}
}

// Place returns ctx.Err() if ctx ends before the delay elapses.
func (s *Simulated) Place(ctx context.Context) (types.OrderID, error) {
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return types.OrderID{}, ctx.Err()
		case <-t.C:
		}
	}
	return s.newID(), nil
}

var _ domain.Placer = (*Simulated)(nil)
