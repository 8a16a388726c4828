package placement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/agrilink/marketplace/modules/orders/infrastructure/placement"
	"github.com/agrilink/marketplace/modules/shared/types"
)

func TestSimulated_IssuesOrderID(t *testing.T) {
	p := placement.NewSimulated(10 * time.Millisecond)

	start := time.Now()
	id, err := p.Place(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	_, err = types.ParseOrderID(id.String())
	assert.NoError(t, err, "id %q should be AGL-<12 hex>", id)
}

func TestSimulated_HonorsCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := placement.NewSimulated(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	id, err := p.Place(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, id.IsZero())
}
