package transaction_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrilink/marketplace/internal/platform/transaction"
)

func TestLocalScope_NestedExecuteJoinsOuterScope(t *testing.T) {
	scope := transaction.NewLocalScope()

	var innerRan bool
	err := scope.Execute(context.Background(), func(ctx context.Context) error {
		require.True(t, transaction.InLocalTx(ctx))
		return scope.Execute(ctx, func(ctx context.Context) error {
			innerRan = true
			return nil
		})
	})

	require.NoError(t, err)
	require.True(t, innerRan)
}

func TestLocalScope_PropagatesError(t *testing.T) {
	scope := transaction.NewLocalScope()
	errFn := errors.New("boom")

	err := scope.Execute(context.Background(), func(ctx context.Context) error {
		return errFn
	})

	require.ErrorIs(t, err, errFn)
}

func TestLocalScope_SerializesConcurrentWork(t *testing.T) {
	scope := transaction.NewLocalScope()

	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = scope.Execute(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	require.Equal(t, 1, maxSeen)
}
