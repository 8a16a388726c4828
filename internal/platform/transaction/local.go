// Package transaction provides the in-process transaction scope used when the
// order ledger runs on in-memory storage.
package transaction

import (
	"context"
	"sync"

	"github.com/agrilink/marketplace/modules/shared/transaction"
)

type localTxKey struct{}

// LocalScope serializes transactional work within a single process.
// Nested Execute calls on the same context join the outer scope instead of
// deadlocking, which lets event handlers reuse the caller's boundary.
type LocalScope struct {
	mu sync.Mutex
}

func NewLocalScope() *LocalScope {
	return &LocalScope{}
}

// Execute runs fn while holding the scope lock.
func (s *LocalScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if InLocalTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(context.WithValue(ctx, localTxKey{}, s))
}

// InLocalTx reports whether ctx is already inside a LocalScope.
func InLocalTx(ctx context.Context) bool {
	_, ok := ctx.Value(localTxKey{}).(*LocalScope)
	return ok
}

// Compile-time interface check.
var _ transaction.Scope = (*LocalScope)(nil)
