package kvstore

import (
	"context"
	"fmt"

	"feedhook/internal/infra/store"
)

const (
	// processingKey flags an in-flight polling cycle.
	processingKey   = "processing"
	processingValue = "1"
)

// Lock implements repository.ProcessingLock on top of a Store.
// The flag survives process restarts, so the worker clears it once at
// startup to heal from crashes that died mid-cycle.
type Lock struct {
	store store.Store
}

// NewLock creates a Lock over the given store.
func NewLock(s store.Store) *Lock {
	return &Lock{store: s}
}

// TryAcquire takes the lock unless another cycle already holds it.
func (l *Lock) TryAcquire(ctx context.Context) (bool, error) {
	_, held, err := l.store.Get(ctx, processingKey)
	if err != nil {
		return false, fmt.Errorf("check processing flag: %w", err)
	}
	if held {
		return false, nil
	}
	if err := l.store.Set(ctx, processingKey, processingValue); err != nil {
		return false, fmt.Errorf("set processing flag: %w", err)
	}
	return true, nil
}

// Release clears the flag. Releasing an unheld lock is a no-op.
func (l *Lock) Release(ctx context.Context) error {
	if err := l.store.Delete(ctx, processingKey); err != nil {
		return fmt.Errorf("clear processing flag: %w", err)
	}
	return nil
}

// IsHeld reports whether a cycle currently holds the lock.
func (l *Lock) IsHeld(ctx context.Context) (bool, error) {
	_, held, err := l.store.Get(ctx, processingKey)
	if err != nil {
		return false, fmt.Errorf("check processing flag: %w", err)
	}
	return held, nil
}
