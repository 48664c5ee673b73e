// Package repository defines the persistence ports used by the use case layer.
package repository

import (
	"context"

	"feedhook/internal/domain/entity"
)

// FeedRepository provides access to the stored feed subscription list.
// The list is read and written as a whole; there is no per-feed mutation.
type FeedRepository interface {
	// List returns all stored feed subscriptions. An empty store yields
	// an empty slice, not an error.
	List(ctx context.Context) ([]*entity.Feed, error)

	// SaveAll replaces the stored subscription list atomically.
	SaveAll(ctx context.Context, feeds []*entity.Feed) error
}

// ProcessingLock is the single-flight guard around a polling cycle.
// At most one holder at a time; Release is safe to call when not held.
type ProcessingLock interface {
	// TryAcquire attempts to take the lock. Returns false without error
	// when another cycle already holds it.
	TryAcquire(ctx context.Context) (bool, error)

	// Release gives the lock back unconditionally.
	Release(ctx context.Context) error

	// IsHeld reports whether a cycle currently holds the lock.
	IsHeld(ctx context.Context) (bool, error)
}
