// Package store provides the key/value state store used for feed
// subscriptions and the processing flag.
package store

import "context"

// Store is a minimal string key/value store.
// Get reports presence explicitly so callers can distinguish a missing
// key from an empty value.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
