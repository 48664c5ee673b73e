// Package kvstore persists feed subscriptions and the processing flag
// in the key/value state store.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"feedhook/internal/domain/entity"
	"feedhook/internal/infra/store"
)

// feedsKey holds the JSON-encoded subscription list.
const feedsKey = "feeds"

// FeedRepo implements repository.FeedRepository on top of a Store.
type FeedRepo struct {
	store store.Store
}

// NewFeedRepo creates a FeedRepo over the given store.
func NewFeedRepo(s store.Store) *FeedRepo {
	return &FeedRepo{store: s}
}

// List returns the stored subscription list. A missing or empty key
// yields an empty slice. Records that fail to decode individually are
// skipped with a warning rather than failing the whole list.
func (r *FeedRepo) List(ctx context.Context) ([]*entity.Feed, error) {
	raw, found, err := r.store.Get(ctx, feedsKey)
	if err != nil {
		return nil, fmt.Errorf("load feeds: %w", err)
	}
	if !found || raw == "" {
		return []*entity.Feed{}, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode feed list: %w", err)
	}

	feeds := make([]*entity.Feed, 0, len(records))
	for i, rec := range records {
		var f entity.Feed
		if err := json.Unmarshal(rec, &f); err != nil {
			slog.Warn("skipping malformed feed record",
				slog.Int("index", i),
				slog.Any("error", err))
			continue
		}
		feeds = append(feeds, &f)
	}
	return feeds, nil
}

// SaveAll replaces the stored subscription list in a single write.
func (r *FeedRepo) SaveAll(ctx context.Context, feeds []*entity.Feed) error {
	if feeds == nil {
		feeds = []*entity.Feed{}
	}
	data, err := json.Marshal(feeds)
	if err != nil {
		return fmt.Errorf("encode feed list: %w", err)
	}
	if err := r.store.Set(ctx, feedsKey, string(data)); err != nil {
		return fmt.Errorf("save feeds: %w", err)
	}
	return nil
}
