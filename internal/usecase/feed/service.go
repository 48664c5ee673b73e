package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"feedhook/internal/domain/entity"
	"feedhook/internal/repository"
)

// ErrProcessing is returned when the feed list cannot be replaced because a
// poll cycle currently holds the processing lock.
var ErrProcessing = errors.New("poll cycle in progress, try again later")

// Service provides the admin use cases for managing the watched feed list.
type Service struct {
	Repo repository.FeedRepository
	Lock repository.ProcessingLock
}

// NewService creates a new feed Service with the provided dependencies.
func NewService(repo repository.FeedRepository, lock repository.ProcessingLock) Service {
	return Service{
		Repo: repo,
		Lock: lock,
	}
}

// List returns all watched feeds.
func (s *Service) List(ctx context.Context) ([]*entity.Feed, error) {
	feeds, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return feeds, nil
}

// ReplaceAll validates the given feeds and replaces the whole watched list
// with them in a single write.
//
// The replace is refused with ErrProcessing while a poll cycle holds the
// processing lock, so a half-finished cycle can never overwrite a fresh list
// or vice versa. Feeds that omit a watermark inherit the one stored for the
// same source URL; feeds with a new source URL start unbaselined and get
// their watermark on the next cycle. An explicitly supplied watermark is
// kept as-is, which allows restoring an exported list.
func (s *Service) ReplaceAll(ctx context.Context, feeds []*entity.Feed) ([]*entity.Feed, error) {
	held, err := s.Lock.IsHeld(ctx)
	if err != nil {
		return nil, fmt.Errorf("check processing lock: %w", err)
	}
	if held {
		return nil, ErrProcessing
	}

	seen := make(map[string]bool, len(feeds))
	for _, feed := range feeds {
		if err := feed.Validate(); err != nil {
			return nil, err
		}
		if seen[feed.Name] {
			return nil, &entity.ValidationError{
				Field:   "name",
				Message: fmt.Sprintf("duplicate feed name: %s", feed.Name),
			}
		}
		seen[feed.Name] = true
	}

	existing, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list existing feeds: %w", err)
	}
	watermarks := make(map[string]*entity.Cursor, len(existing))
	for _, feed := range existing {
		if feed.Watermark != nil {
			watermarks[feed.SourceURL] = feed.Watermark
		}
	}

	for _, feed := range feeds {
		if feed.Watermark == nil {
			feed.Watermark = watermarks[feed.SourceURL]
		}
	}

	if err := s.Repo.SaveAll(ctx, feeds); err != nil {
		return nil, fmt.Errorf("save feeds: %w", err)
	}

	slog.Info("feed list replaced",
		slog.Int("previous", len(existing)),
		slog.Int("current", len(feeds)))

	return feeds, nil
}
