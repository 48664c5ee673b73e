package poll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"feedhook/internal/domain/entity"
	"feedhook/internal/repository"

	"github.com/google/uuid"
)

// Fetcher is an interface for fetching RSS/Atom feeds from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]entity.Entry, error)
}

// Dispatcher is an interface for delivering new entries to a feed's webhook.
// It returns the number of entries actually delivered.
type Dispatcher interface {
	Dispatch(ctx context.Context, feed *entity.Feed, entries []entity.Entry) (int, error)
}

// Service runs the poll cycle: fetch every registered feed, detect entries
// newer than the feed's watermark, deliver them, and persist the advanced
// watermarks.
type Service struct {
	FeedRepo   repository.FeedRepository
	Lock       repository.ProcessingLock
	Fetcher    Fetcher
	Dispatcher Dispatcher

	// now is swappable for tests. Defaults to time.Now.
	now func() time.Time
}

// NewService creates a new poll Service with the provided dependencies.
func NewService(
	feedRepo repository.FeedRepository,
	lock repository.ProcessingLock,
	fetcher Fetcher,
	dispatcher Dispatcher,
) Service {
	return Service{
		FeedRepo:   feedRepo,
		Lock:       lock,
		Fetcher:    fetcher,
		Dispatcher: dispatcher,
		now:        time.Now,
	}
}

// CycleStats contains statistics about one poll cycle.
type CycleStats struct {
	Skipped        bool
	Feeds          int
	Fetched        int
	NewEntries     int
	Delivered      int
	FetchErrors    int
	DispatchErrors int
	Duration       time.Duration
}

// RunCycle executes one poll cycle over all registered feeds.
//
// The cycle is guarded by the processing lock: if a previous cycle still
// holds it, this one is skipped. The lock is released on every exit path,
// including failures. A feed that fails to fetch or deliver is logged and
// the cycle moves on to the next feed; only lock and store failures abort
// the cycle. Watermarks advance when new entries are detected, not when
// delivery succeeds, and all feeds are saved in one write after the loop.
func (s *Service) RunCycle(ctx context.Context) (*CycleStats, error) {
	logger := slog.Default()
	start := s.now()
	cycleID := uuid.New().String()
	stats := &CycleStats{}

	acquired, err := s.Lock.TryAcquire(ctx)
	if err != nil {
		return stats, fmt.Errorf("acquire processing lock: %w", err)
	}
	if !acquired {
		logger.Info("previous poll cycle still running, skipping",
			slog.String("cycle_id", cycleID))
		stats.Skipped = true
		return stats, nil
	}

	defer func() {
		// Release must happen even when the cycle's context is gone.
		releaseCtx := context.WithoutCancel(ctx)
		if err := s.Lock.Release(releaseCtx); err != nil {
			logger.Error("failed to release processing lock",
				slog.String("cycle_id", cycleID),
				slog.Any("error", err))
		}
	}()

	feeds, err := s.FeedRepo.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list feeds: %w", err)
	}
	stats.Feeds = len(feeds)

	now := s.now()
	for _, feed := range feeds {
		s.processFeed(ctx, cycleID, feed, now, stats)
	}

	saveCtx := context.WithoutCancel(ctx)
	if err := s.FeedRepo.SaveAll(saveCtx, feeds); err != nil {
		return stats, fmt.Errorf("save feeds: %w", err)
	}

	stats.Duration = time.Since(start)
	logger.Info("poll cycle completed",
		slog.String("cycle_id", cycleID),
		slog.Int("feeds", stats.Feeds),
		slog.Int("fetched", stats.Fetched),
		slog.Int("new_entries", stats.NewEntries),
		slog.Int("delivered", stats.Delivered),
		slog.Int("fetch_errors", stats.FetchErrors),
		slog.Int("dispatch_errors", stats.DispatchErrors),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// processFeed polls a single feed. Failures are logged and absorbed so that
// one bad feed never blocks the rest of the cycle.
func (s *Service) processFeed(ctx context.Context, cycleID string, feed *entity.Feed, now time.Time, stats *CycleStats) {
	logger := slog.Default()

	entries, err := s.Fetcher.Fetch(ctx, feed.SourceURL)
	if err != nil {
		logger.Warn("failed to fetch feed",
			slog.String("cycle_id", cycleID),
			slog.String("feed", feed.Name),
			slog.String("feed_url", feed.SourceURL),
			slog.Any("error", err))
		stats.FetchErrors++
		return
	}
	stats.Fetched++

	fresh, next := DetectNew(feed, entries, now)

	if next != nil && feed.Watermark.Time().IsZero() {
		logger.Info("first observation, baseline recorded",
			slog.String("cycle_id", cycleID),
			slog.String("feed", feed.Name))
	}
	if next != nil {
		feed.Watermark = next
	}

	if len(fresh) == 0 {
		return
	}
	stats.NewEntries += len(fresh)

	delivered, err := s.Dispatcher.Dispatch(ctx, feed, fresh)
	stats.Delivered += delivered
	if err != nil {
		logger.Warn("failed to deliver entries",
			slog.String("cycle_id", cycleID),
			slog.String("feed", feed.Name),
			slog.Int("entries", len(fresh)),
			slog.Any("error", err))
		stats.DispatchErrors++
	}
}
