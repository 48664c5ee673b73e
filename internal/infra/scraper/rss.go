// Package scraper provides implementations for fetching RSS/Atom feeds.
// It uses the gofeed library to parse feed content with reliability patterns.
package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"feedhook/internal/domain/entity"
	"feedhook/internal/resilience/circuitbreaker"
	"feedhook/internal/resilience/retry"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// RSSFetcher implements poll.Fetcher using the gofeed library.
// It includes circuit breaker and retry logic for improved reliability.
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewRSSFetcher creates a new RSSFetcher with the given HTTP client.
// It automatically configures circuit breaker and retry logic.
func NewRSSFetcher(client *http.Client) *RSSFetcher {
	return &RSSFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// Fetch retrieves and parses an RSS/Atom feed from the given URL.
// It uses circuit breaker and retry logic for improved reliability.
// Returns the parsed entries; entries without a parseable publication
// time carry a zero PublishedAt.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]entity.Entry, error) {
	var entries []entity.Entry

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, feedURL)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("circuit", f.circuitBreaker.Name()),
					slog.String("url", feedURL),
					slog.String("state", f.circuitBreaker.State().String()))
				return err
			}
			return err
		}

		entries = cbResult.([]entity.Entry)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return entries, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (f *RSSFetcher) doFetch(ctx context.Context, feedURL string) ([]entity.Entry, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "FeedhookBot"
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.Entry, 0, len(feed.Items))
	for _, it := range feed.Items {
		var pubAt time.Time
		if it.PublishedParsed != nil {
			pubAt = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			pubAt = *it.UpdatedParsed
		}

		summary := it.Description
		if summary == "" {
			summary = it.Content
		}
		content := it.Content
		if content == "" {
			content = it.Description
		}

		entries = append(entries, entity.Entry{
			Title:       it.Title,
			Link:        it.Link,
			Summary:     summary,
			Content:     content,
			PublishedAt: pubAt,
		})
	}

	return entries, nil
}
