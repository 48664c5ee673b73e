// Command diagnose_feeds checks every configured feed against its source.
//
// It reads the feed list from the state database, fetches each source URL,
// and reports reachability, entry counts and how far each feed's watermark
// lags behind the newest published entry. Useful when a channel goes quiet
// and you want to know whether the feed died or simply stopped publishing.
//
// Usage:
//
//	STATE_DB_PATH=data/feedhook.db go run scripts/diagnose_feeds.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"feedhook/internal/domain/entity"
	"feedhook/internal/infra/adapter/persistence/kvstore"
	"feedhook/internal/infra/scraper"
	"feedhook/internal/infra/store"
)

// FeedDiagnostic represents the diagnostic result for a single feed.
type FeedDiagnostic struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Status       string `json:"status"` // "OK", "FETCH_ERROR", "EMPTY", "STALE_WATERMARK"
	EntryCount   int    `json:"entry_count"`
	NewestDate   string `json:"newest_date,omitempty"`
	Watermark    string `json:"watermark,omitempty"`
	PendingCount int    `json:"pending_count"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

func main() {
	dbPath := os.Getenv("STATE_DB_PATH")
	if dbPath == "" {
		dbPath = "data/feedhook.db"
		log.Println("STATE_DB_PATH not set, using default")
	}

	kv, err := store.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("Failed to open state database: %v", err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Printf("Failed to close state database: %v", err)
		}
	}()

	feeds, err := kvstore.NewFeedRepo(kv).List(context.Background())
	if err != nil {
		log.Fatalf("Failed to list feeds: %v", err)
	}
	if len(feeds) == 0 {
		log.Println("No feeds configured, nothing to diagnose")
		return
	}

	log.Printf("Diagnosing %d feeds...\n", len(feeds))

	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 30 * time.Second})

	diagnostics := make([]FeedDiagnostic, 0, len(feeds))
	for i, feed := range feeds {
		log.Printf("[%d/%d] Diagnosing: %s", i+1, len(feeds), feed.Name)
		diagnostics = append(diagnostics, diagnoseFeed(fetcher, feed))

		// Rate limiting to be nice to servers
		time.Sleep(500 * time.Millisecond)
	}

	generateReport(diagnostics)
	generateJSONReport(diagnostics)
}

func diagnoseFeed(fetcher *scraper.RSSFetcher, feed *entity.Feed) FeedDiagnostic {
	diag := FeedDiagnostic{
		Name: feed.Name,
		URL:  feed.SourceURL,
	}
	watermark := feed.Watermark.Time()
	if !watermark.IsZero() {
		diag.Watermark = watermark.UTC().Format(time.RFC3339)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	startTime := time.Now()
	entries, err := fetcher.Fetch(ctx, feed.SourceURL)
	diag.ResponseTime = time.Since(startTime).Milliseconds()

	if err != nil {
		diag.Status = "FETCH_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	diag.EntryCount = len(entries)
	if len(entries) == 0 {
		diag.Status = "EMPTY"
		return diag
	}

	var newest time.Time
	for _, entry := range entries {
		if entry.PublishedAt.After(newest) {
			newest = entry.PublishedAt
		}
		if !entry.PublishedAt.IsZero() && entry.PublishedAt.After(watermark) {
			diag.PendingCount++
		}
	}
	if !newest.IsZero() {
		diag.NewestDate = newest.UTC().Format(time.RFC3339)
	}

	// A watermark ahead of everything the feed currently serves usually
	// means the state was restored from a different feed's backup.
	if !watermark.IsZero() && !newest.IsZero() && watermark.After(newest) {
		diag.Status = "STALE_WATERMARK"
		return diag
	}

	diag.Status = "OK"
	return diag
}

func generateReport(diagnostics []FeedDiagnostic) {
	fmt.Println("\n=== Feed Diagnostic Report ===")
	for _, d := range diagnostics {
		fmt.Printf("%-30s %-16s entries=%-4d pending=%-4d %dms\n",
			d.Name, d.Status, d.EntryCount, d.PendingCount, d.ResponseTime)
		if d.ErrorMessage != "" {
			fmt.Printf("  error: %s\n", d.ErrorMessage)
		}
	}

	ok := 0
	for _, d := range diagnostics {
		if d.Status == "OK" {
			ok++
		}
	}
	fmt.Printf("\n%d/%d feeds healthy\n", ok, len(diagnostics))
}

func generateJSONReport(diagnostics []FeedDiagnostic) {
	const path = "feed_diagnostics.json"

	data, err := json.MarshalIndent(diagnostics, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal diagnostics: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("Failed to write JSON report: %v", err)
		return
	}
	log.Printf("JSON report written to %s", path)
}
