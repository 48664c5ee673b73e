package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"feedhook/internal/domain/entity"
	"feedhook/internal/resilience/circuitbreaker"
	"feedhook/internal/resilience/retry"

	"github.com/google/uuid"
)

// maxEmbedsPerMessage is the Discord limit on embeds in a single webhook call.
const maxEmbedsPerMessage = 10

// Config contains configuration for the Discord webhook dispatcher.
type Config struct {
	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration

	// SimpleMode sends a single plain-text message per batch instead of
	// rich embeds. Useful for channels that suppress embeds.
	SimpleMode bool
}

// Dispatcher sends feed entry notifications to Discord via per-feed webhooks.
type Dispatcher struct {
	config      Config
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retryConfig retry.Config

	// Breakers are per webhook URL so a revoked hook on one feed
	// cannot cut off delivery for the others.
	mu       sync.Mutex
	breakers map[string]*circuitbreaker.CircuitBreaker
}

// NewDispatcher creates a new Dispatcher with the specified configuration.
//
// The dispatcher is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 0.5 requests/second with burst of 3
//     (Discord Webhook limit: 30 requests per minute = 0.5 req/s)
//   - Circuit breakers per webhook URL, created lazily
func NewDispatcher(config Config) *Dispatcher {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &Dispatcher{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(0.5, 3), // 0.5 req/s (30 req/min), burst of 3
		retryConfig: retry.WebhookConfig(),
		breakers:    make(map[string]*circuitbreaker.CircuitBreaker),
	}
}

// breakerFor returns the circuit breaker guarding the feed's webhook,
// creating it on first use.
func (d *Dispatcher) breakerFor(feed *entity.Feed) *circuitbreaker.CircuitBreaker {
	d.mu.Lock()
	defer d.mu.Unlock()

	cb, ok := d.breakers[feed.WebhookURL]
	if !ok {
		cfg := circuitbreaker.WebhookConfig()
		cfg.Name = "webhook:" + feed.Name
		cb = circuitbreaker.New(cfg)
		d.breakers[feed.WebhookURL] = cb
	}
	return cb
}

// WebhookPayload represents the JSON payload sent to a Discord webhook.
// In rich mode mentions are always suppressed since feed content is
// untrusted; simple mode sends content only.
type WebhookPayload struct {
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
	Embeds          []Embed          `json:"embeds,omitempty"`
	Content         string           `json:"content,omitempty"`
	Username        string           `json:"username,omitempty"`
}

// AllowedMentions restricts which mention types Discord will resolve.
type AllowedMentions struct {
	Parse []string `json:"parse"`
}

// discordErrorResponse represents the error response from the Discord API.
type discordErrorResponse struct {
	Message    string  `json:"message"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after"` // In seconds
}

// buildPayload creates a webhook payload for one batch of entries.
// In simple mode only the first entry of the batch is announced,
// as a plain "title: link" line.
func (d *Dispatcher) buildPayload(feed *entity.Feed, batch []entity.Entry) WebhookPayload {
	if d.config.SimpleMode {
		return WebhookPayload{
			Content: fmt.Sprintf("%s: %s", batch[0].Title, batch[0].Link),
		}
	}

	embeds := make([]Embed, 0, len(batch))
	for _, entry := range batch {
		embeds = append(embeds, BuildEmbed(feed, entry))
	}

	return WebhookPayload{
		AllowedMentions: &AllowedMentions{Parse: []string{}},
		Embeds:          embeds,
		Username:        feed.Name,
	}
}

// sendWebhookRequest sends one webhook call for a batch of entries.
//
// Returns:
//   - nil: Request succeeded (2xx status)
//   - error: Request failed (non-2xx status or network error)
//
// Error types:
//   - 429: Rate limit error (retryable, contains retry_after duration)
//   - 4xx (non-429): Client error (non-retryable)
//   - 5xx: Server error (retryable)
//   - Network error: Connection/timeout error (retryable)
func (d *Dispatcher) sendWebhookRequest(ctx context.Context, feed *entity.Feed, batch []entity.Entry) error {
	payload := d.buildPayload(feed, batch)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	// wait=true makes Discord return the created message, surfacing
	// delivery failures that fire-and-forget mode would hide.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, feed.WebhookURL+"?wait=true", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Read response body for error messages
	body, _ := io.ReadAll(resp.Body)

	// Success
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Rate limit error (429)
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := extractRetryAfter(resp, body)
		return &RateLimitError{
			Message:    fmt.Sprintf("%s: %d %s", batch[0].Link, resp.StatusCode, http.StatusText(resp.StatusCode)),
			RetryAfter: retryAfter,
		}
	}

	// Client error (4xx, non-retryable)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s: %d %s", batch[0].Link, resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	// Server error (5xx, retryable)
	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s: %d %s", batch[0].Link, resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// extractRetryAfter extracts retry_after duration from a Discord error response.
// It tries to parse from the JSON body first, then falls back to the Retry-After header.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	// Try to parse from JSON response
	var discordErr discordErrorResponse
	if err := json.Unmarshal(body, &discordErr); err == nil && discordErr.RetryAfter > 0 {
		return time.Duration(discordErr.RetryAfter * float64(time.Second))
	}

	// Fall back to Retry-After header (in seconds)
	if retryAfterHeader := resp.Header.Get("Retry-After"); retryAfterHeader != "" {
		if seconds, err := strconv.Atoi(retryAfterHeader); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	// Default retry after 5 seconds
	return 5 * time.Second
}

// sendWebhookRequestWithRetry sends one batch with retry logic.
//
// Retry strategy (retry.WebhookConfig):
//   - 429 errors: Use retry_after from Discord response
//   - Server errors (5xx): Linear backoff from the configured initial delay
//   - Client errors (4xx): No retry, fail immediately
//
// All attempts are logged with request_id for tracing.
func (d *Dispatcher) sendWebhookRequestWithRetry(ctx context.Context, feed *entity.Feed, batch []entity.Entry) error {
	maxAttempts := d.retryConfig.MaxAttempts
	baseDelay := d.retryConfig.InitialDelay

	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := d.sendWebhookRequest(ctx, feed, batch)

		// Success
		if err == nil {
			slog.Info("Discord notification successful",
				slog.String("request_id", requestID),
				slog.String("feed", feed.Name),
				slog.Int("entries", len(batch)),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		// Handle rate limit error (429)
		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("Discord rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.String("feed", feed.Name),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			// Sleep for retry_after duration
			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		// Handle non-retryable errors (4xx client errors)
		if !isRetryableError(err) {
			slog.Error("Discord notification failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("feed", feed.Name),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		// Retry on retryable errors (5xx server errors, network errors)
		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(attempt)
			slog.Warn("Discord API request failed, retrying",
				slog.String("request_id", requestID),
				slog.String("feed", feed.Name),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	// All retries exhausted
	slog.Error("Discord notification failed after all retries",
		slog.String("request_id", requestID),
		slog.String("feed", feed.Name),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("discord notification failed after %d attempts: %w", maxAttempts, lastErr)
}

// Dispatch delivers entries to the feed's webhook in batches of up to ten
// embeds per call, oldest first. Batches are sent sequentially; a failed
// batch is logged and the remaining batches are still attempted.
//
// Dispatch returns the number of entries delivered. The error is non-nil
// only when every batch failed or the context was canceled.
func (d *Dispatcher) Dispatch(ctx context.Context, feed *entity.Feed, entries []entity.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	// Generate unique request ID for tracing
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("Starting Discord dispatch",
		slog.String("request_id", requestID),
		slog.String("feed", feed.Name),
		slog.Int("entries", len(entries)))

	var (
		delivered int
		lastErr   error
	)

	for start := 0; start < len(entries); start += maxEmbedsPerMessage {
		end := start + maxEmbedsPerMessage
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		// An open breaker would reject the call anyway; skip before
		// burning a rate-limiter token on it.
		cb := d.breakerFor(feed)
		if cb.IsOpen() {
			slog.Warn("webhook circuit breaker open, skipping batch",
				slog.String("request_id", requestID),
				slog.String("circuit", cb.Name()),
				slog.String("feed", feed.Name))
			lastErr = fmt.Errorf("webhook circuit %q is open", cb.Name())
			continue
		}

		// Apply rate limiting
		if err := d.rateLimiter.Allow(ctx); err != nil {
			return delivered, fmt.Errorf("rate limiter error: %w", err)
		}

		_, err := cb.Execute(func() (interface{}, error) {
			return nil, d.sendWebhookRequestWithRetry(ctx, feed, batch)
		})
		if err != nil {
			if ctx.Err() != nil {
				return delivered, fmt.Errorf("dispatch canceled: %w", ctx.Err())
			}
			lastErr = err
			continue
		}

		delivered += len(batch)
	}

	if delivered == 0 && lastErr != nil {
		return 0, lastErr
	}

	return delivered, nil
}
