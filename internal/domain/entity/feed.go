package entity

import (
	"fmt"
	"net/url"
	"time"
)

// MaxWebhookURLLength is the maximum accepted length for a webhook URL.
const MaxWebhookURLLength = 300

// Cursor marks the newest entry already seen for a feed.
// A nil cursor means the feed has never been polled.
type Cursor struct {
	ISODate string `json:"isoDate"`
}

// Time parses the cursor timestamp. Returns the zero time if the
// cursor is empty or unparseable.
func (c *Cursor) Time() time.Time {
	if c == nil || c.ISODate == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, c.ISODate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// NewCursor creates a cursor for the given instant. Fractional seconds
// are preserved: truncating them would leave the watermark behind the
// newest entry and re-announce it on every cycle.
func NewCursor(t time.Time) *Cursor {
	return &Cursor{ISODate: t.UTC().Format(time.RFC3339Nano)}
}

// Feed represents a feed subscription: where to poll, where to deliver,
// and the watermark of the newest entry already announced.
// The JSON field names are the stored wire shape and must stay stable.
type Feed struct {
	Name       string  `json:"name"`
	SourceURL  string  `json:"url"`
	WebhookURL string  `json:"hookUrl"`
	ImageURL   string  `json:"imageUrl,omitempty"`
	Watermark  *Cursor `json:"lastItem,omitempty"`
}

// Validate validates the Feed fields.
// ImageURL may be empty; if set it must be a valid absolute URL.
// A non-empty watermark must be a parseable timestamp.
func (f *Feed) Validate() error {
	if f.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if err := ValidateURL(f.SourceURL); err != nil {
		return fmt.Errorf("validate source URL: %w", err)
	}
	if err := ValidateURL(f.WebhookURL); err != nil {
		return fmt.Errorf("validate webhook URL: %w", err)
	}
	if len(f.WebhookURL) > MaxWebhookURLLength {
		return &ValidationError{Field: "hookUrl", Message: fmt.Sprintf("too long (max %d characters)", MaxWebhookURLLength)}
	}
	if f.ImageURL != "" {
		if err := ValidateURL(f.ImageURL); err != nil {
			return fmt.Errorf("validate image URL: %w", err)
		}
	}
	if f.Watermark != nil && f.Watermark.ISODate != "" {
		if _, err := time.Parse(time.RFC3339, f.Watermark.ISODate); err != nil {
			return &ValidationError{Field: "lastItem.isoDate", Message: "invalid timestamp"}
		}
	}
	return nil
}

// ValidateURL checks that the given string is an absolute http(s) URL.
func ValidateURL(raw string) error {
	if raw == "" {
		return &ValidationError{Field: "url", Message: "is required"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: "url", Message: "invalid URL format"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "must be an http or https URL"}
	}
	if u.Host == "" {
		return &ValidationError{Field: "url", Message: "invalid URL: missing host"}
	}
	return nil
}
