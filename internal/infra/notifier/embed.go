package notifier

import (
	"regexp"
	"strings"
	"time"

	"feedhook/internal/domain/entity"
)

const (
	maxTitleLength       = 250
	maxDescriptionLength = 4000
	truncationSuffix     = "..."
)

// Embed accent colors, keyed off the raw entry content.
const (
	colorEmpty    = 0x000000 // no content at all
	colorResolved = 0x69FFC3 // content mentions "resolved"
	colorDefault  = 0xFFCA5F
)

// Embed is a single Discord rich embed.
type Embed struct {
	Title       string          `json:"title"`
	URL         string          `json:"url,omitempty"`
	Description string          `json:"description,omitempty"`
	Color       int             `json:"color"`
	Timestamp   string          `json:"timestamp,omitempty"`
	Thumbnail   *EmbedThumbnail `json:"thumbnail,omitempty"`
}

// EmbedThumbnail is the thumbnail image attached to an embed.
type EmbedThumbnail struct {
	URL string `json:"url"`
}

var (
	strongTagPattern = regexp.MustCompile(`(?is)<strong>(.*?)</strong>`)
	smallTagPattern  = regexp.MustCompile(`(?is)<small>(.*?)</small>`)
)

// htmlToMarkdown rewrites the inline HTML emphasis tags that commonly
// survive in feed summaries into their Discord markdown equivalents.
func htmlToMarkdown(text string) string {
	text = strongTagPattern.ReplaceAllString(text, "**$1**")
	text = smallTagPattern.ReplaceAllString(text, "_${1}_")
	return text
}

// embedColor picks the accent color from the raw entry content.
func embedColor(content string) int {
	if content == "" {
		return colorEmpty
	}
	if strings.Contains(strings.ToLower(content), "resolved") {
		return colorResolved
	}
	return colorDefault
}

// BuildEmbed converts one feed entry into a Discord embed.
// Titles are capped at 250 characters and descriptions at 4000,
// both with a truncation marker appended when cut.
func BuildEmbed(feed *entity.Feed, entry entity.Entry) Embed {
	embed := Embed{
		Title:       truncate(entry.Title, maxTitleLength, truncationSuffix),
		URL:         entry.Link,
		Description: truncate(htmlToMarkdown(entry.Summary), maxDescriptionLength, truncationSuffix),
		Color:       embedColor(entry.Content),
	}

	if !entry.PublishedAt.IsZero() {
		embed.Timestamp = entry.PublishedAt.UTC().Format(time.RFC3339)
	}

	if feed.ImageURL != "" {
		embed.Thumbnail = &EmbedThumbnail{URL: feed.ImageURL}
	}

	return embed
}
