package entity

import "time"

// Entry is a single normalized feed entry produced by a fetch.
// Entries are transient: they are compared against the feed watermark,
// possibly delivered, and then discarded.
type Entry struct {
	Title string
	Link  string

	// Summary is the entry body used for the notification description,
	// possibly containing a small amount of inline HTML.
	Summary string

	// Content is the raw entry content, used for status heuristics.
	Content string

	// PublishedAt is the entry publication time. The zero value means
	// the source carried no parseable timestamp; such entries are never
	// considered new.
	PublishedAt time.Time
}
