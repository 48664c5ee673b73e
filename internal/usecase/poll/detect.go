package poll

import (
	"sort"
	"time"

	"feedhook/internal/domain/entity"
)

// DetectNew selects the entries of a feed that appeared after the feed's
// watermark and computes the watermark that should replace it.
//
// On the first observation of a feed (no watermark yet, or one that does not
// parse) no entries are selected and the watermark is baselined to now, so a
// newly registered feed never replays its backlog.
//
// Entries without a parseable publication time are never considered new.
// Selected entries are returned oldest first. The returned cursor is nil when
// the watermark should stay as it is.
func DetectNew(feed *entity.Feed, entries []entity.Entry, now time.Time) ([]entity.Entry, *entity.Cursor) {
	watermark := feed.Watermark.Time()
	if watermark.IsZero() {
		return nil, entity.NewCursor(now)
	}

	var fresh []entity.Entry
	for _, entry := range entries {
		if entry.PublishedAt.IsZero() {
			continue
		}
		if entry.PublishedAt.After(watermark) {
			fresh = append(fresh, entry)
		}
	}

	if len(fresh) == 0 {
		return nil, nil
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].PublishedAt.Before(fresh[j].PublishedAt)
	})

	return fresh, entity.NewCursor(fresh[len(fresh)-1].PublishedAt)
}
