// Package extcal integrates a read-only external calendar feed. The core's
// only responsibility is fetching entries for a bounded time range and
// projecting them into read-only timeline entries on the synthetic external
// member lane; nothing here is ever written back.
package extcal

import (
	"context"
	"time"

	"github.com/nhle/family-board/internal/model"
	"github.com/nhle/family-board/internal/timeutil"
)

// ExternalIDPrefix namespaces external entry ids so they can never collide
// with owned event ids.
const ExternalIDPrefix = "ext-"

// ExternalColor is the fixed color external entries render with.
const ExternalColor = "#3b82f6"

// Item is one entry returned by a calendar feed for a bounded range.
type Item struct {
	ID     string
	Title  string
	Start  time.Time
	End    time.Time
	AllDay bool
}

// Feed returns the external calendar's entries overlapping [from, to].
type Feed interface {
	Events(ctx context.Context, from, to time.Time) ([]Item, error)
}

// Multi aggregates several feeds into one. Feeds failing to fetch are
// skipped; the fetch succeeds with the entries of the feeds that answered,
// and fails only when every feed does.
type Multi struct {
	feeds []Feed
}

// NewMulti combines feeds into a single Feed.
func NewMulti(feeds ...Feed) *Multi {
	return &Multi{feeds: feeds}
}

// Events fetches all feeds sequentially and concatenates their items.
func (m *Multi) Events(ctx context.Context, from, to time.Time) ([]Item, error) {
	var out []Item
	var lastErr error
	failed := 0
	for _, f := range m.feeds {
		items, err := f.Events(ctx, from, to)
		if err != nil {
			failed++
			lastErr = err
			continue
		}
		out = append(out, items...)
	}
	if failed > 0 && failed == len(m.feeds) {
		return nil, lastErr
	}
	return out, nil
}

// Project maps feed items into read-only timeline entries in loc. All-day
// items span the full slot grid of their day.
func Project(items []Item, loc *time.Location) []model.Entry {
	out := make([]model.Entry, 0, len(items))
	for _, it := range items {
		start := it.Start.In(loc)
		end := it.End.In(loc)

		startClock := timeutil.ClockString(start.Hour()*60 + start.Minute())
		endClock := timeutil.ClockString(end.Hour()*60 + end.Minute())
		if it.AllDay {
			startClock = "00:00"
			endClock = "23:45"
		}

		out = append(out, model.Entry{
			Kind: model.KindExternal,
			Event: model.Event{
				ID:        ExternalIDPrefix + it.ID,
				Title:     it.Title,
				Type:      model.EntryTypeEvent,
				Status:    model.StatusScheduled,
				Date:      timeutil.FormatDate(start),
				StartTime: startClock,
				EndTime:   endClock,
				MemberID:  model.ExternalMemberID,
				Color:     ExternalColor,
			},
		})
	}
	return out
}
