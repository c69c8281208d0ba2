// Package timeline merges owned events, derived recurrence instances, and
// read-only external-calendar entries into one list of tagged entries. List order itself is not significant: consumers
// filter by date and member and position within a slot by start time.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/nhle/family-board/internal/model"
	"github.com/nhle/family-board/internal/recur"
	"github.com/nhle/family-board/internal/timeutil"
)

// Merge builds the unified timeline for one visible window. Non-recurring
// owned events inside the window participate directly; recurring bases are
// replaced by their expanded instances; external entries are appended with
// the synthetic external member lane forced on. Duplicates between owned
// and external sources are not reconciled.
func Merge(owned []model.Event, external []model.Entry, window timeutil.Window, loc *time.Location) ([]model.Entry, error) {
	entries := make([]model.Entry, 0, len(owned)+len(external))

	for _, ev := range owned {
		if ev.IsRecurring() {
			instances, err := recur.Expand(ev, window, loc)
			if err != nil {
				return nil, fmt.Errorf("merging timeline: %w", err)
			}
			entries = append(entries, instances...)
			continue
		}
		if window.ContainsDate(ev.Date, loc) {
			entries = append(entries, model.Entry{Kind: model.KindOwned, Event: ev})
		}
	}

	for _, ext := range external {
		ext.Kind = model.KindExternal
		ext.Event.MemberID = model.ExternalMemberID
		entries = append(entries, ext)
	}

	return entries, nil
}

// ForDate returns the entries falling on one calendar date.
func ForDate(entries []model.Entry, date string) []model.Entry {
	var out []model.Entry
	for _, e := range entries {
		if e.Event.Date == date {
			out = append(out, e)
		}
	}
	return out
}

// ForMember returns the entries on one member's lane.
func ForMember(entries []model.Entry, memberID string) []model.Entry {
	var out []model.Entry
	for _, e := range entries {
		if e.Event.MemberID == memberID {
			out = append(out, e)
		}
	}
	return out
}

// SortByStart orders entries by start time (then by title for a stable
// display), as used when positioning entries within a day's slot grid.
func SortByStart(entries []model.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Event, entries[j].Event
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.Title < b.Title
	})
}
