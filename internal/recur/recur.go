// Package recur expands a recurring base event into concrete per-day
// instances bounded to a visible window. Instances are derived data: they
// are never written back to the store, and their ids are deterministic so
// the same instance never duplicates across re-merges.
package recur

import (
	"fmt"
	"time"

	"github.com/nhle/family-board/internal/model"
	"github.com/nhle/family-board/internal/timeutil"
)

// InstanceID builds the deterministic id of the instance of base on the
// given day. Consumers rely on this id being stable across expansions.
func InstanceID(baseID string, day time.Time) string {
	return baseID + "-" + timeutil.FormatDate(day)
}

// SplitInstanceID splits an instance id back into its base event id and
// instance date. ok is false when id does not carry a date suffix.
func SplitInstanceID(id string, loc *time.Location) (baseID string, day time.Time, ok bool) {
	// The suffix is "-YYYY-MM-DD", 11 bytes.
	const suffixLen = 1 + len(timeutil.DayFormat)
	if len(id) <= suffixLen || id[len(id)-suffixLen] != '-' {
		return "", time.Time{}, false
	}
	d, err := timeutil.ParseDate(id[len(id)-suffixLen+1:], loc)
	if err != nil {
		return "", time.Time{}, false
	}
	return id[:len(id)-suffixLen], d, true
}

// step advances the cursor by one recurrence interval. Monthly stepping uses
// calendar-month arithmetic via AddDate, so a base day-of-month that does
// not exist in a later month rolls into the following month (the 31st
// stepping into a 30-day month lands on the 1st). That rollover is accepted
// behavior, not something to correct here.
func step(cursor time.Time, r model.Recurrence) time.Time {
	switch r {
	case model.RecurrenceDaily:
		return cursor.AddDate(0, 0, 1)
	case model.RecurrenceWeekly:
		return cursor.AddDate(0, 0, 7)
	case model.RecurrenceMonthly:
		return cursor.AddDate(0, 1, 0)
	}
	return cursor
}

// Expand materializes the instances of base inside window. The cursor
// starts at the base event's own date and advances one recurrence step at a
// time; every on-step day inside the window is emitted, the base's own day
// included; a recurring base participates in the timeline only through its
// instances, so nothing appears twice. A base with no recurrence yields no
// instances. The window is bounded to one visible month, so eager
// enumeration of unbounded recurrence is safe.
func Expand(base model.Event, window timeutil.Window, loc *time.Location) ([]model.Entry, error) {
	if !base.IsRecurring() {
		return nil, nil
	}

	start, err := timeutil.ParseDate(base.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("expanding event %s: %w", base.ID, err)
	}

	var out []model.Entry
	for cursor := start; !cursor.After(window.End); cursor = step(cursor, base.Recurrence) {
		if cursor.Before(window.Start) {
			continue
		}
		inst := base
		inst.ID = InstanceID(base.ID, cursor)
		inst.Date = timeutil.FormatDate(cursor)
		out = append(out, model.Entry{
			Kind:   model.KindInstance,
			Event:  inst,
			BaseID: base.ID,
		})
	}
	return out, nil
}
