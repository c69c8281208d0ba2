package sync

import (
	"context"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/family-board/internal/behavior"
	"github.com/nhle/family-board/internal/docstore"
	"github.com/nhle/family-board/internal/extcal"
	"github.com/nhle/family-board/internal/model"
	"github.com/nhle/family-board/internal/notify"
	"github.com/nhle/family-board/tests/testutil"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

// fakeFeed serves a fixed item list, filtered to the requested range.
type fakeFeed struct {
	mu    gosync.Mutex
	items []extcal.Item
	calls int
}

func (f *fakeFeed) Events(_ context.Context, from, to time.Time) ([]extcal.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	var out []extcal.Item
	for _, it := range f.items {
		if it.End.Before(from) || it.Start.After(to) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestSyncer(t *testing.T, feed extcal.Feed) (*Syncer, docstore.Store, *notify.Scheduler) {
	t.Helper()
	store := testutil.NewTestStore(t)
	sched := notify.NewScheduler(notify.Noop{}, time.UTC, nil)
	s := New(store, feed, sched, time.UTC, nil)
	t.Cleanup(s.Stop)
	return s, store, sched
}

func boardEvent(id, date string) model.Event {
	return model.Event{
		ID:        id,
		Title:     "Swim practice",
		Type:      model.EntryTypeEvent,
		Status:    model.StatusScheduled,
		Date:      date,
		StartTime: "16:00",
		EndTime:   "17:00",
		MemberID:  "m1",
	}
}

func timelineIDs(s *Syncer) []string {
	var ids []string
	for _, e := range s.Timeline() {
		ids = append(ids, e.Event.ID)
	}
	return ids
}

func TestStartMirrorsCollections(t *testing.T) {
	s, store, _ := newTestSyncer(t, nil)
	ctx := context.Background()

	require.NoError(t, store.PutMember(ctx, model.Member{ID: "m1", Name: "Ada", Order: 0}))
	require.NoError(t, store.PutPreset(ctx, model.Preset{ID: "p1", Title: "Piano", Type: model.EntryTypeAppointment}))

	require.NoError(t, s.SetWindow(ctx, time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, s.Start(ctx))

	require.Eventually(t, func() bool {
		return len(s.Members()) == 1 && len(s.Presets()) == 1
	}, waitFor, tick)
	assert.Equal(t, "Ada", s.Members()[0].Name)

	// A write after Start pushes through to the mirror.
	require.NoError(t, store.PutMember(ctx, model.Member{ID: "m2", Name: "Ben", Order: 1}))
	require.Eventually(t, func() bool {
		return len(s.Members()) == 2
	}, waitFor, tick)
}

func TestTimelineExpandsRecurring(t *testing.T) {
	s, store, _ := newTestSyncer(t, nil)
	ctx := context.Background()

	base := boardEvent("e1", "2024-07-01")
	base.Recurrence = model.RecurrenceWeekly
	require.NoError(t, store.PutEvent(ctx, base))

	require.NoError(t, s.SetWindow(ctx, time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, s.Start(ctx))

	require.Eventually(t, func() bool {
		return len(s.Timeline()) == 5
	}, waitFor, tick)

	for _, e := range s.Timeline() {
		assert.Equal(t, model.KindInstance, e.Kind)
		assert.Equal(t, "e1", e.BaseID)
	}
}

func TestSetWindowSwapsEvents(t *testing.T) {
	s, store, _ := newTestSyncer(t, nil)
	ctx := context.Background()

	require.NoError(t, store.PutEvent(ctx, boardEvent("july", "2024-07-10")))
	require.NoError(t, store.PutEvent(ctx, boardEvent("august", "2024-08-10")))

	require.NoError(t, s.SetWindow(ctx, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, s.Start(ctx))

	require.Eventually(t, func() bool {
		ids := timelineIDs(s)
		return len(ids) == 1 && ids[0] == "july"
	}, waitFor, tick)

	require.NoError(t, s.SetWindow(ctx, time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)))

	// No entry from the old window survives the new window's snapshot.
	require.Eventually(t, func() bool {
		ids := timelineIDs(s)
		return len(ids) == 1 && ids[0] == "august"
	}, waitFor, tick)
}

func TestExternalFeedMergesIntoTimeline(t *testing.T) {
	feed := &fakeFeed{items: []extcal.Item{{
		ID:    "abc",
		Title: "Town fair",
		Start: time.Date(2024, time.July, 20, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.July, 20, 12, 0, 0, 0, time.UTC),
	}}}
	s, _, _ := newTestSyncer(t, feed)
	ctx := context.Background()

	require.NoError(t, s.SetWindow(ctx, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, s.Start(ctx))

	require.Eventually(t, func() bool {
		for _, e := range s.Timeline() {
			if e.Kind == model.KindExternal {
				return true
			}
		}
		return false
	}, waitFor, tick)

	var ext model.Entry
	for _, e := range s.Timeline() {
		if e.Kind == model.KindExternal {
			ext = e
		}
	}
	assert.Equal(t, extcal.ExternalIDPrefix+"abc", ext.Event.ID)
	assert.Equal(t, model.ExternalMemberID, ext.Event.MemberID)
}

func TestSetWindowDropsExternalOutsideWindow(t *testing.T) {
	feed := &fakeFeed{items: []extcal.Item{{
		ID:    "abc",
		Title: "Town fair",
		Start: time.Date(2024, time.July, 20, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.July, 20, 12, 0, 0, 0, time.UTC),
	}}}
	s, _, _ := newTestSyncer(t, feed)
	ctx := context.Background()

	require.NoError(t, s.SetWindow(ctx, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, s.Start(ctx))

	require.Eventually(t, func() bool {
		return len(s.Timeline()) == 1
	}, waitFor, tick)

	require.NoError(t, s.SetWindow(ctx, time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)))

	require.Eventually(t, func() bool {
		return len(s.Timeline()) == 0 && feed.callCount() >= 2
	}, waitFor, tick)
}

func TestSnapshotRearmsReminders(t *testing.T) {
	s, store, sched := newTestSyncer(t, nil)
	ctx := context.Background()

	ev := boardEvent("e1", "2124-07-10")
	ev.Notification = model.Lead15
	require.NoError(t, store.PutEvent(ctx, ev))

	require.NoError(t, s.SetWindow(ctx, time.Date(2124, time.July, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, s.Start(ctx))

	require.Eventually(t, func() bool {
		return sched.Armed("e1")
	}, waitFor, tick)

	// Deleting the event clears its reminder on the next snapshot.
	require.NoError(t, store.DeleteEvent(ctx, "e1"))
	require.Eventually(t, func() bool {
		return !sched.Armed("e1")
	}, waitFor, tick)
}

func TestMoodSummaryFromMirror(t *testing.T) {
	s, store, _ := newTestSyncer(t, nil)
	ctx := context.Background()

	ts := time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.PutBehaviorLog(ctx, model.BehaviorLog{
		ID: "l1", Behavior: model.BehaviorSharing, Choice: model.ChoiceGood, Timestamp: ts,
	}))
	require.NoError(t, store.PutBehaviorLog(ctx, model.BehaviorLog{
		ID: "l2", Behavior: model.BehaviorChores, Choice: model.ChoiceBad, Timestamp: ts.Add(time.Hour),
	}))

	require.NoError(t, s.Start(ctx))

	require.Eventually(t, func() bool {
		return len(s.Logs()) == 2
	}, waitFor, tick)

	sum := s.MoodSummary(behavior.PeriodDay)
	require.Len(t, sum.Buckets, 1)
	assert.Equal(t, 1, sum.Buckets[0].Good)
	assert.Equal(t, 1, sum.Buckets[0].Bad)
	assert.InDelta(t, 0.5, sum.Mood(), 1e-9)
}

func TestStopClosesSubscriptions(t *testing.T) {
	s, store, _ := newTestSyncer(t, nil)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.membersSub != nil
	}, waitFor, tick)

	s.Stop()

	// Writes after Stop never reach the mirror.
	require.NoError(t, store.PutMember(ctx, model.Member{ID: "m1", Name: "Ada", Order: 0}))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, s.Members())
}
