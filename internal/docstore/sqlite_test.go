package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/family-board/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	return s
}

// recv waits for the next snapshot with a timeout so a missing push fails
// fast instead of hanging the test.
func recv[T any](t *testing.T, sub *Subscription[T]) []T {
	t.Helper()
	select {
	case items, ok := <-sub.Snapshots():
		require.True(t, ok, "subscription closed unexpectedly")
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func testEvent(id, date string) model.Event {
	return model.Event{
		ID:         id,
		Title:      "Dentist",
		Type:       model.EntryTypeAppointment,
		Status:     model.StatusScheduled,
		Date:       date,
		StartTime:  "10:00",
		EndTime:    "10:30",
		MemberID:   "m1",
		Color:      "#3b82f6",
		Recurrence: model.RecurrenceNone,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func TestMembersSubscriptionPush(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub, err := s.Members(ctx)
	require.NoError(t, err)
	defer sub.Close()

	assert.Empty(t, recv(t, sub), "initial snapshot should be empty")

	require.NoError(t, s.PutMember(ctx, model.Member{ID: "m1", Name: "Ada", Order: 0}))
	got := recv(t, sub)
	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].Name)

	require.NoError(t, s.PutMember(ctx, model.Member{ID: "m2", Name: "Ben", Order: -1}))
	got = recv(t, sub)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[1].Order, "negative order should assign next lane")
}

func TestMembersOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutMember(ctx, model.Member{ID: "m1", Name: "Zoe", Order: 0}))
	require.NoError(t, s.PutMember(ctx, model.Member{ID: "m2", Name: "Ada", Order: 2}))
	require.NoError(t, s.PutMember(ctx, model.Member{ID: "m3", Name: "Ben", Order: 1}))

	members, err := s.queryMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m3", "m2"}, []string{members[0].ID, members[1].ID, members[2].ID})
}

func TestReorderMembers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"Ada", "Ben", "Cleo"} {
		require.NoError(t, s.PutMember(ctx, model.Member{
			ID: name, Name: name, Order: i,
		}))
	}

	require.NoError(t, s.ReorderMembers(ctx, []string{"Cleo", "Ada", "Ben"}))

	members, err := s.queryMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 3)
	orders := map[string]int{}
	for _, m := range members {
		orders[m.ID] = m.Order
	}
	assert.Equal(t, map[string]int{"Cleo": 0, "Ada": 1, "Ben": 2}, orders)
}

func TestReorderMembersAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutMember(ctx, model.Member{ID: "m1", Name: "Ada", Order: 0}))
	require.NoError(t, s.PutMember(ctx, model.Member{ID: "m2", Name: "Ben", Order: 1}))

	err := s.ReorderMembers(ctx, []string{"m2", "ghost", "m1"})
	require.Error(t, err)
	assert.True(t, IsWriteError(err))

	// The failed batch must leave the prior order intact.
	members, err := s.queryMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m1", members[0].ID)
	assert.Equal(t, 0, members[0].Order)
	assert.Equal(t, "m2", members[1].ID)
	assert.Equal(t, 1, members[1].Order)
}

func TestEventsDateFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutEvent(ctx, testEvent("e1", "2024-07-05")))
	require.NoError(t, s.PutEvent(ctx, testEvent("e2", "2024-08-02")))

	sub, err := s.Events(ctx, "2024-07-31")
	require.NoError(t, err)
	defer sub.Close()

	got := recv(t, sub)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)

	// A write inside the bound is pushed; the out-of-bound event stays
	// filtered.
	require.NoError(t, s.PutEvent(ctx, testEvent("e3", "2024-07-10")))
	got = recv(t, sub)
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, "e3", got[1].ID)
}

func TestEventRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := testEvent("e1", "2024-07-05")
	want.Notification = model.Lead15
	want.Recurrence = model.RecurrenceWeekly
	want.Location = "Clinic"
	require.NoError(t, s.PutEvent(ctx, want))

	got, err := s.queryEvents(ctx, "2024-12-31")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want.Title, got[0].Title)
	assert.Equal(t, model.Lead15, got[0].Notification)
	assert.Equal(t, model.RecurrenceWeekly, got[0].Recurrence)
	assert.Equal(t, "Clinic", got[0].Location)
}

func TestSetEventStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutEvent(ctx, testEvent("e1", "2024-07-05")))
	require.NoError(t, s.SetEventStatus(ctx, "e1", model.StatusCompleted))

	got, err := s.queryEvents(ctx, "2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got[0].Status)

	err = s.SetEventStatus(ctx, "missing", model.StatusCancelled)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub, err := s.Events(ctx, "2024-12-31")
	require.NoError(t, err)
	recv(t, sub)

	sub.Close()

	// Writes after Close must not reach the old subscription.
	require.NoError(t, s.PutEvent(ctx, testEvent("e1", "2024-07-05")))

	_, ok := <-sub.Snapshots()
	assert.False(t, ok, "snapshot channel should be closed with nothing pending")
}

func TestSubscriptionCoalescing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub, err := s.Events(ctx, "2024-12-31")
	require.NoError(t, err)
	defer sub.Close()
	recv(t, sub)

	// Two writes without an intervening read: only the newest snapshot
	// remains pending.
	require.NoError(t, s.PutEvent(ctx, testEvent("e1", "2024-07-05")))
	require.NoError(t, s.PutEvent(ctx, testEvent("e2", "2024-07-06")))

	got := recv(t, sub)
	assert.Len(t, got, 2)
}

func TestBehaviorLogsOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"b1", "b2", "b3"} {
		require.NoError(t, s.PutBehaviorLog(ctx, model.BehaviorLog{
			ID:        id,
			Behavior:  model.BehaviorChores,
			Choice:    model.ChoiceGood,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	logs, err := s.queryBehaviorLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "b3", logs[0].ID, "most recent log first")
	assert.Equal(t, "b1", logs[2].ID)
}

func TestDeleteMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.DeleteEvent(ctx, "nope"), ErrNotFound)
	assert.ErrorIs(t, s.DeleteMember(ctx, "nope"), ErrNotFound)
	assert.ErrorIs(t, s.DeletePreset(ctx, "nope"), ErrNotFound)
}
