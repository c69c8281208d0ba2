// Package sync keeps an in-memory mirror of the board live against the
// store and the external calendar feed. Members, presets, and behavior logs
// are subscribed for the whole session; events are subscribed per visible
// month window and re-subscribed on navigation. A generation counter guards
// against late deliveries from a superseded window.
package sync

import (
	"context"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/nhle/family-board/internal/behavior"
	"github.com/nhle/family-board/internal/docstore"
	"github.com/nhle/family-board/internal/extcal"
	"github.com/nhle/family-board/internal/model"
	"github.com/nhle/family-board/internal/notify"
	"github.com/nhle/family-board/internal/timeline"
	"github.com/nhle/family-board/internal/timeutil"
)

// Collection identifies which mirror changed in an update signal.
type Collection string

const (
	UpdateMembers  Collection = "members"
	UpdatePresets  Collection = "presets"
	UpdateTimeline Collection = "timeline"
	UpdateLogs     Collection = "behaviorLogs"
)

// fetchTimeout is the maximum time allowed for a single feed fetch.
const fetchTimeout = 30 * time.Second

// Syncer orchestrates the live subscriptions and the merged timeline.
type Syncer struct {
	store  docstore.Store
	feed   extcal.Feed
	sched  *notify.Scheduler
	loc    *time.Location
	logger *slog.Logger

	updates chan Collection

	mu         gosync.Mutex
	running    bool
	generation uint64
	window     timeutil.Window

	membersSub *docstore.Subscription[model.Member]
	presetsSub *docstore.Subscription[model.Preset]
	logsSub    *docstore.Subscription[model.BehaviorLog]
	eventsSub  *docstore.Subscription[model.Event]

	members  []model.Member
	presets  []model.Preset
	logs     []model.BehaviorLog
	owned    []model.Event
	external []model.Entry
	merged   []model.Entry
}

// New creates a Syncer. feed and sched may be nil when the external
// calendar or reminders are not configured.
func New(store docstore.Store, feed extcal.Feed, sched *notify.Scheduler, loc *time.Location, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		store:   store,
		feed:    feed,
		sched:   sched,
		loc:     loc,
		logger:  logger,
		updates: make(chan Collection, 16),
	}
}

// Start opens the session-long subscriptions and the events subscription
// for the window containing now (or the previously set window). It returns
// once the subscriptions are registered; snapshots arrive asynchronously.
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	if s.window.Start.IsZero() {
		s.window = timeutil.MonthWindow(time.Now().In(s.loc))
	}
	window := s.window
	s.mu.Unlock()

	membersSub, err := s.store.Members(ctx)
	if err != nil {
		return err
	}
	presetsSub, err := s.store.Presets(ctx)
	if err != nil {
		membersSub.Close()
		return err
	}
	logsSub, err := s.store.BehaviorLogs(ctx)
	if err != nil {
		membersSub.Close()
		presetsSub.Close()
		return err
	}

	s.mu.Lock()
	s.membersSub = membersSub
	s.presetsSub = presetsSub
	s.logsSub = logsSub
	s.mu.Unlock()

	go pump(s, membersSub, UpdateMembers, func(items []model.Member) {
		s.members = items
	})
	go pump(s, presetsSub, UpdatePresets, func(items []model.Preset) {
		s.presets = items
	})
	go pump(s, logsSub, UpdateLogs, func(items []model.BehaviorLog) {
		s.logs = items
	})

	if err := s.subscribeEvents(ctx, window); err != nil {
		return err
	}
	go s.RefreshExternal(ctx)
	return nil
}

// SetWindow swaps the visible month to the one containing month. The
// previous events subscription is closed before the new one opens, and the
// generation counter is bumped so any late snapshot or feed result from the
// old window is discarded. The external feed is refreshed for the new
// window in the background.
func (s *Syncer) SetWindow(ctx context.Context, month time.Time) error {
	window := timeutil.MonthWindow(month.In(s.loc))

	s.mu.Lock()
	if s.eventsSub != nil {
		s.eventsSub.Close()
		s.eventsSub = nil
	}
	s.generation++
	s.window = window
	s.owned = nil
	s.external = nil
	running := s.running
	s.mu.Unlock()

	if !running {
		return nil
	}
	if err := s.subscribeEvents(ctx, window); err != nil {
		return err
	}
	go s.RefreshExternal(ctx)
	return nil
}

// subscribeEvents opens the events subscription scoped to window and starts
// its pump, tagged with the current generation.
func (s *Syncer) subscribeEvents(ctx context.Context, window timeutil.Window) error {
	sub, err := s.store.Events(ctx, timeutil.FormatDate(window.End))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.eventsSub = sub
	gen := s.generation
	s.mu.Unlock()

	go s.pumpEvents(sub, gen)
	return nil
}

// pumpEvents applies event snapshots for one window generation.
func (s *Syncer) pumpEvents(sub *docstore.Subscription[model.Event], gen uint64) {
	for {
		select {
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return
			}
			s.mu.Lock()
			if gen != s.generation {
				s.mu.Unlock()
				continue
			}
			s.owned = snap
			s.applyLocked()
			s.mu.Unlock()
		case err := <-sub.Errs():
			s.logger.Error("events subscription failed", "err", err)
		}
	}
}

// pump applies snapshots of a session-long subscription. apply runs under
// the syncer mutex.
func pump[T any](s *Syncer, sub *docstore.Subscription[T], c Collection, apply func([]T)) {
	for {
		select {
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return
			}
			s.mu.Lock()
			apply(snap)
			s.mu.Unlock()
			s.signal(c)
		case err := <-sub.Errs():
			s.logger.Error("subscription failed", "collection", string(c), "err", err)
		}
	}
}

// applyLocked rebuilds the merged timeline mirror and re-arms reminders.
// Callers hold s.mu.
func (s *Syncer) applyLocked() {
	merged, err := timeline.Merge(s.owned, s.external, s.window, s.loc)
	if err != nil {
		s.logger.Error("merging timeline failed", "err", err)
		return
	}
	s.merged = merged

	if s.sched != nil {
		s.sched.CancelAll()
		for _, e := range merged {
			s.sched.Schedule(e.Event)
		}
	}
	s.signal(UpdateTimeline)
}

// RefreshExternal fetches the external feed for the current window and
// replaces the external mirror. Results from a superseded window are
// discarded. A nil feed makes this a no-op.
func (s *Syncer) RefreshExternal(ctx context.Context) {
	if s.feed == nil {
		return
	}

	s.mu.Lock()
	gen := s.generation
	window := s.window
	s.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	items, err := s.feed.Events(fetchCtx, window.Start, window.End.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error("fetching external feed failed", "err", err)
		return
	}
	entries := extcal.Project(items, s.loc)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	s.external = entries
	s.applyLocked()
}

// signal notifies listeners that a mirror changed. Never blocks; a full
// channel drops the signal since a pending one already forces a repaint.
func (s *Syncer) signal(c Collection) {
	select {
	case s.updates <- c:
	default:
	}
}

// Updates returns the channel carrying change signals.
func (s *Syncer) Updates() <-chan Collection {
	return s.updates
}

// Window returns the currently visible month window.
func (s *Syncer) Window() timeutil.Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// Members returns the current member mirror in lane order.
func (s *Syncer) Members() []model.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Member(nil), s.members...)
}

// Presets returns the current preset mirror.
func (s *Syncer) Presets() []model.Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Preset(nil), s.presets...)
}

// Timeline returns the merged entries of the visible window.
func (s *Syncer) Timeline() []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Entry(nil), s.merged...)
}

// Logs returns the behavior-log mirror, newest first.
func (s *Syncer) Logs() []model.BehaviorLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.BehaviorLog(nil), s.logs...)
}

// MoodSummary aggregates the behavior-log mirror by period.
func (s *Syncer) MoodSummary(p behavior.Period) behavior.Summary {
	s.mu.Lock()
	logs := append([]model.BehaviorLog(nil), s.logs...)
	s.mu.Unlock()
	return behavior.Summarize(logs, p, s.loc)
}

// Stop closes every subscription and cancels all armed reminders. The
// pumps exit when their snapshot channels close.
func (s *Syncer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	if s.membersSub != nil {
		s.membersSub.Close()
	}
	if s.presetsSub != nil {
		s.presetsSub.Close()
	}
	if s.logsSub != nil {
		s.logsSub.Close()
	}
	if s.eventsSub != nil {
		s.eventsSub.Close()
		s.eventsSub = nil
	}
	s.mu.Unlock()

	if s.sched != nil {
		s.sched.CancelAll()
	}
}
