package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nhle/family-board/internal/model"
	"github.com/nhle/family-board/internal/timeutil"
)

// armed is one live timer entry. seq distinguishes a timer from its
// replacement so a stale fire cannot drop the newer entry.
type armed struct {
	timer  *time.Timer
	fireAt time.Time
	seq    uint64
}

// Scheduler owns the in-memory map of event id to armed reminder timer.
// Every snapshot delivery re-schedules every visible event, which naturally
// replaces stale timers after an edit. Timers do not survive a process
// restart; that is accepted, not a bug.
type Scheduler struct {
	sender Sender
	loc    *time.Location
	logger *slog.Logger

	mu     sync.Mutex
	timers map[string]armed
	seq    uint64

	// now is swapped in tests.
	now func() time.Time
}

// NewScheduler builds a scheduler posting through sender, interpreting
// event dates in loc.
func NewScheduler(sender Sender, loc *time.Location, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		sender: sender,
		loc:    loc,
		logger: logger,
		timers: make(map[string]armed),
		now:    time.Now,
	}
}

// Schedule arms a reminder for ev, replacing any existing timer for the
// same id (last write wins per event id). It is a no-op when the event has
// no reminder, permission is not granted, the event's times do not parse,
// or the fire time is already in the past; a reminder never fires
// retroactively.
func (s *Scheduler) Schedule(ev model.Event) {
	if ev.Notification == model.LeadNone {
		return
	}
	if s.sender.Permission() != PermissionGranted {
		return
	}

	day, err := timeutil.ParseDate(ev.Date, s.loc)
	if err != nil {
		s.logger.Warn("not scheduling reminder", "event", ev.ID, "err", err)
		return
	}
	startAt, err := timeutil.At(day, ev.StartTime)
	if err != nil {
		s.logger.Warn("not scheduling reminder", "event", ev.ID, "err", err)
		return
	}

	fireAt := startAt.Add(-time.Duration(ev.Notification) * time.Minute)
	now := s.now()
	if !fireAt.After(now) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[ev.ID]; ok {
		old.timer.Stop()
	}

	s.seq++
	seq := s.seq
	id := ev.ID
	timer := time.AfterFunc(fireAt.Sub(now), func() {
		s.fire(id, seq, ev)
	})
	s.timers[id] = armed{timer: timer, fireAt: fireAt, seq: seq}
}

// fire posts the reminder and drops the map entry, unless the timer was
// replaced after this fire was already committed.
func (s *Scheduler) fire(id string, seq uint64, ev model.Event) {
	s.mu.Lock()
	if cur, ok := s.timers[id]; ok && cur.seq == seq {
		delete(s.timers, id)
	}
	s.mu.Unlock()

	body := "Starts at " + ev.StartTime
	if ev.Location != "" {
		body += " at " + ev.Location
	}
	if err := s.sender.Send("Reminder: "+ev.Title, body); err != nil {
		s.logger.Warn("posting reminder failed", "event", id, "err", err)
	}
}

// Cancel clears any armed timer for id. Safe to call on an id with no
// entry.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.timers[id]; ok {
		a.timer.Stop()
		delete(s.timers, id)
	}
}

// CancelAll clears every armed timer.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.timers {
		a.timer.Stop()
		delete(s.timers, id)
	}
}

// Armed reports whether a timer is armed for id.
func (s *Scheduler) Armed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}

// FireTime returns when the timer for id will fire.
func (s *Scheduler) FireTime(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.timers[id]
	return a.fireAt, ok
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
