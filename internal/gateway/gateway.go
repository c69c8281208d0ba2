// Package gateway is the validated write surface of the board. Every entry
// point translates to exactly one store write (or one atomic batch for
// reordering); results round-trip back through the sync layer's
// subscriptions. The store, scheduler, and logger are explicit constructor
// dependencies so tests can substitute doubles.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/family-board/internal/docstore"
	"github.com/nhle/family-board/internal/extcal"
	"github.com/nhle/family-board/internal/model"
	"github.com/nhle/family-board/internal/notify"
	"github.com/nhle/family-board/internal/recur"
	"github.com/nhle/family-board/internal/timeutil"
)

// Validation error codes.
const (
	CodeMissingField     = "MissingField"
	CodeInvalidTimeRange = "InvalidTimeRange"
	CodeInvalidValue     = "InvalidValue"
)

// ValidationError reports bad user input. It blocks the write and is fully
// recoverable; nothing reaches the store.
type ValidationError struct {
	Field string
	Code  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Code)
}

// IsValidation reports whether err (or any error in its chain) is a
// ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Gateway validates and applies mutations.
type Gateway struct {
	store  docstore.Store
	sched  *notify.Scheduler
	loc    *time.Location
	logger *slog.Logger

	now func() time.Time
}

// New builds a gateway writing through store. sched may be nil when
// reminders are not wired (headless tools).
func New(store docstore.Store, sched *notify.Scheduler, loc *time.Location, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		store:  store,
		sched:  sched,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// SaveEvent validates and writes an event document. A save addressed at a
// recurrence instance resolves to its base event; the edit applies to all
// occurrences. A save addressed at an external entry creates a new owned
// event instead (promotion to a real member's lane). On success the event
// is fed to the scheduler ahead of the next snapshot.
func (g *Gateway) SaveEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	if strings.TrimSpace(ev.Title) == "" {
		return model.Event{}, &ValidationError{Field: "title", Code: CodeMissingField}
	}
	if ev.MemberID == "" || ev.MemberID == model.ExternalMemberID {
		return model.Event{}, &ValidationError{Field: "memberId", Code: CodeMissingField}
	}

	start, err := timeutil.ParseClock(ev.StartTime)
	if err != nil {
		return model.Event{}, &ValidationError{Field: "startTime", Code: CodeInvalidValue}
	}
	end, err := timeutil.ParseClock(ev.EndTime)
	if err != nil {
		return model.Event{}, &ValidationError{Field: "endTime", Code: CodeInvalidValue}
	}
	if start >= end {
		return model.Event{}, &ValidationError{Field: "endTime", Code: CodeInvalidTimeRange}
	}
	if _, err := timeutil.ParseDate(ev.Date, g.loc); err != nil {
		return model.Event{}, &ValidationError{Field: "date", Code: CodeInvalidValue}
	}
	if ev.Type != "" && !ev.Type.Valid() {
		return model.Event{}, &ValidationError{Field: "type", Code: CodeInvalidValue}
	}
	if !ev.Notification.Valid() {
		return model.Event{}, &ValidationError{Field: "notification", Code: CodeInvalidValue}
	}
	if ev.Recurrence != "" && !ev.Recurrence.Valid() {
		return model.Event{}, &ValidationError{Field: "recurrence", Code: CodeInvalidValue}
	}

	if strings.HasPrefix(ev.ID, extcal.ExternalIDPrefix) {
		// Assigning an external entry to a member promotes it to an owned
		// event; the feed entry itself is never mutated.
		ev.ID = ""
	}
	if base, _, ok := recur.SplitInstanceID(ev.ID, g.loc); ok {
		ev.ID = base
	}

	if ev.Type == "" {
		ev.Type = model.EntryTypeEvent
	}
	if ev.Status == "" {
		ev.Status = model.StatusScheduled
	}
	if ev.Recurrence == "" {
		ev.Recurrence = model.RecurrenceNone
	}
	if ev.ID == "" {
		ev.ID = uuid.New().String()
		ev.CreatedAt = g.now().UTC()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = g.now().UTC()
	}

	if err := g.store.PutEvent(ctx, ev); err != nil {
		g.logger.Error("saving event failed", "event", ev.ID, "err", err)
		return model.Event{}, err
	}

	// Optimistic local scheduling ahead of the next snapshot.
	if g.sched != nil {
		g.sched.Schedule(ev)
	}
	return ev, nil
}

// DeleteEvent removes an event and cancels any armed reminder for it. An
// instance id resolves to its base event. Confirmation is a view concern,
// not enforced here.
func (g *Gateway) DeleteEvent(ctx context.Context, id string) error {
	if base, _, ok := recur.SplitInstanceID(id, g.loc); ok {
		id = base
	}
	if err := g.store.DeleteEvent(ctx, id); err != nil {
		g.logger.Error("deleting event failed", "event", id, "err", err)
		return err
	}
	if g.sched != nil {
		g.sched.Cancel(id)
	}
	return nil
}

// SetEventStatus applies a direct status transition. Only the status field
// changes, so full validation is skipped.
func (g *Gateway) SetEventStatus(ctx context.Context, id string, status model.EventStatus) error {
	if !status.Valid() {
		return &ValidationError{Field: "status", Code: CodeInvalidValue}
	}
	if base, _, ok := recur.SplitInstanceID(id, g.loc); ok {
		id = base
	}
	return g.store.SetEventStatus(ctx, id, status)
}

// AddMember creates a member at the end of the lane order.
func (g *Gateway) AddMember(ctx context.Context, name string) (model.Member, error) {
	if strings.TrimSpace(name) == "" {
		return model.Member{}, &ValidationError{Field: "name", Code: CodeMissingField}
	}
	m := model.Member{
		ID:    uuid.New().String(),
		Name:  strings.TrimSpace(name),
		Order: -1,
	}
	if err := g.store.PutMember(ctx, m); err != nil {
		return model.Member{}, err
	}
	return m, nil
}

// DeleteMember removes a member document.
func (g *Gateway) DeleteMember(ctx context.Context, id string) error {
	return g.store.DeleteMember(ctx, id)
}

// ReorderMembers rewrites every member's order to its position in the
// submitted sequence, atomically.
func (g *Gateway) ReorderMembers(ctx context.Context, members []model.Member) error {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return g.store.ReorderMembers(ctx, ids)
}

// AddPreset creates a preset template.
func (g *Gateway) AddPreset(ctx context.Context, title string, typ model.EntryType) (model.Preset, error) {
	if strings.TrimSpace(title) == "" {
		return model.Preset{}, &ValidationError{Field: "title", Code: CodeMissingField}
	}
	if !typ.Valid() {
		return model.Preset{}, &ValidationError{Field: "type", Code: CodeInvalidValue}
	}
	p := model.Preset{
		ID:    uuid.New().String(),
		Title: strings.TrimSpace(title),
		Type:  typ,
	}
	if err := g.store.PutPreset(ctx, p); err != nil {
		return model.Preset{}, err
	}
	return p, nil
}

// DeletePreset removes a preset.
func (g *Gateway) DeletePreset(ctx context.Context, id string) error {
	return g.store.DeletePreset(ctx, id)
}

// LogBehavior records one behavior observation, stamping the current time
// when the log carries none.
func (g *Gateway) LogBehavior(ctx context.Context, l model.BehaviorLog) (model.BehaviorLog, error) {
	if !l.Behavior.Valid() {
		return model.BehaviorLog{}, &ValidationError{Field: "behavior", Code: CodeInvalidValue}
	}
	if !l.Choice.Valid() {
		return model.BehaviorLog{}, &ValidationError{Field: "choice", Code: CodeInvalidValue}
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = g.now().UTC()
	}
	if err := g.store.PutBehaviorLog(ctx, l); err != nil {
		return model.BehaviorLog{}, err
	}
	return l, nil
}
