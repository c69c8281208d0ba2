// Package docstore is the boundary to the board's backing store: four
// logical collections (members, presets, events, behaviorLogs) with live,
// push-based subscriptions and validated write primitives. The SQLite
// implementation layers an in-process push hub over the database so every
// committed write re-runs the live queries and delivers fresh snapshots to
// subscribers.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/family-board/internal/model"
)

// Collection names, matching the logical document-store paths.
const (
	CollectionMembers      = "members"
	CollectionPresets      = "presets"
	CollectionEvents       = "events"
	CollectionBehaviorLogs = "behaviorLogs"
)

// ErrNotFound is returned when a write targets a document that does not
// exist.
var ErrNotFound = errors.New("document not found")

// WriteError wraps a failed create/update/delete. Writes are not retried
// automatically; callers surface the failure and move on.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsWriteError reports whether err (or any error in its chain) is a
// WriteError.
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}

// Store is the document-store contract the sync layer and the mutation
// gateway depend on. Subscriptions deliver a full snapshot on subscribe and
// after every committed write to their collection; events subscriptions are
// additionally scoped by an upper-bound date filter.
type Store interface {
	// Live subscriptions. Each collection's snapshots are delivered in
	// arrival order; no cross-collection ordering is guaranteed.
	Members(ctx context.Context) (*Subscription[model.Member], error)
	Presets(ctx context.Context) (*Subscription[model.Preset], error)
	Events(ctx context.Context, dateUpTo string) (*Subscription[model.Event], error)
	BehaviorLogs(ctx context.Context) (*Subscription[model.BehaviorLog], error)

	// Member writes. ReorderMembers applies the whole batch in one
	// transaction: all orders are rewritten or none are.
	PutMember(ctx context.Context, m model.Member) error
	DeleteMember(ctx context.Context, id string) error
	ReorderMembers(ctx context.Context, ids []string) error

	// Preset writes.
	PutPreset(ctx context.Context, p model.Preset) error
	DeletePreset(ctx context.Context, id string) error

	// Event writes. PutEvent is a full-document replace; SetEventStatus is
	// a point update of the status field only.
	PutEvent(ctx context.Context, e model.Event) error
	SetEventStatus(ctx context.Context, id string, status model.EventStatus) error
	DeleteEvent(ctx context.Context, id string) error

	// Behavior log writes.
	PutBehaviorLog(ctx context.Context, l model.BehaviorLog) error

	Close() error
}
