package model

// EntryKind distinguishes the three event sources in the merged timeline.
// Keeping the tag on the entry (instead of a loose boolean on the event)
// means a consumer cannot accidentally persist a derived instance or an
// external entry.
type EntryKind string

const (
	// KindOwned is a persisted, directly editable event document.
	KindOwned EntryKind = "owned"
	// KindInstance is a derived per-date projection of a recurring base
	// event. It is never written back to the store.
	KindInstance EntryKind = "instance"
	// KindExternal is a read-only entry projected from the external
	// calendar feed.
	KindExternal EntryKind = "external"
)

// Entry is one dated item on the merged timeline.
type Entry struct {
	Kind  EntryKind `json:"kind"`
	Event Event     `json:"event"`

	// BaseID is set for instances: the id of the persisted base event the
	// instance was derived from. Edits to an instance apply to the base
	// (and thereby to all occurrences).
	BaseID string `json:"baseId,omitempty"`
}

// EditTargetID returns the id of the document an edit of this entry must be
// written to, and whether such a document exists. External entries are not
// editable and return false.
func (e Entry) EditTargetID() (string, bool) {
	switch e.Kind {
	case KindOwned:
		return e.Event.ID, true
	case KindInstance:
		return e.BaseID, true
	default:
		return "", false
	}
}
