package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/family-board/internal/model"
)

func (s *SQLiteStore) queryEvents(ctx context.Context, dateUpTo string) ([]model.Event, error) {
	events := []model.Event{}
	err := s.db.SelectContext(ctx, &events, `
		SELECT id, title, type, status, date, start_time, end_time,
		       member_id, color, location, description, notification,
		       recurrence, created_at
		FROM events
		WHERE date <= ?
		ORDER BY date, start_time`, dateUpTo)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	return events, nil
}

// PutEvent inserts or replaces a full event document. Field validation is
// the gateway's job; the store only requires an id.
func (s *SQLiteStore) PutEvent(ctx context.Context, e model.Event) error {
	if strings.TrimSpace(e.ID) == "" {
		return &WriteError{Op: "event", Err: fmt.Errorf("event id must not be empty")}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO events (
			id, title, type, status, date, start_time, end_time,
			member_id, color, location, description, notification,
			recurrence, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, string(e.Type), string(e.Status), e.Date,
		e.StartTime, e.EndTime, e.MemberID, e.Color, e.Location,
		e.Description, int(e.Notification), string(e.Recurrence),
		e.CreatedAt.UTC(),
	)
	if err != nil {
		return &WriteError{Op: "event " + e.ID, Err: err}
	}

	s.hub.broadcast(CollectionEvents)
	return nil
}

// SetEventStatus performs a point update of the status field only.
func (s *SQLiteStore) SetEventStatus(ctx context.Context, id string, status model.EventStatus) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE events SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return &WriteError{Op: "event status " + id, Err: err}
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &WriteError{Op: "event status " + id, Err: ErrNotFound}
	}

	s.hub.broadcast(CollectionEvents)
	return nil
}

// DeleteEvent removes an event document by id.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return &WriteError{Op: "delete event " + id, Err: err}
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &WriteError{Op: "delete event " + id, Err: ErrNotFound}
	}

	s.hub.broadcast(CollectionEvents)
	return nil
}
