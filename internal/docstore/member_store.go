package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/family-board/internal/model"
)

func (s *SQLiteStore) queryMembers(ctx context.Context) ([]model.Member, error) {
	members := []model.Member{}
	err := s.db.SelectContext(ctx, &members,
		"SELECT id, name, order_num FROM members ORDER BY order_num, name")
	if err != nil {
		return nil, fmt.Errorf("querying members: %w", err)
	}
	return members, nil
}

// PutMember inserts or replaces a member document. A negative Order assigns
// the next free lane position.
func (s *SQLiteStore) PutMember(ctx context.Context, m model.Member) error {
	if strings.TrimSpace(m.ID) == "" {
		return &WriteError{Op: "member", Err: fmt.Errorf("member id must not be empty")}
	}

	if m.Order < 0 {
		var maxOrder int
		err := s.db.GetContext(ctx, &maxOrder,
			"SELECT COALESCE(MAX(order_num), -1) FROM members")
		if err != nil {
			return &WriteError{Op: "member " + m.ID, Err: err}
		}
		m.Order = maxOrder + 1
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO members (id, name, order_num) VALUES (?, ?, ?)",
		m.ID, m.Name, m.Order)
	if err != nil {
		return &WriteError{Op: "member " + m.ID, Err: err}
	}

	s.hub.broadcast(CollectionMembers)
	return nil
}

// DeleteMember removes a member document by id.
func (s *SQLiteStore) DeleteMember(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM members WHERE id = ?", id)
	if err != nil {
		return &WriteError{Op: "delete member " + id, Err: err}
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &WriteError{Op: "delete member " + id, Err: ErrNotFound}
	}

	s.hub.broadcast(CollectionMembers)
	return nil
}

// ReorderMembers rewrites every member's order to its positional index in
// ids, in a single transaction. A missing id rolls the whole batch back,
// leaving the prior order intact.
func (s *SQLiteStore) ReorderMembers(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &WriteError{Op: "reorder members", Err: err}
	}
	defer tx.Rollback()

	for i, id := range ids {
		result, err := tx.ExecContext(ctx,
			"UPDATE members SET order_num = ? WHERE id = ?", i, id)
		if err != nil {
			return &WriteError{Op: "reorder members", Err: err}
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return &WriteError{
				Op:  "reorder members",
				Err: fmt.Errorf("member %s: %w", id, ErrNotFound),
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &WriteError{Op: "reorder members", Err: err}
	}

	s.hub.broadcast(CollectionMembers)
	return nil
}
