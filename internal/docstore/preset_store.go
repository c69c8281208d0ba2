package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/family-board/internal/model"
)

func (s *SQLiteStore) queryPresets(ctx context.Context) ([]model.Preset, error) {
	presets := []model.Preset{}
	err := s.db.SelectContext(ctx, &presets,
		"SELECT id, title, type FROM presets ORDER BY title COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("querying presets: %w", err)
	}
	return presets, nil
}

// PutPreset inserts or replaces a preset document.
func (s *SQLiteStore) PutPreset(ctx context.Context, p model.Preset) error {
	if strings.TrimSpace(p.ID) == "" {
		return &WriteError{Op: "preset", Err: fmt.Errorf("preset id must not be empty")}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO presets (id, title, type) VALUES (?, ?, ?)",
		p.ID, p.Title, string(p.Type))
	if err != nil {
		return &WriteError{Op: "preset " + p.ID, Err: err}
	}

	s.hub.broadcast(CollectionPresets)
	return nil
}

// DeletePreset removes a preset document by id.
func (s *SQLiteStore) DeletePreset(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM presets WHERE id = ?", id)
	if err != nil {
		return &WriteError{Op: "delete preset " + id, Err: err}
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &WriteError{Op: "delete preset " + id, Err: ErrNotFound}
	}

	s.hub.broadcast(CollectionPresets)
	return nil
}
