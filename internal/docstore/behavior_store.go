package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/family-board/internal/model"
)

func (s *SQLiteStore) queryBehaviorLogs(ctx context.Context) ([]model.BehaviorLog, error) {
	logs := []model.BehaviorLog{}
	err := s.db.SelectContext(ctx, &logs, `
		SELECT id, behavior, choice, situation, response, outcome, timestamp
		FROM behavior_logs
		ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying behavior logs: %w", err)
	}
	return logs, nil
}

// PutBehaviorLog inserts or replaces a behavior-log document.
func (s *SQLiteStore) PutBehaviorLog(ctx context.Context, l model.BehaviorLog) error {
	if strings.TrimSpace(l.ID) == "" {
		return &WriteError{Op: "behavior log", Err: fmt.Errorf("log id must not be empty")}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO behavior_logs (
			id, behavior, choice, situation, response, outcome, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, string(l.Behavior), string(l.Choice),
		l.Situation, l.Response, l.Outcome, l.Timestamp.UTC(),
	)
	if err != nil {
		return &WriteError{Op: "behavior log " + l.ID, Err: err}
	}

	s.hub.broadcast(CollectionBehaviorLogs)
	return nil
}
