package docstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/family-board/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database
// with an in-process push hub for live subscriptions.
type SQLiteStore struct {
	db  *sqlx.DB
	hub *hub
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db, hub: newHub()}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// subscribe runs the initial query, delivers the first snapshot, and
// registers the subscription with the hub so later writes to the collection
// push fresh snapshots.
func subscribe[T any](
	ctx context.Context,
	s *SQLiteStore,
	collection string,
	query func(context.Context) ([]T, error),
) (*Subscription[T], error) {
	items, err := query(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", collection, err)
	}

	sub := newSubscription[T]()
	sub.push(items)
	sub.unregister = s.hub.register(collection, func() {
		items, err := query(context.Background())
		if err != nil {
			sub.fail(fmt.Errorf("refreshing %s: %w", collection, err))
			return
		}
		sub.push(items)
	})

	return sub, nil
}

// Members subscribes to the members collection, ordered by lane order.
func (s *SQLiteStore) Members(ctx context.Context) (*Subscription[model.Member], error) {
	return subscribe(ctx, s, CollectionMembers, s.queryMembers)
}

// Presets subscribes to the presets collection, ordered by title.
func (s *SQLiteStore) Presets(ctx context.Context) (*Subscription[model.Preset], error) {
	return subscribe(ctx, s, CollectionPresets, s.queryPresets)
}

// Events subscribes to the events collection, filtered by an upper-bound
// date matching the visible window's end.
func (s *SQLiteStore) Events(ctx context.Context, dateUpTo string) (*Subscription[model.Event], error) {
	return subscribe(ctx, s, CollectionEvents, func(ctx context.Context) ([]model.Event, error) {
		return s.queryEvents(ctx, dateUpTo)
	})
}

// BehaviorLogs subscribes to the behavior-log collection, most recent first.
func (s *SQLiteStore) BehaviorLogs(ctx context.Context) (*Subscription[model.BehaviorLog], error) {
	return subscribe(ctx, s, CollectionBehaviorLogs, s.queryBehaviorLogs)
}
