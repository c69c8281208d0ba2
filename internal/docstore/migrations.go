package docstore

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	order_num INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS presets (
	id    TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	type  TEXT NOT NULL DEFAULT 'task'
);

CREATE TABLE IF NOT EXISTS events (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	type         TEXT NOT NULL DEFAULT 'event',
	status       TEXT NOT NULL DEFAULT 'scheduled',
	date         TEXT NOT NULL,
	start_time   TEXT NOT NULL,
	end_time     TEXT NOT NULL,
	member_id    TEXT NOT NULL,
	color        TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	notification INTEGER NOT NULL DEFAULT 0,
	recurrence   TEXT NOT NULL DEFAULT 'none',
	created_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS behavior_logs (
	id        TEXT PRIMARY KEY,
	behavior  TEXT NOT NULL,
	choice    TEXT NOT NULL,
	situation TEXT NOT NULL DEFAULT '',
	response  TEXT NOT NULL DEFAULT '',
	outcome   TEXT NOT NULL DEFAULT '',
	timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
CREATE INDEX IF NOT EXISTS idx_events_member ON events(member_id);
CREATE INDEX IF NOT EXISTS idx_behavior_logs_timestamp ON behavior_logs(timestamp);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
