package store

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

CREATE TABLE IF NOT EXISTS snapshot_meta (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	fetched_at TEXT NOT NULL,
	base_url   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS users (
	id        INTEGER PRIMARY KEY,
	username  TEXT NOT NULL,
	position  INTEGER NOT NULL,
	data      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id        INTEGER PRIMARY KEY,
	name      TEXT NOT NULL,
	status    TEXT NOT NULL DEFAULT '',
	position  INTEGER NOT NULL,
	data      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          INTEGER NOT NULL,
	project_id  INTEGER NOT NULL DEFAULT 0,
	assignee_id INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT '',
	priority    TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL,
	data        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
