package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
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

type dataRow struct {
	Data string `db:"data"`
}

// SaveSnapshot replaces every cached row in one transaction, so a reader
// sees either the previous snapshot or the new one.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap board.Snapshot, baseURL string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"tasks", "projects", "users", "snapshot_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, u := range snap.Users {
		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("marshaling user %d: %w", u.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO users (id, username, position, data) VALUES (?, ?, ?, ?)",
			u.ID, u.Username, i, string(data),
		)
		if err != nil {
			return fmt.Errorf("inserting user %d: %w", u.ID, err)
		}
	}

	for i, p := range snap.Projects {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshaling project %d: %w", p.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO projects (id, name, status, position, data) VALUES (?, ?, ?, ?, ?)",
			p.ID, p.Name, string(p.Status), i, string(data),
		)
		if err != nil {
			return fmt.Errorf("inserting project %d: %w", p.ID, err)
		}
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO tasks (
			id, project_id, assignee_id, status, priority, title, data
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing task insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range snap.Tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshaling task %d: %w", t.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			t.ID, t.ProjectID(), t.AssignedUserID(),
			string(t.Status), string(t.Priority), t.Title, string(data),
		)
		if err != nil {
			return fmt.Errorf("inserting task %d: %w", t.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO snapshot_meta (id, fetched_at, base_url) VALUES (1, ?, ?)",
		snap.FetchedAt.UTC().Format(time.RFC3339Nano), baseURL,
	)
	if err != nil {
		return fmt.Errorf("writing snapshot metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}

	log.WithFields(log.Fields{
		"tasks":    len(snap.Tasks),
		"users":    len(snap.Users),
		"projects": len(snap.Projects),
	}).Debug("snapshot cached")
	return nil
}

// LoadSnapshot returns the cached snapshot or ErrNoSnapshot.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (board.Snapshot, string, error) {
	var meta struct {
		FetchedAt string `db:"fetched_at"`
		BaseURL   string `db:"base_url"`
	}
	err := s.db.GetContext(ctx, &meta, "SELECT fetched_at, base_url FROM snapshot_meta WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return board.Snapshot{}, "", ErrNoSnapshot
	}
	if err != nil {
		return board.Snapshot{}, "", fmt.Errorf("reading snapshot metadata: %w", err)
	}

	var snap board.Snapshot
	snap.FetchedAt, err = time.Parse(time.RFC3339Nano, meta.FetchedAt)
	if err != nil {
		return board.Snapshot{}, "", fmt.Errorf("parsing fetched_at: %w", err)
	}

	if err := selectJSON(ctx, s.db, &snap.Users, "SELECT data FROM users ORDER BY position"); err != nil {
		return board.Snapshot{}, "", fmt.Errorf("loading users: %w", err)
	}
	if err := selectJSON(ctx, s.db, &snap.Projects, "SELECT data FROM projects ORDER BY position"); err != nil {
		return board.Snapshot{}, "", fmt.Errorf("loading projects: %w", err)
	}
	if err := selectJSON(ctx, s.db, &snap.Tasks, "SELECT data FROM tasks ORDER BY seq"); err != nil {
		return board.Snapshot{}, "", fmt.Errorf("loading tasks: %w", err)
	}

	return snap, meta.BaseURL, nil
}

// GetTasks queries the cached tasks, in fetch order.
func (s *SQLiteStore) GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	var conditions []string
	var args []interface{}

	if filter.ProjectID != 0 {
		conditions = append(conditions, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.AssigneeID != 0 {
		conditions = append(conditions, "assignee_id = ?")
		args = append(args, filter.AssigneeID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Query != "" {
		conditions = append(conditions, "title LIKE ?")
		args = append(args, "%"+filter.Query+"%")
	}

	query := "SELECT data FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY seq"

	var tasks []model.Task
	if err := selectJSON(ctx, s.db, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return tasks, nil
}

// selectJSON runs a query returning a single data column of JSON
// documents and decodes each into an element of out.
func selectJSON[T any](ctx context.Context, db *sqlx.DB, out *[]T, query string, args ...interface{}) error {
	var rows []dataRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return err
	}
	items := make([]T, 0, len(rows))
	for _, r := range rows {
		var item T
		if err := json.Unmarshal([]byte(r.Data), &item); err != nil {
			return fmt.Errorf("decoding cached row: %w", err)
		}
		items = append(items, item)
	}
	*out = items
	return nil
}
