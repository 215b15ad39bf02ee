package checkpoint

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/fsutil"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// SQLiteBackend keeps an append-only checkpoint history in a SQLite
// database inside the output directory. Later saves under the same key
// append new rows; the newest row wins on read. Final reports are still
// written as JSON artifacts under reports/ so they stay shareable.
type SQLiteBackend struct {
	dir string
	db  *sql.DB
	mu  sync.Mutex
}

// NewSQLiteBackend opens (or creates) the checkpoint database at
// <dir>/checkpoints.db.
func NewSQLiteBackend(dir string) (*SQLiteBackend, error) {
	if err := fsutil.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	dbPath := filepath.Join(dir, "checkpoints.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint database: %w", err)
	}

	b := &SQLiteBackend{dir: dir, db: db}
	if err := b.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return b, nil
}

func (b *SQLiteBackend) migrate() error {
	if _, err := b.db.Exec(migrationV1); err != nil {
		return err
	}
	_, err := b.db.Exec(
		"INSERT INTO schema_version (version) VALUES (1) ON CONFLICT(version) DO NOTHING")
	return err
}

// Save appends a checkpoint row for the key.
func (b *SQLiteBackend) Save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling checkpoint %s: %w", key, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	_, err = b.db.Exec(
		"INSERT INTO checkpoints (key, value, created_at) VALUES (?, ?, ?)",
		SanitizeKey(key), string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting checkpoint %s: %w", key, err)
	}
	return nil
}

// Load returns the newest stored value for key, or sql.ErrNoRows wrapped
// when the key has never been checkpointed. Used by inspection tooling,
// not by running pipelines (in-run reads come from the run context).
func (b *SQLiteBackend) Load(key string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var raw string
	err := b.db.QueryRow(
		"SELECT value FROM checkpoints WHERE key = ? ORDER BY id DESC LIMIT 1",
		SanitizeKey(key)).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint %s: %w", key, err)
	}

	var value map[string]any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, core.ErrState(core.CodeCheckpointFailed,
			fmt.Sprintf("checkpoint %s is corrupted", key)).WithCause(err)
	}
	return value, nil
}

// SaveReport writes the report artifact as a JSON file, matching the
// JSON backend's layout.
func (b *SQLiteBackend) SaveReport(ideaName string, report any) (string, error) {
	reportsDir := filepath.Join(b.dir, "reports")
	if err := fsutil.EnsureDir(reportsDir); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}

	path := filepath.Join(reportsDir, ReportFilename(ideaName, time.Now()))
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Close closes the underlying database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

var _ core.CheckpointBackend = (*SQLiteBackend)(nil)
