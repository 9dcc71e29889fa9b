package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const defaultDBTimeout = 5 * time.Second

// Database is the local store for tasks, sessions, targets and settings.
type Database struct {
	DB     *sql.DB
	dbFile string
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Database.
type Option func(*Database)

func WithLogger(l *zap.Logger) Option { return func(d *Database) { d.logger = l } }

// WithNow overrides the clock used for created/updated stamps.
func WithNow(now func() time.Time) Option { return func(d *Database) { d.now = now } }

// Open connects to the SQLite file at path, creating the schema if needed.
func Open(ctx context.Context, path string, opts ...Option) (*Database, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between the TUI and the mirror watcher.
	conn.SetMaxOpenConns(1)

	d := &Database{DB: conn, dbFile: path, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(d)
	}

	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := d.createTables(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := d.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// Path returns the database file location.
func (d *Database) Path() string { return d.dbFile }

func (d *Database) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// WithTx runs fn in a transaction, committing only if fn succeeds.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return d.rollbackWithLog(tx, err)
	}
	return tx.Commit()
}

func (d *Database) rollbackWithLog(tx *sql.Tx, err error) error {
	if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
		d.logger.Warn("rollback failed", zap.Error(rbErr), zap.NamedError("cause", err))
	}
	return err
}

func (d *Database) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uid TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,
			default_minutes INTEGER DEFAULT 25,
			color TEXT DEFAULT '#3B82F6',
			archived INTEGER DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uid TEXT NOT NULL UNIQUE,
			task_id INTEGER NOT NULL,
			duration_sec INTEGER NOT NULL,
			planned_sec INTEGER,
			completed_at TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY(task_id) REFERENCES tasks(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_completed ON sessions(completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_task ON sessions(task_id);`,
		`CREATE TABLE IF NOT EXISTS daily_targets (
			date TEXT PRIMARY KEY,
			target_minutes INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
	}
	for _, query := range queries {
		if _, err := d.DB.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// migrate brings databases created by earlier versions up to date.
func (d *Database) migrate(ctx context.Context) error {
	if err := d.addColumnIfMissing(ctx, "sessions", "kind", "TEXT DEFAULT 'work'"); err != nil {
		return err
	}
	var created string
	err := d.DB.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = 'created_at'").Scan(&created)
	if err == sql.ErrNoRows {
		_, err = d.DB.ExecContext(ctx, "INSERT INTO settings (key, value) VALUES ('created_at', ?)", formatTime(d.now()))
	}
	if err != nil {
		return fmt.Errorf("migrate created_at: %w", err)
	}
	return nil
}

func (d *Database) addColumnIfMissing(ctx context.Context, table, column, definition string) error {
	var exists bool
	err := d.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) > 0 FROM pragma_table_info(?) WHERE name = ?", table, column,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	if exists {
		return nil
	}
	if _, err := d.DB.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

// stamp is the current time at the storage resolution.
func (d *Database) stamp() time.Time {
	return d.now().UTC().Truncate(time.Second)
}
