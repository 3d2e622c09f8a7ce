package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteBackend persists refusal records to SQLite. It is suitable for
// single-instance deployments where the refusal trail must survive
// restarts; the rest of the subsystem's state stays in-memory regardless.
//
// The database is opened in WAL mode with a busy timeout, and SQLite's
// single-writer model is respected by capping the pool at one connection.
type SQLiteBackend struct {
	db        *sql.DB
	dbPath    string
	closeOnce sync.Once
	closeErr  error

	insertStmt *sql.Stmt
	recentStmt *sql.Stmt
	pruneStmt  *sql.Stmt
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteBackend creates a SQLite audit backend with default settings.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	return NewSQLiteBackendWithConfig(SQLiteConfig{DBPath: dbPath})
}

// NewSQLiteBackendWithConfig creates a SQLite backend with custom
// configuration.
func NewSQLiteBackendWithConfig(cfg SQLiteConfig) (*SQLiteBackend, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	backend := &SQLiteBackend{
		db:     db,
		dbPath: cfg.DBPath,
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := backend.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return backend, nil
}

// initSchema creates the refusals table if it doesn't exist.
func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS refusals (
		id TEXT PRIMARY KEY,
		refused_at INTEGER NOT NULL,
		action TEXT NOT NULL,
		mode TEXT NOT NULL,
		balance INTEGER NOT NULL,
		required INTEGER NOT NULL,
		deficit INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_refusals_refused_at ON refusals(refused_at);
	CREATE INDEX IF NOT EXISTS idx_refusals_action ON refusals(action);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements pre-compiles the SQL statements used on the hot paths.
func (s *SQLiteBackend) prepareStatements() error {
	var err error

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO refusals (id, refused_at, action, mode, balance, required, deficit)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}

	s.recentStmt, err = s.db.Prepare(`
		SELECT id, refused_at, action, mode, balance, required, deficit
		FROM refusals ORDER BY refused_at DESC LIMIT ?`)
	if err != nil {
		return fmt.Errorf("prepare recent: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`DELETE FROM refusals WHERE refused_at < ?`)
	if err != nil {
		return fmt.Errorf("prepare prune: %w", err)
	}

	return nil
}

// Record stores one refusal record.
func (s *SQLiteBackend) Record(ctx context.Context, rec *Record) error {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	at := rec.Time
	if at.IsZero() {
		at = time.Now()
	}

	_, err := s.insertStmt.ExecContext(ctx,
		id, at.UnixNano(), rec.Action, rec.Mode, rec.Balance, rec.Required, rec.Deficit)
	if err != nil {
		return fmt.Errorf("failed to record refusal: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteBackend) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.recentStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query refusals: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		var at int64
		if err := rows.Scan(&rec.ID, &at, &rec.Action, &rec.Mode, &rec.Balance, &rec.Required, &rec.Deficit); err != nil {
			return nil, fmt.Errorf("failed to scan refusal: %w", err)
		}
		rec.Time = time.Unix(0, at)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Prune removes records older than the given time.
func (s *SQLiteBackend) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	result, err := s.pruneStmt.ExecContext(ctx, olderThan.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune refusals: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

// Close closes the prepared statements and the database.
func (s *SQLiteBackend) Close() error {
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.insertStmt, s.recentStmt, s.pruneStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
