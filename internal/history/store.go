package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Run is one recorded conversion pass over the sample set.
type Run struct {
	RunID          string
	Timestamp      time.Time
	SampleCount    int
	ConvertedCount int
	FailedCount    int
	SignalCount    int
	ReorderedCount int
	Duration       time.Duration
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SaveRun(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.RunID == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	query := `
INSERT INTO runs (
  run_id, ts_utc, sample_count, converted_count, failed_count,
  signal_count, reordered_count, duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  ts_utc=excluded.ts_utc,
  sample_count=excluded.sample_count,
  converted_count=excluded.converted_count,
  failed_count=excluded.failed_count,
  signal_count=excluded.signal_count,
  reordered_count=excluded.reordered_count,
  duration_ms=excluded.duration_ms
`
	return s.withRetry("save run", func() error {
		_, err := s.db.Exec(
			query,
			run.RunID,
			run.Timestamp.UTC().Format(time.RFC3339Nano),
			run.SampleCount,
			run.ConvertedCount,
			run.FailedCount,
			run.SignalCount,
			run.ReorderedCount,
			run.Duration.Milliseconds(),
		)
		return err
	})
}

func (s *Store) LoadRuns(since time.Time) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := `
SELECT run_id, ts_utc, sample_count, converted_count, failed_count,
  signal_count, reordered_count, duration_ms
FROM runs
`
	args := make([]any, 0, 1)
	if !since.IsZero() {
		base += " WHERE ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	base += " ORDER BY ts_utc ASC, run_id ASC"

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(base, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			tsRaw      string
			durationMS int64
			run        Run
		)
		if err := rows.Scan(
			&run.RunID,
			&tsRaw,
			&run.SampleCount,
			&run.ConvertedCount,
			&run.FailedCount,
			&run.SignalCount,
			&run.ReorderedCount,
			&durationMS,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
		}
		run.Timestamp = ts.UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return runs, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}
