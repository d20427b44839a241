// internal/storage/history.go
package storage

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tamzrod/amsky-bridge/internal/status"
)

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/prune-readings.sql
var pruneReadingsSQL string

//go:embed sql/get-recent-readings.sql
var getRecentReadingsSQL string

// row is one stored parameter reading.
type row struct {
	At     time.Time
	Device string
	Name   string
	Value  float64
	State  string
}

// History stores parameter values from delivered snapshots.
// Rows are written only while the device is connected.
type History struct {
	db        *sql.DB
	retention time.Duration
	logger    *slog.Logger
}

// Open opens (and creates if needed) the history database at path.
// A retention of zero keeps rows forever.
func Open(path string, retention time.Duration, logger *slog.Logger) (*History, error) {
	if path == "" {
		return nil, errors.New("storage: path required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}

	// Single writer; also keeps ":memory:" on one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}

	return &History{
		db:        db,
		retention: retention,
		logger:    logger.With("component", "history"),
	}, nil
}

func buildDSN(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}

	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("storage: mkdir %s: %w", dir, err)
		}
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

// Close releases the database.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

// Write stores one row per parameter that has a value, then prunes rows
// older than the retention window.
func (h *History) Write(s status.Snapshot) error {
	if !s.Connected {
		return nil
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	at := s.At.UnixMilli()
	for _, p := range s.Params {
		if !p.HasValue {
			continue
		}
		if _, err := tx.Exec(insertReadingSQL, at, s.Device, p.Name, p.Value, status.StateName(p.State)); err != nil {
			return fmt.Errorf("storage: insert %s: %w", p.Name, err)
		}
	}

	if h.retention > 0 {
		cutoff := s.At.Add(-h.retention).UnixMilli()
		res, err := tx.Exec(pruneReadingsSQL, cutoff)
		if err != nil {
			return fmt.Errorf("storage: prune: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			h.logger.Debug("pruned history rows", "rows", n, "older_than", h.retention)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

// recent returns up to limit rows for device, newest first.
func (h *History) recent(device string, limit int) ([]row, error) {
	rows, err := h.db.Query(getRecentReadingsSQL, device, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			h.logger.Error("close history rows", "error", err)
		}
	}()

	var out []row
	for rows.Next() {
		var r row
		var at int64
		if err := rows.Scan(&at, &r.Device, &r.Name, &r.Value, &r.State); err != nil {
			return nil, err
		}
		r.At = time.UnixMilli(at).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
