// Package metricsstore persists metrics.Snapshot history to a local
// SQLite database, following the shape of codeNERD's internal/northstar
// Store: a database/sql handle opened once, a fixed schema created on
// first use, and simple insert/query methods. It uses modernc.org/sqlite
// (pure Go, no cgo) rather than the teacher's mattn/go-sqlite3 driver so
// the router stays cgo-free end to end.
package metricsstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tierroute/internal/metrics"
)

// Store persists periodic metrics.Snapshot samples.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens a metrics database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("metricsstore: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("metricsstore: open: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("metricsstore: schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.dbPath }

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recorded_at DATETIME NOT NULL,
		total_classifications INTEGER NOT NULL,
		cache_hits INTEGER NOT NULL,
		cache_misses INTEGER NOT NULL,
		cache_hit_ratio REAL NOT NULL,
		tier_counts_json TEXT NOT NULL,
		handler_counts_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_recorded_at ON snapshots(recorded_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends one snapshot sample.
func (s *Store) Record(ctx context.Context, snap metrics.Snapshot) error {
	tierJSON, err := json.Marshal(snap.TierCounts)
	if err != nil {
		return fmt.Errorf("metricsstore: marshal tier counts: %w", err)
	}
	handlerJSON, err := json.Marshal(snap.HandlerCounts)
	if err != nil {
		return fmt.Errorf("metricsstore: marshal handler counts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots
			(recorded_at, total_classifications, cache_hits, cache_misses, cache_hit_ratio, tier_counts_json, handler_counts_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), snap.TotalClassifications, snap.CacheHits, snap.CacheMisses,
		snap.CacheHitRatio, string(tierJSON), string(handlerJSON),
	)
	return err
}

// Recent returns the most recent n snapshot samples, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]metrics.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT total_classifications, cache_hits, cache_misses, cache_hit_ratio, tier_counts_json, handler_counts_json
		FROM snapshots ORDER BY recorded_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("metricsstore: query: %w", err)
	}
	defer rows.Close()

	var out []metrics.Snapshot
	for rows.Next() {
		var snap metrics.Snapshot
		var tierJSON, handlerJSON string
		if err := rows.Scan(&snap.TotalClassifications, &snap.CacheHits, &snap.CacheMisses,
			&snap.CacheHitRatio, &tierJSON, &handlerJSON); err != nil {
			return nil, fmt.Errorf("metricsstore: scan: %w", err)
		}
		_ = json.Unmarshal([]byte(tierJSON), &snap.TierCounts)
		_ = json.Unmarshal([]byte(handlerJSON), &snap.HandlerCounts)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Prune deletes samples older than olderThan.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE recorded_at < ?`, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
