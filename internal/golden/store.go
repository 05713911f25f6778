package golden

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"spirit-tamer/battlecore/internal/battlelog"
)

const schema = `
CREATE TABLE IF NOT EXISTS golden_logs (
    name        TEXT PRIMARY KEY,
    seed        INTEGER NOT NULL,
    entries     TEXT NOT NULL,
    checksum    TEXT NOT NULL,
    recorded_at INTEGER NOT NULL
);
`

// Store persists baselines in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("golden: storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure golden schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record stores entries under name, replacing any previous baseline.
func (s *Store) Record(ctx context.Context, name string, seed int64, entries []battlelog.Entry) (Baseline, error) {
	if err := ctx.Err(); err != nil {
		return Baseline{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Baseline{}, fmt.Errorf("golden: storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Baseline{}, fmt.Errorf("golden: baseline name is required")
	}
	data, err := battlelog.MarshalGolden(seed, entries)
	if err != nil {
		return Baseline{}, err
	}
	checksum, err := Checksum(seed, entries)
	if err != nil {
		return Baseline{}, err
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO golden_logs (name, seed, entries, checksum, recorded_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   seed = excluded.seed,
		   entries = excluded.entries,
		   checksum = excluded.checksum,
		   recorded_at = excluded.recorded_at`,
		name, seed, string(data), checksum, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return Baseline{}, fmt.Errorf("record baseline %s: %w", name, err)
	}
	return Baseline{Name: name, Seed: seed, Entries: entries, Checksum: checksum}, nil
}

// Lookup loads the baseline stored under name.
func (s *Store) Lookup(ctx context.Context, name string) (Baseline, error) {
	if err := ctx.Err(); err != nil {
		return Baseline{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Baseline{}, fmt.Errorf("golden: storage is not configured")
	}
	var (
		data     string
		checksum string
	)
	row := s.sqlDB.QueryRowContext(ctx, `SELECT entries, checksum FROM golden_logs WHERE name = ?`, name)
	if err := row.Scan(&data, &checksum); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Baseline{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Baseline{}, fmt.Errorf("lookup baseline %s: %w", name, err)
	}
	seed, entries, err := battlelog.UnmarshalGolden([]byte(data))
	if err != nil {
		return Baseline{}, fmt.Errorf("baseline %s: %w", name, err)
	}
	return Baseline{Name: name, Seed: seed, Entries: entries, Checksum: checksum}, nil
}

// Names lists stored baselines alphabetically.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("golden: storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT name FROM golden_logs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list baselines: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan baseline name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a baseline. Missing names are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("golden: storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM golden_logs WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete baseline %s: %w", name, err)
	}
	return nil
}
