package towerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cellintel/sqliteutil"

	_ "modernc.org/sqlite"
)

const towersSchema = `
CREATE TABLE IF NOT EXISTS towers (
    mcc INTEGER NOT NULL,
    mnc INTEGER NOT NULL,
    lac INTEGER NOT NULL,
    cid INTEGER NOT NULL,
    lat REAL NOT NULL,
    lon REAL NOT NULL,
    range INTEGER,
    radio TEXT,
    samples INTEGER,
    PRIMARY KEY (mcc, mnc, lac, cid)
);
CREATE UNIQUE INDEX IF NOT EXISTS towers_key ON towers (mcc, mnc, lac, cid);`

// SQLiteOptions controls how the SQLite backend is opened.
type SQLiteOptions struct {
	// Create makes the file and schema when absent (import mode). Lookup-only
	// callers leave it false so a missing database is reported, not created.
	Create           bool
	PreflightTimeout time.Duration
	Logf             func(string, ...any)
}

// ErrNoDatabase is returned by OpenSQLite when the file is missing and
// Create is false.
var ErrNoDatabase = errors.New("towerdb: database not found")

// SQLiteStore is the SQLite tower backend.
type SQLiteStore struct {
	db   *sql.DB
	path string
	// legacy tables carry only mcc,mnc,lac,cid,lat,lon,range.
	legacy bool
}

// OpenSQLite preflights and opens the tower database at path.
func OpenSQLite(ctx context.Context, path string, opts SQLiteOptions) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("towerdb: sqlite path is empty")
	}
	pre, err := sqliteutil.Preflight(ctx, path, sqliteutil.Options{
		Role:    "towers",
		Timeout: opts.PreflightTimeout,
		Tables:  requiredTables(opts.Create),
		Logf:    opts.Logf,
	})
	if err != nil {
		return nil, fmt.Errorf("towerdb: preflight: %w", err)
	}
	if (pre.Missing || pre.Quarantined) && !opts.Create {
		return nil, fmt.Errorf("%w: %s", ErrNoDatabase, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("towerdb: ensure dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("towerdb: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	store := &SQLiteStore{db: db, path: path}
	if opts.Create {
		if err := store.migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	cols, err := store.columns(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	store.legacy = !cols["radio"] || !cols["samples"]
	return store, nil
}

// migrate creates the schema, upgrading a seven-column legacy table in place.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, towersSchema); err != nil {
		return fmt.Errorf("towerdb: schema: %w", err)
	}
	cols, err := s.columns(ctx)
	if err != nil {
		return err
	}
	for _, add := range []struct{ name, ddl string }{
		{"radio", "ALTER TABLE towers ADD COLUMN radio TEXT"},
		{"samples", "ALTER TABLE towers ADD COLUMN samples INTEGER"},
	} {
		if cols[add.name] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, add.ddl); err != nil {
			return fmt.Errorf("towerdb: add column %s: %w", add.name, err)
		}
	}
	return nil
}

func (s *SQLiteStore) columns(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "pragma table_info(towers)")
	if err != nil {
		return nil, fmt.Errorf("towerdb: table_info: %w", err)
	}
	defer rows.Close()
	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("towerdb: table_info: %w", err)
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}

func requiredTables(create bool) []string {
	if create {
		return nil
	}
	return []string{"towers"}
}

// Lookup returns the tower for key.
func (s *SQLiteStore) Lookup(ctx context.Context, key Key) (Tower, bool, error) {
	if s == nil || s.db == nil {
		return Tower{}, false, errStoreClosed
	}
	if !key.valid() {
		return Tower{}, false, errInvalidKey
	}
	var (
		t       = Tower{Key: key}
		rng     sql.NullInt64
		radio   sql.NullString
		samples sql.NullInt64
	)
	var err error
	if s.legacy {
		err = s.db.QueryRowContext(ctx,
			`SELECT lat, lon, range FROM towers WHERE mcc=? AND mnc=? AND lac=? AND cid=?`,
			key.MCC, key.MNC, key.Area, key.CellID,
		).Scan(&t.Lat, &t.Lon, &rng)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT lat, lon, range, radio, samples FROM towers WHERE mcc=? AND mnc=? AND lac=? AND cid=?`,
			key.MCC, key.MNC, key.Area, key.CellID,
		).Scan(&t.Lat, &t.Lon, &rng, &radio, &samples)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return Tower{}, false, nil
	}
	if err != nil {
		return Tower{}, false, fmt.Errorf("towerdb: lookup %s: %w", key, err)
	}
	t.RangeM = int(rng.Int64)
	t.Radio = radio.String
	t.Samples = int(samples.Int64)
	return t, true, nil
}

// PutBatch upserts towers in one transaction.
func (s *SQLiteStore) PutBatch(ctx context.Context, towers []Tower) error {
	if s == nil || s.db == nil {
		return errStoreClosed
	}
	if len(towers) == 0 {
		return nil
	}
	if s.legacy {
		return errors.New("towerdb: legacy towers table is read-only; open with Create to upgrade")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("towerdb: begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO towers (mcc, mnc, lac, cid, lat, lon, range, radio, samples)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(mcc, mnc, lac, cid) DO UPDATE SET
    lat=excluded.lat, lon=excluded.lon, range=excluded.range,
    radio=excluded.radio, samples=excluded.samples`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("towerdb: prepare: %w", err)
	}
	defer stmt.Close()
	for _, t := range towers {
		if !t.Key.valid() {
			continue
		}
		if _, err := stmt.ExecContext(ctx, t.MCC, t.MNC, t.Area, t.CellID, t.Lat, t.Lon, t.RangeM, t.Radio, t.Samples); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("towerdb: insert %s: %w", t.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("towerdb: commit: %w", err)
	}
	return nil
}

// Count returns the number of stored towers.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errStoreClosed
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM towers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("towerdb: count: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
