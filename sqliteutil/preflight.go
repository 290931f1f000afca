// Package sqliteutil runs bounded health checks against SQLite files before
// the tower store opens them, so a damaged import never stalls a scan.
package sqliteutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrMissingTable is returned when the database opens cleanly but lacks a
// table the caller requires.
var ErrMissingTable = errors.New("sqliteutil: required table missing")

const defaultTimeout = 2 * time.Second

// Options controls one preflight run.
type Options struct {
	Role    string        // Label used in log lines ("towers").
	Timeout time.Duration // Bound on checkpoint + quick_check; default 2s.
	Tables  []string      // Tables that must exist after the check.
	Logf    func(string, ...any)
}

// PreflightResult reports the outcome of a SQLite preflight check.
type PreflightResult struct {
	Healthy         bool
	Missing         bool   // No database file at path; nothing was created.
	Quarantined     bool   // The file failed its checks and was renamed aside.
	QuarantinePath  string // Main-file destination when Quarantined.
	Elapsed         time.Duration
	CheckpointError error
	CheckError      error
}

// Preflight checkpoints the WAL and runs quick_check on an existing database
// within opts.Timeout. A corrupt file is renamed (with its sidecars) to a
// timestamped ".bad-" path and reported as Quarantined. A healthy file that
// lacks one of opts.Tables returns ErrMissingTable. A missing file is not an
// error: the result carries Missing and the caller decides.
func Preflight(ctx context.Context, path string, opts Options) (PreflightResult, error) {
	res := PreflightResult{}
	if strings.TrimSpace(path) == "" {
		return res, errors.New("sqliteutil: empty path")
	}
	logf := opts.Logf
	if logf == nil {
		logf = log.Printf
	}
	role := opts.Role
	if role == "" {
		role = "sqlite"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			res.Missing = true
			return res, nil
		}
		return res, fmt.Errorf("sqliteutil: stat %s db: %w", role, err)
	}

	start := time.Now()
	sidecars := presentSidecars(path)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return res, fmt.Errorf("sqliteutil: open %s db: %w", role, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(ctx, fmt.Sprintf("pragma busy_timeout=%d", timeout.Milliseconds())); err != nil {
		return res, fmt.Errorf("sqliteutil: busy_timeout %s db: %w", role, err)
	}

	_, res.CheckpointError = db.ExecContext(ctx, "pragma wal_checkpoint(TRUNCATE)")
	res.CheckError = quickCheck(ctx, db)
	res.Elapsed = time.Since(start)

	if res.CheckpointError == nil && res.CheckError == nil {
		if err := requireTables(ctx, db, opts.Tables); err != nil {
			return res, fmt.Errorf("sqliteutil: %s db: %w", role, err)
		}
		res.Healthy = true
		return res, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("sqliteutil: %s db check timed out after %s", role, timeout)
	}

	_ = db.Close()
	dest, err := quarantine(path, sidecars)
	if err != nil {
		return res, fmt.Errorf("sqliteutil: quarantine %s db: %w (checkpoint=%v, quick_check=%v)", role, err, res.CheckpointError, res.CheckError)
	}
	res.Quarantined = true
	res.QuarantinePath = dest
	logf("%s db preflight failed (checkpoint=%v, quick_check=%v); moved to %s after %s",
		role, res.CheckpointError, res.CheckError, dest, res.Elapsed)
	return res, nil
}

func quickCheck(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, "pragma quick_check")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return err
		}
		if strings.TrimSpace(status) != "ok" {
			return fmt.Errorf("quick_check reported %q", status)
		}
	}
	return rows.Err()
}

func requireTables(ctx context.Context, db *sql.DB, tables []string) error {
	for _, name := range tables {
		var found string
		err := db.QueryRowContext(ctx,
			"select name from sqlite_master where type='table' and name=?", name).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrMissingTable, name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

var sidecarSuffixes = []string{"-wal", "-shm", "-journal"}

func presentSidecars(path string) []string {
	var out []string
	for _, suffix := range sidecarSuffixes {
		if _, err := os.Stat(path + suffix); err == nil {
			out = append(out, path+suffix)
		}
	}
	return out
}

// quarantine renames the main file and any sidecars seen before the check.
// Sidecars removed by the checkpoint itself are skipped.
func quarantine(path string, sidecars []string) (string, error) {
	stamp := time.Now().UTC().Format("20060102T150405Z")
	dest := path + ".bad-" + stamp
	if err := os.Rename(path, dest); err != nil {
		return "", err
	}
	for _, s := range sidecars {
		if err := os.Rename(s, s+".bad-"+stamp); err != nil && !os.IsNotExist(err) {
			return dest, err
		}
	}
	return dest, nil
}
