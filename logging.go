package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cellintel/config"
	"cellintel/internal/ratelimit"
)

const (
	logStampLayout   = "2006/01/02 15:04:05"
	logDayLayout     = "02-Jan-2006"
	logSuffix        = ".log"
	maxPendingLogLen = 16 * 1024
	defaultKeepDays  = 7
)

// logSink takes one complete line at a time. Lines never carry a newline.
type logSink interface {
	emit(at time.Time, line string)
	Close() error
}

// consoleSink prefixes each line with a UTC stamp and writes it to w.
type consoleSink struct {
	w io.Writer
}

func (c consoleSink) emit(at time.Time, line string) {
	if c.w == nil {
		return
	}
	fmt.Fprintf(c.w, "%s %s\n", logStamp(at), line)
}

func (consoleSink) Close() error { return nil }

// rotatingFile writes to <dir>/<dd-Mon-yyyy>.log, moving to a new file at
// UTC midnight and pruning files past keepDays each time it does.
type rotatingFile struct {
	dir      string
	keepDays int
	failures *ratelimit.Counter

	mu   sync.Mutex
	day  string
	file *os.File
}

// Purpose: Prepare the log directory and prune stale files before the first line.
// Key aspects: The day file itself is opened lazily by emit.
// Upstream: setupLogging.
// Downstream: pruneLogs.
func newRotatingFile(dir string, keepDays int) (*rotatingFile, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("log directory is empty")
	}
	if keepDays <= 0 {
		keepDays = defaultKeepDays
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %q: %w", dir, err)
	}
	r := &rotatingFile{dir: dir, keepDays: keepDays, failures: ratelimit.NewCounter(time.Minute)}
	if err := pruneLogs(dir, time.Now(), keepDays); err != nil {
		r.fail(fmt.Errorf("prune %s: %w", dir, err))
	}
	return r, nil
}

func (r *rotatingFile) emit(at time.Time, line string) {
	at = at.UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	if day := at.Format(logDayLayout); r.file == nil || day != r.day {
		r.rotateLocked(at)
	}
	if r.file == nil {
		return
	}
	if _, err := fmt.Fprintf(r.file, "%s %s\n", logStamp(at), line); err != nil {
		r.fail(fmt.Errorf("write %s: %w", r.file.Name(), err))
	}
}

func (r *rotatingFile) rotateLocked(at time.Time) {
	if r.file != nil {
		_ = r.file.Close()
		r.file, r.day = nil, ""
	}
	path := filepath.Join(r.dir, logFileName(at))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		r.fail(fmt.Errorf("open %s: %w", path, err))
		return
	}
	r.file, r.day = f, at.Format(logDayLayout)
	if err := pruneLogs(r.dir, at, r.keepDays); err != nil {
		r.fail(fmt.Errorf("prune %s: %w", r.dir, err))
	}
}

// fail reports sink trouble on stderr, once a minute at most.
func (r *rotatingFile) fail(err error) {
	if total, ok := r.failures.Inc(); ok {
		fmt.Fprintf(os.Stderr, "Logging: %v (%d errors)\n", err, total)
	}
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file, r.day = nil, ""
	return err
}

// logRouter is installed as the log package output. It reassembles writes
// into lines and hands every line to each sink.
type logRouter struct {
	mu      sync.Mutex
	pending []byte
	sinks   []logSink
}

// Purpose: Build the log router from config.
// Key aspects: A file sink failure still returns a usable console router.
// Upstream: run.
// Downstream: newRotatingFile.
func setupLogging(cfg config.LoggingConfig, console io.Writer) (*logRouter, error) {
	router := &logRouter{sinks: []logSink{consoleSink{w: console}}}
	if !cfg.Enabled {
		return router, nil
	}
	file, err := newRotatingFile(cfg.Dir, cfg.RetentionDays)
	if err != nil {
		return router, err
	}
	router.sinks = append(router.sinks, file)
	return router, nil
}

func (lr *logRouter) Write(p []byte) (int, error) {
	lr.mu.Lock()
	lr.pending = append(lr.pending, p...)
	var lines []string
	for {
		line, rest, found := bytes.Cut(lr.pending, []byte{'\n'})
		if !found {
			break
		}
		lines = append(lines, string(bytes.TrimSuffix(line, []byte{'\r'})))
		lr.pending = rest
	}
	if len(lr.pending) > maxPendingLogLen {
		lines = append(lines, string(lr.pending))
		lr.pending = nil
	}
	sinks := lr.sinks
	lr.mu.Unlock()

	at := time.Now()
	for _, line := range lines {
		for _, s := range sinks {
			s.emit(at, line)
		}
	}
	return len(p), nil
}

// Close flushes a trailing partial line and closes every sink.
func (lr *logRouter) Close() error {
	lr.mu.Lock()
	tail := lr.pending
	lr.pending = nil
	sinks := lr.sinks
	lr.mu.Unlock()

	var errs []error
	for _, s := range sinks {
		if len(tail) > 0 {
			s.emit(time.Now(), string(tail))
		}
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func logStamp(at time.Time) string {
	return at.UTC().Format(logStampLayout)
}

func logFileName(at time.Time) string {
	return at.UTC().Format(logDayLayout) + logSuffix
}

// logFileDay parses the day out of a log file name.
func logFileDay(name string) (time.Time, bool) {
	stem, ok := strings.CutSuffix(name, logSuffix)
	if !ok {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(logDayLayout, stem, time.UTC)
	return day, err == nil
}

// pruneLogs deletes dated log files older than keepDays (today is day one).
// Files whose names are not log dates are kept.
func pruneLogs(dir string, now time.Time, keepDays int) error {
	if keepDays <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	today := now.UTC().Truncate(24 * time.Hour)
	oldest := today.AddDate(0, 0, 1-keepDays)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if day, ok := logFileDay(e.Name()); ok && day.Before(oldest) {
			_ = os.Remove(filepath.Join(dir, e.Name()))
		}
	}
	return nil
}
