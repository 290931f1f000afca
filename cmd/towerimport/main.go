package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cellintel/config"
	"cellintel/strutil"
	"cellintel/towerdb"

	"github.com/dustin/go-humanize"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type towerSink interface {
	towerdb.Writer
	Count(ctx context.Context) (int64, error)
	Close() error
}

// run imports one or more OpenCellID CSV exports (stdin when no files are
// given) into a tower store and prints a summary.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("towerimport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	backend := fs.String("backend", config.BackendSQLite, "store backend (sqlite or pebble)")
	path := fs.String("path", "", "store path; defaults to the configured path for the backend")
	mccFilter := fs.String("mcc", "", "comma-separated MCCs to keep (e.g. 404,405)")
	radioFilter := fs.String("radio", "", "comma-separated radio types to keep (GSM,UMTS,LTE,NR)")
	batch := fs.Int("batch", 5000, "rows per write batch")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := log.New(stderr, "towerimport: ", log.LstdFlags)

	mccs, err := strutil.ParseInts(*mccFilter)
	if err != nil {
		logger.Printf("invalid -mcc: %v", err)
		return 2
	}
	if strings.TrimSpace(*path) == "" {
		*path = config.DefaultTowerPath(*backend)
	}

	sink, err := openSink(ctx, *backend, *path, logger)
	if err != nil {
		logger.Printf("open %s store %s: %v", *backend, *path, err)
		return 1
	}
	defer sink.Close()

	opts := towerdb.ImportOptions{
		MCCs:      mccs,
		Radios:    strutil.SplitList(*radioFilter),
		BatchSize: *batch,
		Logf:      logger.Printf,
	}
	start := time.Now()
	var total towerdb.ImportStats
	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	for _, name := range inputs {
		stats, err := importOne(ctx, name, stdin, sink, opts)
		total.Rows += stats.Rows
		total.Imported += stats.Imported
		total.Filtered += stats.Filtered
		total.Invalid += stats.Invalid
		if err != nil {
			logger.Printf("import %s: %v", name, err)
			return 1
		}
	}

	count, err := sink.Count(ctx)
	if err != nil {
		logger.Printf("count towers: %v", err)
		return 1
	}
	fmt.Fprintf(stdout, "rows %s, imported %s, filtered %s, invalid %s in %s\n",
		humanize.Comma(int64(total.Rows)), humanize.Comma(int64(total.Imported)),
		humanize.Comma(int64(total.Filtered)), humanize.Comma(int64(total.Invalid)),
		time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(stdout, "%s now holds %s towers\n", *path, humanize.Comma(count))
	return 0
}

func openSink(ctx context.Context, backend, path string, logger *log.Logger) (towerSink, error) {
	switch backend {
	case config.BackendSQLite:
		store, err := towerdb.OpenSQLite(ctx, path, towerdb.SQLiteOptions{Create: true, Logf: logger.Printf})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendPebble:
		store, err := towerdb.OpenPebble(path, towerdb.PebbleOptions{})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func importOne(ctx context.Context, name string, stdin io.Reader, w towerdb.Writer, opts towerdb.ImportOptions) (towerdb.ImportStats, error) {
	if name == "-" {
		if stdin == nil {
			return towerdb.ImportStats{}, errors.New("no input")
		}
		return towerdb.ImportCSV(ctx, stdin, w, opts)
	}
	f, err := os.Open(name)
	if err != nil {
		return towerdb.ImportStats{}, err
	}
	defer f.Close()
	return towerdb.ImportCSV(ctx, f, w, opts)
}
