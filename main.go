// Program cellintel classifies cellular scans captured on a handset: it
// resolves operators and bands, decomposes cell identities, estimates
// distance and signal quality, detects carrier aggregation and, when a tower
// database is configured, places the serving towers relative to the observer.
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
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"cellintel/acquire"
	"cellintel/band"
	"cellintel/ca"
	"cellintel/cell"
	"cellintel/classify"
	"cellintel/config"
	"cellintel/distance"
	"cellintel/internal/ratelimit"
	"cellintel/operator"
	"cellintel/stats"
	"cellintel/towerdb"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"
)

// Version will be set at build time
var Version = "dev"

const (
	exitOK     = 0
	exitInput  = 1
	exitConfig = 2
)

type options struct {
	configPath  string
	format      string
	operators   string
	nrOverlap   string
	towers      string
	towerPath   string
	lat, lon    float64
	operator    string
	showStats   bool
	printConfig bool
	metricsFile string
	inputs      []string
	latLonSet   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Purpose: Parse flags, load config, process every input scan and print reports.
// Key aspects: Returns a process exit code; only config and input failures are non-zero.
// Upstream: main.
// Downstream: loadConfig, newPipeline, pipeline.process, output writers.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}

	log.SetFlags(0)
	log.SetOutput(stderr)
	cfg, source, err := loadConfig(opts)
	if err != nil {
		log.Printf("Error loading config: %v", err)
		return exitConfig
	}
	logs, err := setupLogging(cfg.Logging, stderr)
	if err != nil {
		log.Printf("Warning: file logging disabled: %v", err)
	}
	log.SetOutput(logs)
	defer logs.Close()
	log.Printf("cellintel %s: config from %s", Version, source)
	if opts.printConfig {
		cfg.Print()
	}

	p, err := newPipeline(ctx, cfg, opts.operator)
	if err != nil {
		log.Printf("Error: %v", err)
		return exitConfig
	}
	defer p.Close()

	format := cfg.Output.Format
	if format == config.FormatTable && !isStdoutTTY() {
		log.Printf("Table view requires an interactive terminal; using text output")
		format = config.FormatText
	}

	inputs := opts.inputs
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	var reports []ScanReport
	failed := false
	for _, name := range inputs {
		report, err := p.processInput(ctx, name, stdin)
		if err != nil {
			log.Printf("Error: %v", err)
			failed = true
			continue
		}
		switch format {
		case config.FormatJSON:
			err = writeJSON(stdout, report)
		case config.FormatTable:
			reports = append(reports, report)
		default:
			err = writeText(stdout, report)
		}
		if err != nil {
			log.Printf("Error writing report: %v", err)
			return exitInput
		}
	}
	if len(reports) > 0 {
		if err := newDashboard(reports).Run(); err != nil {
			log.Printf("Table view error: %v", err)
		}
	}
	if opts.showStats {
		for _, line := range p.tracker.SnapshotLines() {
			log.Print(line)
		}
		if p.cache != nil {
			cs := p.cache.Stats()
			log.Printf("Tower cache: %d lookups, %d hits, %d entries", cs.Lookups, cs.Hits, cs.Entries)
		}
	}
	if p.metrics != nil {
		if err := p.metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	if failed {
		return exitInput
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("cellintel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "config file or directory (default $"+config.EnvPath+" or "+config.DefaultPath+")")
	fs.StringVar(&opts.format, "format", "", "output format: text, json or table")
	fs.StringVar(&opts.operators, "operators", "", "operator table (.yaml or .plist) replacing the built-in one")
	fs.StringVar(&opts.nrOverlap, "nr-overlap", "", "band reported for the shared n77/n78 range: n78 or n77")
	fs.StringVar(&opts.towers, "towers", "", "tower backend: none, sqlite or pebble")
	fs.StringVar(&opts.towerPath, "tower-path", "", "tower database path")
	fs.Float64Var(&opts.lat, "lat", 0, "observer latitude (enables tower range and bearing)")
	fs.Float64Var(&opts.lon, "lon", 0, "observer longitude")
	fs.StringVar(&opts.operator, "operator", "", "only report cells of this operator brand")
	fs.BoolVar(&opts.showStats, "stats", false, "print run statistics to stderr")
	fs.BoolVar(&opts.printConfig, "print-config", false, "print the effective configuration")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics for the run to this textfile")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: cellintel [flags] [scan.json ...]\n\nReads termux-telephony-cellinfo JSON from files or stdin (\"-\").\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lon" {
			opts.latLonSet = true
		}
	})
	opts.inputs = fs.Args()
	return opts, nil
}

// Purpose: Load config from flag/env/default path and apply flag overrides.
// Key aspects: A missing default path falls back to built-in defaults.
// Upstream: run.
// Downstream: config.Load, config.Default.
func loadConfig(opts options) (*config.Config, string, error) {
	path := config.ResolvePath(opts.configPath)
	cfg, err := config.Load(path)
	source := path
	if err != nil {
		explicit := opts.configPath != "" || os.Getenv(config.EnvPath) != ""
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, "", err
		}
		cfg, source = config.Default(), "built-in defaults"
	}
	if opts.format != "" {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(opts.format))
	}
	if opts.operators != "" {
		cfg.Operators.Path = opts.operators
	}
	if opts.nrOverlap != "" {
		cfg.Bands.NROverlap = opts.nrOverlap
	}
	if opts.towers != "" {
		cfg.Towers.Backend = opts.towers
		if opts.towerPath == "" {
			cfg.Towers.Path = ""
		}
	}
	if opts.towerPath != "" {
		cfg.Towers.Path = opts.towerPath
	}
	if opts.metricsFile != "" {
		cfg.Metrics.Textfile = opts.metricsFile
	}
	if opts.latLonSet {
		cfg.Observer = config.ObserverConfig{Enabled: true, Lat: opts.lat, Lon: opts.lon}
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, source, nil
}

func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// pipeline holds everything needed to turn one scan into a report.
type pipeline struct {
	engine   *classify.Engine
	detector *ca.Detector
	locator  *towerdb.Locator
	cache    *towerdb.Cache
	tracker  *stats.Tracker
	metrics  *stats.Metrics
	operator string
}

// Purpose: Build the classification pipeline from config.
// Key aspects: Tower lookup is optional; a missing database only logs a warning.
// Upstream: run.
// Downstream: operator tables, band resolver, CA detector, tower stores.
func newPipeline(ctx context.Context, cfg *config.Config, operatorFilter string) (*pipeline, error) {
	operators := operator.India()
	if path := strings.TrimSpace(cfg.Operators.Path); path != "" {
		loaded, err := operator.LoadFile(path)
		if err != nil {
			return nil, err
		}
		operators = loaded
		log.Printf("Loaded %d operator codes from %s", operators.Len(), path)
	}
	policy, err := band.ParseOverlapPolicy(cfg.Bands.NROverlap)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		engine:   classify.NewEngine(band.NewResolver(policy), operators),
		detector: ca.NewDetector(ca.IndiaCatalog()),
		tracker:  stats.NewTracker(),
	}
	if cfg.Metrics.Textfile != "" {
		m, err := stats.NewMetrics(prometheus.NewRegistry())
		if err != nil {
			return nil, err
		}
		p.metrics = m
		p.tracker.SetMetrics(m)
	}
	if operatorFilter != "" {
		brand, ok := operators.Match(operatorFilter)
		if !ok {
			if guess, found := operators.Suggest(operatorFilter); found {
				return nil, fmt.Errorf("unknown operator %q (did you mean %q?)", operatorFilter, guess)
			}
			return nil, fmt.Errorf("unknown operator %q (known: %s)", operatorFilter, strings.Join(operators.Brands(), ", "))
		}
		p.operator = brand
	}

	store, err := openTowerStore(ctx, cfg.Towers)
	if err != nil {
		log.Printf("Warning: tower lookup disabled: %v", err)
	}
	if store != nil {
		p.cache = towerdb.NewCache(store, cfg.Towers.CacheEntries)
		p.locator = &towerdb.Locator{
			Store:    p.cache,
			Timeout:  time.Duration(cfg.Towers.LookupTimeoutMS) * time.Millisecond,
			Failures: ratelimit.NewCounter(time.Minute),
		}
		if cfg.Observer.Enabled {
			p.locator.Observer = &distance.Point{Lat: cfg.Observer.Lat, Lon: cfg.Observer.Lon}
		}
		log.Printf("Tower lookup: %s at %s", cfg.Towers.Backend, cfg.Towers.Path)
	}
	return p, nil
}

func openTowerStore(ctx context.Context, cfg config.TowersConfig) (towerdb.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := towerdb.OpenSQLite(ctx, cfg.Path, towerdb.SQLiteOptions{
			PreflightTimeout: time.Duration(cfg.PreflightTimeoutMS) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendPebble:
		store, err := towerdb.OpenPebble(cfg.Path, towerdb.PebbleOptions{ReadOnly: true})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, nil
}

func (p *pipeline) Close() {
	if p != nil && p.cache != nil {
		if err := p.cache.Close(); err != nil {
			log.Printf("Warning: closing tower store: %v", err)
		}
	}
}

// processInput reads one scan document ("-" is stdin) and builds its report.
func (p *pipeline) processInput(ctx context.Context, name string, stdin io.Reader) (ScanReport, error) {
	if name == "-" {
		return p.process(ctx, "stdin", stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return ScanReport{}, fmt.Errorf("open scan: %w", err)
	}
	defer f.Close()
	return p.process(ctx, filepath.Base(name), f)
}

func (p *pipeline) process(ctx context.Context, source string, r io.Reader) (ScanReport, error) {
	records, err := acquire.Decode(r)
	if err != nil {
		return ScanReport{}, fmt.Errorf("%s: %w", source, err)
	}
	scan := classify.ClassifyScan(p.engine, p.detector, records)
	p.tracker.RecordScan(len(records), scan)
	if scan.Session.ExtraRegistered > 0 {
		log.Printf("%s: %d extra registered LTE cell(s) demoted to SCell", source, scan.Session.ExtraRegistered)
	}
	if p.operator != "" {
		scan.Cells = filterOperator(scan.Cells, p.operator)
	}
	var fixes []towerdb.Fix
	if p.locator != nil {
		fixes = p.locator.Locate(ctx, scan.Cells)
	}
	return newScanReport(source, scan, fixes), nil
}

func filterOperator(cells []cell.Normalized, brand string) []cell.Normalized {
	out := make([]cell.Normalized, 0, len(cells))
	for _, c := range cells {
		if c.Operator == brand {
			out = append(out, c)
		}
	}
	return out
}
