// Package config loads the cellintel YAML configuration. A path may name one
// file or a directory whose *.yaml files are merged in lexical order, so
// operator, tower and logging settings can live in separate files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cellintel/band"
	"cellintel/strutil"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither a flag nor CELLINTEL_CONFIG_PATH is set.
const DefaultPath = "data/config"

// EnvPath names the environment override for the config location.
const EnvPath = "CELLINTEL_CONFIG_PATH"

// Tower backends.
const (
	BackendNone   = "none"
	BackendSQLite = "sqlite"
	BackendPebble = "pebble"
)

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTable = "table"
)

const (
	defaultSQLitePath         = "data/towers/cell_towers.db"
	defaultPebblePath         = "data/towers/pebble"
	defaultCacheEntries       = 4096
	defaultPreflightTimeoutMS = 2000
	defaultLookupTimeoutMS    = 500
	defaultLogDir             = "data/logs"
	defaultLogRetentionDays   = 7
)

// Config is the complete runtime configuration.
type Config struct {
	Operators OperatorsConfig `yaml:"operators"`
	Bands     BandsConfig     `yaml:"bands"`
	Towers    TowersConfig    `yaml:"towers"`
	Observer  ObserverConfig  `yaml:"observer"`
	Logging   LoggingConfig   `yaml:"logging"`
	Output    OutputConfig    `yaml:"output"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	// LoadedFrom records the file or directory the config came from.
	LoadedFrom string `yaml:"-"`
}

// OperatorsConfig selects the PLMN table. An empty path uses the built-in
// Indian table.
type OperatorsConfig struct {
	Path string `yaml:"path"`
}

// BandsConfig controls band resolution.
type BandsConfig struct {
	// NROverlap picks the reported band for NR-ARFCNs shared by n77 and n78.
	NROverlap string `yaml:"nr_overlap"`
}

// TowersConfig controls the optional tower-location database.
type TowersConfig struct {
	Backend            string `yaml:"backend"`
	Path               string `yaml:"path"`
	CacheEntries       int    `yaml:"cache_entries"`
	PreflightTimeoutMS int    `yaml:"preflight_timeout_ms"`
	LookupTimeoutMS    int    `yaml:"lookup_timeout_ms"`
}

// ObserverConfig is the fixed position used for tower range and bearing.
type ObserverConfig struct {
	Enabled bool    `yaml:"enabled"`
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
}

// LoggingConfig controls the daily log file sink. Console logging is always on.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// MetricsConfig names a Prometheus textfile written when the run ends. Empty
// disables the export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// OutputConfig picks the default report format.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// ResolvePath returns flagPath, else the env override, else DefaultPath.
func ResolvePath(flagPath string) string {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads a YAML file or a directory of YAML files and applies defaults.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	var files []string
	if info.IsDir() {
		files, err = yamlFiles(path)
		if err != nil {
			return nil, err
		}
	} else {
		files = []string{path}
	}

	merged := map[string]any{}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", file, err)
		}
		mergeMaps(merged, doc)
	}

	// Round-trip the merged tree so typed decoding sees one document.
	data, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("config: merge: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.LoadedFrom = path
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no config path exists.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.applyDefaults()
	return cfg
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("config: read dir %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("config: no yaml files in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// mergeMaps overlays src onto dst; nested maps merge key by key, everything
// else is replaced.
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if srcMap, ok := v.(map[string]any); ok {
			if dstMap, ok := dst[k].(map[string]any); ok {
				mergeMaps(dstMap, srcMap)
				continue
			}
		}
		dst[k] = v
	}
}

// DefaultTowerPath returns the store path used for backend when none is
// configured, or "" for BackendNone and unknown names.
func DefaultTowerPath(backend string) string {
	switch strutil.NormalizeLower(backend) {
	case BackendSQLite:
		return defaultSQLitePath
	case BackendPebble:
		return defaultPebblePath
	default:
		return ""
	}
}

// Validate re-applies defaults and checks values, for callers that modify a
// loaded config (command-line overrides).
func (c *Config) Validate() error {
	return c.applyDefaults()
}

func (c *Config) applyDefaults() error {
	c.Bands.NROverlap = strutil.NormalizeLower(c.Bands.NROverlap)
	if c.Bands.NROverlap == "" {
		c.Bands.NROverlap = band.PreferN78.String()
	}
	if _, err := band.ParseOverlapPolicy(c.Bands.NROverlap); err != nil {
		return fmt.Errorf("config: bands.nr_overlap: %w", err)
	}

	c.Metrics.Textfile = strings.TrimSpace(c.Metrics.Textfile)

	c.Towers.Backend = strutil.NormalizeLower(c.Towers.Backend)
	switch c.Towers.Backend {
	case "":
		c.Towers.Backend = BackendNone
	case BackendNone:
	case BackendSQLite:
		if strings.TrimSpace(c.Towers.Path) == "" {
			c.Towers.Path = DefaultTowerPath(BackendSQLite)
		}
	case BackendPebble:
		if strings.TrimSpace(c.Towers.Path) == "" {
			c.Towers.Path = DefaultTowerPath(BackendPebble)
		}
	default:
		return fmt.Errorf("config: towers.backend %q must be none, sqlite or pebble", c.Towers.Backend)
	}
	if c.Towers.CacheEntries < 0 || c.Towers.PreflightTimeoutMS < 0 || c.Towers.LookupTimeoutMS < 0 {
		return errors.New("config: towers cache_entries and timeouts must be >= 0")
	}
	if c.Towers.CacheEntries == 0 {
		c.Towers.CacheEntries = defaultCacheEntries
	}
	if c.Towers.PreflightTimeoutMS == 0 {
		c.Towers.PreflightTimeoutMS = defaultPreflightTimeoutMS
	}
	if c.Towers.LookupTimeoutMS == 0 {
		c.Towers.LookupTimeoutMS = defaultLookupTimeoutMS
	}

	if c.Observer.Enabled {
		if c.Observer.Lat < -90 || c.Observer.Lat > 90 || c.Observer.Lon < -180 || c.Observer.Lon > 180 {
			return fmt.Errorf("config: observer position %.4f,%.4f out of range", c.Observer.Lat, c.Observer.Lon)
		}
	}

	if c.Logging.RetentionDays < 0 {
		return errors.New("config: logging.retention_days must be >= 0")
	}
	if c.Logging.RetentionDays == 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = defaultLogDir
	}

	c.Output.Format = strutil.NormalizeLower(c.Output.Format)
	switch c.Output.Format {
	case "":
		c.Output.Format = FormatText
	case FormatText, FormatJSON, FormatTable:
	default:
		return fmt.Errorf("config: output.format %q must be text, json or table", c.Output.Format)
	}
	return nil
}

// Print displays the effective configuration.
func (c *Config) Print() {
	fmt.Printf("Config: %s\n", c.LoadedFrom)
	operators := c.Operators.Path
	if operators == "" {
		operators = "built-in (India)"
	}
	fmt.Printf("Operators: %s\n", operators)
	fmt.Printf("NR n77/n78 overlap: %s\n", c.Bands.NROverlap)
	if c.Towers.Backend == BackendNone {
		fmt.Println("Towers: disabled")
	} else {
		fmt.Printf("Towers: %s at %s (cache=%d, lookup timeout=%dms)\n",
			c.Towers.Backend, c.Towers.Path, c.Towers.CacheEntries, c.Towers.LookupTimeoutMS)
	}
	if c.Observer.Enabled {
		fmt.Printf("Observer: %.5f, %.5f\n", c.Observer.Lat, c.Observer.Lon)
	}
	if c.Logging.Enabled {
		fmt.Printf("Logging: %s (retain %d days)\n", c.Logging.Dir, c.Logging.RetentionDays)
	}
	fmt.Printf("Output: %s\n", c.Output.Format)
	if c.Metrics.Textfile != "" {
		fmt.Printf("Metrics textfile: %s\n", c.Metrics.Textfile)
	}
}
