package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/recon/schema"
)

// Default values for configuration.
const (
	DefaultMaxFileTokens      = 50000
	DefaultEncoding           = "cl100k_base"
	DefaultChurnDays          = 90
	DefaultMinCoChangeCommits = 8
	DefaultMinCoChangeRatio   = 0.6
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Sentinel errors for root validation.
var (
	ErrRootNotFound = errors.New("path does not exist")
	ErrNotDirectory = errors.New("path is not a directory")
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a scan.
// This struct is the "final, validated" config.
type Config struct {
	RootPath string

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	MaxFileTokens   int
	Encoding        string
	TopN            int // 0 means no cap
	SortBy          schema.SortKey
	Extensions      []string
	IncludePatterns []string
	ExcludePatterns []string
	Workers         int

	NoGit              bool
	ChurnDays          int
	MinCoChangeCommits int
	MinCoChangeRatio   float64

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	Verbose bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RootPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	Workers        int    `mapstructure:"workers"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunBackend     string `mapstructure:"runs-backend"`
	RunDBConnect   string `mapstructure:"runs-db-connect"`
	Verbose        bool   `mapstructure:"verbose"`

	// --- Fields from scanCmd.Flags() ---
	Format    string `mapstructure:"format"`
	MaxTokens int    `mapstructure:"max-tokens"`
	Encoding  string `mapstructure:"encoding"`
	Top       int    `mapstructure:"top"`
	Sort      string `mapstructure:"sort"`
	Ext       string `mapstructure:"ext"`
	Include   string `mapstructure:"include"`
	Exclude   string `mapstructure:"exclude"`
	NoGit     bool   `mapstructure:"no-git"`

	// --- Fields shared by scanCmd and historyCmd ---
	ChurnDays  int     `mapstructure:"churn-days"`
	MinCommits int     `mapstructure:"min-commits"`
	MinRatio   float64 `mapstructure:"min-ratio"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Extensions = slices.Clone(c.Extensions)
	clone.IncludePatterns = slices.Clone(c.IncludePatterns)
	clone.ExcludePatterns = slices.Clone(c.ExcludePatterns)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateScanInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return resolveRootPath(cfg, input)
}

// validateSimpleInputs processes output and runtime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.NoGit = input.NoGit
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.Output = schema.OutputMode(strings.ToLower(input.Format))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be json, yaml, tree, compact, table, csv, parquet", input.Format)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}
	return nil
}

// validateScanInputs processes filter, budget and history fields.
func validateScanInputs(cfg *Config, input *ConfigRawInput) error {
	if input.MaxTokens <= 0 {
		return fmt.Errorf("max-tokens must be greater than 0 (received %d)", input.MaxTokens)
	}
	cfg.MaxFileTokens = input.MaxTokens

	cfg.Encoding = strings.TrimSpace(input.Encoding)
	if cfg.Encoding == "" {
		cfg.Encoding = DefaultEncoding
	}

	if input.Top < 0 {
		return fmt.Errorf("top must not be negative (received %d)", input.Top)
	}
	cfg.TopN = input.Top

	cfg.SortBy = schema.SortKey(strings.ToLower(input.Sort))
	if _, ok := schema.ValidSortKeys[cfg.SortBy]; !ok {
		return fmt.Errorf("invalid sort key '%s'. must be tokens or churn", input.Sort)
	}

	cfg.Extensions = ParseList(input.Ext)
	cfg.IncludePatterns = ParseList(input.Include)
	cfg.ExcludePatterns = ParseList(input.Exclude)

	if input.ChurnDays <= 0 {
		return fmt.Errorf("churn-days must be greater than 0 (received %d)", input.ChurnDays)
	}
	cfg.ChurnDays = input.ChurnDays

	if input.MinCommits <= 0 {
		return fmt.Errorf("min-commits must be greater than 0 (received %d)", input.MinCommits)
	}
	cfg.MinCoChangeCommits = input.MinCommits

	if input.MinRatio <= 0 || input.MinRatio > 1 {
		return fmt.Errorf("min-ratio must be in (0, 1] (received %g)", input.MinRatio)
	}
	cfg.MinCoChangeRatio = input.MinRatio
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.BoltBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates history cache and run store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, bolt, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// An empty run backend disables run tracking entirely
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidRunBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return err
	}

	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runsPath := cfg.RunDBConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if cachePath == runsPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// resolveRootPath turns the positional argument into an absolute directory path.
func resolveRootPath(cfg *Config, input *ConfigRawInput) error {
	searchPath := input.RootPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absPath = filepath.Clean(absPath)

	info, err := os.Stat(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrRootNotFound, absPath)
	} else if err != nil {
		return fmt.Errorf("cannot access %s: %w", absPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, absPath)
	}
	cfg.RootPath = absPath
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// RevalidateRoot resolves rootPath for a cloned config, e.g. one built for an MCP request.
func RevalidateRoot(cfg *Config, rootPath string) error {
	return resolveRootPath(cfg, &ConfigRawInput{RootPathStr: rootPath})
}

// RevalidateScan applies per-request scan overrides to a cloned config.
// Zero values keep the base setting.
func RevalidateScan(cfg *Config, maxTokens, top int, sortKey string) error {
	if maxTokens < 0 {
		return fmt.Errorf("max_tokens must be greater than 0 (received %d)", maxTokens)
	}
	if maxTokens > 0 {
		cfg.MaxFileTokens = maxTokens
	}
	if top < 0 {
		return fmt.Errorf("top must not be negative (received %d)", top)
	}
	if top > 0 {
		cfg.TopN = top
	}
	if sortKey != "" {
		key := schema.SortKey(strings.ToLower(sortKey))
		if _, ok := schema.ValidSortKeys[key]; !ok {
			return fmt.Errorf("invalid sort key '%s'. must be tokens or churn", sortKey)
		}
		cfg.SortBy = key
	}
	return nil
}
