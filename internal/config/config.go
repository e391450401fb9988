// Package config loads and validates miner configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config captures all run configuration knobs loaded via Viper.
type Config struct {
	Search   SearchConfig  `mapstructure:"search"`
	Filters  FilterConfig  `mapstructure:"filters"`
	Fetch    FetchConfig   `mapstructure:"fetch"`
	Render   RenderConfig  `mapstructure:"render"`
	Worker   WorkerConfig  `mapstructure:"worker"`
	Dataset  DatasetConfig `mapstructure:"dataset"`
	Sheets   SheetsConfig  `mapstructure:"sheets"`
	Archive  ArchiveConfig `mapstructure:"archive"`
	Publish  PublishConfig `mapstructure:"publish"`
	Server   ServerConfig  `mapstructure:"server"`
	Logging  LoggingConfig `mapstructure:"logging"`
	TestMode bool          `mapstructure:"test_mode"`
}

// SearchConfig governs discovery: what to look for and where.
type SearchConfig struct {
	Keywords           []string `mapstructure:"keywords"`
	Subreddits         []string `mapstructure:"subreddits"`
	MaxPostsPerKeyword int      `mapstructure:"max_posts_per_keyword"`
	ResultsPerSearch   int      `mapstructure:"results_per_search"`
}

// FilterConfig holds the classification thresholds.
type FilterConfig struct {
	Countries     []string `mapstructure:"countries"`
	MinScore      int      `mapstructure:"min_score"`
	MinTextLength int      `mapstructure:"min_text_length"`
}

// FetchConfig configures the direct HTTP client.
type FetchConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	PaceMs         int    `mapstructure:"pace_ms"`
	ProxyURL       string `mapstructure:"proxy_url"`
}

// RenderConfig configures the headless browser fallback.
type RenderConfig struct {
	Headless          bool `mapstructure:"headless"`
	NavTimeoutSeconds int  `mapstructure:"nav_timeout_seconds"`
}

// WorkerConfig sets the per-post retry and time budget.
type WorkerConfig struct {
	MaxAttempts        int `mapstructure:"max_attempts"`
	ItemTimeoutSeconds int `mapstructure:"item_timeout_seconds"`
}

// DatasetConfig selects the durable record destination.
type DatasetConfig struct {
	Provider string `mapstructure:"provider"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
}

// SheetsConfig configures the optional spreadsheet mirror. The sink is
// enabled only when a spreadsheet id is set.
type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	SheetName       string `mapstructure:"sheet_name"`
	CredentialsFile string `mapstructure:"credentials_file"`
	BatchSize       int    `mapstructure:"batch_size"`
	FlushSeconds    int    `mapstructure:"flush_seconds"`
}

// ArchiveConfig selects where raw payloads are kept.
type ArchiveConfig struct {
	Provider string `mapstructure:"provider"`
	Dir      string `mapstructure:"dir"`
	Bucket   string `mapstructure:"bucket"`
}

// PublishConfig holds the run summary topic. Empty means no publishing.
type PublishConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// ServerConfig controls the metrics/health HTTP listener.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. A .env file in the working
// directory is folded into the environment first when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("QUOTEMINER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.TestMode {
		cfg.applyTestMode()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("search.max_posts_per_keyword", 50)
	v.SetDefault("search.results_per_search", 100)
	v.SetDefault("filters.min_score", 0)
	v.SetDefault("filters.min_text_length", 50)
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.pace_ms", 500)
	v.SetDefault("render.headless", true)
	v.SetDefault("render.nav_timeout_seconds", 90)
	v.SetDefault("worker.max_attempts", 4)
	v.SetDefault("worker.item_timeout_seconds", 180)
	v.SetDefault("dataset.provider", "jsonl")
	v.SetDefault("dataset.path", "data/records.jsonl")
	v.SetDefault("dataset.table", "quotes")
	v.SetDefault("sheets.sheet_name", "Sheet1")
	v.SetDefault("sheets.batch_size", 100)
	v.SetDefault("sheets.flush_seconds", 60)
	v.SetDefault("archive.provider", "noop")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// applyTestMode pins the run to a single known-good keyword and community
// so a deployment can be smoke-tested end to end.
func (c *Config) applyTestMode() {
	c.Search.Keywords = []string{"clases de programación para niños"}
	c.Search.Subreddits = []string{"chile"}
	c.Search.MaxPostsPerKeyword = 5
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if len(c.Search.Keywords) == 0 {
		return fmt.Errorf("search.keywords must not be empty")
	}
	if c.Search.MaxPostsPerKeyword <= 0 {
		return fmt.Errorf("search.max_posts_per_keyword must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Worker.MaxAttempts <= 0 {
		return fmt.Errorf("worker.max_attempts must be > 0")
	}
	switch c.Dataset.Provider {
	case "jsonl":
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset.path must be set for the jsonl provider")
		}
	case "postgres":
		if c.Dataset.DSN == "" {
			return fmt.Errorf("dataset.dsn must be set for the postgres provider")
		}
	default:
		return fmt.Errorf("unknown dataset.provider %q", c.Dataset.Provider)
	}
	switch c.Archive.Provider {
	case "noop":
	case "local":
		if c.Archive.Dir == "" {
			return fmt.Errorf("archive.dir must be set for the local provider")
		}
	case "gcs":
		if c.Archive.Bucket == "" {
			return fmt.Errorf("archive.bucket must be set for the gcs provider")
		}
	default:
		return fmt.Errorf("unknown archive.provider %q", c.Archive.Provider)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// FetchTimeout is the direct HTTP budget as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// NavTimeout is the rendered navigation budget as a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Render.NavTimeoutSeconds) * time.Second
}

// ItemTimeout is the per-post acquisition budget as a duration.
func (c Config) ItemTimeout() time.Duration {
	return time.Duration(c.Worker.ItemTimeoutSeconds) * time.Second
}

// Pace is the minimum spacing between upstream requests.
func (c Config) Pace() time.Duration {
	return time.Duration(c.Fetch.PaceMs) * time.Millisecond
}

// FlushInterval is the periodic checkpoint cadence for buffered sinks.
func (c Config) FlushInterval() time.Duration {
	return time.Duration(c.Sheets.FlushSeconds) * time.Second
}
