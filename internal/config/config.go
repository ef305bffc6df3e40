package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/locality-lens/internal/store"
	"github.com/sells-group/locality-lens/internal/workflow"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	Overpass  OverpassConfig  `yaml:"overpass" mapstructure:"overpass"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Roads     RoadsConfig     `yaml:"roads" mapstructure:"roads"`
	Workflow  WorkflowConfig  `yaml:"workflow" mapstructure:"workflow"`
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
	CacheTTL    time.Duration     `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// NominatimConfig configures the geocoding client.
type NominatimConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// OverpassConfig configures the POI fetch client.
type OverpassConfig struct {
	Endpoints       []string `yaml:"endpoints" mapstructure:"endpoints"`
	QueryTimeoutSec int      `yaml:"query_timeout_secs" mapstructure:"query_timeout_secs"`
}

// AnthropicConfig holds Anthropic API settings. Intent extraction uses the
// fast model; summary generation uses the stronger one.
type AnthropicConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	IntentModel  string `yaml:"intent_model" mapstructure:"intent_model"`
	SummaryModel string `yaml:"summary_model" mapstructure:"summary_model"`
}

// RoadsConfig configures the optional road network source.
type RoadsConfig struct {
	ShapefilePath string `yaml:"shapefile_path" mapstructure:"shapefile_path"`
}

// WorkflowConfig configures run orchestration.
type WorkflowConfig struct {
	Timeouts    workflow.Timeouts `yaml:"timeouts" mapstructure:"timeouts"`
	MaxAttempts int               `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// CatalogConfig points at an optional metric override file.
type CatalogConfig struct {
	OverridesPath string `yaml:"overrides_path" mapstructure:"overrides_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields required for the given mode ("analyze" or
// "serve") and reports every problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}
	if c.Workflow.MaxAttempts < 1 || c.Workflow.MaxAttempts > 10 {
		problems = append(problems, "workflow.max_attempts must be between 1 and 10")
	}
	if c.Nominatim.RequestsPerSec <= 0 {
		problems = append(problems, "nominatim.requests_per_sec must be > 0")
	}
	if len(c.Overpass.Endpoints) == 0 {
		problems = append(problems, "overpass.endpoints must not be empty")
	}

	switch mode {
	case "analyze":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "locality-lens.db")
	v.SetDefault("store.cache_ttl", "24h")
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.requests_per_sec", 1.0)
	v.SetDefault("overpass.endpoints", []string{
		"https://overpass-api.de/api/interpreter",
		"https://overpass.kumi.systems/api/interpreter",
	})
	v.SetDefault("overpass.query_timeout_secs", 25)
	v.SetDefault("anthropic.intent_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.summary_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("workflow.max_attempts", 3)
	v.SetDefault("workflow.timeouts.intent", "30s")
	v.SetDefault("workflow.timeouts.geocode", "30s")
	v.SetDefault("workflow.timeouts.fetch", "90s")
	v.SetDefault("workflow.timeouts.summary", "60s")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
