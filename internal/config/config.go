package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultGeometryURL is the ONS Local Authority Districts (May 2024) BSC
// boundary layer as GeoJSON.
const DefaultGeometryURL = "https://services1.arcgis.com/ESMARspQHYMw9BZ9/arcgis/rest/services/" +
	"Local_Authority_Districts_May_2024_Boundaries__UK_BSC/FeatureServer/0/query?outFields=*&where=1%3D1&f=geojson"

// ErrLLMNotConfigured is returned when a command needs the language model
// and its provider, key or model is missing.
var ErrLLMNotConfigured = eris.New("config: llm not configured")

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Geometry GeometryConfig `yaml:"geometry" mapstructure:"geometry"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the water and energy forecast tables.
type DataConfig struct {
	WaterPath     string `yaml:"water_path" mapstructure:"water_path"`
	EnergyPath    string `yaml:"energy_path" mapstructure:"energy_path"`
	ClassifyWater bool   `yaml:"classify_water" mapstructure:"classify_water"`
	DefaultYear   int    `yaml:"default_year" mapstructure:"default_year"`
}

// GeometryConfig locates the LAD boundary layer. Path overrides URL.
type GeometryConfig struct {
	URL          string `yaml:"url" mapstructure:"url"`
	Path         string `yaml:"path" mapstructure:"path"`
	CodeProperty string `yaml:"code_property" mapstructure:"code_property"`
	NameProperty string `yaml:"name_property" mapstructure:"name_property"`
	TempDir      string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// FetchConfig configures the boundary downloader.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// LLMConfig holds language model settings.
type LLMConfig struct {
	Provider     string  `yaml:"provider" mapstructure:"provider"`
	Key          string  `yaml:"key" mapstructure:"key"`
	Model        string  `yaml:"model" mapstructure:"model"`
	MaxTokens    int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature  float64 `yaml:"temperature" mapstructure:"temperature"`
	CacheContext bool    `yaml:"cache_context" mapstructure:"cache_context"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	// The breaker opens after BreakerFailures consecutive failed calls and
	// stays open for BreakerResetSecs.
	BreakerFailures  int `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerResetSecs int `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
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

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HOMECAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data.water_path", "data/LA_water_output.csv")
	v.SetDefault("data.energy_path", "data/LA_energy_output.csv")
	v.SetDefault("data.classify_water", true)
	v.SetDefault("data.default_year", 2025)
	v.SetDefault("geometry.url", DefaultGeometryURL)
	v.SetDefault("geometry.path", "")
	v.SetDefault("geometry.code_property", "LAD24CD")
	v.SetDefault("geometry.name_property", "LAD24NM")
	v.SetDefault("geometry.temp_dir", "")
	v.SetDefault("fetch.user_agent", "home-capacity-viewer/1.0")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.key", "")
	v.SetDefault("llm.model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm.max_tokens", 500)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.cache_context", true)
	v.SetDefault("llm.timeout_secs", 60)
	v.SetDefault("llm.breaker_failures", 5)
	v.SetDefault("llm.breaker_reset_secs", 30)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "home_capacity.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("server.port", 8050)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the settings a command needs. Every problem is reported
// at once.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
		}
		errs = append(errs, c.dataErrors()...)
		errs = append(errs, c.geometryErrors()...)
	case "ask", "process", "export", "years":
		errs = append(errs, c.dataErrors()...)
	case "load":
		errs = append(errs, c.dataErrors()...)
		errs = append(errs, c.storeErrors()...)
	case "schemas":
		errs = append(errs, c.storeErrors()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) dataErrors() []string {
	var errs []string
	if c.Data.WaterPath == "" {
		errs = append(errs, "data.water_path is required")
	}
	if c.Data.EnergyPath == "" {
		errs = append(errs, "data.energy_path is required")
	}
	return errs
}

func (c *Config) geometryErrors() []string {
	var errs []string
	if c.Geometry.URL == "" && c.Geometry.Path == "" {
		errs = append(errs, "geometry.url or geometry.path is required")
	}
	if c.Geometry.CodeProperty == "" {
		errs = append(errs, "geometry.code_property is required")
	}
	return errs
}

func (c *Config) storeErrors() []string {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

// ValidateLLM checks the language model settings. Commands that answer
// questions refuse to start when it fails.
func (c *Config) ValidateLLM() error {
	var missing []string
	if c.LLM.Provider != "anthropic" {
		return eris.Wrapf(ErrLLMNotConfigured, "invalid provider %q, must be anthropic", c.LLM.Provider)
	}
	if c.LLM.Key == "" {
		missing = append(missing, "llm.key")
	}
	if c.LLM.Model == "" {
		missing = append(missing, "llm.model")
	}
	if len(missing) > 0 {
		return eris.Wrapf(ErrLLMNotConfigured, "%s required", strings.Join(missing, ", "))
	}
	if c.LLM.MaxTokens <= 0 {
		return eris.Wrapf(ErrLLMNotConfigured, "llm.max_tokens must be > 0, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		return eris.Wrapf(ErrLLMNotConfigured, "llm.temperature must be between 0 and 1, got %g", c.LLM.Temperature)
	}
	return nil
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
