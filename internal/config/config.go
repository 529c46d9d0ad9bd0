package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       App       `mapstructure:"app"`
	AI        AI        `mapstructure:"ai"`
	Database  Database  `mapstructure:"database"`
	Server    Server    `mapstructure:"server"`
	Prefetch  Prefetch  `mapstructure:"prefetch"`
	Farm      Farm      `mapstructure:"farm"`
	Calendar  Calendar  `mapstructure:"calendar"`
	Analytics Analytics `mapstructure:"analytics"`
	Logging   Logging   `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	Timezone string `mapstructure:"timezone"`
}

// AI holds model provider configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey        string  `mapstructure:"api_key"`
	Model         string  `mapstructure:"model"`
	ChatModel     string  `mapstructure:"chat_model"`
	Timeout       string  `mapstructure:"timeout"`
	MaxTokens     int32   `mapstructure:"max_tokens"`
	ChatMaxTokens int32   `mapstructure:"chat_max_tokens"`
	Temperature   float32 `mapstructure:"temperature"`
	SearchEnabled bool    `mapstructure:"search_enabled"`
}

// Database holds persistence configuration
type Database struct {
	Driver           string `mapstructure:"driver"`
	ConnectionString string `mapstructure:"connection_string"`
	SQLitePath       string `mapstructure:"sqlite_path"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string     `mapstructure:"host"`
	Port            int        `mapstructure:"port"`
	ReadTimeout     string     `mapstructure:"read_timeout"`
	WriteTimeout    string     `mapstructure:"write_timeout"`
	ShutdownTimeout string     `mapstructure:"shutdown_timeout"`
	AdminAPIKey     string     `mapstructure:"admin_api_key"`
	CORS            CORSConfig `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Prefetch holds configuration for source pre-fetching
type Prefetch struct {
	Mode            string      `mapstructure:"mode"`
	ReaderBaseURL   string      `mapstructure:"reader_base_url"`
	APIKey          string      `mapstructure:"api_key"`
	Timeout         string      `mapstructure:"timeout"`
	MaxContentChars int         `mapstructure:"max_content_chars"`
	UserAgent       string      `mapstructure:"user_agent"`
	Cache           CacheConfig `mapstructure:"cache"`
	// Extra sources fetched in full mode after the built-in catalog
	Extra []SourceConfig `mapstructure:"extra"`
}

// SourceConfig describes a user-defined pre-fetch source
type SourceConfig struct {
	Key  string `mapstructure:"key"`
	URL  string `mapstructure:"url"`
	Kind string `mapstructure:"kind"` // reader, direct or feed
}

// CacheConfig holds the optional Redis cache for fetched sources
type CacheConfig struct {
	RedisURL string `mapstructure:"redis_url"`
	TTL      string `mapstructure:"ttl"`
}

// Farm holds farm economics defaults
type Farm struct {
	DefaultLogisticsCost float64 `mapstructure:"default_logistics_cost"`
	DefaultTaxRate       float64 `mapstructure:"default_tax_rate"`
}

// Calendar lists known event dates (YYYY-MM-DD) that sharpen the daily
// search hints. Empty lists leave every event flag false.
type Calendar struct {
	PolicyDecisionDates   []string `mapstructure:"policy_decision_dates"`
	InflationReleaseDates []string `mapstructure:"inflation_release_dates"`
	ClubMatchDates        []string `mapstructure:"club_match_dates"`
	NationalTeamDates     []string `mapstructure:"national_team_dates"`
}

// Analytics holds product analytics configuration
type Analytics struct {
	PostHog PostHogConfig `mapstructure:"posthog"`
}

// PostHogConfig holds PostHog configuration
type PostHogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Host    string `mapstructure:"host"`
}

// Logging holds logging configuration
type Logging struct {
	Level string `mapstructure:"level"`
}

// Global configuration instance
var globalConfig *Config

// Load initializes and loads the configuration from various sources
// Priority: CLI flags > Environment variables > Config file > Defaults
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".morningbrief")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration instance
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the loaded configuration. Used by tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.timezone", "America/Sao_Paulo")

	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.chat_model", "gemini-2.0-flash")
	viper.SetDefault("ai.gemini.timeout", "120s")
	viper.SetDefault("ai.gemini.max_tokens", 16384)
	viper.SetDefault("ai.gemini.chat_max_tokens", 1000)
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.gemini.search_enabled", true)

	viper.SetDefault("database.sqlite_path", "~/.morningbrief/morningbrief.db")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "180s")
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("server.cors.enabled", true)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})

	viper.SetDefault("prefetch.mode", "quick")
	viper.SetDefault("prefetch.reader_base_url", "https://r.jina.ai/")
	viper.SetDefault("prefetch.timeout", "15s")
	viper.SetDefault("prefetch.max_content_chars", 2000)
	viper.SetDefault("prefetch.user_agent", "MorningBrief/1.0")
	viper.SetDefault("prefetch.cache.ttl", "6h")

	viper.SetDefault("farm.default_logistics_cost", 80.0)
	viper.SetDefault("farm.default_tax_rate", 0.05)

	viper.SetDefault("analytics.posthog.host", "https://app.posthog.com")

	viper.SetDefault("logging.level", "info")
}

// bindEnvironmentVariables maps well-known environment variable names onto
// configuration keys. The first non-empty name in each list wins.
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_API_KEY",
	})

	bindEnvKeys("database.connection_string", []string{
		"DATABASE_URL",
		"POSTGRES_URL",
	})

	bindEnvKeys("server.admin_api_key", []string{
		"ADMIN_API_KEY",
	})

	bindEnvKeys("server.port", []string{
		"PORT",
	})

	bindEnvKeys("prefetch.api_key", []string{
		"JINA_API_KEY",
	})

	bindEnvKeys("prefetch.cache.redis_url", []string{
		"REDIS_URL",
	})

	bindEnvKeys("analytics.posthog.api_key", []string{
		"POSTHOG_API_KEY",
	})

	bindEnvKeys("logging.level", []string{
		"LOG_LEVEL",
	})
}

func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

func postProcessConfig(config *Config) error {
	if config.Database.SQLitePath != "" {
		config.Database.SQLitePath = expandPath(config.Database.SQLitePath)
	}

	// A connection string implies postgres unless a driver was chosen explicitly.
	if config.Database.Driver == "" {
		config.Database.Driver = "sqlite"
		if config.Database.ConnectionString != "" {
			config.Database.Driver = "postgres"
		}
	}

	if config.Analytics.PostHog.APIKey != "" {
		config.Analytics.PostHog.Enabled = true
	}

	durations := map[string]string{
		"ai.gemini.timeout":       config.AI.Gemini.Timeout,
		"server.read_timeout":     config.Server.ReadTimeout,
		"server.write_timeout":    config.Server.WriteTimeout,
		"server.shutdown_timeout": config.Server.ShutdownTimeout,
		"prefetch.timeout":        config.Prefetch.Timeout,
		"prefetch.cache.ttl":      config.Prefetch.Cache.TTL,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

func validateConfig(config *Config) error {
	var errors []string

	if _, err := time.LoadLocation(config.App.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("Unknown timezone: %s", config.App.Timezone))
	}

	switch config.Database.Driver {
	case "postgres":
		if config.Database.ConnectionString == "" {
			errors = append(errors, "Postgres requires a connection string. Set DATABASE_URL or database.connection_string")
		}
	case "sqlite", "memory":
	default:
		errors = append(errors, fmt.Sprintf("Unknown database driver: %s. Supported: postgres, sqlite, memory", config.Database.Driver))
	}

	switch config.Prefetch.Mode {
	case "quick", "full", "off":
	default:
		errors = append(errors, fmt.Sprintf("Unknown prefetch mode: %s. Supported: quick, full, off", config.Prefetch.Mode))
	}

	if config.Prefetch.MaxContentChars <= 0 {
		errors = append(errors, "prefetch.max_content_chars must be positive")
	}

	for i, src := range config.Prefetch.Extra {
		if src.Key == "" || src.URL == "" {
			errors = append(errors, fmt.Sprintf("prefetch.extra[%d] requires key and url", i))
		}
		switch src.Kind {
		case "", "reader", "direct", "feed":
		default:
			errors = append(errors, fmt.Sprintf("prefetch.extra[%d] has unknown kind %q", i, src.Kind))
		}
	}

	if config.Farm.DefaultLogisticsCost < 0 {
		errors = append(errors, "farm.default_logistics_cost cannot be negative")
	}

	if config.AI.Gemini.Temperature < 0 || config.AI.Gemini.Temperature > 2 {
		errors = append(errors, "ai.gemini.temperature must be between 0 and 2")
	}

	if config.Analytics.PostHog.Enabled && config.Analytics.PostHog.APIKey == "" {
		errors = append(errors, "PostHog analytics requires an API key. Set POSTHOG_API_KEY")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// RequireGemini reports an error when no Gemini API key is configured.
// Only commands that call the model need it.
func (c *Config) RequireGemini() error {
	if c.AI.Gemini.APIKey == "" {
		return fmt.Errorf("Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://aistudio.google.com/app/apikey")
	}
	return nil
}

// Location returns the configured briefing timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Duration parses a duration that was already validated in postProcessConfig,
// returning fallback when the value is empty.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func GetAI() AI               { return Get().AI }
func GetDatabase() Database   { return Get().Database }
func GetServer() Server       { return Get().Server }
func GetPrefetch() Prefetch   { return Get().Prefetch }
func GetFarm() Farm           { return Get().Farm }
func GetCalendar() Calendar   { return Get().Calendar }
func GetAnalytics() Analytics { return Get().Analytics }
func GetLogging() Logging     { return Get().Logging }

func GetGeminiAPIKey() string { return Get().AI.Gemini.APIKey }
func GetGeminiModel() string  { return Get().AI.Gemini.Model }
func IsDebugMode() bool       { return Get().App.Debug }
