package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = "8080"
	defaultHost           = "0.0.0.0"
	defaultNSEBaseURL     = "https://www.nseindia.com"
	defaultDatabasePath   = "announcements.db"
	defaultScrapeTimeout  = 30 * time.Second
	defaultCacheTTL       = 2 * time.Minute
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Browser concurrency is a fixed part of the service contract: two browser
// processes, each admitting at most four concurrent tabs. These are not
// configurable at runtime.
const (
	BrowserWorkers = 2
	TabsPerWorker  = 4
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string        `yaml:"port"`
	Host                 string        `yaml:"host"`
	NSEBaseURL           string        `yaml:"nse_base_url"`
	ChromePath           string        `yaml:"chrome_path"`
	DatabasePath         string        `yaml:"db_path"`
	ScrapeTimeout        time.Duration `yaml:"scrape_timeout"`
	CacheTTL             time.Duration `yaml:"cache_ttl"`
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    time.Duration `yaml:"read_header_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	IdleTimeout          time.Duration `yaml:"idle_timeout"`
	EnableRequestLogging bool          `yaml:"enable_request_logging"`
	RateLimitRPS         float64       `yaml:"-"`
	RateLimitBurst       int           `yaml:"-"`
}

// BindAddr returns the address the HTTP server listens on, always of the
// form host:port.
func (c Config) BindAddr() string {
	return c.Host + ":" + c.Port
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	Host                 string        `yaml:"host"`
	NSEBaseURL           string        `yaml:"nse_base_url"`
	ChromePath           string        `yaml:"chrome_path"`
	DatabasePath         string        `yaml:"db_path"`
	ScrapeTimeout        string        `yaml:"scrape_timeout"`
	CacheTTL             *string       `yaml:"cache_ttl"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging bool          `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	ChromePath     *string
	DatabasePath   *string
	CacheTTL       *time.Duration
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	// Apply environment variables (override YAML)
	applyEnvConfig(&cfg)

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		Host:                 defaultHost,
		NSEBaseURL:           defaultNSEBaseURL,
		DatabasePath:         defaultDatabasePath,
		ScrapeTimeout:        defaultScrapeTimeout,
		CacheTTL:             defaultCacheTTL,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         90 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.Host != "" {
		cfg.Host = yamlCfg.Host
	}

	if yamlCfg.NSEBaseURL != "" {
		cfg.NSEBaseURL = strings.TrimRight(yamlCfg.NSEBaseURL, "/")
	}

	if yamlCfg.ChromePath != "" {
		cfg.ChromePath = yamlCfg.ChromePath
	}

	if yamlCfg.DatabasePath != "" {
		cfg.DatabasePath = yamlCfg.DatabasePath
	}

	if yamlCfg.ScrapeTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.ScrapeTimeout); err == nil && d > 0 {
			cfg.ScrapeTimeout = d
		}
	}

	// cache_ttl: 0 is meaningful (disables the cache), so "absent" and
	// "zero" are distinguished with a pointer.
	if yamlCfg.CacheTTL != nil {
		if d, err := time.ParseDuration(*yamlCfg.CacheTTL); err == nil && d >= 0 {
			cfg.CacheTTL = d
		}
	}

	if yamlCfg.ShutdownGracePeriod != "" {
		if d, err := time.ParseDuration(yamlCfg.ShutdownGracePeriod); err == nil {
			cfg.ShutdownGracePeriod = d
		}
	}

	if yamlCfg.ReadHeaderTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.ReadHeaderTimeout); err == nil {
			cfg.ReadHeaderTimeout = d
		}
	}

	if yamlCfg.WriteTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.WriteTimeout); err == nil {
			cfg.WriteTimeout = d
		}
	}

	if yamlCfg.IdleTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.IdleTimeout); err == nil {
			cfg.IdleTimeout = d
		}
	}

	cfg.EnableRequestLogging = yamlCfg.EnableRequestLogging

	if yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = yamlCfg.RateLimit.Burst
	}
}

// applyEnvConfig applies environment variable configuration. An unset or
// empty PORT falls back to the default and is never an error.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if base := strings.TrimSpace(os.Getenv("NSE_BASE_URL")); base != "" {
		cfg.NSEBaseURL = strings.TrimRight(base, "/")
	}

	if chrome := strings.TrimSpace(os.Getenv("CHROME_PATH")); chrome != "" {
		cfg.ChromePath = chrome
	}

	if dbPath := strings.TrimSpace(os.Getenv("DB_PATH")); dbPath != "" {
		cfg.DatabasePath = dbPath
	}

	if timeout := strings.TrimSpace(os.Getenv("SCRAPE_TIMEOUT")); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.ScrapeTimeout = d
		}
	}

	if ttl := strings.TrimSpace(os.Getenv("CACHE_TTL")); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d >= 0 {
			cfg.CacheTTL = d
		}
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.ChromePath != nil && *overrides.ChromePath != "" {
		cfg.ChromePath = *overrides.ChromePath
	}

	if overrides.DatabasePath != nil && *overrides.DatabasePath != "" {
		cfg.DatabasePath = *overrides.DatabasePath
	}

	if overrides.CacheTTL != nil && *overrides.CacheTTL >= 0 {
		cfg.CacheTTL = *overrides.CacheTTL
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.NSEBaseURL == "" {
		return fmt.Errorf("nse_base_url cannot be empty")
	}
	if cfg.DatabasePath == "" {
		return fmt.Errorf("db_path cannot be empty")
	}
	if cfg.ScrapeTimeout <= 0 {
		return fmt.Errorf("scrape_timeout must be positive")
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	return nil
}
