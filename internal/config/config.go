package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the prodex API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Catalog CatalogConfig `yaml:"catalog"`
	LLM     LLMConfig     `yaml:"llm"`
	Search  SearchConfig  `yaml:"search"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig holds product catalog store settings.
type CatalogConfig struct {
	Driver           string   `yaml:"driver"` // postgres, redis (default: postgres)
	URL              string   `yaml:"url"`    // postgres connection string
	Addrs            []string `yaml:"addrs"`  // redis addresses
	Password         string   `yaml:"password"`
	Table            string   `yaml:"table"`      // postgres table name
	KeyPrefix        string   `yaml:"key_prefix"` // redis key prefix
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// LLMConfig holds completion provider settings.
type LLMConfig struct {
	Provider             string  `yaml:"provider"` // openai, anthropic (default: openai)
	APIKey               string  `yaml:"api_key"`
	BaseURL              string  `yaml:"base_url"`
	InterpretModel       string  `yaml:"interpret_model"`
	SynthesizeModel      string  `yaml:"synthesize_model"`
	InterpretTemperature float64 `yaml:"interpret_temperature"`
	SynthesizeMaxTokens  int     `yaml:"synthesize_max_tokens"`
}

// SearchConfig holds result-count caps for the search pipeline.
type SearchConfig struct {
	AnalyticalLimit int `yaml:"analytical_limit"` // cap for analytical queries
	FallbackLimit   int `yaml:"fallback_limit"`   // cap for the broad fallback search
	FacetScanLimit  int `yaml:"facet_scan_limit"` // rows scanned for filter options
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// LLM completions are slow; the write timeout bounds the whole response.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Catalog.Driver == "" {
		c.Catalog.Driver = "postgres"
	}
	if c.Catalog.Table == "" {
		c.Catalog.Table = "products"
	}
	if c.Catalog.KeyPrefix == "" {
		c.Catalog.KeyPrefix = "prodex:product:"
	}
	if c.Catalog.ReadinessTimeout <= 0 {
		c.Catalog.ReadinessTimeout = 10
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.InterpretModel == "" {
		c.LLM.InterpretModel = "gpt-4o-mini"
	}
	if c.LLM.SynthesizeModel == "" {
		c.LLM.SynthesizeModel = c.LLM.InterpretModel
	}
	if c.LLM.InterpretTemperature <= 0 {
		c.LLM.InterpretTemperature = 0.1
	}
	if c.LLM.SynthesizeMaxTokens <= 0 {
		c.LLM.SynthesizeMaxTokens = 1500
	}
	if c.Search.AnalyticalLimit <= 0 {
		c.Search.AnalyticalLimit = 100
	}
	if c.Search.FallbackLimit <= 0 {
		c.Search.FallbackLimit = 100
	}
	if c.Search.FacetScanLimit <= 0 {
		c.Search.FacetScanLimit = 10000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Catalog.Driver {
	case "postgres":
		if c.Catalog.URL == "" {
			return fmt.Errorf("catalog.url is required for the postgres driver")
		}
	case "redis":
		if len(c.Catalog.Addrs) == 0 {
			return fmt.Errorf("catalog.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("catalog.driver must be \"postgres\" or \"redis\", got %q", c.Catalog.Driver)
	}
	switch c.LLM.Provider {
	case "openai", "anthropic":
		// ok
	default:
		return fmt.Errorf("llm.provider must be \"openai\" or \"anthropic\", got %q", c.LLM.Provider)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
