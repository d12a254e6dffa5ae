package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds the trendoscope configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Cache     CacheConfig     `yaml:"cache"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	News      NewsConfig      `yaml:"news"`
	Logging   LoggingConfig   `yaml:"logging"`
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

// StorageConfig holds flat-file storage settings.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider            string       `yaml:"provider"` // openai | local
	Model               string       `yaml:"model"`
	Dimensions          int          `yaml:"dimensions"`
	BaseURL             string       `yaml:"base_url"`
	APIKey              string       `yaml:"api_key"`
	DocumentInstruction string       `yaml:"document_instruction"`
	QueryInstruction    string       `yaml:"query_instruction"`
	TimeoutSec          int          `yaml:"timeout_sec"`
	Budget              BudgetConfig `yaml:"budget"`
}

// LLMConfig holds text generation provider settings.
type LLMConfig struct {
	Provider    string       `yaml:"provider"` // openai | anthropic
	Model       string       `yaml:"model"`
	APIKey      string       `yaml:"api_key"`
	BaseURL     string       `yaml:"base_url"`
	MaxTokens   int          `yaml:"max_tokens"`
	Temperature float32      `yaml:"temperature"`
	TimeoutSec  int          `yaml:"timeout_sec"`
	Budget      BudgetConfig `yaml:"budget"`
}

// CacheConfig holds the optional Valkey connection used for the embedding cache and budget counters.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none | valkey
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// ScraperConfig holds blog scraper settings.
type ScraperConfig struct {
	UserAgent     string   `yaml:"user_agent"`
	RPS           float64  `yaml:"rps"`
	Burst         int      `yaml:"burst"`
	TimeoutSec    int      `yaml:"timeout_sec"`
	MaxPosts      int      `yaml:"max_posts"`
	LinkSelectors []string `yaml:"link_selectors"`
	BodySelectors []string `yaml:"body_selectors"`
}

// NewsSource is a configured RSS/Atom feed.
type NewsSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// NewsConfig holds RSS aggregator and trend refresh settings.
type NewsConfig struct {
	Sources     []NewsSource `yaml:"sources"`
	Limit       int          `yaml:"limit"`
	Concurrency int          `yaml:"concurrency"`
	TimeoutSec  int          `yaml:"timeout_sec"`
	RefreshCron string       `yaml:"refresh_cron"` // empty disables scheduled refresh
	TrendsTopN  int          `yaml:"trends_top_n"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120 // generation and blog ingest are slow
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "local"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 1500
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = 0.8
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 60
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "trendoscope:"
	}

	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = "trendoscope/1.0 (+https://github.com/kailas-cloud/trendoscope)"
	}
	if c.Scraper.RPS <= 0 {
		c.Scraper.RPS = 2
	}
	if c.Scraper.Burst <= 0 {
		c.Scraper.Burst = 1
	}
	if c.Scraper.TimeoutSec <= 0 {
		c.Scraper.TimeoutSec = 15
	}
	if c.Scraper.MaxPosts <= 0 {
		c.Scraper.MaxPosts = 50
	}

	if c.News.Limit <= 0 {
		c.News.Limit = 50
	}
	if c.News.Concurrency <= 0 {
		c.News.Concurrency = 4
	}
	if c.News.TimeoutSec <= 0 {
		c.News.TimeoutSec = 15
	}
	if c.News.TrendsTopN <= 0 {
		c.News.TrendsTopN = 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Embedding.Provider {
	case "local":
	case "openai":
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for provider openai")
		}
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"local\", got %q", c.Embedding.Provider)
	}

	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("llm.provider must be \"openai\" or \"anthropic\", got %q", c.LLM.Provider)
	}

	if err := validateBudget("embedding", c.Embedding.Budget); err != nil {
		return err
	}
	if err := validateBudget("llm", c.LLM.Budget); err != nil {
		return err
	}

	switch c.Cache.Driver {
	case "none":
	case "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver valkey")
		}
	default:
		return fmt.Errorf("cache.driver must be \"none\" or \"valkey\", got %q", c.Cache.Driver)
	}

	for i, src := range c.News.Sources {
		u, err := url.Parse(src.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("news.sources[%d].url must be an http(s) URL, got %q", i, src.URL)
		}
	}
	if c.News.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.News.RefreshCron); err != nil {
			return fmt.Errorf("news.refresh_cron: %w", err)
		}
	}
	return nil
}

func validateBudget(section string, b BudgetConfig) error {
	switch b.Action {
	case "", "warn", "reject":
		return nil
	default:
		return fmt.Errorf("%s.budget.action must be \"warn\" or \"reject\", got %q", section, b.Action)
	}
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
