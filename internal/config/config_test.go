package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Budget = BudgetConfig{DailyTokenLimit: 1000000, Action: "invalid_action"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `llm.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	for _, action := range []string{"", "warn", "reject"} {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Embedding.Budget.Action = action
			cfg.LLM.Budget.Action = action
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.HTTP.Port = 70000 }},
		{"embedding provider", func(c *Config) { c.Embedding.Provider = "cohere" }},
		{"openai embedding without model", func(c *Config) { c.Embedding.Provider = "openai" }},
		{"llm provider", func(c *Config) { c.LLM.Provider = "llama" }},
		{"cache driver", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"valkey without addrs", func(c *Config) { c.Cache.Driver = "valkey" }},
		{"news source url", func(c *Config) { c.News.Sources = []NewsSource{{Name: "x", URL: "ftp://x"}} }},
		{"cron", func(c *Config) { c.News.RefreshCron = "every day" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidate_CronAccepted(t *testing.T) {
	cfg := validConfig()
	cfg.News.RefreshCron = "*/30 * * * *"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Storage.DataDir != "data" {
		t.Errorf("expected DataDir=data, got %q", cfg.Storage.DataDir)
	}
	if cfg.Embedding.Provider != "local" || cfg.Embedding.Dimensions != 384 || cfg.Embedding.TimeoutSec != 30 {
		t.Errorf("unexpected embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.MaxTokens != 1500 || cfg.LLM.TimeoutSec != 60 {
		t.Errorf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.Cache.Driver != "none" || cfg.Cache.KeyPrefix != "trendoscope:" {
		t.Errorf("unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.Scraper.RPS != 2 || cfg.Scraper.MaxPosts != 50 {
		t.Errorf("unexpected scraper defaults: %+v", cfg.Scraper)
	}
	if cfg.News.Limit != 50 || cfg.News.Concurrency != 4 {
		t.Errorf("unexpected news defaults: %+v", cfg.News)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 9000, ReadTimeoutSec: 30},
		Storage:   StorageConfig{DataDir: "/var/lib/trendoscope"},
		Embedding: EmbeddingConfig{Provider: "openai", Dimensions: 1024},
		News:      NewsConfig{Limit: 10},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 || cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("http overridden: %+v", cfg.HTTP)
	}
	if cfg.Storage.DataDir != "/var/lib/trendoscope" {
		t.Errorf("data dir overridden: %q", cfg.Storage.DataDir)
	}
	if cfg.Embedding.Dimensions != 1024 {
		t.Errorf("dimensions overridden: %d", cfg.Embedding.Dimensions)
	}
	if cfg.News.Limit != 10 {
		t.Errorf("news limit overridden: %d", cfg.News.Limit)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TRENDOSCOPE_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("a: ${TRENDOSCOPE_TEST_KEY}\nb: ${TRENDOSCOPE_UNSET_VAR:-fallback}\nc: ${TRENDOSCOPE_UNSET_VAR}")))
	want := "a: secret\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars = %q, want %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("TRENDOSCOPE_TEST_LLM_KEY", "sk-test")
	path := filepath.Join(t.TempDir(), "test.yaml")
	body := `
http:
  port: 9090
llm:
  provider: anthropic
  model: claude-test
  api_key: ${TRENDOSCOPE_TEST_LLM_KEY}
news:
  sources:
    - name: lenta
      url: https://lenta.ru/rss
  refresh_cron: "0 * * * *"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.LLM.Provider != "anthropic" || cfg.LLM.APIKey != "sk-test" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.News.Sources) != 1 || cfg.News.Sources[0].Name != "lenta" {
		t.Errorf("unexpected sources: %+v", cfg.News.Sources)
	}
	if cfg.Embedding.Provider != "local" {
		t.Errorf("defaults not applied: %+v", cfg.Embedding)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_RepositoryConfigs(t *testing.T) {
	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "test")
			t.Setenv("VALKEY_ADDR", "localhost:6379")
			if _, err := Load(env); err != nil {
				t.Fatalf("Load(%q): %v", env, err)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv = %q, want prod", got)
	}
}
