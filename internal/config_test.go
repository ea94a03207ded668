package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/sprout/pkg/config"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Gemini.APIKey = "test-key"
	return cfg
}

func TestDefaultConfig_NeedsAPIKey(t *testing.T) {
	cfg := NewDefaultConfig()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("default config without api key should fail")
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}
}

func TestStorageConfig_EmptyDriverDefaultsSQLite(t *testing.T) {
	cfg := StorageConfig{Path: "x.db"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty driver should default: %v", err)
	}
	if cfg.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Driver)
	}
}

func TestStorageConfig_UnknownDriver(t *testing.T) {
	cfg := StorageConfig{Driver: "redis", Path: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown driver should fail validation")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := validConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("port out of range should fail")
	}
	if got := (&HTTPConfig{Port: 9090}).Address(); got != ":9090" {
		t.Errorf("address = %q, want :9090", got)
	}
}

func TestPhotosConfig_NegativeConcurrency(t *testing.T) {
	cfg := validConfig()
	cfg.Photos.Concurrency = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative concurrency should fail")
	}
}

func TestLoad_YAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("SPROUT_TEST_KEY", "from-env")
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	data := `app:
  log_level: debug
  http:
    port: 9000
storage:
  driver: fs
  path: ` + dir + `
gemini:
  api_key: ${SPROUT_TEST_KEY}
photos:
  timeout: 5s
  concurrency: 4
search:
  cache_ttl: 1m
`
	if err := os.WriteFile(file, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(file, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gemini.APIKey != "from-env" {
		t.Errorf("api key = %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("model default lost: %q", cfg.Gemini.Model)
	}
	if cfg.App.HTTP.Port != 9000 || cfg.Storage.Driver != "fs" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Photos.Timeout != 5*time.Second || cfg.Photos.Concurrency != 4 {
		t.Errorf("photos = %+v", cfg.Photos)
	}
	if cfg.Photos.BaseURL != "https://api.inaturalist.org" {
		t.Errorf("photos base url default lost: %q", cfg.Photos.BaseURL)
	}
	if cfg.Search.CacheTTL != time.Minute {
		t.Errorf("search ttl = %v", cfg.Search.CacheTTL)
	}
	if cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
}
