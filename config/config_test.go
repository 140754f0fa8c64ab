package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "{}\n"))
	gt.NoError(t, err)

	gt.Equal(t, cfg.Server.Address, ":3001")
	gt.Equal(t, cfg.Search.Provider, "tavily")
	gt.Equal(t, cfg.Search.MaxResults, 5)
	gt.Equal(t, cfg.Quote.BaseURL, "https://query1.finance.yahoo.com")
	gt.Equal(t, cfg.Cache.Type, "memory")
	gt.Equal(t, cfg.Cache.TTL, 5*time.Minute)
	gt.Equal(t, cfg.Pipeline.Mode, "graph")
	gt.Equal(t, cfg.Pipeline.MaxRetries, 1)
	gt.Equal(t, cfg.Pipeline.RunTimeout, 15*time.Minute)
	gt.True(t, cfg.Export.PDFEnabled)
	gt.Equal(t, cfg.News.MaxExcerpts, 2)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeFile(t, `
search:
  provider: Brave
  brave:
    api_key: from-file
pipeline:
  mode: quick
  max_retries: 7
`)
	t.Setenv("TAVILY_API_KEY", "tvly-alias")
	t.Setenv("DEEPRESEARCH_SEARCH_BRAVE_API_KEY", "from-env")
	t.Setenv("PORT", "8080")

	cfg, err := LoadConfig(path)
	gt.NoError(t, err)
	gt.Equal(t, cfg.Search.Provider, "brave")
	gt.Equal(t, cfg.Search.Tavily.APIKey, "tvly-alias")
	gt.Equal(t, cfg.Search.Brave.APIKey, "from-env")
	gt.Equal(t, cfg.Server.Address, ":8080")
	gt.Equal(t, cfg.Pipeline.Mode, "quick")
	gt.Equal(t, cfg.Pipeline.MaxRetries, 1)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "pipeline:\n  mode: turbo\n"))
	gt.Error(t, err)

	_, err = LoadConfig(writeFile(t, "cache:\n  type: redis\n  redis:\n    host: \"\"\n"))
	gt.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	gt.Error(t, err)
}

func TestNormalizeAddr(t *testing.T) {
	gt.Equal(t, normalizeAddr(""), ":3001")
	gt.Equal(t, normalizeAddr("9000"), ":9000")
	gt.Equal(t, normalizeAddr("127.0.0.1:9000"), "127.0.0.1:9000")
}

func TestPipelineNormalize(t *testing.T) {
	p := PipelineConfig{MaxRetries: -3}.Normalize()
	gt.Equal(t, p.MaxRetries, 0)
	gt.Equal(t, p.Mode, "graph")
	gt.Equal(t, p.RunTimeout, 15*time.Minute)
}
