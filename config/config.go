package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the research service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Search    SearchConfig    `mapstructure:"search"`
	Quote     QuoteConfig     `mapstructure:"quote"`
	Cache     CacheConfig     `mapstructure:"cache"`
	News      NewsConfig      `mapstructure:"news"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Export    ExportConfig    `mapstructure:"export"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"` // optional JSON log sink
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	Dashboard   bool     `mapstructure:"dashboard"`
}

// SearchConfig selects and configures the web search provider
type SearchConfig struct {
	Provider   string        `mapstructure:"provider"` // tavily, brave, serper, duckduckgo, mock
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Tavily     APIKeyConfig  `mapstructure:"tavily"`
	Brave      APIKeyConfig  `mapstructure:"brave"`
	Serper     APIKeyConfig  `mapstructure:"serper"`
}

// APIKeyConfig is the credential block shared by keyed search providers
type APIKeyConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// QuoteConfig configures the finance quote provider
type QuoteConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"` // 0 keeps the http client default
}

// CacheConfig configures the quote cache
type CacheConfig struct {
	Type  string        `mapstructure:"type"` // none, memory, redis
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("cache.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("cache.redis.port required")
	}
	return nil
}

// NewsConfig controls optional article excerpt extraction
type NewsConfig struct {
	FetchExcerpts bool          `mapstructure:"fetch_excerpts"`
	Fetcher       string        `mapstructure:"fetcher"` // http, chromedp
	MaxExcerpts   int           `mapstructure:"max_excerpts"`
	MaxChars      int           `mapstructure:"max_chars"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// PipelineConfig controls the research run
type PipelineConfig struct {
	Mode       string        `mapstructure:"mode"` // graph, quick
	MaxRetries int           `mapstructure:"max_retries"`
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

// Normalize clamps the retry budget to the single critique retry the graph supports.
func (p PipelineConfig) Normalize() PipelineConfig {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.MaxRetries > 1 {
		p.MaxRetries = 1
	}
	if p.RunTimeout <= 0 {
		p.RunTimeout = 15 * time.Minute
	}
	p.Mode = strings.ToLower(strings.TrimSpace(p.Mode))
	if p.Mode == "" {
		p.Mode = "graph"
	}
	return p
}

func (p PipelineConfig) Validate() error {
	switch p.Mode {
	case "graph", "quick":
		return nil
	}
	return fmt.Errorf("pipeline.mode must be graph or quick, got %q", p.Mode)
}

// ExportConfig controls report PDF export
type ExportConfig struct {
	PDFEnabled bool          `mapstructure:"pdf_enabled"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig contains metrics settings
type TelemetryConfig struct {
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.log_file", "")
	v.SetDefault("server.address", ":3001")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.dashboard", true)
	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.timeout", time.Duration(0))
	v.SetDefault("search.tavily.api_key", "")
	v.SetDefault("search.tavily.endpoint", "https://api.tavily.com/search")
	v.SetDefault("search.brave.api_key", "")
	v.SetDefault("search.brave.endpoint", "https://api.search.brave.com/res/v1/web/search")
	v.SetDefault("search.serper.api_key", "")
	v.SetDefault("search.serper.endpoint", "https://google.serper.dev/search")
	v.SetDefault("quote.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("quote.user_agent", "Mozilla/5.0")
	v.SetDefault("quote.timeout", time.Duration(0))
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", "6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.timeout", 5*time.Second)
	v.SetDefault("news.fetch_excerpts", false)
	v.SetDefault("news.fetcher", "http")
	v.SetDefault("news.max_excerpts", 2)
	v.SetDefault("news.max_chars", 600)
	v.SetDefault("news.timeout", 15*time.Second)
	v.SetDefault("pipeline.mode", "graph")
	v.SetDefault("pipeline.max_retries", 1)
	v.SetDefault("pipeline.run_timeout", 15*time.Minute)
	v.SetDefault("export.pdf_enabled", true)
	v.SetDefault("export.timeout", 30*time.Second)
	v.SetDefault("telemetry.metrics_enabled", true)
}

// LoadConfig loads config from file and DEEPRESEARCH_* environment variables.
// A missing config file is not an error when path is empty.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		v.AddConfigPath(exeDir)
		v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("DEEPRESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// provider-native variable names used by the original deployment
	_ = v.BindEnv("search.tavily.api_key", "DEEPRESEARCH_SEARCH_TAVILY_API_KEY", "TAVILY_API_KEY")
	_ = v.BindEnv("search.brave.api_key", "DEEPRESEARCH_SEARCH_BRAVE_API_KEY", "BRAVE_API_KEY")
	_ = v.BindEnv("search.serper.api_key", "DEEPRESEARCH_SEARCH_SERPER_API_KEY", "SERPER_API_KEY")
	_ = v.BindEnv("server.address", "DEEPRESEARCH_SERVER_ADDRESS", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Server.Address = normalizeAddr(cfg.Server.Address)
	cfg.Pipeline = cfg.Pipeline.Normalize()
	cfg.Search.Provider = strings.ToLower(strings.TrimSpace(cfg.Search.Provider))
	cfg.Cache.Type = strings.ToLower(strings.TrimSpace(cfg.Cache.Type))

	if err := cfg.Pipeline.Validate(); err != nil {
		return nil, err
	}
	if cfg.Cache.Type == "redis" {
		if err := cfg.Cache.Redis.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// normalizeAddr accepts a bare port (as PORT is usually set) and turns it into a listen address.
func normalizeAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ":3001"
	}
	if !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}
