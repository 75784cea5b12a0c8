package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Scrape  ScrapeConfig  `yaml:"scrape"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"SERVER_HOST"`
	Port            int           `yaml:"port" envconfig:"SERVER_PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	// RequestTimeout bounds a whole request through the router; keep
	// it at or below WriteTimeout or slow downloads get cut off by
	// the server instead of the middleware.
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"SERVER_REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SERVER_SHUTDOWN_TIMEOUT"`
}

// EngineConfig holds extraction engine (yt-dlp) configuration.
type EngineConfig struct {
	BinaryPath     string        `yaml:"binary_path" envconfig:"ENGINE_BINARY_PATH"`
	SocketTimeout  time.Duration `yaml:"socket_timeout" envconfig:"ENGINE_SOCKET_TIMEOUT"`
	Retries        int           `yaml:"retries" envconfig:"ENGINE_RETRIES"`
	ExtractTimeout time.Duration `yaml:"extract_timeout" envconfig:"ENGINE_EXTRACT_TIMEOUT"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout" envconfig:"ENGINE_FETCH_TIMEOUT"`
	UserAgent      string        `yaml:"user_agent" envconfig:"ENGINE_USER_AGENT"`
	Referer        string        `yaml:"referer" envconfig:"ENGINE_REFERER"`
	// PlayerClients hints the engine to try mobile-app API access before
	// web scraping on platforms with aggressive bot detection.
	PlayerClients string `yaml:"player_clients" envconfig:"ENGINE_PLAYER_CLIENTS"`
}

// ScrapeConfig holds the HTML scraping fallback configuration.
type ScrapeConfig struct {
	Timeout   time.Duration `yaml:"timeout" envconfig:"SCRAPE_TIMEOUT"`
	UserAgent string        `yaml:"user_agent" envconfig:"SCRAPE_USER_AGENT"`
}

// StorageConfig holds temporary workspace configuration.
type StorageConfig struct {
	// TempRoot is where per-request download workspaces are created.
	// Nothing in it survives the request that created it.
	TempRoot string `yaml:"temp_root" envconfig:"STORAGE_TEMP_ROOT"`
}

// CacheConfig holds the optional Redis metadata cache configuration.
// An empty Addr disables caching entirely.
type CacheConfig struct {
	Addr     string        `yaml:"addr" envconfig:"CACHE_ADDR"`
	Password string        `yaml:"password" envconfig:"CACHE_PASSWORD"`
	DB       int           `yaml:"db" envconfig:"CACHE_DB"`
	TTL      time.Duration `yaml:"ttl" envconfig:"CACHE_TTL"`
}

// Address returns the listen address in host:port form.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    15 * time.Minute,
			RequestTimeout:  15 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
		},
		Engine: EngineConfig{
			BinaryPath:     "yt-dlp",
			SocketTimeout:  30 * time.Second,
			Retries:        3,
			ExtractTimeout: 2 * time.Minute,
			FetchTimeout:   10 * time.Minute,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Referer:        "https://www.google.com/",
			PlayerClients:  "android,web",
		},
		Scrape: ScrapeConfig{
			Timeout:   30 * time.Second,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		},
		Storage: StorageConfig{
			TempRoot: "/tmp/mediagrab",
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
	}
}

// Load reads configuration with precedence: built-in defaults, then the
// YAML file, then environment variables.
func Load(configPath string) (*Config, error) {
	cfg := defaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Environment variables override file values
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server request timeout must be positive: %v", c.Server.RequestTimeout)
	}
	if c.Engine.BinaryPath == "" {
		return fmt.Errorf("engine binary path is required")
	}
	if c.Engine.Retries < 0 {
		return fmt.Errorf("engine retries must be non-negative: %d", c.Engine.Retries)
	}
	if c.Storage.TempRoot == "" {
		return fmt.Errorf("storage temp root is required")
	}
	return nil
}
