package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTitle        = "Stock Dashboard"
	DefaultDirectoryURL = "http://kind.krx.co.kr/corpgeneral/corpList.do?method=download&searchType=13"
)

// Supported price data sources.
const (
	SourceNaver = "naver"
	SourceYahoo = "yahoo"
	SourceREST  = "rest"
	SourceMock  = "mock"
)

// Config holds all application configuration.
type Config struct {
	Title string `yaml:"title"`
	HTTP  struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Directory struct {
		URL      string         `yaml:"url"`
		Encoding string         `yaml:"encoding"`
		// TTL of the listing snapshot. Unset means 24h; 0 keeps it until
		// the scheduled refresh.
		TTL      *time.Duration `yaml:"ttl"`
	} `yaml:"directory"`
	DataSource struct {
		Name    string `yaml:"name"`
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Schedule struct {
		DirectoryRefreshCron string `yaml:"directory_refresh_cron"`
	} `yaml:"schedule"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("MY_NAME"); v != "" {
		cfg.Title = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("DIRECTORY_URL"); v != "" {
		cfg.Directory.URL = v
	}
	if v := os.Getenv("DIRECTORY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse DIRECTORY_TTL: %w", err)
		}
		cfg.Directory.TTL = &d
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.DataSource.Name = v
	}
	if v := os.Getenv("REST_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("REST_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_DIRECTORY_REFRESH"); v != "" {
		cfg.Schedule.DirectoryRefreshCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8501"
	}
	if cfg.Directory.URL == "" {
		cfg.Directory.URL = DefaultDirectoryURL
	}
	if cfg.Directory.Encoding == "" {
		cfg.Directory.Encoding = "euc-kr"
	}
	if cfg.Directory.TTL == nil {
		ttl := 24 * time.Hour
		cfg.Directory.TTL = &ttl
	}
	if cfg.DataSource.Name == "" {
		cfg.DataSource.Name = SourceNaver
	}
	cfg.DataSource.Name = strings.ToLower(cfg.DataSource.Name)
	if cfg.Schedule.DirectoryRefreshCron == "" {
		cfg.Schedule.DirectoryRefreshCron = "0 0 7 * * 1-5"
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 10 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Name {
	case SourceNaver, SourceYahoo, SourceMock:
	case SourceREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest source")
		}
	default:
		return fmt.Errorf("data_source.name %q is not supported", c.DataSource.Name)
	}
	if c.Directory.TTL != nil && *c.Directory.TTL < 0 {
		return fmt.Errorf("directory.ttl must not be negative")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	return nil
}
