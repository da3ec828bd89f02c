package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr         string        `yaml:"addr" validate:"required"`
		ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gt=0"`
		WriteTimeout time.Duration `yaml:"write_timeout" validate:"gt=0"`
	} `yaml:"server"`
	Dashboard struct {
		Title         string `yaml:"title" validate:"required"`
		DefaultTicker string `yaml:"default_ticker" validate:"required"`
		DefaultStart  string `yaml:"default_start" validate:"required,datetime=2006-01-02"`
	} `yaml:"dashboard"`
	DataSource struct {
		Provider string        `yaml:"provider" validate:"oneof=yahoo polygon rest csv mock"`
		BaseURL  string        `yaml:"base_url" validate:"omitempty,url"`
		APIKey   string        `yaml:"api_key"`
		CSVDir   string        `yaml:"csv_dir"`
		Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	} `yaml:"data_source"`
	Database struct {
		SQLitePath    string `yaml:"sqlite_path"`
		RetentionDays *int   `yaml:"retention_days" validate:"omitempty,gte=0"`
		RetentionCron string `yaml:"retention_cron"`
	} `yaml:"database"`
	Logging struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" validate:"oneof=console json"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A .env file in the working directory is loaded
// first; a missing .env or config file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Server.Addr, "DASHBOARD_ADDR")
	setFromEnv(&c.DataSource.Provider, "DATA_SOURCE")
	setFromEnv(&c.DataSource.BaseURL, "DATA_SOURCE_URL")
	setFromEnv(&c.DataSource.APIKey, "DATA_SOURCE_API_KEY")
	setFromEnv(&c.DataSource.CSVDir, "CSV_DIR")
	setFromEnv(&c.Database.SQLitePath, "SQLITE_PATH")
	setFromEnv(&c.Logging.Level, "LOG_LEVEL")
	setFromEnv(&c.Logging.Format, "LOG_FORMAT")
	setFromEnv(&c.Proxy, "HTTPS_PROXY")

	// The vendor-specific key only fills a blank generic key.
	if c.DataSource.APIKey == "" && strings.EqualFold(c.DataSource.Provider, "polygon") {
		setFromEnv(&c.DataSource.APIKey, "POLYGON_API_KEY")
	}
	c.DataSource.Provider = strings.ToLower(c.DataSource.Provider)
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8051"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Dashboard.Title == "" {
		c.Dashboard.Title = "Stock & Crypto Analytics Dashboard"
	}
	if c.Dashboard.DefaultTicker == "" {
		c.Dashboard.DefaultTicker = "AAPL"
	}
	if c.Dashboard.DefaultStart == "" {
		c.Dashboard.DefaultStart = "2023-01-01"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.CSVDir == "" {
		c.DataSource.CSVDir = "data/csv"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.Database.RetentionDays == nil {
		days := 30
		c.Database.RetentionDays = &days
	}
	if c.Database.RetentionCron == "" {
		c.Database.RetentionCron = "0 0 3 * * *"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// DefaultStartDate returns the configured default start date.
func (c *Config) DefaultStartDate() time.Time {
	t, err := time.Parse("2006-01-02", c.Dashboard.DefaultStart)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Retention returns how long journal rows are kept. Zero disables pruning.
func (c *Config) Retention() time.Duration {
	if c.Database.RetentionDays == nil {
		return 0
	}
	return time.Duration(*c.Database.RetentionDays) * 24 * time.Hour
}

// Validate checks field constraints and provider requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config %s: failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("validate config: %w", err)
	}

	switch c.DataSource.Provider {
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	case "polygon":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key (or POLYGON_API_KEY) is required for the polygon provider")
		}
	case "csv":
		if c.DataSource.CSVDir == "" {
			return fmt.Errorf("data_source.csv_dir is required for the csv provider")
		}
	}
	return nil
}
