package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	BigCommerce BigCommerceConfig `yaml:"bigcommerce"`
	SES         SESConfig         `yaml:"ses"`
	Report      ReportConfig      `yaml:"report"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// BigCommerceConfig holds BigCommerce store API configuration
type BigCommerceConfig struct {
	StoreHash      string `yaml:"store_hash"`
	AccessToken    string `yaml:"access_token"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	OrderLimit     int    `yaml:"order_limit"`
}

// Timeout returns the configured timeout as a duration
func (c BigCommerceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// APIBaseURL returns the v2 store API base URL, deriving it from the
// store hash when no explicit base URL is configured.
func (c BigCommerceConfig) APIBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("https://api.bigcommerce.com/stores/%s/v2", c.StoreHash)
}

// SESConfig holds AWS SES API configuration
type SESConfig struct {
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ReportConfig holds daily report generation and delivery configuration
type ReportConfig struct {
	FromEmail         string `yaml:"from_email"`
	FromName          string `yaml:"from_name"`
	ToEmail           string `yaml:"to_email"`
	Timezone          string `yaml:"timezone"`
	SendHour          int    `yaml:"send_hour"`
	RunTimeoutSeconds int    `yaml:"run_timeout_seconds"`
}

// RunTimeout returns the overall pipeline run deadline as a duration
func (c ReportConfig) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSeconds) * time.Second
}

// Location resolves the configured report timezone
func (c ReportConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load reads and parses the configuration file. A missing file is not an
// error: deployments on ECS configure everything through environment
// variables, so defaults are applied to an empty config instead.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.BigCommerce.TimeoutSeconds == 0 {
		cfg.BigCommerce.TimeoutSeconds = 30
	}
	if cfg.BigCommerce.OrderLimit == 0 {
		cfg.BigCommerce.OrderLimit = 50
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-east-1"
	}
	if cfg.Report.FromEmail == "" {
		cfg.Report.FromEmail = "orders@powermanufacturing.com"
	}
	if cfg.Report.FromName == "" {
		cfg.Report.FromName = "Power Manufacturing Orders"
	}
	if cfg.Report.ToEmail == "" {
		cfg.Report.ToEmail = "operations@powermanufacturing.com"
	}
	if cfg.Report.Timezone == "" {
		cfg.Report.Timezone = "America/New_York"
	}
	if cfg.Report.SendHour == 0 {
		cfg.Report.SendHour = 16
	}
	if cfg.Report.RunTimeoutSeconds == 0 {
		cfg.Report.RunTimeoutSeconds = 120
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if v := os.Getenv("BIGCOMMERCE_STORE_HASH"); v != "" {
		cfg.BigCommerce.StoreHash = v
	}
	if v := os.Getenv("BIGCOMMERCE_ACCESS_TOKEN"); v != "" {
		cfg.BigCommerce.AccessToken = v
	}
	if v := os.Getenv("BIGCOMMERCE_BASE_URL"); v != "" {
		cfg.BigCommerce.BaseURL = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("REPORT_FROM_EMAIL"); v != "" {
		cfg.Report.FromEmail = v
	}
	if v := os.Getenv("REPORT_TO_EMAIL"); v != "" {
		cfg.Report.ToEmail = v
	}
	if v := os.Getenv("REPORT_TIMEZONE"); v != "" {
		cfg.Report.Timezone = v
	}

	return cfg, nil
}

// Validate checks that the credentials required for a real run are
// present. The server can still boot without them (status endpoints
// report what is missing), but a pipeline run will refuse to start.
func (c *Config) Validate() error {
	var missing []string
	if c.BigCommerce.StoreHash == "" {
		missing = append(missing, "BIGCOMMERCE_STORE_HASH")
	}
	if c.BigCommerce.AccessToken == "" {
		missing = append(missing, "BIGCOMMERCE_ACCESS_TOKEN")
	}
	if c.SES.AccessKey == "" {
		missing = append(missing, "AWS_SES_ACCESS_KEY")
	}
	if c.SES.SecretKey == "" {
		missing = append(missing, "AWS_SES_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	return nil
}
