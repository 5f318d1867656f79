package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "ECOM"

// Default dataset locations published alongside the original dashboard.
const (
	defaultSourceBase = "https://raw.githubusercontent.com/Meio047/Project-Analisis-Data/refs/heads/main/dashboard/"

	DefaultCustomersSource = defaultSourceBase + "customers_clean.csv"
	DefaultItemsSource     = defaultSourceBase + "items_clean.csv"
	DefaultPaymentsSource  = defaultSourceBase + "payments_clean.csv"
	DefaultOrdersSource    = defaultSourceBase + "orders_clean.csv"
	DefaultProductsSource  = defaultSourceBase + "products_clean.csv"
	DefaultReviewsSource   = defaultSourceBase + "reviews_clean.csv"
	DefaultSellersSource   = defaultSourceBase + "sellers_clean.csv"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Datasets  DatasetsConfig  `yaml:"datasets" envconfig:"DATASETS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DatasetsConfig holds the seven source locations. A location is either an
// http(s) URL or a local file path; .xlsx locations are read as workbooks.
type DatasetsConfig struct {
	Customers    string        `yaml:"customers" envconfig:"CUSTOMERS"`
	Items        string        `yaml:"items" envconfig:"ITEMS"`
	Payments     string        `yaml:"payments" envconfig:"PAYMENTS"`
	Orders       string        `yaml:"orders" envconfig:"ORDERS"`
	Products     string        `yaml:"products" envconfig:"PRODUCTS"`
	Reviews      string        `yaml:"reviews" envconfig:"REVIEWS"`
	Sellers      string        `yaml:"sellers" envconfig:"SELLERS"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT"`
	UserAgent    string        `yaml:"user_agent" envconfig:"USER_AGENT"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`   // "stdout", "none"
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"` // "prometheus", "none"
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Locations returns the configured source of every table keyed by table name.
func (d DatasetsConfig) Locations() map[string]string {
	return map[string]string{
		"customers": d.Customers,
		"items":     d.Items,
		"payments":  d.Payments,
		"orders":    d.Orders,
		"products":  d.Products,
		"reviews":   d.Reviews,
		"sellers":   d.Sellers,
	}
}

// Load builds the configuration from defaults, the first config file found
// in the usual locations, and ECOM_* environment variables, in increasing
// order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable are left untouched, so env only
	// overrides what it names.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if c.Datasets.FetchTimeout <= 0 {
		return fmt.Errorf("dataset fetch timeout must be positive")
	}

	for table, location := range c.Datasets.Locations() {
		if strings.TrimSpace(location) == "" {
			return fmt.Errorf("no source configured for table %q", table)
		}
		if strings.Contains(location, "://") {
			u, err := url.Parse(location)
			if err != nil {
				return fmt.Errorf("invalid source for table %q: %w", table, err)
			}
			switch u.Scheme {
			case "http", "https", "file":
			default:
				return fmt.Errorf("unsupported scheme %q for table %q", u.Scheme, table)
			}
		}
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", c.Telemetry.TraceExporter)
	}

	switch c.Telemetry.MetricExporter {
	case "prometheus", "none":
	default:
		return fmt.Errorf("unsupported metric exporter: %s", c.Telemetry.MetricExporter)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("sample ratio must be within [0,1]: %v", c.Telemetry.SampleRatio)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output == "file" || c.Logging.Output == "both" {
		if c.Logging.FilePath == "" {
			c.Logging.FilePath = "logs/app.log"
		}
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "console",
		},
		Datasets: DatasetsConfig{
			Customers:    DefaultCustomersSource,
			Items:        DefaultItemsSource,
			Payments:     DefaultPaymentsSource,
			Orders:       DefaultOrdersSource,
			Products:     DefaultProductsSource,
			Reviews:      DefaultReviewsSource,
			Sellers:      DefaultSellersSource,
			FetchTimeout: 2 * time.Minute,
			UserAgent:    "ecomdash/1.0",
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
