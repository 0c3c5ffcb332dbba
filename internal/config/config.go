package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Env      Environment `envconfig:"ENV" default:"development"`
	LogLevel string      `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool        `envconfig:"DEBUG" default:"false"`

	// Application
	App AppConfig

	// Server
	Server ServerConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// LLM strategy extraction
	LLM LLMConfig

	// Competitor scraping
	Scraper ScraperConfig

	// Influencer search providers
	Search SearchConfig

	// Instagram Graph API proxy
	Instagram InstagramConfig

	// Object storage for uploaded briefs
	Storage StorageConfig

	// Rate Limits
	RateLimits RateLimitConfig

	// Security
	Security SecurityConfig
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"brandpulse"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"APP_LOG_LEVEL" default:"info"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	MaxRequestSize  int64         `envconfig:"SERVER_MAX_REQUEST_SIZE" default:"10485760"` // 10MB, bounds PDF uploads too
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"brandpulse"`
	Password        string        `envconfig:"DB_PASSWORD" required:"true"`
	Database        string        `envconfig:"DB_NAME" default:"brandpulse"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	ConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"1m"`
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	Host         string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port         int           `envconfig:"REDIS_PORT" default:"6379"`
	Password     string        `envconfig:"REDIS_PASSWORD" default:""`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"5"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Addr returns Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LLMConfig holds settings for the chat-completion client used to extract
// strategies from briefs. Leave APIKey empty to run on keyword fallbacks only.
type LLMConfig struct {
	APIKey        string        `envconfig:"MISTRAL_API_KEY" default:""`
	BaseURL       string        `envconfig:"MISTRAL_BASE_URL" default:"https://api.mistral.ai"`
	Model         string        `envconfig:"MISTRAL_MODEL" default:"mistral-large-latest"`
	MaxTokens     int           `envconfig:"MISTRAL_MAX_TOKENS" default:"2048"`
	Timeout       time.Duration `envconfig:"MISTRAL_TIMEOUT" default:"60s"`
	RateLimitRPM  int           `envconfig:"MISTRAL_RATE_LIMIT_RPM" default:"50"`
	CacheTTL      time.Duration `envconfig:"MISTRAL_CACHE_TTL" default:"24h"`
	CacheSize     int           `envconfig:"MISTRAL_CACHE_SIZE" default:"1000"`
	MaxRetries    int           `envconfig:"MISTRAL_MAX_RETRIES" default:"3"`
	EnableCaching bool          `envconfig:"MISTRAL_ENABLE_CACHING" default:"true"`
}

// Enabled reports whether the LLM path is configured at all
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// ScraperConfig holds competitor-scraping settings
type ScraperConfig struct {
	Enabled        bool          `envconfig:"SCRAPER_ENABLED" default:"true"`
	Timeout        time.Duration `envconfig:"SCRAPER_TIMEOUT" default:"15s"`
	UserAgent      string        `envconfig:"SCRAPER_USER_AGENT" default:"Mozilla/5.0 (compatible; BrandPulse/1.0)"`
	ProxyURL       string        `envconfig:"SCRAPER_PROXY_URL" default:""`
	MaxURLs        int           `envconfig:"SCRAPER_MAX_URLS" default:"3"`
	MaxBodyBytes   int64         `envconfig:"SCRAPER_MAX_BODY_BYTES" default:"5242880"` // 5MB
	UseBrowser     bool          `envconfig:"SCRAPER_USE_BROWSER" default:"false"`
	BrowserTimeout time.Duration `envconfig:"SCRAPER_BROWSER_TIMEOUT" default:"30s"`
}

// SearchConfig holds influencer-discovery provider settings. Google CSE is
// tried first; SerpAPI is the fallback. Both empty means templated results.
type SearchConfig struct {
	GoogleAPIKey   string        `envconfig:"GOOGLE_CSE_API_KEY" default:""`
	GoogleEngineID string        `envconfig:"GOOGLE_CSE_ENGINE_ID" default:""`
	SerpAPIKey     string        `envconfig:"SERPAPI_KEY" default:""`
	Timeout        time.Duration `envconfig:"SEARCH_TIMEOUT" default:"10s"`
	MaxResults     int           `envconfig:"SEARCH_MAX_RESULTS" default:"10"`
}

// GoogleEnabled reports whether the Google CSE provider is configured
func (c SearchConfig) GoogleEnabled() bool {
	return c.GoogleAPIKey != "" && c.GoogleEngineID != ""
}

// SerpAPIEnabled reports whether the SerpAPI provider is configured
func (c SearchConfig) SerpAPIEnabled() bool {
	return c.SerpAPIKey != ""
}

// InstagramConfig holds Instagram Graph API settings
type InstagramConfig struct {
	AccessToken  string        `envconfig:"INSTAGRAM_ACCESS_TOKEN" default:""`
	BusinessID   string        `envconfig:"INSTAGRAM_BUSINESS_ID" default:""`
	GraphBaseURL string        `envconfig:"INSTAGRAM_GRAPH_BASE_URL" default:"https://graph.facebook.com/v19.0"`
	Timeout      time.Duration `envconfig:"INSTAGRAM_TIMEOUT" default:"30s"`
	PollInterval time.Duration `envconfig:"INSTAGRAM_POLL_INTERVAL" default:"2s"`
	PollAttempts int           `envconfig:"INSTAGRAM_POLL_ATTEMPTS" default:"15"`
}

// Enabled reports whether the Instagram proxy is configured
func (c InstagramConfig) Enabled() bool {
	return c.AccessToken != "" && c.BusinessID != ""
}

// StorageConfig holds object storage settings for uploaded campaign briefs
type StorageConfig struct {
	Enabled   bool   `envconfig:"STORAGE_ENABLED" default:"false"`
	Endpoint  string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	Bucket    string `envconfig:"STORAGE_BUCKET" default:"brandpulse"`
	Region    string `envconfig:"STORAGE_REGION" default:"us-east-1"`
	UseSSL    bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
	BriefPath string `envconfig:"STORAGE_BRIEF_PATH" default:"briefs"`
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	Enabled        bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMin int  `envconfig:"RATE_LIMIT_REQUESTS_PER_MIN" default:"60"`
	BurstSize      int  `envconfig:"RATE_LIMIT_BURST_SIZE" default:"10"`
}

// SecurityConfig holds security settings
type SecurityConfig struct {
	// CORS
	CORSEnabled        bool     `envconfig:"CORS_ENABLED" default:"true"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// TLS
	TLSEnabled  bool   `envconfig:"TLS_ENABLED" default:"false"`
	TLSCertFile string `envconfig:"TLS_CERT_FILE" default:""`
	TLSKeyFile  string `envconfig:"TLS_KEY_FILE" default:""`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config with defaults for missing required fields (for CLI tools)
func LoadWithDefaults() (*Config, error) {
	var cfg Config

	// Try to load from env, but don't fail on missing required fields
	envconfig.Process("", &cfg)

	// Set defaults for required fields if not set
	if cfg.Database.Password == "" {
		cfg.Database.Password = "brandpulse"
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("MISTRAL_API_KEY")
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errors []string

	// Validate database in non-development mode
	if c.Env != EnvDevelopment {
		if c.Database.Password == "" {
			errors = append(errors, "DB_PASSWORD is required in non-development mode")
		}
	}

	if c.Scraper.MaxURLs < 1 {
		errors = append(errors, "SCRAPER_MAX_URLS must be at least 1")
	}

	if c.Instagram.PollAttempts < 1 {
		errors = append(errors, "INSTAGRAM_POLL_ATTEMPTS must be at least 1")
	}

	// Validate TLS in production
	if c.Env == EnvProduction {
		if c.Security.TLSEnabled && (c.Security.TLSCertFile == "" || c.Security.TLSKeyFile == "") {
			errors = append(errors, "TLS_CERT_FILE and TLS_KEY_FILE are required when TLS is enabled")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// GetLogLevel returns the appropriate zap log level
func (c *Config) GetLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
