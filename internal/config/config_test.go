package config

import (
	"os"
	"testing"
)

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		Database: "testdb",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	if got := cfg.DSN(); got != expected {
		t.Errorf("DSN() = %v, want %v", got, expected)
	}
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{
		Host: "redis.example.com",
		Port: 6380,
	}

	if got := cfg.Addr(); got != "redis.example.com:6380" {
		t.Errorf("Addr() = %v, want redis.example.com:6380", got)
	}
}

func TestLLMConfig_Enabled(t *testing.T) {
	if (LLMConfig{}).Enabled() {
		t.Error("Enabled() should be false without an API key")
	}
	if !(LLMConfig{APIKey: "key"}).Enabled() {
		t.Error("Enabled() should be true with an API key")
	}
}

func TestSearchConfig_Providers(t *testing.T) {
	tests := []struct {
		name    string
		config  SearchConfig
		google  bool
		serpapi bool
	}{
		{
			name:   "nothing configured",
			config: SearchConfig{},
		},
		{
			name:   "google needs both key and engine",
			config: SearchConfig{GoogleAPIKey: "key"},
		},
		{
			name:   "google fully configured",
			config: SearchConfig{GoogleAPIKey: "key", GoogleEngineID: "cx"},
			google: true,
		},
		{
			name:    "serpapi only",
			config:  SearchConfig{SerpAPIKey: "key"},
			serpapi: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.GoogleEnabled(); got != tt.google {
				t.Errorf("GoogleEnabled() = %v, want %v", got, tt.google)
			}
			if got := tt.config.SerpAPIEnabled(); got != tt.serpapi {
				t.Errorf("SerpAPIEnabled() = %v, want %v", got, tt.serpapi)
			}
		})
	}
}

func TestInstagramConfig_Enabled(t *testing.T) {
	if (InstagramConfig{AccessToken: "tok"}).Enabled() {
		t.Error("Enabled() should require a business ID as well")
	}
	if !(InstagramConfig{AccessToken: "tok", BusinessID: "123"}).Enabled() {
		t.Error("Enabled() should be true with token and business ID")
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		env      Environment
		expected bool
	}{
		{
			name:     "development",
			env:      EnvDevelopment,
			expected: true,
		},
		{
			name:     "staging",
			env:      EnvStaging,
			expected: false,
		},
		{
			name:     "production",
			env:      EnvProduction,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Env: tt.env}
			if got := cfg.IsDevelopment(); got != tt.expected {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfig_GetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		debug    bool
		logLevel string
		expected string
	}{
		{
			name:     "debug mode overrides",
			debug:    true,
			logLevel: "info",
			expected: "debug",
		},
		{
			name:     "normal mode uses log level",
			debug:    false,
			logLevel: "warn",
			expected: "warn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Debug: tt.debug, LogLevel: tt.logLevel}
			if got := cfg.GetLogLevel(); got != tt.expected {
				t.Errorf("GetLogLevel() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:       EnvDevelopment,
			Scraper:   ScraperConfig{MaxURLs: 3},
			Instagram: InstagramConfig{PollAttempts: 15},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid development config",
			mutate: func(c *Config) {},
		},
		{
			name: "production without db password",
			mutate: func(c *Config) {
				c.Env = EnvProduction
			},
			wantErr: true,
		},
		{
			name: "zero max urls",
			mutate: func(c *Config) {
				c.Scraper.MaxURLs = 0
			},
			wantErr: true,
		},
		{
			name: "zero poll attempts",
			mutate: func(c *Config) {
				c.Instagram.PollAttempts = 0
			},
			wantErr: true,
		},
		{
			name: "production with TLS but no cert",
			mutate: func(c *Config) {
				c.Env = EnvProduction
				c.Database.Password = "pass"
				c.Security = SecurityConfig{TLSEnabled: true}
			},
			wantErr: true,
		},
		{
			name: "production with proper TLS",
			mutate: func(c *Config) {
				c.Env = EnvProduction
				c.Database.Password = "pass"
				c.Security = SecurityConfig{
					TLSEnabled:  true,
					TLSCertFile: "/path/to/cert",
					TLSKeyFile:  "/path/to/key",
				}
			},
		},
		{
			name: "staging without db password is error",
			mutate: func(c *Config) {
				c.Env = EnvStaging
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadWithDefaults(t *testing.T) {
	// Save original env vars
	originalDBPass := os.Getenv("DB_PASSWORD")
	originalAPIKey := os.Getenv("MISTRAL_API_KEY")

	defer func() {
		os.Setenv("DB_PASSWORD", originalDBPass)
		os.Setenv("MISTRAL_API_KEY", originalAPIKey)
	}()

	t.Run("fills in defaults for missing required fields", func(t *testing.T) {
		os.Setenv("DB_PASSWORD", "")
		os.Setenv("MISTRAL_API_KEY", "")

		cfg, err := LoadWithDefaults()
		if err != nil {
			t.Fatalf("LoadWithDefaults() error = %v", err)
		}

		if cfg.Database.Password == "" {
			t.Error("LoadWithDefaults() should set default database password")
		}
	})

	t.Run("uses env var when set", func(t *testing.T) {
		os.Setenv("DB_PASSWORD", "custom-password")
		os.Setenv("MISTRAL_API_KEY", "custom-api-key")

		cfg, err := LoadWithDefaults()
		if err != nil {
			t.Fatalf("LoadWithDefaults() error = %v", err)
		}

		if cfg.Database.Password != "custom-password" {
			t.Errorf("Database.Password = %v, want custom-password", cfg.Database.Password)
		}
		if cfg.LLM.APIKey != "custom-api-key" {
			t.Errorf("LLM.APIKey = %v, want custom-api-key", cfg.LLM.APIKey)
		}
	})
}

func TestEnvironmentConstants(t *testing.T) {
	if EnvDevelopment != "development" {
		t.Errorf("EnvDevelopment = %v, want development", EnvDevelopment)
	}
	if EnvStaging != "staging" {
		t.Errorf("EnvStaging = %v, want staging", EnvStaging)
	}
	if EnvProduction != "production" {
		t.Errorf("EnvProduction = %v, want production", EnvProduction)
	}
}

func TestStorageConfig_Fields(t *testing.T) {
	cfg := StorageConfig{
		Enabled:   true,
		Endpoint:  "s3.amazonaws.com",
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "my-bucket",
		Region:    "us-west-2",
		UseSSL:    true,
		BriefPath: "briefs",
	}

	if !cfg.Enabled {
		t.Error("Enabled should be true")
	}
	if !cfg.UseSSL {
		t.Error("UseSSL should be true")
	}
	if cfg.BriefPath != "briefs" {
		t.Errorf("BriefPath = %v, want briefs", cfg.BriefPath)
	}
}
