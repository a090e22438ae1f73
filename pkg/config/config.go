// Package config loads service configuration from config.yaml with
// environment variable overrides. Secrets only come from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for cairn-engine. Environment variables
// override YAML values; secrets (PGPASSWORD, LLM API keys) are env-only
// (yaml:"-" fields).
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`

	// CoachLLM drives streamed chat turns; ExtractionLLM runs JSON-mode
	// entity extraction and may point at a cheaper model.
	CoachLLM      LLMConfig `yaml:"coach_llm" env-prefix:"COACH_LLM_"`
	ExtractionLLM LLMConfig `yaml:"extraction_llm" env-prefix:"EXTRACTION_LLM_"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether JWT tokens are validated.
	// Set to false for local development without an identity provider.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWKSEndpointsStr is a comma-separated list of issuer=jwks_url pairs.
	JWKSEndpointsStr string `yaml:"jwks_endpoints" env:"JWKS_ENDPOINTS" env-default:""`

	// JWKSEndpoints is parsed from JWKSEndpointsStr, not from the file.
	JWKSEndpoints map[string]string `yaml:"-"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"cairn"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"cairn_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// LLMConfig configures one model endpoint. Env names compose with the
// parent field's env-prefix (COACH_LLM_API_KEY, EXTRACTION_LLM_MODEL, ...).
type LLMConfig struct {
	Provider    string  `yaml:"provider" env:"PROVIDER" env-default:"openai"`
	Endpoint    string  `yaml:"endpoint" env:"ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model       string  `yaml:"model" env:"MODEL"`
	APIKey      string  `yaml:"-" env:"API_KEY"` // Secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE" env-default:"0.7"`
	MaxTokens   int     `yaml:"max_tokens" env:"MAX_TOKENS" env-default:"1500"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	cfg.Auth.JWKSEndpoints = parseJWKSEndpoints(cfg.Auth.JWKSEndpointsStr)

	if cfg.CoachLLM.Model == "" {
		return nil, fmt.Errorf("coach_llm.model is required")
	}
	if cfg.ExtractionLLM.Model == "" {
		// Extraction falls back to the coach model.
		cfg.ExtractionLLM = cfg.CoachLLM
	}

	return cfg, nil
}

// parseJWKSEndpoints parses "issuer1=url1,issuer2=url2" into a map.
func parseJWKSEndpoints(value string) map[string]string {
	endpoints := make(map[string]string)
	if value == "" {
		return endpoints
	}
	for _, pair := range strings.Split(value, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 {
			endpoints[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return endpoints
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
