package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevAnthropicKey is the placeholder shipped in sample .env files; it is
// treated as no key at all.
const DevAnthropicKey = "sk-ant-REDACTED"

type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	EnableDB         bool          `mapstructure:"ENABLE_DB"`
	DBMaxConns       int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32         `mapstructure:"DB_MIN_CONNS"`
	AnthropicAPIKey  string        `mapstructure:"ANTHROPIC_API_KEY"`
	AnthropicModel   string        `mapstructure:"ANTHROPIC_MODEL"`
	AnthropicBaseURL string        `mapstructure:"ANTHROPIC_BASE_URL"`
	DiagnosisTimeout time.Duration `mapstructure:"DIAGNOSIS_TIMEOUT"`
	SummaryTimeout   time.Duration `mapstructure:"SUMMARY_TIMEOUT"`
	KnowledgeDir     string        `mapstructure:"KNOWLEDGE_DIR"`
	CORSOrigins      []string      `mapstructure:"-"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "ENABLE_DB", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "ANTHROPIC_BASE_URL", "DIAGNOSIS_TIMEOUT", "SUMMARY_TIMEOUT",
	"KNOWLEDGE_DIR", "CORS_ORIGINS",
}

// Load reads .env when present, then the process environment, which wins.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENABLE_DB", false)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("DIAGNOSIS_TIMEOUT", "3s")
	v.SetDefault("SUMMARY_TIMEOUT", "10s")
	v.SetDefault("CORS_ORIGINS", "*")
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for _, o := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if cfg.DiagnosisTimeout <= 0 {
		return nil, fmt.Errorf("DIAGNOSIS_TIMEOUT must be positive, got %s", cfg.DiagnosisTimeout)
	}
	if cfg.SummaryTimeout <= 0 {
		return nil, fmt.Errorf("SUMMARY_TIMEOUT must be positive, got %s", cfg.SummaryTimeout)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UseExternalDiagnosis reports whether a real model key is configured.
func (c *Config) UseExternalDiagnosis() bool {
	return c.AnthropicAPIKey != "" && c.AnthropicAPIKey != DevAnthropicKey
}
