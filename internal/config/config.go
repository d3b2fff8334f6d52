package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	AzureOpenAIEndpoint   string `mapstructure:"AZURE_OPENAI_ENDPOINT"`
	AzureOpenAIAPIKey     string `mapstructure:"AZURE_OPENAI_API_KEY"`
	AzureOpenAIAPIVersion string `mapstructure:"AZURE_OPENAI_API_VERSION"`
	AzureOpenAIDeployment string `mapstructure:"AZURE_OPENAI_DEPLOYMENT"`

	NarrativeTimeout time.Duration `mapstructure:"NARRATIVE_TIMEOUT"`
	NarrativeRPS     float64       `mapstructure:"NARRATIVE_RPS"`
	NarrativeBurst   int           `mapstructure:"NARRATIVE_BURST"`

	RandomSeed     int64 `mapstructure:"RANDOM_SEED"`
	StatsRetention int   `mapstructure:"STATS_RETENTION"`

	MetricsEnabled bool `mapstructure:"METRICS_ENABLED"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("AZURE_OPENAI_API_VERSION", "2024-02-15-preview")
	v.SetDefault("AZURE_OPENAI_DEPLOYMENT", "gpt-4.1-mini")
	v.SetDefault("NARRATIVE_TIMEOUT", 8*time.Second)
	v.SetDefault("NARRATIVE_RPS", 2)
	v.SetDefault("NARRATIVE_BURST", 4)
	v.SetDefault("RANDOM_SEED", 0)
	v.SetDefault("STATS_RETENTION", 10000)
	v.SetDefault("METRICS_ENABLED", true)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("AZURE_OPENAI_ENDPOINT")
	v.BindEnv("AZURE_OPENAI_API_KEY")
	v.BindEnv("AZURE_OPENAI_API_VERSION")
	v.BindEnv("AZURE_OPENAI_DEPLOYMENT")
	v.BindEnv("NARRATIVE_TIMEOUT")
	v.BindEnv("NARRATIVE_RPS")
	v.BindEnv("NARRATIVE_BURST")
	v.BindEnv("RANDOM_SEED")
	v.BindEnv("STATS_RETENTION")
	v.BindEnv("METRICS_ENABLED")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// NarrativeEnabled reports whether both the endpoint and the key of the
// narrative provider are set.
func (c *Config) NarrativeEnabled() bool {
	return c.AzureOpenAIEndpoint != "" && c.AzureOpenAIAPIKey != ""
}

// Validate checks that the configuration is safe to run. A missing narrative
// provider is fine; one with only half of its credentials is not.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS)
	}
	if c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must not be negative, got %d", c.RateLimitBurst)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}
	if c.NarrativeTimeout < 0 {
		return fmt.Errorf("NARRATIVE_TIMEOUT must not be negative, got %s", c.NarrativeTimeout)
	}
	if c.NarrativeRPS < 0 {
		return fmt.Errorf("NARRATIVE_RPS must not be negative, got %v", c.NarrativeRPS)
	}
	if c.StatsRetention < 0 {
		return fmt.Errorf("STATS_RETENTION must not be negative, got %d", c.StatsRetention)
	}
	if c.NarrativeBurst < 0 {
		return fmt.Errorf("NARRATIVE_BURST must not be negative, got %d", c.NarrativeBurst)
	}

	if c.AzureOpenAIEndpoint != "" && c.AzureOpenAIAPIKey == "" {
		return fmt.Errorf("AZURE_OPENAI_API_KEY is required when AZURE_OPENAI_ENDPOINT is set")
	}
	if c.AzureOpenAIAPIKey != "" && c.AzureOpenAIEndpoint == "" {
		return fmt.Errorf("AZURE_OPENAI_ENDPOINT is required when AZURE_OPENAI_API_KEY is set")
	}
	if c.NarrativeEnabled() && c.AzureOpenAIDeployment == "" {
		return fmt.Errorf("AZURE_OPENAI_DEPLOYMENT must not be empty when the narrative provider is configured")
	}

	return nil
}
