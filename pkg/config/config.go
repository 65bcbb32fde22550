package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	Catalog     CatalogConfig
	Server      ServerConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Export      ExportConfig

	// CurrentYear pins the year ages are derived against. Zero uses the clock.
	CurrentYear int
}

type CatalogConfig struct {
	Path  string
	Watch bool
}

type ServerConfig struct {
	Host string
	Port string
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type RateLimitConfig struct {
	RPS   float64 // requests per second per client
	Burst int
}

type CORSConfig struct {
	AllowedOrigins []string
	MaxAgeHours    int
}

type ExportConfig struct {
	Format string
}

// Load reads configuration from an optional .env file, an optional config
// file, and the environment, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Catalog: CatalogConfig{
			Path:  v.GetString("CATALOG_PATH"),
			Watch: v.GetBool("CATALOG_WATCH"),
		},
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetString("SERVER_PORT"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetStringSlice("CORS_ALLOWED_ORIGINS")),
			MaxAgeHours:    v.GetInt("CORS_MAX_AGE_HOURS"),
		},
		Export: ExportConfig{
			Format: v.GetString("EXPORT_FORMAT"),
		},
		CurrentYear: v.GetInt("CURRENT_YEAR"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit must be positive (rps=%v, burst=%d)", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	if c.CurrentYear < 0 {
		return fmt.Errorf("invalid CURRENT_YEAR %d", c.CurrentYear)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("CATALOG_PATH", "data/device-database.json")
	v.SetDefault("CATALOG_WATCH", false)
	v.SetDefault("SERVER_HOST", "")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("CORS_MAX_AGE_HOURS", 12)
	v.SetDefault("EXPORT_FORMAT", "table")
	v.SetDefault("CURRENT_YEAR", 0)
}

// splitList also accepts comma separated entries, as env values usually are.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
