// Package config loads server settings from the environment, an optional
// .env file and an optional TOML config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the fully resolved server configuration
type Config struct {
	Port          string
	Environment   string
	SecretKey     string
	PageSize      int
	IndexCacheTTL time.Duration
	CORSOrigins   []string
	// RequiredServices must pass their startup check or the server exits.
	RequiredServices []string

	Database  DatabaseConfig
	Cache     CacheConfig
	Media     MediaConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

type DatabaseConfig struct {
	Driver   string // sqlite or postgres
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type CacheConfig struct {
	Backend       string // memory or redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
}

type MediaConfig struct {
	Backend    string // local or s3
	Root       string
	URL        string
	AWSRegion  string
	AWSBucket  string
	CDNBaseURL string
}

type LogConfig struct {
	Level string
	File  string
}

type TelemetryConfig struct {
	OTLPEndpoint string
	SamplingRate float64
}

// IsProduction reports whether the server runs with production defaults
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// DSN returns the connection string for the configured driver
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		return "yatube.db"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisAddr is host:port for the redis client
func (c CacheConfig) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENVIRONMENT", EnvDevelopment)
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("INDEX_CACHE_TTL", 20*time.Second)
	v.SetDefault("CORS_ALLOW_ORIGINS", "")

	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "yatube")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")

	v.SetDefault("MEDIA_BACKEND", "local")
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("MEDIA_URL", "/media/")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_BUCKET", "")
	v.SetDefault("CDN_BASE_URL", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "yatube.log")

	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_SAMPLING_RATE", 1.0)

	for _, service := range OptionalServices {
		v.SetDefault(requireKey(service), false)
	}
}

// OptionalServices can be made mandatory with YATUBE_REQUIRE_<NAME>=true.
var OptionalServices = []string{"database", "redis", "s3"}

func requireKey(service string) string {
	return "YATUBE_REQUIRE_" + strings.ToUpper(service)
}

// Load reads .env (if present), the TOML file named by YATUBE_CONFIG (if set)
// and the process environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("YATUBE_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString("PORT"),
		Environment:   strings.ToLower(v.GetString("ENVIRONMENT")),
		SecretKey:     v.GetString("SECRET_KEY"),
		PageSize:      v.GetInt("PAGE_SIZE"),
		IndexCacheTTL: v.GetDuration("INDEX_CACHE_TTL"),
		CORSOrigins:   splitList(v.GetString("CORS_ALLOW_ORIGINS")),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DATABASE_DRIVER")),
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(v.GetString("CACHE_BACKEND")),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
		},
		Media: MediaConfig{
			Backend:    strings.ToLower(v.GetString("MEDIA_BACKEND")),
			Root:       v.GetString("MEDIA_ROOT"),
			URL:        v.GetString("MEDIA_URL"),
			AWSRegion:  v.GetString("AWS_REGION"),
			AWSBucket:  v.GetString("AWS_BUCKET"),
			CDNBaseURL: v.GetString("CDN_BASE_URL"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SamplingRate: v.GetFloat64("OTEL_SAMPLING_RATE"),
		},
	}

	for _, service := range OptionalServices {
		if v.GetBool(requireKey(service)) {
			cfg.RequiredServices = append(cfg.RequiredServices, service)
		}
	}

	if cfg.SecretKey == "" && !cfg.IsProduction() {
		cfg.SecretKey = "insecure-development-secret"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY must be set in %s", c.Environment)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.IndexCacheTTL < 0 {
		return fmt.Errorf("INDEX_CACHE_TTL must not be negative")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.Cache.Backend)
	}
	switch c.Media.Backend {
	case "local":
	case "s3":
		if c.Media.AWSBucket == "" {
			return fmt.Errorf("AWS_BUCKET is required when MEDIA_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_BACKEND %q", c.Media.Backend)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
