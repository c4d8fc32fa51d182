package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Distance  DistanceConfig  `mapstructure:"distance"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	RateLimit    int `mapstructure:"rate_limit"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// CacheConfig selects the shared result cache and sizes the in-process distance memo.
type CacheConfig struct {
	Driver       string `mapstructure:"driver"` // valkey | redis | memory
	Addr         string `mapstructure:"addr"`
	ResultTTL    int    `mapstructure:"result_ttl"`    // seconds
	DistanceSize int    `mapstructure:"distance_size"` // entries
	DistanceTTL  int    `mapstructure:"distance_ttl"`  // seconds
}

// DistanceConfig configures the distance engine and its remote matrix provider.
type DistanceConfig struct {
	Mode        string        `mapstructure:"mode"`
	ProviderURL string        `mapstructure:"provider_url"`
	APIKey      string        `mapstructure:"api_key"`
	TimeoutMS   int           `mapstructure:"timeout_ms"`
	Breaker     BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxRequests      uint32 `mapstructure:"max_requests"`
	Interval         int    `mapstructure:"interval"` // seconds
	Timeout          int    `mapstructure:"timeout"`  // seconds
	FailureThreshold uint32 `mapstructure:"failure_threshold"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from .env, config file and environment variables.
func Load(service string) (*Config, error) {
	_ = godotenv.Load() // OK if missing

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "shipquote")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "shipquote")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("cache.driver", "valkey")
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.result_ttl", 600)
	v.SetDefault("cache.distance_size", 500)
	v.SetDefault("cache.distance_ttl", 600)
	v.SetDefault("distance.mode", "REMOTE")
	v.SetDefault("distance.provider_url", "https://maps.googleapis.com/maps/api/distancematrix/json")
	v.SetDefault("distance.api_key", "")
	v.SetDefault("distance.timeout_ms", 3000)
	v.SetDefault("distance.breaker.max_requests", 3)
	v.SetDefault("distance.breaker.interval", 60)
	v.SetDefault("distance.breaker.timeout", 30)
	v.SetDefault("distance.breaker.failure_threshold", 5)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "recommendation-warmup")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SHIPQUOTE_DATABASE_HOST → database.host
	v.SetEnvPrefix("SHIPQUOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RateLimit <= 0 {
		errs = append(errs, "server.rate_limit must be positive")
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	switch strings.ToLower(c.Cache.Driver) {
	case "valkey", "redis":
		if c.Cache.Addr == "" {
			errs = append(errs, "cache.addr is required for driver "+c.Cache.Driver)
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("cache.driver must be valkey, redis or memory, got %q", c.Cache.Driver))
	}
	if c.Cache.DistanceSize <= 0 {
		errs = append(errs, "cache.distance_size must be positive")
	}
	if c.Cache.DistanceTTL <= 0 || c.Cache.ResultTTL <= 0 {
		errs = append(errs, "cache ttls must be positive")
	}
	switch strings.ToUpper(c.Distance.Mode) {
	case "HAVERSINE", "REMOTE":
	default:
		errs = append(errs, fmt.Sprintf("distance.mode must be HAVERSINE or REMOTE, got %q", c.Distance.Mode))
	}
	if c.Distance.TimeoutMS <= 0 {
		errs = append(errs, "distance.timeout_ms must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// RemoteDistanceEnabled reports whether an API key has been supplied.
// "UNSET" is treated as blank so placeholder values in .env files are ignored.
func (d DistanceConfig) RemoteDistanceEnabled() bool {
	key := strings.TrimSpace(d.APIKey)
	return key != "" && !strings.EqualFold(key, "UNSET")
}
