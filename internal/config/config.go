package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the API needs at startup.
type Config struct {
	Env       string          `yaml:"env"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Votes     VotesConfig     `yaml:"votes"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	// Driver is one of "pgx" (default), "postgres" (lib/pq) or "sqlite".
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	SlowThreshold   time.Duration `yaml:"slow_threshold"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type RateLimitConfig struct {
	// RPS of zero disables rate limiting.
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

type VotesConfig struct {
	MaxRetries int `yaml:"max_retries"`
}

// Default returns the local development configuration.
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     time.Minute,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:          "pgx",
			Host:            "localhost",
			Port:            "5432",
			SSLMode:         "disable",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
			SlowThreshold:   time.Second,
		},
		Auth: AuthConfig{
			TokenTTL: 72 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RPS:   20,
			Burst: 40,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "reddit-api",
		},
		Votes: VotesConfig{
			MaxRetries: 2,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence. A .env file in the working
// directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Env, "APP_ENV")
	setString(&c.Server.Port, "PORT")
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSLMODE")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&c.Telemetry.ServiceName, "OTEL_SERVICE_NAME")

	var errs []error
	errs = append(errs,
		setInt(&c.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS"),
		setInt(&c.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS"),
		setInt(&c.RateLimit.Burst, "RATE_LIMIT_BURST"),
		setInt(&c.Votes.MaxRetries, "VOTES_MAX_RETRIES"),
		setFloat(&c.RateLimit.RPS, "RATE_LIMIT_RPS"),
		setDuration(&c.Auth.TokenTTL, "TOKEN_TTL"),
		setDuration(&c.Server.ShutdownTimeout, "SHUTDOWN_TIMEOUT"),
	)
	return errors.Join(errs...)
}

// Validate reports settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "pgx", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite" && c.Database.DSN == "" {
		return errors.New("sqlite driver requires DB_DSN")
	}
	if c.Auth.JWTSecret == "" && !c.IsDevelopment() {
		return errors.New("JWT_SECRET must be set outside development")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if c.Votes.MaxRetries < 0 {
		return errors.New("votes max retries must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "test"
}

// PostgresDSN assembles a libpq-style connection string unless DSN is set.
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
