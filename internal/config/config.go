// Package config loads the server configuration from YAML with
// ${ENV:default} placeholders and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "configs/server.yaml"

type (
	// Config is the root configuration of the reporting service.
	Config struct {
		Server   ServerConfig   `yaml:"server"`
		Database DatabaseConfig `yaml:"database"`
		Auth     AuthConfig     `yaml:"auth"`
		Logger   LoggerConfig   `yaml:"logger"`
		Redis    RedisConfig    `yaml:"redis"`
		Metrics  MetricsConfig  `yaml:"metrics"`
	}

	// ServerConfig holds HTTP listener settings.
	ServerConfig struct {
		Port            int           `yaml:"port"`
		Mode            string        `yaml:"mode"` // debug, release, test
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"` // empty allows all origins
	}

	// DatabaseConfig holds PostgreSQL settings.
	DatabaseConfig struct {
		DSN              string        `yaml:"dsn"`
		MaxConns         int32         `yaml:"max_conns"`
		MinConns         int32         `yaml:"min_conns"`
		MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
		StatementTimeout time.Duration `yaml:"statement_timeout"`
		AutoMigrate      bool          `yaml:"auto_migrate"`
	}

	// AuthConfig holds token settings.
	AuthConfig struct {
		JWTSecret  string        `yaml:"jwt_secret"`
		TokenTTL   time.Duration `yaml:"token_ttl"`
		Issuer     string        `yaml:"issuer"`
		BcryptCost int           `yaml:"bcrypt_cost"`
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level       string `yaml:"level"`     // debug, info, warn, error
		Format      string `yaml:"format"`    // json, console
		Output      string `yaml:"output"`    // stdout, file
		FilePath    string `yaml:"file_path"` // path to log file when output is file
		MaxSize     int    `yaml:"max_size"`  // megabytes
		MaxBackups  int    `yaml:"max_backups"`
		MaxAge      int    `yaml:"max_age"` // days
		Compress    bool   `yaml:"compress"`
		Development bool   `yaml:"development"`
	}

	// RedisConfig configures the dashboard cache. An empty Addr disables it.
	RedisConfig struct {
		Addr         string        `yaml:"addr"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		Prefix       string        `yaml:"prefix"`
		DashboardTTL time.Duration `yaml:"dashboard_ttl"`
	}

	// MetricsConfig configures the prometheus endpoint.
	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Namespace string    `yaml:"namespace"`
		Path      string    `yaml:"path"`
		Buckets   []float64 `yaml:"buckets"`
	}
)

// Load reads the configuration file at path (or CONFIG_PATH / DefaultPath
// when path is empty), applies defaults and validates the result.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML content after resolving environment placeholders.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(resolveEnv(data), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var envPattern = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// resolveEnv replaces ${NAME} and ${NAME:default} placeholders.
func resolveEnv(content []byte) []byte {
	return envPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		m := envPattern.FindSubmatch(match)
		if value, ok := os.LookupEnv(string(m[1])); ok {
			return []byte(value)
		}
		return m[2]
	})
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 20
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = 2
	}
	if c.Database.MaxConnLifetime == 0 {
		c.Database.MaxConnLifetime = time.Hour
	}
	if c.Database.StatementTimeout == 0 {
		c.Database.StatementTimeout = 30 * time.Second
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = time.Hour
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "laporan-harian"
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
	}
	if c.Logger.Output == "" {
		c.Logger.Output = "stdout"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "laporan"
	}
	if c.Redis.DashboardTTL == 0 {
		c.Redis.DashboardTTL = 5 * time.Minute
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "laporan"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 32 characters"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Logger.Output == "file" && c.Logger.FilePath == "" {
		errs = append(errs, errors.New("logger.file_path is required for file output"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
