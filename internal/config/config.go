// Package config loads the CRM configuration.
//
// Loading order, later steps overriding earlier ones:
//  1. built-in defaults, enough to run locally against an SQLite file;
//  2. an optional YAML file (crm.yaml unless CRM_CONFIG says otherwise);
//  3. environment variables, including those read from a .env file by LoadDotEnv.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pesio-ai/be-crm-cli/pkg/password"
)

const (
	// DefaultPath is the YAML file read when CRM_CONFIG is unset.
	DefaultPath = "crm.yaml"

	defaultDatabaseURL = "sqlite3://crm.db"
	defaultJWTSecret   = "dev_secret_change_me"
	defaultJWTAlgo     = "HS256"
	defaultJWTMinutes  = 60
	defaultJWTIssuer   = "epic-crm"
	defaultTokenFile   = ".token"
	defaultLogLevel    = "warn"
	defaultLogFormat   = "console"
)

// Config is the process-wide configuration. It is built once in main and the
// pieces are handed to the components that need them.
type Config struct {
	Database DatabaseConfig  `yaml:"database"`
	JWT      JWTConfig       `yaml:"jwt"`
	Session  SessionConfig   `yaml:"session"`
	Logging  LoggingConfig   `yaml:"logging"`
	Password password.Params `yaml:"password"`
}

// DatabaseConfig selects the storage backend by URL scheme.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// JWTConfig holds the session token signing settings.
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	Algorithm         string `yaml:"algorithm"`
	ExpirationMinutes int    `yaml:"expiration_minutes"`
	Issuer            string `yaml:"issuer"`
}

// Lifetime returns the token lifetime as a duration.
func (c JWTConfig) Lifetime() time.Duration {
	return time.Duration(c.ExpirationMinutes) * time.Minute
}

// SessionConfig locates the single-slot token file.
type SessionConfig struct {
	TokenFile string `yaml:"token_file"`
}

// LoggingConfig controls diagnostic output on stderr.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{URL: defaultDatabaseURL},
		JWT: JWTConfig{
			Secret:            defaultJWTSecret,
			Algorithm:         defaultJWTAlgo,
			ExpirationMinutes: defaultJWTMinutes,
			Issuer:            defaultJWTIssuer,
		},
		Session:  SessionConfig{TokenFile: defaultTokenFile},
		Logging:  LoggingConfig{Level: defaultLogLevel, Format: defaultLogFormat},
		Password: password.DefaultParams(),
	}
}

// Path returns the YAML file to load: CRM_CONFIG or DefaultPath.
func Path() string {
	if v := os.Getenv("CRM_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding variables already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the YAML file at path if it exists, applies environment
// overrides and validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.JWT.Algorithm = strings.ToUpper(strings.TrimSpace(cfg.JWT.Algorithm))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_ALGO"); v != "" {
		cfg.JWT.Algorithm = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.JWT.Issuer = v
	}
	if v := os.Getenv("JWT_EXPIRATION_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("JWT_EXPIRATION_MINUTES: %q is not a number", v)
		}
		cfg.JWT.ExpirationMinutes = minutes
	}
	if v := os.Getenv("CRM_TOKEN_FILE"); v != "" {
		cfg.Session.TokenFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

// Validate checks the configuration for values the CLI cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("jwt.algorithm %q is not supported (use HS256, HS384 or HS512)", c.JWT.Algorithm))
	}
	if c.JWT.Issuer == "" {
		errs = append(errs, errors.New("jwt.issuer is required"))
	}
	if c.JWT.ExpirationMinutes <= 0 {
		errs = append(errs, errors.New("jwt.expiration_minutes must be positive"))
	}
	if c.Session.TokenFile == "" {
		errs = append(errs, errors.New("session.token_file is required"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json", "":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not supported (use console or json)", c.Logging.Format))
	}

	return errors.Join(errs...)
}
