// Package config loads the process configuration: built-in defaults, then an
// optional YAML file, then USERGATE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "USERGATE_"
	// FileEnv names the variable holding the YAML config path.
	FileEnv     = "USERGATE_CONFIG"
	defaultFile = "config.yaml"
)

type Config struct {
	Server    Server    `koanf:"server"`
	Auth      Auth      `koanf:"auth"`
	Database  Database  `koanf:"database"`
	RateLimit RateLimit `koanf:"ratelimit"`
	Metrics   Metrics   `koanf:"metrics"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `koanf:"addr" validate:"required"`
	OpsAddr           string        `koanf:"ops_addr"`
	LogLevel          string        `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat         string        `koanf:"log_format" validate:"oneof=json text"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes" validate:"gt=0"`
	MaintenanceMode   bool          `koanf:"maintenance_mode"`
}

type Auth struct {
	JWTSigningKey string        `koanf:"jwt_signing_key" validate:"required,min=16"`
	Issuer        string        `koanf:"issuer" validate:"required"`
	Audience      string        `koanf:"audience" validate:"required"`
	AccessTTL     time.Duration `koanf:"access_ttl" validate:"gt=0"`
	RefreshTTL    time.Duration `koanf:"refresh_ttl" validate:"gtfield=AccessTTL"`
	BcryptCost    int           `koanf:"bcrypt_cost" validate:"min=4,max=31"`
}

// Database selects the user store. An empty URL keeps users in memory.
type Database struct {
	URL          string `koanf:"url"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"gte=0"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// Limit is one rate limit budget.
type Limit struct {
	Limit  int           `koanf:"limit" validate:"gt=0"`
	Window time.Duration `koanf:"window" validate:"gt=0"`
}

type RateLimit struct {
	Disabled      bool          `koanf:"disabled"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`
	Generic       Limit         `koanf:"generic"`
	List          Limit         `koanf:"list"`
	Create        Limit         `koanf:"create"`
	Login         Limit         `koanf:"login"`
}

type Metrics struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path" validate:"required,startswith=/"`
}

// Defaults is the configuration used when nothing overrides a key.
func Defaults() map[string]any {
	return map[string]any{
		"server.addr":                ":8080",
		"server.ops_addr":            ":9090",
		"server.log_level":           "info",
		"server.log_format":          "json",
		"server.read_header_timeout": 5 * time.Second,
		"server.shutdown_timeout":    15 * time.Second,
		"server.max_body_bytes":      int64(1 << 20),
		"server.maintenance_mode":    false,

		"auth.jwt_signing_key": "dev-secret-key-change-in-production",
		"auth.issuer":          "usergate",
		"auth.audience":        "usergate-api",
		"auth.access_ttl":      60 * time.Minute,
		"auth.refresh_ttl":     24 * time.Hour,
		"auth.bcrypt_cost":     12,

		"database.url":            "",
		"database.max_open_conns": 10,
		"database.auto_migrate":   true,

		"ratelimit.disabled":       false,
		"ratelimit.sweep_interval": time.Minute,
		"ratelimit.generic.limit":  100,
		"ratelimit.generic.window": time.Minute,
		"ratelimit.list.limit":     100,
		"ratelimit.list.window":    time.Hour,
		"ratelimit.create.limit":   10,
		"ratelimit.create.window":  time.Hour,
		"ratelimit.login.limit":    5,
		"ratelimit.login.window":   time.Minute,

		"metrics.enabled": true,
		"metrics.path":    "/metrics",
	}
}

// Load reads the file named by USERGATE_CONFIG (config.yaml when unset) and
// the environment on top of the defaults.
func Load() (*Config, error) {
	path := os.Getenv(FileEnv)
	if path == "" {
		path = defaultFile
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit file path. A missing file is not an
// error. "__" in variable names separates nesting levels, so
// USERGATE_RATELIMIT__LOGIN__LIMIT sets ratelimit.login.limit.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")
	for key, value := range Defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, envPrefix)), "__", ".")
}

// ScopePolicies returns the rate limit budgets keyed by scope name.
func (r RateLimit) ScopePolicies() map[string]Limit {
	return map[string]Limit{
		"generic": r.Generic,
		"list":    r.List,
		"create":  r.Create,
		"login":   r.Login,
	}
}
