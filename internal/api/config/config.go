package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/storage/adapter/outbound/diskstore"
	"github.com/anthanhphan/go-file-gateway/pkg/signedurl"
	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

// Environment variables that override secrets from the config file.
const (
	EnvSigningSecret = "FGW_SIGNING_SECRET"
	EnvJWTSecret     = "FGW_JWT_SECRET"
)

// Storage backends selectable with storage.backend.
const (
	BackendLocal   = "local"
	BackendNetwork = "network"
	BackendObject  = "object"
)

// Config holds gateway configuration
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	App      AppConfig      `json:"app" yaml:"app"`
	Auth     AuthConfig     `json:"auth" yaml:"auth"`
	Signing  SigningConfig  `json:"signing" yaml:"signing"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Registry RegistryConfig `json:"registry" yaml:"registry"`
	Redis    RedisConfig    `json:"redis" yaml:"redis"`
	Mime     MimeConfig     `json:"mime" yaml:"mime"`
	Purge    PurgeConfig    `json:"purge" yaml:"purge"`
	Logger   logger.Config  `json:"logger" yaml:"logger"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
	// PublicBaseURL prefixes signed download links, e.g. https://files.example.com.
	PublicBaseURL string `json:"public_base_url" yaml:"public_base_url"`
}

type AppConfig struct {
	NodeID           int64 `json:"node_id" yaml:"node_id"`
	MaxUploadBytes   int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	BackendTimeoutMS int   `json:"backend_timeout_ms" yaml:"backend_timeout_ms"`
	MaxRetries       int   `json:"max_retries" yaml:"max_retries"`
	RetryBackoffMS   int   `json:"retry_backoff_ms" yaml:"retry_backoff_ms"`
}

type AuthConfig struct {
	JWTSecret string `json:"jwt_secret" yaml:"jwt_secret"`
	Issuer    string `json:"issuer" yaml:"issuer"`
}

type SigningConfig struct {
	// Secret is never logged. Prefer FGW_SIGNING_SECRET over the file.
	Secret            string `json:"secret" yaml:"secret"`
	DefaultTTLSeconds int    `json:"default_ttl_seconds" yaml:"default_ttl_seconds"`
	MinTTLSeconds     int    `json:"min_ttl_seconds" yaml:"min_ttl_seconds"`
	MaxTTLSeconds     int    `json:"max_ttl_seconds" yaml:"max_ttl_seconds"`
	ClockSkewSeconds  int    `json:"clock_skew_seconds" yaml:"clock_skew_seconds"`
}

type StorageConfig struct {
	Backend string             `json:"backend" yaml:"backend"`
	Local   diskstore.Config   `json:"local" yaml:"local"`
	Network NetworkShareConfig `json:"network" yaml:"network"`
	Object  ObjectStoreConfig  `json:"object" yaml:"object"`
}

type NetworkShareConfig struct {
	Seeds          []string `json:"seeds" yaml:"seeds"`
	PollIntervalMS int      `json:"poll_interval_ms" yaml:"poll_interval_ms"`
}

type ObjectStoreConfig struct {
	KeyPrefix  string `json:"key_prefix" yaml:"key_prefix"`
	QuotaBytes int64  `json:"quota_bytes" yaml:"quota_bytes"`
}

type RegistryConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

type MimeConfig struct {
	// Overrides maps extensions to MIME types; an empty value removes the
	// built-in entry.
	Overrides map[string]string `json:"overrides" yaml:"overrides"`
}

type PurgeConfig struct {
	Enabled          bool `json:"enabled" yaml:"enabled"`
	IntervalSeconds  int  `json:"interval_seconds" yaml:"interval_seconds"`
	RetentionSeconds int  `json:"retention_seconds" yaml:"retention_seconds"`
	Workers          int  `json:"workers" yaml:"workers"`
	BatchSize        int  `json:"batch_size" yaml:"batch_size"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8090",
			PublicBaseURL: "http://localhost:8090",
		},
		App: AppConfig{
			NodeID:           1,
			MaxUploadBytes:   32 * 1024 * 1024,
			BackendTimeoutMS: 10000,
			MaxRetries:       3,
			RetryBackoffMS:   100,
		},
		Auth: AuthConfig{
			Issuer: "file-gateway",
		},
		Signing: SigningConfig{
			DefaultTTLSeconds: 3600,
			MinTTLSeconds:     1,
			MaxTTLSeconds:     7 * 24 * 3600,
		},
		Storage: StorageConfig{
			Backend: BackendLocal,
			Local: diskstore.Config{
				Root:  "./data/objects",
				FSync: true,
			},
			Network: NetworkShareConfig{
				Seeds:          []string{"localhost:8081"},
				PollIntervalMS: 5000,
			},
			Object: ObjectStoreConfig{
				KeyPrefix: "fgw:",
			},
		},
		Registry: RegistryConfig{
			Path: "./data/registry.db",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Purge: PurgeConfig{
			IntervalSeconds:  300,
			RetentionSeconds: 24 * 3600,
			Workers:          4,
			BatchSize:        100,
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// Validate reports the first setting the gateway cannot run with. Messages
// never include secret values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if len(c.Signing.Secret) < signedurl.MinSecretLength {
		return fmt.Errorf("signing.secret must be at least %d bytes (set %s)", signedurl.MinSecretLength, EnvSigningSecret)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set %s)", EnvJWTSecret)
	}
	if c.App.MaxUploadBytes <= 0 {
		return errors.New("app.max_upload_bytes must be positive")
	}
	s := c.Signing
	if s.MinTTLSeconds <= 0 || s.MaxTTLSeconds < s.MinTTLSeconds {
		return fmt.Errorf("signing ttl bounds [%d, %d] are invalid", s.MinTTLSeconds, s.MaxTTLSeconds)
	}
	if s.DefaultTTLSeconds < s.MinTTLSeconds || s.DefaultTTLSeconds > s.MaxTTLSeconds {
		return fmt.Errorf("signing.default_ttl_seconds %d outside [%d, %d]", s.DefaultTTLSeconds, s.MinTTLSeconds, s.MaxTTLSeconds)
	}
	if s.ClockSkewSeconds < 0 {
		return errors.New("signing.clock_skew_seconds must not be negative")
	}
	switch c.Storage.Backend {
	case BackendLocal:
		if c.Storage.Local.Root == "" {
			return errors.New("storage.local.root is required")
		}
	case BackendNetwork:
		if len(c.Storage.Network.Seeds) == 0 {
			return errors.New("storage.network.seeds is required")
		}
	case BackendObject:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the object backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	if c.Registry.Path == "" {
		return errors.New("registry.path is required")
	}
	if c.Purge.Enabled && (c.Purge.IntervalSeconds <= 0 || c.Purge.Workers <= 0) {
		return errors.New("purge.interval_seconds and purge.workers must be positive")
	}
	return nil
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.App.BackendTimeoutMS) * time.Millisecond
}

func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.App.RetryBackoffMS) * time.Millisecond
}

// applyEnv lets deployments keep secrets out of config files.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSigningSecret); v != "" {
		c.Signing.Secret = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
}

// Load reads path, or internal/api/config/<ENV>.yaml when path is empty,
// then applies environment overrides and validates. path must resolve inside
// the working directory.
func Load(path string) (*Config, error) {
	configPath := path
	if configPath != "" {
		rel, err := relativeConfigPath(configPath)
		if err != nil {
			return nil, err
		}
		configPath = rel
	} else {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "api", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		if path != "" {
			return nil, err
		}
		// The logger is not initialised yet.
		log.Printf("Config file not found or failed to parse, using defaults. Path: %s, Error: %v", configPath, err)
		parsedCfg = cfg
	}

	parsedCfg.applyEnv()
	if err := parsedCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gateway config: %w", err)
	}
	return parsedCfg, nil
}
