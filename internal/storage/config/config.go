package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/anthanhphan/go-file-gateway/internal/storage/adapter/outbound/diskstore"
	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

// Config holds storage node configuration
type Config struct {
	Server ServerConfig     `json:"server" yaml:"server"`
	Gossip GossipConfig     `json:"gossip" yaml:"gossip"`
	Disk   diskstore.Config `json:"disk" yaml:"disk"`
	Logger logger.Config    `json:"logger" yaml:"logger"`
}

type ServerConfig struct {
	NodeID   string `json:"node_id" yaml:"node_id"`
	Hostname string `json:"hostname" yaml:"hostname"`
	Port     int    `json:"port" yaml:"port"`
}

type GossipConfig struct {
	Port  int      `json:"port" yaml:"port"`
	Seeds []string `json:"seeds" yaml:"seeds"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Hostname: "127.0.0.1",
			Port:     8081,
		},
		Gossip: GossipConfig{
			Port: 7946,
		},
		Disk: diskstore.Config{
			Root:  "./data/objects",
			FSync: true,
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// Validate checks values the node cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Gossip.Port <= 0 || c.Gossip.Port > 65535 {
		return fmt.Errorf("gossip.port %d out of range", c.Gossip.Port)
	}
	if c.Gossip.Port == c.Server.Port {
		return errors.New("gossip.port must differ from server.port")
	}
	if c.Disk.Root == "" {
		return errors.New("disk.root is required")
	}
	if c.Disk.QuotaBytes < 0 {
		return errors.New("disk.quota_bytes must not be negative")
	}
	return nil
}

// Load reads path, or internal/storage/config/<ENV>.yaml when path is empty.
// path must resolve inside the working directory.
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
		configPath = filepath.Join("internal", "storage", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		if path != "" {
			return nil, err
		}
		log.Printf("Config file not found or failed to parse, using defaults. Path: %s, Error: %v", configPath, err)
		parsedCfg = cfg
	}

	if err := parsedCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}
	return parsedCfg, nil
}
