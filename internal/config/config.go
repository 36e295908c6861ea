// Package config provides configuration loading and structs for the NovaSearch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the index snapshot, the lexical index, and
// the metadata store.
type StorageConfig struct {
	// IndexPath is where save/load snapshots of the vector index and
	// metadata go.
	IndexPath string `yaml:"index_path"`
	// LexicalIndexPath is the Bleve index directory. Empty disables sparse
	// retrieval outright.
	LexicalIndexPath string `yaml:"lexical_index_path"`
	// MetadataBackend is "memory" (default) or "sqlite".
	MetadataBackend string `yaml:"metadata_backend"`
	// MetadataDBPath is the SQLite file used when MetadataBackend is "sqlite".
	MetadataDBPath string `yaml:"metadata_db_path"`
}

// EmbeddingConfig holds embedding provider settings. The API key is read
// from the OPENAI_API_KEY environment variable, never from the file.
type EmbeddingConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint) or "mock".
	Provider   string `yaml:"provider"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
}

// SearchConfig holds retrieval and fusion settings.
type SearchConfig struct {
	DefaultK     int     `yaml:"default_k"`
	DenseWeight  float64 `yaml:"dense_weight"`
	SparseWeight float64 `yaml:"sparse_weight"`
}

// ApplyDefaults fills zero-valued fields with working defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "data/index.nova"
	}
	if cfg.Storage.LexicalIndexPath == "" {
		cfg.Storage.LexicalIndexPath = "data/lexical.bleve"
	}
	if cfg.Storage.MetadataBackend == "" {
		cfg.Storage.MetadataBackend = "memory"
	}
	if cfg.Storage.MetadataDBPath == "" {
		cfg.Storage.MetadataDBPath = "data/metadata.db"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 4096
	}
	if cfg.Search.DefaultK == 0 {
		cfg.Search.DefaultK = 5
	}
	if cfg.Search.DenseWeight == 0 {
		cfg.Search.DenseWeight = 0.6
	}
	if cfg.Search.SparseWeight == 0 {
		cfg.Search.SparseWeight = 0.4
	}
}

// Load reads and parses the config file at path, applies defaults, and
// expands relative storage paths against the config directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	cfg.Storage.LexicalIndexPath = expandPath(cfg.Storage.LexicalIndexPath, configDir)
	cfg.Storage.MetadataDBPath = expandPath(cfg.Storage.MetadataDBPath, configDir)

	return &cfg, nil
}

// Default returns a configuration with all defaults applied, usable without
// a config file.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// expandPath converts a path to absolute. Relative paths resolve against
// configDir.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return filepath.Join(configDir, path)
}
