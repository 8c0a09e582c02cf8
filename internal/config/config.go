// Package config loads and validates the engine's configuration: the
// recognized options table from the external interfaces section of the
// specification, plus the handful of environment variable overrides
// operators tune most often.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opencodesearch/codesearch/internal/apperrors"
)

// HNSWConfig tunes the vector store's graph construction and search.
type HNSWConfig struct {
	M              int `yaml:"m" json:"m"`
	EfConstruction int `yaml:"efConstruction" json:"efConstruction"`
	EfSearch       int `yaml:"efSearch" json:"efSearch"`
	MaxElements    int `yaml:"maxElements" json:"maxElements"`
}

// CacheConfig tunes the result cache.
type CacheConfig struct {
	Capacity int `yaml:"capacity" json:"capacity"`
	TTLMs    int `yaml:"ttlMs" json:"ttlMs"`
}

// Config is the complete recognized configuration for a codebase-search
// instance, loaded from YAML and validated before use.
type Config struct {
	CodebaseRoot      string      `yaml:"codebaseRoot" json:"codebaseRoot"`
	MaxFileSize       int64       `yaml:"maxFileSize" json:"maxFileSize"`
	IgnoreExtra       []string    `yaml:"ignoreExtra" json:"ignoreExtra"`
	EmbeddingProvider string      `yaml:"embeddingProvider" json:"embeddingProvider"`
	HNSW              HNSWConfig  `yaml:"hnsw" json:"hnsw"`
	Cache             CacheConfig `yaml:"cache" json:"cache"`
	DebounceMs        int         `yaml:"debounceMs" json:"debounceMs"`
	RebuildThreshold  float64     `yaml:"rebuildThreshold" json:"rebuildThreshold"`
	VectorWeight      float64     `yaml:"vectorWeight" json:"vectorWeight"`
	LogLevel          string      `yaml:"logLevel" json:"logLevel"`
}

// Default returns the configuration with every recognized option set to its
// documented default, and CodebaseRoot left empty (the caller must supply
// one before Validate).
func Default() *Config {
	return &Config{
		MaxFileSize:       1 << 20, // 1 MiB
		IgnoreExtra:       nil,
		EmbeddingProvider: "",
		HNSW: HNSWConfig{
			M:              16,
			EfConstruction: 200,
			EfSearch:       50,
			MaxElements:    10000,
		},
		Cache: CacheConfig{
			Capacity: 256,
			TTLMs:    60000,
		},
		DebounceMs:       500,
		RebuildThreshold: 0.20,
		VectorWeight:     0.7,
		LogLevel:         "info",
	}
}

// Load reads a YAML config file at path, merges it over the defaults, applies
// environment overrides, and validates the result. A missing file is not an
// error: defaults (plus env overrides) are used as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		cfg.CodebaseRoot = filepath.Dir(path)

		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, apperrors.Wrap(apperrors.CodeIO, "read config file", err).
					WithDetail("path", path)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, apperrors.Wrap(apperrors.CodeConfig, "parse config file", err).
					WithDetail("path", path)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// codesearchEnvPrefix names the environment variables this module honors.
const codesearchEnvPrefix = "CODESEARCH_"

// applyEnvOverrides applies CODESEARCH_* overrides for the options operators
// tune most: provider name, debounce interval, cache capacity, and log level.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(codesearchEnvPrefix + "EMBEDDING_PROVIDER"); v != "" {
		c.EmbeddingProvider = v
	}
	if v := os.Getenv(codesearchEnvPrefix + "DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.DebounceMs = n
		}
	}
	if v := os.Getenv(codesearchEnvPrefix + "CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Cache.Capacity = n
		}
	}
	if v := os.Getenv(codesearchEnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration for a nonexistent root or contradictory
// values and returns a ConfigError describing the first problem found.
func (c *Config) Validate() error {
	if c.CodebaseRoot == "" {
		return apperrors.New(apperrors.CodeConfig, "codebaseRoot is required")
	}
	info, err := os.Stat(c.CodebaseRoot)
	if err != nil || !info.IsDir() {
		return apperrors.New(apperrors.CodeConfig, "codebaseRoot does not exist").
			WithDetail("codebaseRoot", c.CodebaseRoot)
	}
	if c.MaxFileSize <= 0 {
		return apperrors.New(apperrors.CodeConfig, "maxFileSize must be positive")
	}
	if c.DebounceMs < 0 {
		return apperrors.New(apperrors.CodeConfig, "debounceMs must be non-negative")
	}
	if c.RebuildThreshold < 0 || c.RebuildThreshold > 1 {
		return apperrors.New(apperrors.CodeConfig, "rebuildThreshold must be between 0 and 1").
			WithDetail("rebuildThreshold", fmt.Sprint(c.RebuildThreshold))
	}
	if c.VectorWeight < 0 || c.VectorWeight > 1 {
		return apperrors.New(apperrors.CodeConfig, "vectorWeight must be between 0 and 1").
			WithDetail("vectorWeight", fmt.Sprint(c.VectorWeight))
	}
	if c.Cache.Capacity <= 0 {
		return apperrors.New(apperrors.CodeConfig, "cache.capacity must be positive")
	}
	if c.HNSW.M <= 0 || c.HNSW.EfConstruction <= 0 || c.HNSW.EfSearch <= 0 || c.HNSW.MaxElements <= 0 {
		return apperrors.New(apperrors.CodeConfig, "hnsw parameters must be positive")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return apperrors.New(apperrors.CodeConfig, "logLevel must be debug, info, warn, or error").
			WithDetail("logLevel", c.LogLevel)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file, for `init`-style CLI
// commands that scaffold a starting config.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "marshal config", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "write config file", err).WithDetail("path", path)
	}
	return nil
}

// StoreDir returns the `.codebase-search/` directory for a given codebase
// root, the on-disk location for the persistent store, vector snapshot, and
// cache metadata.
func StoreDir(codebaseRoot string) string {
	return filepath.Join(codebaseRoot, ".codebase-search")
}
