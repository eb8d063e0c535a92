/*
Package config manages the TOML config of jamofind.

Values come from three layers, later ones winning: built-in defaults, the TOML file,
and JAMOFIND_* environment variables. A config file that fails to decode is not
fatal; every section that still parses is kept and the rest falls back to defaults.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/jamofind/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Index  IndexConfig  `toml:"index"`
	Store  StoreConfig  `toml:"store"`
	HTTP   HTTPConfig   `toml:"http"`
}

// ServerConfig has query serving options shared by the IPC and HTTP surfaces.
type ServerConfig struct {
	MaxLimit  int `toml:"max_limit"  env:"JAMOFIND_MAX_LIMIT"`
	MinQuery  int `toml:"min_query"  env:"JAMOFIND_MIN_QUERY"`
	MaxQuery  int `toml:"max_query"  env:"JAMOFIND_MAX_QUERY"`
	Workers   int `toml:"workers"    env:"JAMOFIND_WORKERS"`
	CacheSize int `toml:"cache_size" env:"JAMOFIND_CACHE_SIZE"`
}

// IndexConfig controls how the region and apartment indexes are built.
type IndexConfig struct {
	ProgressEvery int  `toml:"progress_every" env:"JAMOFIND_PROGRESS_EVERY"`
	Snapshot      bool `toml:"snapshot"       env:"JAMOFIND_SNAPSHOT"`
	NGram         int  `toml:"ngram"          env:"JAMOFIND_NGRAM"`
}

// StoreConfig points at the badger directory holding the corpus.
type StoreConfig struct {
	Path     string `toml:"path"      env:"JAMOFIND_STORE_PATH"`
	InMemory bool   `toml:"in_memory" env:"JAMOFIND_STORE_IN_MEMORY"`
}

// HTTPConfig holds the options of the HTTP API.
type HTTPConfig struct {
	Addr  string `toml:"addr"  env:"JAMOFIND_HTTP_ADDR"`
	Debug bool   `toml:"debug" env:"JAMOFIND_HTTP_DEBUG"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:  64,
			MinQuery:  1,
			MaxQuery:  60,
			Workers:   8,
			CacheSize: 4096,
		},
		Index: IndexConfig{
			ProgressEvery: 10000,
			Snapshot:      true,
			NGram:         2,
		},
		Store: StoreConfig{
			Path:     "store",
			InMemory: false,
		},
		HTTP: HTTPConfig{
			Addr:  "127.0.0.1:8080",
			Debug: false,
		},
	}
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.ConfigPath("config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/jamofind/config.toml
// 3. Builtin defaults
//
// Environment overrides are applied on top of whichever layer won.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadFile(customConfigPath)
	if err := ApplyEnv(config); err != nil {
		return nil, path, err
	}
	config.Validate()
	return config, path, nil
}

func loadFile(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// ApplyEnv overrides config with every JAMOFIND_* variable that is set.
// Unset variables leave the current value alone.
func ApplyEnv(config *Config) error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("config: read env: %w", err)
	}
	return nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps whichever sections of a broken file still decode.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "index"); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := utils.ExtractSection(tempConfig, "store"); ok {
		extractStoreConfig(section, &config.Store)
	}
	if section, ok := utils.ExtractSection(tempConfig, "http"); ok {
		extractHTTPConfig(section, &config.HTTP)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_query"); ok {
		server.MinQuery = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query"); ok {
		server.MaxQuery = val
	}
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		server.Workers = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		server.CacheSize = val
	}
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.ExtractInt64(data, "progress_every"); ok {
		index.ProgressEvery = val
	}
	if val, ok := utils.ExtractBool(data, "snapshot"); ok {
		index.Snapshot = val
	}
	if val, ok := utils.ExtractInt64(data, "ngram"); ok {
		index.NGram = val
	}
}

func extractStoreConfig(data map[string]any, store *StoreConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		store.Path = val
	}
	if val, ok := utils.ExtractBool(data, "in_memory"); ok {
		store.InMemory = val
	}
}

func extractHTTPConfig(data map[string]any, http *HTTPConfig) {
	if val, ok := utils.ExtractString(data, "addr"); ok {
		http.Addr = val
	}
	if val, ok := utils.ExtractBool(data, "debug"); ok {
		http.Debug = val
	}
}

// Validate replaces out of range values with their defaults, logging each fix.
func (c *Config) Validate() {
	def := DefaultConfig()
	fix := func(name string, val *int, min int, fallback int) {
		if *val < min {
			log.Warnf("Invalid %s %d, using default %d", name, *val, fallback)
			*val = fallback
		}
	}

	fix("server.max_limit", &c.Server.MaxLimit, 1, def.Server.MaxLimit)
	fix("server.min_query", &c.Server.MinQuery, 1, def.Server.MinQuery)
	fix("server.max_query", &c.Server.MaxQuery, c.Server.MinQuery, def.Server.MaxQuery)
	fix("server.workers", &c.Server.Workers, 1, def.Server.Workers)
	fix("index.progress_every", &c.Index.ProgressEvery, 1, def.Index.ProgressEvery)
	fix("index.ngram", &c.Index.NGram, 1, def.Index.NGram)

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = def.HTTP.Addr
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
