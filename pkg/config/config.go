/*
Package config manages the TOML config for nextword services.

Every field has a built-in default. A missing file is created with those
defaults, a malformed file is salvaged section by section, and values that
make no sense are reset by Validate, so configuration can never stop the
service from starting.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/nextword/internal/utils"
	"github.com/charmbracelet/log"
)

// FileName is the config file looked up in the user config directory.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Model  ModelConfig  `toml:"model"`
	Cache  CacheConfig  `toml:"cache"`
	Admin  AdminConfig  `toml:"admin"`
	Build  BuildConfig  `toml:"build"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
	MaxTextLen   int `toml:"max_text_len"`
}

// ModelConfig selects the dataset and the back-off weights.
type ModelConfig struct {
	Dataset       string  `toml:"dataset"`
	BigramWeight  float64 `toml:"bigram_weight"`
	UnigramWeight float64 `toml:"unigram_weight"`
}

// CacheConfig bounds the prediction cache.
type CacheConfig struct {
	Capacity int `toml:"capacity"`
}

// AdminConfig controls the HTTP health and metrics listener. An empty Addr
// disables it.
type AdminConfig struct {
	Addr string `toml:"addr"`
}

// BuildConfig bounds the tables written by the offline counter.
type BuildConfig struct {
	MaxBigrams  int `toml:"max_bigrams"`
	MaxTrigrams int `toml:"max_trigrams"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			DefaultLimit: 6,
			MaxLimit:     64,
			MaxTextLen:   512,
		},
		Model: ModelConfig{
			Dataset:       "data/ngrams.json",
			BigramWeight:  0.6,
			UnigramWeight: 0.4,
		},
		Cache: CacheConfig{
			Capacity: 4096,
		},
		Build: BuildConfig{
			MaxBigrams:  3000,
			MaxTrigrams: 2000,
		},
		CLI: CliConfig{
			DefaultLimit: 6,
		},
	}
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/nextword/config.toml
// 3. Builtin defaults
//
// It returns the path the config came from, or "" for builtin defaults.
func LoadConfigWithPriority(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if utils.FileExists(customConfigPath) {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s. Trying default path...", customConfigPath)
		}
	}

	defaultPath := utils.NewPathResolver().ConfigPath(FileName)
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return config, nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Keys missing from the file keep their
// defaults; a file that does not decode is salvaged section by section.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		if _, statErr := os.Stat(configPath); statErr != nil {
			return nil, fmt.Errorf("load config: %w", statErr)
		}
		config = tryPartialParse(configPath)
	}
	config.Validate()
	return config, nil
}

// tryPartialParse keeps every well-typed value it can find in configPath
func tryPartialParse(configPath string) *Config {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "model"); ok {
		extractModelConfig(section, &config.Model)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cache"); ok {
		if val, ok := utils.ExtractInt64(section, "capacity"); ok {
			config.Cache.Capacity = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "admin"); ok {
		if val, ok := utils.ExtractString(section, "addr"); ok {
			config.Admin.Addr = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "build"); ok {
		extractBuildConfig(section, &config.Build)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		if val, ok := utils.ExtractInt64(section, "default_limit"); ok {
			config.CLI.DefaultLimit = val
		}
	}
	return config
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_text_len"); ok {
		server.MaxTextLen = val
	}
}

// extractModelConfig extracts model configuration from a map
func extractModelConfig(data map[string]any, model *ModelConfig) {
	if val, ok := utils.ExtractString(data, "dataset"); ok {
		model.Dataset = val
	}
	if val, ok := utils.ExtractFloat(data, "bigram_weight"); ok {
		model.BigramWeight = val
	}
	if val, ok := utils.ExtractFloat(data, "unigram_weight"); ok {
		model.UnigramWeight = val
	}
}

// extractBuildConfig extracts counter limits from a map
func extractBuildConfig(data map[string]any, build *BuildConfig) {
	if val, ok := utils.ExtractInt64(data, "max_bigrams"); ok {
		build.MaxBigrams = val
	}
	if val, ok := utils.ExtractInt64(data, "max_trigrams"); ok {
		build.MaxTrigrams = val
	}
}

// Validate resets out-of-range values to their defaults.
func (c *Config) Validate() {
	def := DefaultConfig()

	if c.Server.MaxLimit < 1 {
		log.Warnf("Invalid server.max_limit %d, using %d", c.Server.MaxLimit, def.Server.MaxLimit)
		c.Server.MaxLimit = def.Server.MaxLimit
	}
	if c.Server.DefaultLimit < 1 || c.Server.DefaultLimit > c.Server.MaxLimit {
		log.Warnf("Invalid server.default_limit %d, using %d", c.Server.DefaultLimit, min(def.Server.DefaultLimit, c.Server.MaxLimit))
		c.Server.DefaultLimit = min(def.Server.DefaultLimit, c.Server.MaxLimit)
	}
	if c.Server.MaxTextLen < 1 {
		c.Server.MaxTextLen = def.Server.MaxTextLen
	}
	if c.Model.BigramWeight < 0 {
		log.Warnf("Negative model.bigram_weight, using %g", def.Model.BigramWeight)
		c.Model.BigramWeight = def.Model.BigramWeight
	}
	if c.Model.UnigramWeight < 0 {
		log.Warnf("Negative model.unigram_weight, using %g", def.Model.UnigramWeight)
		c.Model.UnigramWeight = def.Model.UnigramWeight
	}
	if c.Cache.Capacity < 1 {
		c.Cache.Capacity = def.Cache.Capacity
	}
	if c.Build.MaxBigrams < 0 {
		c.Build.MaxBigrams = def.Build.MaxBigrams
	}
	if c.Build.MaxTrigrams < 0 {
		c.Build.MaxTrigrams = def.Build.MaxTrigrams
	}
	if c.CLI.DefaultLimit < 1 {
		c.CLI.DefaultLimit = def.CLI.DefaultLimit
	}
}

// SaveConfig saves into a TOML file, creating its directory when needed
func SaveConfig(config *Config, configPath string) error {
	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return utils.SaveTOMLFile(config, configPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}
