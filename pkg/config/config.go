/*
Package config manages TOML config for wordcheck.

	[index]
	dictionary = "dictionary.txt"
	tree = "bk_tree.bin"
	filter = "bloom_filter.bin"
	alphabet_length = 255
	fp_prob = 0.01

	[check]
	tolerance = 1
	max_candidates = 10

	[server]
	max_text_length = 65536
	metrics_addr = ""

The file is created with defaults when missing. A file that does not match the
schema is parsed section by section so that valid values still apply.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordcheck/internal/utils"
)

// FileName is the default config file name inside the config dir.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Index  IndexConfig  `toml:"index"`
	Check  CheckConfig  `toml:"check"`
	Server ServerConfig `toml:"server"`
}

// IndexConfig locates the vocabulary and the index files built from it.
type IndexConfig struct {
	Dictionary     string  `toml:"dictionary"`
	Tree           string  `toml:"tree"`
	Filter         string  `toml:"filter"`
	AlphabetLength int     `toml:"alphabet_length"`
	FPProb         float64 `toml:"fp_prob"`
}

// CheckConfig holds lookup options.
type CheckConfig struct {
	Tolerance     int `toml:"tolerance"`
	MaxCandidates int `toml:"max_candidates"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxTextLength int    `toml:"max_text_length"`
	MetricsAddr   string `toml:"metrics_addr"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Dictionary:     "dictionary.txt",
			Tree:           "bk_tree.bin",
			Filter:         "bloom_filter.bin",
			AlphabetLength: 255,
			FPProb:         0.01,
		},
		Check: CheckConfig{
			Tolerance:     1,
			MaxCandidates: 10,
		},
		Server: ServerConfig{
			MaxTextLength: 64 * 1024,
		},
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.Index.AlphabetLength <= 0 {
		return fmt.Errorf("index.alphabet_length must be positive, got %d", c.Index.AlphabetLength)
	}
	if !(c.Index.FPProb > 0 && c.Index.FPProb < 1) {
		return fmt.Errorf("index.fp_prob must be in (0, 1), got %v", c.Index.FPProb)
	}
	if c.Check.Tolerance < 0 {
		return fmt.Errorf("check.tolerance must not be negative, got %d", c.Check.Tolerance)
	}
	if c.Check.MaxCandidates < 0 {
		return fmt.Errorf("check.max_candidates must not be negative, got %d", c.Check.MaxCandidates)
	}
	if c.Server.MaxTextLength <= 0 {
		return fmt.Errorf("server.max_text_length must be positive, got %d", c.Server.MaxTextLength)
	}
	return c.Index.validatePaths()
}

// validatePaths requires the three index files to be distinct, since the tree
// and filter are written side by side after a rebuild.
func (i IndexConfig) validatePaths() error {
	paths := []struct{ key, path string }{
		{"index.dictionary", i.Dictionary},
		{"index.tree", i.Tree},
		{"index.filter", i.Filter},
	}
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		if p.path == "" {
			return fmt.Errorf("%s must be set", p.key)
		}
		abs := filepath.Clean(utils.GetAbsolutePath(p.path))
		if other, ok := seen[abs]; ok {
			return fmt.Errorf("%s and %s both point to %s", other, p.key, p.path)
		}
		seen[abs] = p.key
	}
	return nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordcheck/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string, pr *utils.PathResolver) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	if pr == nil {
		return DefaultConfig(), "", nil
	}
	defaultPath, err := pr.GetConfigPath(FileName)
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
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

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Values that fail validation fall back to defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		config, err = tryPartialParse(configPath)
		if err != nil {
			return nil, err
		}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

// SaveConfig writes the config as TOML.
func SaveConfig(config *Config, configPath string) error {
	if err := utils.SaveTOMLFile(config, configPath); err != nil {
		return fmt.Errorf("failed to save config to %s: %w", configPath, err)
	}
	return nil
}

// tryPartialParse keeps every value that has the right type and defaults the rest
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "index"); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := utils.ExtractSection(tempConfig, "check"); ok {
		extractCheckConfig(section, &config.Check)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	return config, nil
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.Extract[string](data, "dictionary"); ok {
		index.Dictionary = val
	}
	if val, ok := utils.Extract[string](data, "tree"); ok {
		index.Tree = val
	}
	if val, ok := utils.Extract[string](data, "filter"); ok {
		index.Filter = val
	}
	if val, ok := utils.ExtractInt(data, "alphabet_length"); ok {
		index.AlphabetLength = val
	}
	if val, ok := utils.ExtractFloat(data, "fp_prob"); ok {
		index.FPProb = val
	}
}

func extractCheckConfig(data map[string]any, check *CheckConfig) {
	if val, ok := utils.ExtractInt(data, "tolerance"); ok {
		check.Tolerance = val
	}
	if val, ok := utils.ExtractInt(data, "max_candidates"); ok {
		check.MaxCandidates = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt(data, "max_text_length"); ok {
		server.MaxTextLength = val
	}
	if val, ok := utils.Extract[string](data, "metrics_addr"); ok {
		server.MetricsAddr = val
	}
}
