/*
Package config manages TOML config for snipserve.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/snipserve/snipserve/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Hotkey  HotkeyConfig  `toml:"hotkey"`
	OCR     OCRConfig     `toml:"ocr"`
	Paths   PathsConfig   `toml:"paths"`
	Suggest SuggestConfig `toml:"suggest"`
}

// HotkeyConfig holds the combinations the front-end registers. They are
// validated for syntax here so a typo fails fast at startup instead of
// silently never firing.
type HotkeyConfig struct {
	Capture string `toml:"capture"`
	Suggest string `toml:"suggest"`
}

// OCRConfig has external OCR engine options.
type OCRConfig struct {
	Binary         string `toml:"binary"`
	Language       string `toml:"language"`
	Optimize       bool   `toml:"optimize"`
	MaxOutputFiles int    `toml:"max_output_files"`
	FreshnessSecs  int    `toml:"freshness_secs"`
}

// PathsConfig holds the output and data directories.
type PathsConfig struct {
	OutputDir string `toml:"output_dir"`
	DataDir   string `toml:"data_dir"`
}

// SuggestConfig holds matching options.
type SuggestConfig struct {
	Enabled            bool `toml:"enabled"`
	MaxResults         int  `toml:"max_results"`
	ShowAtStartup      bool `toml:"show_at_startup"`
	EmptyQueryDefaults bool `toml:"empty_query_defaults"`
	PrefixFirst        bool `toml:"prefix_first"`
	FuzzyFallback      bool `toml:"fuzzy_fallback"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/snipserve
// 2. ~/Library/Application Support/snipserve (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "snipserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "snipserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/snipserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
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
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Capture: "ctrl+shift+f12",
			Suggest: "ctrl+alt+f12",
		},
		OCR: OCRConfig{
			Binary:         "tesseract",
			Language:       "eng",
			Optimize:       true,
			MaxOutputFiles: 10,
			FreshnessSecs:  60,
		},
		Paths: PathsConfig{
			OutputDir: "output",
			DataDir:   "data",
		},
		Suggest: SuggestConfig{
			Enabled:            true,
			MaxResults:         10,
			ShowAtStartup:      false,
			EmptyQueryDefaults: false,
			PrefixFirst:        true,
			FuzzyFallback:      true,
		},
	}
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

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse salvages whatever sections still decode from a broken
// TOML file; missing or malformed keys keep their defaults.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if hotkeySection, ok := utils.ExtractSection(tempConfig, "hotkey"); ok {
		extractHotkeyConfig(hotkeySection, &config.Hotkey)
	}
	if ocrSection, ok := utils.ExtractSection(tempConfig, "ocr"); ok {
		extractOCRConfig(ocrSection, &config.OCR)
	}
	if pathsSection, ok := utils.ExtractSection(tempConfig, "paths"); ok {
		extractPathsConfig(pathsSection, &config.Paths)
	}
	if suggestSection, ok := utils.ExtractSection(tempConfig, "suggest"); ok {
		extractSuggestConfig(suggestSection, &config.Suggest)
	}
	return config, nil
}

// extractHotkeyConfig extracts hotkey configuration from a map
func extractHotkeyConfig(data map[string]any, hotkey *HotkeyConfig) {
	if val, ok := utils.ExtractString(data, "capture"); ok {
		hotkey.Capture = val
	}
	if val, ok := utils.ExtractString(data, "suggest"); ok {
		hotkey.Suggest = val
	}
}

// extractOCRConfig extracts OCR configuration from a map
func extractOCRConfig(data map[string]any, ocr *OCRConfig) {
	if val, ok := utils.ExtractString(data, "binary"); ok {
		ocr.Binary = val
	}
	if val, ok := utils.ExtractString(data, "language"); ok {
		ocr.Language = val
	}
	if val, ok := utils.ExtractBool(data, "optimize"); ok {
		ocr.Optimize = val
	}
	if val, ok := utils.ExtractInt64(data, "max_output_files"); ok {
		ocr.MaxOutputFiles = val
	}
	if val, ok := utils.ExtractInt64(data, "freshness_secs"); ok {
		ocr.FreshnessSecs = val
	}
}

// extractPathsConfig extracts path configuration from a map
func extractPathsConfig(data map[string]any, paths *PathsConfig) {
	if val, ok := utils.ExtractString(data, "output_dir"); ok {
		paths.OutputDir = val
	}
	if val, ok := utils.ExtractString(data, "data_dir"); ok {
		paths.DataDir = val
	}
}

// extractSuggestConfig extracts suggestion config from a map
func extractSuggestConfig(data map[string]any, suggest *SuggestConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		suggest.Enabled = val
	}
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		suggest.MaxResults = val
	}
	if val, ok := utils.ExtractBool(data, "show_at_startup"); ok {
		suggest.ShowAtStartup = val
	}
	if val, ok := utils.ExtractBool(data, "empty_query_defaults"); ok {
		suggest.EmptyQueryDefaults = val
	}
	if val, ok := utils.ExtractBool(data, "prefix_first"); ok {
		suggest.PrefixFirst = val
	}
	if val, ok := utils.ExtractBool(data, "fuzzy_fallback"); ok {
		suggest.FuzzyFallback = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Validate checks the parts of the config that cannot fall back to a
// default: hotkey syntax and a sane result limit.
func (c *Config) Validate() error {
	if _, err := ParseHotkey(c.Hotkey.Capture); err != nil {
		return err
	}
	if _, err := ParseHotkey(c.Hotkey.Suggest); err != nil {
		return err
	}
	if c.Suggest.MaxResults < 1 {
		c.Suggest.MaxResults = DefaultConfig().Suggest.MaxResults
	}
	if c.OCR.MaxOutputFiles < 1 {
		c.OCR.MaxOutputFiles = DefaultConfig().OCR.MaxOutputFiles
	}
	return nil
}
