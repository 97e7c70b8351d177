package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the softspec configuration
type Config struct {
	DefaultEnvironment string                    `json:"defaultEnvironment,omitempty"`
	Environments       map[string]map[string]any `json:"environments,omitempty"`
	Reporters          []string                  `json:"reporters,omitempty"` // Output formats
	OutputDir          string                    `json:"outputDir,omitempty"` // Directory for output files
	Parallel           *bool                     `json:"parallel,omitempty"`
	Concurrency        int                       `json:"concurrency,omitempty"` // Scenarios run at once in parallel mode
	Bail               *bool                     `json:"bail,omitempty"`
	Verbose            *bool                     `json:"verbose,omitempty"`
	NoColor            *bool                     `json:"noColor,omitempty"`
	UpdateSnapshots    *bool                     `json:"updateSnapshots,omitempty"`
	// Database overrides the fixture database of every scenario file.
	Database string `json:"database,omitempty"`
}

// BoolPtr returns a pointer to a bool value
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetParallel returns the parallel setting, defaulting to false
func (c *Config) GetParallel() bool {
	return getBool(c.Parallel, false)
}

// GetBail returns the bail setting, defaulting to false
func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

func (c *Config) GetUpdateSnapshots() bool {
	return getBool(c.UpdateSnapshots, false)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".softspec.config.json",
	"softspec.config.json",
	".softspecrc",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if config.Concurrency < 0 {
		return nil, fmt.Errorf("parsing %s: concurrency must not be negative", path)
	}
	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.DefaultEnvironment != "" {
		result.DefaultEnvironment = other.DefaultEnvironment
	}
	if other.OutputDir != "" {
		result.OutputDir = other.OutputDir
	}
	if other.Concurrency > 0 {
		result.Concurrency = other.Concurrency
	}
	if other.Database != "" {
		result.Database = other.Database
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Parallel != nil {
		result.Parallel = other.Parallel
	}
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.UpdateSnapshots != nil {
		result.UpdateSnapshots = other.UpdateSnapshots
	}

	if len(other.Environments) > 0 {
		merged := make(map[string]map[string]any, len(c.Environments)+len(other.Environments))
		for name, vars := range c.Environments {
			merged[name] = vars
		}
		for name, vars := range other.Environments {
			combined := make(map[string]any, len(merged[name])+len(vars))
			for k, v := range merged[name] {
				combined[k] = v
			}
			for k, v := range vars {
				combined[k] = v
			}
			merged[name] = combined
		}
		result.Environments = merged
	}

	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
