// Package config provides configuration file support for sonda.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the sonda configuration file structure.
type Config struct {
	// Defaults are applied when flags are not specified
	Defaults Defaults `yaml:"defaults"`

	// Endpoints overrides the public-address lookup chain
	Endpoints []Endpoint `yaml:"endpoints,omitempty"`

	// Aliases for common targets
	Aliases map[string]string `yaml:"aliases,omitempty"`
}

// Defaults holds default values for run parameters.
type Defaults struct {
	// Run mode
	InfoOnly bool `yaml:"info_only"`
	Quiet    bool `yaml:"quiet"`

	// Output mode
	JSON    bool `yaml:"json"`
	Verbose bool `yaml:"verbose"`
	NoColor bool `yaml:"no_color"`

	// Probe parameters
	Timeout        Duration `yaml:"timeout"`
	PublicResolver string   `yaml:"public_resolver"`
}

// Endpoint is one public-address lookup service entry.
type Endpoint struct {
	URL  string `yaml:"url"`
	Kind string `yaml:"kind"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Defaults: Defaults{
			InfoOnly:       false,
			Quiet:          false,
			JSON:           false,
			Verbose:        false,
			NoColor:        false,
			Timeout:        Duration(1 * time.Second),
			PublicResolver: "8.8.8.8",
		},
		Aliases: make(map[string]string),
	}
}

// Load reads configuration from the default config file locations.
// It searches in order:
//  1. ./sonda.yaml (current directory)
//  2. ~/.config/sonda/config.yaml (Linux/macOS)
//  3. %APPDATA%\sonda\config.yaml (Windows)
//
// If no config file is found, returns default configuration.
func Load() (*Config, error) {
	paths := getConfigPaths()

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return LoadFrom(path)
		}
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save writes the configuration to the default user config path.
func (c *Config) Save() error {
	return c.SaveTo(getUserConfigPath())
}

// SaveTo writes the configuration to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// getConfigPaths returns the list of config file paths to search.
func getConfigPaths() []string {
	paths := []string{
		"sonda.yaml",
		"sonda.yml",
		".sonda.yaml",
		".sonda.yml",
	}

	userPath := getUserConfigPath()
	if userPath != "" {
		paths = append(paths, userPath)
	}

	return paths
}

// getUserConfigPath returns the user-specific config file path.
func getUserConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "sonda", "config.yaml")
		}
	default: // Linux, macOS, etc.
		home, err := os.UserHomeDir()
		if err == nil {
			// Check XDG_CONFIG_HOME first
			xdgConfig := os.Getenv("XDG_CONFIG_HOME")
			if xdgConfig != "" {
				return filepath.Join(xdgConfig, "sonda", "config.yaml")
			}
			return filepath.Join(home, ".config", "sonda", "config.yaml")
		}
	}
	return ""
}

// GetConfigPath returns the path where user config would be saved.
func GetConfigPath() string {
	return getUserConfigPath()
}

// GenerateExample generates an example configuration file content.
func GenerateExample() string {
	return `# Sonda Configuration File
# Location: ~/.config/sonda/config.yaml (Linux/macOS)
#           %APPDATA%\sonda\config.yaml (Windows)
#           ./sonda.yaml (current directory)

defaults:
  # Run mode
  info_only: false        # Only report network information
  quiet: false            # Suppress network information

  # Output mode (only one should be true)
  json: false             # JSON output
  verbose: false          # Detailed table output
  no_color: false         # Disable colors

  # Probe parameters
  timeout: 1s             # Per-probe reply timeout
  public_resolver: 8.8.8.8

# Public address lookup chain (optional, tried in order)
# endpoints:
#   - url: https://api.ipify.org?format=json
#     kind: json
#   - url: https://ifconfig.me/ip
#     kind: text

# Target aliases (optional)
aliases:
  dns: 8.8.8.8
  cf: 1.1.1.1
  google: google.com
`
}
