// Package config loads the assembler's tunable settings from a TOML file:
// listing/display options, the default CPU target, and the hard resource
// caps spec §5 otherwise hardcodes (include depth, macro expansion count).
// The expression evaluation stack depth is a constant in package expr and
// is not configurable.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds everything a run of the assembler can be tuned with.
type Config struct {
	// Assemble controls core assembler behavior: target CPU and the caps
	// from spec §5.
	Assemble struct {
		CPU                string `toml:"cpu"` // "8080" or "8085"
		MaxIncludeDepth    int    `toml:"max_include_depth"`
		MaxMacroExpansions int    `toml:"max_macro_expansions"`
	} `toml:"assemble"`

	// Display holds listing/symbol-table and viewer display settings. They
	// are loaded and saved, but no other package reads them.
	Display struct {
		ColorOutput  bool   `toml:"color_output"`
		BytesPerLine int    `toml:"bytes_per_line"`
		NumberFormat string `toml:"number_format"` // hex, dec
	} `toml:"display"`

	// Output holds the default output extensions. DefaultBinExt sets the
	// binary path main.go derives when -o is not given; DefaultListExt is
	// loaded and saved but not read, since a listing is written only with -l.
	Output struct {
		DefaultBinExt  string `toml:"default_bin_ext"`
		DefaultListExt string `toml:"default_list_ext"`
	} `toml:"output"`
}

// DefaultConfig returns a Config with spec.md's own numbers as defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assemble.CPU = "8080"
	cfg.Assemble.MaxIncludeDepth = 1024
	cfg.Assemble.MaxMacroExpansions = 65536

	cfg.Display.ColorOutput = true
	cfg.Display.BytesPerLine = 4
	cfg.Display.NumberFormat = "hex"

	cfg.Output.DefaultBinExt = ".bin"
	cfg.Output.DefaultListExt = ".lst"

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "i8080asm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "i8080asm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "i8080asm", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "i8080asm", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, falling back to
// defaults for anything the file doesn't set (and entirely if the file
// doesn't exist).
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
