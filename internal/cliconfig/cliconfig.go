// Package cliconfig holds the lintool configuration: defaults, a TOML
// config file, and flag overrides layered on top by the command wiring.
package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds lintool configuration.
type Config struct {
	// Serial link to the monitor firmware (watch).
	Port     string `toml:"port"`
	PortBaud int    `toml:"port_baud"`

	// LIN decoding parameters (replay).
	LINBaud     uint32 `toml:"lin_baud"`
	TicksPerBit uint16 `toml:"ticks_per_bit"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Port:        "/dev/ttyACM0",
		PortBaud:    115200,
		LINBaud:     9600,
		TicksPerBit: 26,
	}
}

// DefaultPath returns ~/.lintool/config.toml, or "" when the home
// directory is unknown.
func DefaultPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".lintool", "config.toml")
	}
	return ""
}

// Load layers a TOML file over the defaults. An empty path means "default
// location, optional": a missing file there is not an error. An explicit
// path must exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
