package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Link     LinkConfig     `yaml:"link"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// LinkConfig contains radio link settings
type LinkConfig struct {
	// URL is either a serial device path (e.g. /dev/ttyUSB0) or a
	// network address in the form udp:host:port
	URL  string `yaml:"url"`
	Baud int    `yaml:"baud"` // used for serial links, ignored for UDP
}

// TimeoutsConfig contains link timing settings, all in seconds.
// Zero values fall back to defaults in Load.
type TimeoutsConfig struct {
	Discovery int `yaml:"discovery"` // initial heartbeat window
	Command   int `yaml:"command"`   // COMMAND_ACK wait budget
	Close     int `yaml:"close"`     // worker join budget on close
}

// GetAddress returns the link URL, with the baud appended for serial
// devices, for logging purposes.
func (c *Config) GetAddress() string {
	if strings.HasPrefix(c.Link.URL, "/") || strings.HasPrefix(c.Link.URL, "COM") {
		return fmt.Sprintf("%s:%d", c.Link.URL, c.Link.Baud)
	}
	return c.Link.URL
}

// Validate checks the configuration for required fields
func (c *Config) Validate() error {
	if c.Link.URL == "" {
		return fmt.Errorf("link.url must be set")
	}
	if c.Link.Baud < 0 {
		return fmt.Errorf("link.baud must not be negative")
	}
	return nil
}

// Load reads configuration from a YAML file
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Link.Baud == 0 {
		cfg.Link.Baud = 57600
	}
	if cfg.Timeouts.Discovery <= 0 {
		cfg.Timeouts.Discovery = 5
	}
	if cfg.Timeouts.Command <= 0 {
		cfg.Timeouts.Command = 3
	}
	if cfg.Timeouts.Close <= 0 {
		cfg.Timeouts.Close = 3
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
