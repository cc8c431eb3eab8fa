package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/universo-platformo/updl-engine/internal/template"
)

// Config is the publish server configuration (publish.yaml).
type Config struct {
	Version int `yaml:"version"`
	Server  struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Publish struct {
		DefaultTemplate string `yaml:"default_template"`
	} `yaml:"publish"`
	Libraries map[string]struct {
		Source  string `yaml:"source"`
		Version string `yaml:"version"`
	} `yaml:"libraries"`
}

// Port returns the configured server port, defaulting to 8080 if not set.
func (c *Config) Port() int {
	if c.Server.Port == 0 {
		return 8080
	}
	return c.Server.Port
}

// DatabasePath returns the publication database path, with a default.
func (c *Config) DatabasePath() string {
	if c.Database.Path == "" {
		return "publications.db"
	}
	return c.Database.Path
}

// DefaultTemplate returns the template used when a request names none.
func (c *Config) DefaultTemplate() string {
	if c.Publish.DefaultTemplate == "" {
		return "quiz"
	}
	return c.Publish.DefaultTemplate
}

// LogLevel returns the configured log level, defaulting to info.
func (c *Config) LogLevel() string {
	if c.Logging.Level == "" {
		return "info"
	}
	return c.Logging.Level
}

// LibraryConfig converts the configured library pins into build options.
func (c *Config) LibraryConfig() map[string]template.LibraryOverride {
	if len(c.Libraries) == 0 {
		return nil
	}
	out := make(map[string]template.LibraryOverride, len(c.Libraries))
	for lib, pin := range c.Libraries {
		out[lib] = template.LibraryOverride{
			Source:  template.LibrarySource(pin.Source),
			Version: pin.Version,
		}
	}
	return out
}

// Load reads publish.yaml from path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported publish.yaml version: %d", cfg.Version)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Version: 1}
}
