package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".otvetgrab"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .otvetgrab configuration file. Every
// field is optional; unset fields keep their defaults or CLI flag values.
type File struct {
	// BaseURL overrides the source root address.
	BaseURL string `yaml:"baseURL,omitempty"`

	// LatestPath overrides the "latest items" listing path.
	LatestPath string `yaml:"latestPath,omitempty"`

	// Categories is the category allow-list; omit it to harvest all
	// non-excluded categories.
	Categories []string `yaml:"categories,omitempty"`

	// Exclusions extends the built-in navigation-label exclusion set.
	Exclusions []string `yaml:"exclusions,omitempty"`

	// Delay overrides the politeness delay between requests,
	// in Go duration syntax (e.g. "200ms", "1s").
	Delay string `yaml:"delay,omitempty"`

	// UserAgent overrides the HTTP User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie is an HTTP cookie for authenticated crawling,
	// in "name=value" form.
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Selectors overrides individual CSS selectors for the source markup.
	Selectors Selectors `yaml:"selectors,omitempty"`
}

// LoadConfigFile loads configuration overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound; callers decide
// whether that is fatal based on whether the path was explicitly requested.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .otvetgrab in the current directory
//  3. Look for .otvetgrab in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply copies the file's overrides onto the Config. Only set fields are
// applied; the YAML layer sits between defaults and CLI flags, so flags
// applied afterwards still win.
func (cf *File) Apply(c *Config) error {
	if cf.BaseURL != "" {
		c.BaseURL = cf.BaseURL
	}
	if cf.LatestPath != "" {
		c.LatestPath = cf.LatestPath
	}
	if len(cf.Categories) > 0 {
		c.Categories = cf.Categories
	}
	if len(cf.Exclusions) > 0 {
		c.Exclusions = append(c.Exclusions, cf.Exclusions...)
	}
	if cf.Delay != "" {
		d, err := time.ParseDuration(cf.Delay)
		if err != nil {
			return fmt.Errorf("invalid delay %q in config file: %w", cf.Delay, err)
		}
		c.Delay = d
	}
	if cf.UserAgent != "" {
		c.UserAgent = cf.UserAgent
	}
	if cf.Cookie != "" {
		c.Cookie = cf.Cookie
	}
	if len(cf.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range cf.Headers {
			c.Headers[k] = v
		}
	}
	c.Selectors = cf.Selectors
	return nil
}
