// Package config loads the regform YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultDataBaseURL = "https://portal.ppimalaysia.id/assets/data"
	DefaultTheme       = "auto"
	DefaultMarkdown    = "auto"
)

// Config is the top-level configuration file.
type Config struct {
	Datasets DatasetConfig `yaml:"datasets"`
	API      APIConfig     `yaml:"api"`
	UI       UIConfig      `yaml:"ui"`

	// StateDir holds the database and the log file.
	StateDir string `yaml:"state_dir,omitempty"`
}

// DatasetConfig locates the lookup datasets. Each entry is a URL or a local
// file path (.json, .jsonc, .yaml, .jsonl).
type DatasetConfig struct {
	Universities string `yaml:"universities"`
	Postcodes    string `yaml:"postcodes"`
	RegionCodes  string `yaml:"region_codes"`
	// NoCache asks HTTP caches to revalidate the download.
	NoCache bool `yaml:"no_cache"`
}

// APIConfig configures the registration backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// UIConfig holds presentation settings. These can change while the form is
// running.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `yaml:"theme"`
	// Markdown is the glamour style for the summary step.
	Markdown  string        `yaml:"markdown"`
	BlurGrace time.Duration `yaml:"blur_grace"`

	University LookupConfig `yaml:"university"`
	Postcode   LookupConfig `yaml:"postcode"`
}

// LookupConfig tunes one typeahead.
type LookupConfig struct {
	MinChars int `yaml:"min_chars"`
	MaxItems int `yaml:"max_items"`
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Datasets.Universities == "" {
		c.Datasets.Universities = DefaultDataBaseURL + "/universities.json"
	}
	if c.Datasets.Postcodes == "" {
		c.Datasets.Postcodes = DefaultDataBaseURL + "/postcode.json"
	}
	if c.Datasets.RegionCodes == "" {
		c.Datasets.RegionCodes = DefaultDataBaseURL + "/regioncode.json"
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 12 * time.Second
	}
	if c.UI.Theme == "" {
		c.UI.Theme = DefaultTheme
	}
	if c.UI.Markdown == "" {
		c.UI.Markdown = DefaultMarkdown
	}
	if c.UI.BlurGrace <= 0 {
		c.UI.BlurGrace = 100 * time.Millisecond
	}
	if c.UI.University.MinChars == 0 {
		c.UI.University.MinChars = 2
	}
	if c.UI.University.MaxItems <= 0 {
		c.UI.University.MaxItems = 8
	}
	if c.UI.Postcode.MinChars == 0 {
		c.UI.Postcode.MinChars = 1
	}
	if c.UI.Postcode.MaxItems <= 0 {
		c.UI.Postcode.MaxItems = 10
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
	}
}

// Validate checks values that defaults cannot repair.
func (c Config) Validate() error {
	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		return fmt.Errorf("ui.theme: unknown theme %q", c.UI.Theme)
	}
	for name, loc := range map[string]string{
		"datasets.universities": c.Datasets.Universities,
		"datasets.postcodes":    c.Datasets.Postcodes,
		"datasets.region_codes": c.Datasets.RegionCodes,
	} {
		if strings.TrimSpace(loc) == "" {
			return fmt.Errorf("%s: empty location", name)
		}
	}
	return nil
}

// DefaultPath returns the config file location, ~/.config/regform/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "regform", "config.yaml")
}

// DefaultStateDir returns ~/.local/state/regform, or a temp dir fallback.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "regform")
	}
	return filepath.Join(home, ".local", "state", "regform")
}

// Load reads path and applies defaults. A missing file yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes and applies defaults.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// DBPath returns the SQLite database path inside StateDir
func (c Config) DBPath() string {
	return filepath.Join(c.StateDir, "regform.db")
}

// LogPath returns the log file path inside StateDir
func (c Config) LogPath() string {
	return filepath.Join(c.StateDir, "regform.log")
}
