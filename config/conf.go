package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Pink   = color.New(color.FgMagenta).SprintFunc()

	Ctx = context.Background()
)

const (
	DefaultKEVUrl     = "https://www.cisa.gov/sites/default/files/feeds/known_exploited_vulnerabilities.json"
	DefaultKEVTTL     = 24
	DefaultAuthPrefix = "quay.io/openshift-release-dev"

	configName = "config.yaml"
)

// Config is the optional YAML configuration. Command flags override it.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	OutputDir string `yaml:"output_dir"`
	JSON      bool   `yaml:"json"`

	KEV KEVConfig `yaml:"kev"`
	Age AgeConfig `yaml:"age"`
}

type KEVConfig struct {
	URL      string `yaml:"url"`
	Store    string `yaml:"store"`
	TTLHours int    `yaml:"ttl_hours"`
}

type AgeConfig struct {
	Authfile     string   `yaml:"authfile"`
	AuthPrefixes []string `yaml:"auth_prefixes"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		KEV: KEVConfig{
			URL:      DefaultKEVUrl,
			Store:    StoreDir(),
			TTLHours: DefaultKEVTTL,
		},
		Age: AgeConfig{
			AuthPrefixes: []string{DefaultAuthPrefix},
		},
	}
}

// Load reads path, or the file in the store directory when path is empty.
// A missing default file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(StoreDir(), configName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default(), err
	}

	cfg.fill()
	return cfg, nil
}

func (c *Config) fill() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.KEV.URL == "" {
		c.KEV.URL = DefaultKEVUrl
	}
	if c.KEV.Store == "" {
		c.KEV.Store = StoreDir()
	}
	if c.KEV.TTLHours <= 0 {
		c.KEV.TTLHours = DefaultKEVTTL
	}
	if len(c.Age.AuthPrefixes) == 0 {
		c.Age.AuthPrefixes = []string{DefaultAuthPrefix}
	}
}

// KEVTTL is the lifetime of the cached KEV catalog.
func (c *Config) KEVTTL() time.Duration {
	return time.Duration(c.KEV.TTLHours) * time.Hour
}

// StoreDir is where cached data and the default config live.
func StoreDir() string {
	dir, err := os.UserHomeDir()
	if err != nil || dir == "" {
		dir, _ = os.Getwd()
		return filepath.Join(dir, "scandiffdata")
	}

	return filepath.Join(dir, ".scandiff")
}
