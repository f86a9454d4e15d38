package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Theme     string    `yaml:"theme"`
	TabWidth  int       `yaml:"tab_width"`
	LogLevel  string    `yaml:"log_level"`
	Web       WebConfig `yaml:"web"`
	ScanRoots []string  `yaml:"scan_roots"`
	ScanDepth int       `yaml:"scan_depth"`
}

// WebConfig controls the instance server. Port 0 picks an ephemeral
// port; the chosen one is written to the data dir for the subcommands.
type WebConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

func DefaultConfig() Config {
	return Config{
		Theme:    "mocha",
		TabWidth: 4,
		LogLevel: "info",
		Web: WebConfig{
			Bind: "127.0.0.1",
			Port: 0,
		},
		ScanDepth: 6,
	}
}

func Load() (Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFromDir loads config.yaml from the given directory.
// Used when the config dir is overridden on the command line.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, "config.yaml"))
}

func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}

	// Absent or unusable fields fall back to defaults
	if cfg.Theme == "" {
		cfg.Theme = "mocha"
	}
	if cfg.TabWidth < 1 {
		cfg.TabWidth = 4
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Web.Bind == "" {
		cfg.Web.Bind = "127.0.0.1"
	}
	if cfg.ScanDepth < 1 {
		cfg.ScanDepth = 6
	}

	return cfg, nil
}

// Save writes the config to the default path.
func (c Config) Save() error {
	return c.SaveTo(getConfigPath())
}

// SaveTo writes the config as YAML. The file is created 0600 since
// config lives under the user's home.
func (c Config) SaveTo(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "loom", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "loom", "config.yaml")
	}

	return filepath.Join(home, ".config", "loom", "config.yaml")
}
