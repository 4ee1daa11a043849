package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the settings that must be known before the database opens.
// Everything the UI can change lives in the settings table instead.
type Config struct {
	DataPath   string `json:"data_path,omitempty" yaml:"data_path,omitempty"`
	LogToFile  bool   `json:"log_to_file" yaml:"log_to_file"`
	RunAsAdmin bool   `json:"run_as_admin" yaml:"run_as_admin"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		DataPath:   "",
		LogToFile:  false,
		RunAsAdmin: false,
	}
}

// Load reads the config file at path, creating it with defaults when it
// does not exist. An empty path means the file under the default root.
func Load(path string) (*Config, error) {
	if path == "" {
		root, err := DefaultRoot()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(root, ConfigFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			if err := cfg.Save(path); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// Save writes the configuration to the specified file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Snapshot is the exportable view of the effective configuration: the
// config file, the resolved paths, and the database-held settings.
type Snapshot struct {
	Config   Config            `yaml:"config"`
	Paths    Paths             `yaml:"paths"`
	Settings map[string]string `yaml:"settings,omitempty"`
}

// Export writes a YAML snapshot of the effective configuration to w.
func (c *Config) Export(w io.Writer, paths Paths, settings map[string]string) error {
	snap := Snapshot{Config: *c, Paths: paths, Settings: settings}
	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("failed to marshal config snapshot: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write config snapshot: %w", err)
	}
	return nil
}

// overrideFromEnv overrides configuration values from environment variables
func overrideFromEnv(cfg *Config) {
	if val := os.Getenv("ELEGANTCLIP_DATA_DIR"); val != "" {
		cfg.DataPath = val
	}
	if val := os.Getenv("ELEGANTCLIP_LOG_TO_FILE"); val != "" {
		cfg.LogToFile = val == "true"
	}
}
