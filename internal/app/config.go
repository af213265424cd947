package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the deployment-level configuration: where the backend lives and
// where sessions are stored. User-facing settings (model, persona,
// grounding, theme) are data and live in the SessionStore instead.
type Config struct {
	BackendURL     string `yaml:"backend_url"`
	StorageDriver  string `yaml:"storage_driver"` // sqlite|file
	StorageRoot    string `yaml:"storage_root"`
	RequestTimeout int    `yaml:"request_timeout_sec"`
}

func DefaultConfig() Config {
	return Config{
		BackendURL:     "http://localhost:3000/chat",
		StorageDriver:  "sqlite",
		RequestTimeout: 120,
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if strings.TrimSpace(cfg.BackendURL) == "" {
		cfg.BackendURL = "http://localhost:3000/chat"
	}
	if cfg.StorageDriver == "" {
		cfg.StorageDriver = "sqlite"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "elaina", "config.yml")
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// OpenStore builds the configured session store, falling back to the file
// driver when sqlite cannot be opened.
func (c Config) OpenStore() SessionStore {
	switch c.StorageDriver {
	case "file":
		return NewFileSessionStore(c.StorageRoot)
	default:
		st, err := NewSQLiteSessionStore(c.StorageRoot)
		if err != nil {
			return NewFileSessionStore(c.StorageRoot)
		}
		return st
	}
}
