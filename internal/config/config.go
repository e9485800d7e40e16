package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/mainbong/file_manager/internal/filesystem"
)

// EnvPrefix prefixes every environment override, e.g. FILE_MANAGER_LOG_LEVEL
const EnvPrefix = "FILE_MANAGER"

// Config holds the application configuration
type Config struct {
	LogDir         string `json:"log_dir" yaml:"log_dir" toml:"log_dir" envconfig:"LOG_DIR"`
	LogLevel       string `json:"log_level" yaml:"log_level" toml:"log_level" envconfig:"LOG_LEVEL"` // "debug", "info", "warn", "error"
	StartDir       string `json:"start_dir" yaml:"start_dir" toml:"start_dir" envconfig:"START_DIR"` // empty keeps the launch directory
	Prompt         string `json:"prompt" yaml:"prompt" toml:"prompt" ignored:"true"`
	AsyncTransfers bool   `json:"async_transfers" yaml:"async_transfers" toml:"async_transfers" envconfig:"ASYNC_TRANSFERS"`

	path string
	// file holds the values as loaded, before environment overrides; Save writes these
	file *Config
}

var (
	configDir = filepath.Join(os.Getenv("HOME"), ".file-manager")
	defaultFS = filesystem.NewOSFileSystem()

	// searched in order; the first existing file wins
	configNames = []string{"config.json", "config.yaml", "config.yml", "config.toml"}
)

// Load loads the configuration from file or creates a default one
func Load() (*Config, error) {
	return LoadWithFS(defaultFS, configDir)
}

// LoadWithFS loads the configuration from dir using a custom FileSystem (for testing)
func LoadWithFS(fs filesystem.FileSystem, dir string) (*Config, error) {
	// Create config directory if it doesn't exist
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := Default(dir)

	file := findConfigFile(fs, dir)
	if file != "" {
		data, err := fs.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(file, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		cfg.path = file
	} else {
		cfg.path = filepath.Join(dir, configNames[0])
		if err := cfg.SaveWithFS(fs); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	if err := cfg.ensureDir(fs, "log_dir", &cfg.LogDir, filepath.Join(dir, "logs")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used when no file exists
func Default(dir string) *Config {
	return &Config{
		LogDir:   filepath.Join(dir, "logs"),
		LogLevel: "info",
		Prompt:   "> ",
		path:     filepath.Join(dir, configNames[0]),
	}
}

// ApplyEnv overrides values from FILE_MANAGER_* environment variables.
// Overrides live in memory only; they are not written back by Save.
func (c *Config) ApplyEnv() error {
	if c.file == nil {
		loaded := *c
		c.file = &loaded
	}
	path := c.path
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	c.path = path
	c.LogLevel = strings.ToLower(c.LogLevel)
	return nil
}

// Save saves the configuration to file
func (c *Config) Save() error {
	return c.SaveWithFS(defaultFS)
}

// SaveWithFS saves the configuration using a custom FileSystem (for testing)
func (c *Config) SaveWithFS(fs filesystem.FileSystem) error {
	saved := c
	if c.file != nil {
		saved = c.file
	}
	data, err := encode(c.path, saved)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := fs.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Path returns the file this configuration is loaded from and saved to
func (c *Config) Path() string {
	return c.path
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

// ResolveStartDir returns the directory the shell should start in, expanding
// a leading "~" to home. An empty result means the launch directory.
func (c *Config) ResolveStartDir(home string) string {
	dir := strings.TrimSpace(c.StartDir)
	switch {
	case dir == "":
		return ""
	case dir == "~":
		return home
	case strings.HasPrefix(dir, "~/"):
		return filepath.Join(home, dir[2:])
	}
	return dir
}

func findConfigFile(fs filesystem.FileSystem, dir string) string {
	for _, name := range configNames {
		file := filepath.Join(dir, name)
		if _, err := fs.Stat(file); err == nil {
			return file
		}
	}
	return ""
}

func decode(file string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func encode(file string, cfg *Config) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return yaml.Marshal(cfg)
	case ".toml":
		return toml.Marshal(cfg)
	default:
		return json.MarshalIndent(cfg, "", "  ")
	}
}

func (c *Config) ensureDir(fs filesystem.FileSystem, key string, value *string, fallback string) error {
	if strings.TrimSpace(*value) == "" {
		*value = fallback
		if err := c.SaveWithFS(fs); err != nil {
			return fmt.Errorf("failed to save default %s: %w", key, err)
		}
	}

	if err := fs.MkdirAll(*value, 0755); err != nil {
		*value = fallback
		if err := fs.MkdirAll(*value, 0755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", key, err)
		}
		if err := c.SaveWithFS(fs); err != nil {
			return fmt.Errorf("failed to save fallback %s: %w", key, err)
		}
	}

	return nil
}

// Set updates a config value by key. After ApplyEnv the value is also
// recorded as the file value, so Save persists it without the overrides.
func (c *Config) Set(key, value string) error {
	if err := c.set(key, value); err != nil {
		return err
	}
	if c.file != nil {
		return c.file.set(key, value)
	}
	return nil
}

func (c *Config) set(key, value string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "log_dir":
		c.LogDir = value
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log_level: %s", value)
		}
	case "start_dir":
		c.StartDir = value
	case "prompt":
		c.Prompt = value
	case "async_transfers":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid async_transfers: %s", value)
		}
		c.AsyncTransfers = parsed
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	return nil
}
