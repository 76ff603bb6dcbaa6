package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	BackendSQLite = "sqlite"
	BackendFiles  = "files"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// StoreConfig selects and configures the storage backend.
type StoreConfig struct {
	Backend      string `toml:"backend"`
	Path         string `toml:"path"`
	Folder       string `toml:"folder"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	PageSize  int     `toml:"page_size"`
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Addr returns the host:port pair the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveConfig loads the config file at path when it exists, falls back to defaults otherwise,
// then applies environment overrides. Variables in envFile (typically ".env") are loaded first
// without replacing variables already set in the process environment.
func ResolveConfig(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := config.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnv overrides settings from environment variables read through getenv.
//
// Recognised variables: PLAYLIST_BACKEND, PLAYLIST_DB_PATH, PLAYLIST_FOLDER, HOST, PORT, LOG_LEVEL.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("PLAYLIST_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := getenv("PLAYLIST_DB_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := getenv("PLAYLIST_FOLDER"); v != "" {
		c.Store.Folder = v
	}
	if v := getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT %q is not a number", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks that all settings are usable.
func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite backend")
		}
	case BackendFiles:
		if c.Store.Folder == "" {
			problems = append(problems, "store.folder is required for the files backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.backend must be %q or %q, got %q", BackendSQLite, BackendFiles, c.Store.Backend))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.Server.PageSize < 1 {
		problems = append(problems, "server.page_size must be positive")
	}
	if c.Server.RateLimit < 0 {
		problems = append(problems, "server.rate_limit cannot be negative")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level %q is not a valid level", c.Log.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(problems, "\n  - "))
	}
	return nil
}
