package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bryanchriswhite/WindowShot/internal/capture"
	"github.com/bryanchriswhite/WindowShot/internal/logger"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	ServerPort int           `json:"server_port" yaml:"server_port"`
	LogLevel   string        `json:"log_level" yaml:"log_level"`
	Capture    CaptureConfig `json:"capture" yaml:"capture"`
}

// CaptureConfig holds the capture session settings
type CaptureConfig struct {
	Interval       time.Duration `json:"interval" yaml:"interval"`
	SettleDelay    time.Duration `json:"settle_delay" yaml:"settle_delay"`
	SelfTitle      string        `json:"self_title" yaml:"self_title"`
	FilenamePrefix string        `json:"filename_prefix" yaml:"filename_prefix"`
	Grabber        string        `json:"grabber" yaml:"grabber"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		ServerPort: 8080,
		LogLevel:   "info",
		Capture: CaptureConfig{
			Interval:       10 * time.Second,
			SettleDelay:    200 * time.Millisecond,
			SelfTitle:      "WindowShot",
			FilenamePrefix: "test",
			Grabber:        capture.GrabberX11,
		},
	}
}

// setter validates a raw value and stores it into cfg.
type setter func(cfg *Config, value string) error

type field struct {
	get func(cfg *Config) string
	set setter
}

var fields = map[string]field{
	"server_port": {
		get: func(c *Config) string { return strconv.Itoa(c.ServerPort) },
		set: func(c *Config, v string) error {
			port, err := strconv.Atoi(v)
			if err != nil || port < 1 || port > 65535 {
				return fmt.Errorf("invalid port number: %s", v)
			}
			c.ServerPort = port
			return nil
		},
	},
	"log_level": {
		get: func(c *Config) string { return c.LogLevel },
		set: func(c *Config, v string) error {
			if !logger.ValidLevel(v) {
				return fmt.Errorf("invalid log level: %s (use: debug, info, warn, error)", v)
			}
			c.LogLevel = v
			return nil
		},
	},
	"capture.interval": {
		get: func(c *Config) string { return c.Capture.Interval.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil || d < time.Second {
				return fmt.Errorf("invalid interval: %s (minimum 1s)", v)
			}
			c.Capture.Interval = d
			return nil
		},
	},
	"capture.settle_delay": {
		get: func(c *Config) string { return c.Capture.SettleDelay.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				return fmt.Errorf("invalid settle delay: %s", v)
			}
			c.Capture.SettleDelay = d
			return nil
		},
	},
	"capture.self_title": {
		get: func(c *Config) string { return c.Capture.SelfTitle },
		set: func(c *Config, v string) error {
			c.Capture.SelfTitle = v
			return nil
		},
	},
	"capture.filename_prefix": {
		get: func(c *Config) string { return c.Capture.FilenamePrefix },
		set: func(c *Config, v string) error {
			if v == "" || filepath.Base(v) != v {
				return fmt.Errorf("invalid filename prefix: %q", v)
			}
			c.Capture.FilenamePrefix = v
			return nil
		},
	},
	"capture.grabber": {
		get: func(c *Config) string { return c.Capture.Grabber },
		set: func(c *Config, v string) error {
			if !capture.ValidGrabber(v) {
				return fmt.Errorf("invalid grabber: %s (use: %s, %s)", v, capture.GrabberX11, capture.GrabberScreenshot)
			}
			c.Capture.Grabber = v
			return nil
		},
	},
}

// Keys returns every settable key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// DefaultPath returns $HOME/.config/windowshot/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "windowshot", "config.yaml"), nil
}

// NewManager loads configFile, or the default path when empty. A missing
// file yields the defaults and is not created.
func NewManager(configFile string) (*Manager, error) {
	path := configFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	m := &Manager{configPath: path}

	if err := m.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logger.WithComponent("config").Debug().
			Str("path", m.configPath).
			Msg("Config file not found, using defaults")
		m.config = Defaults()
	}

	return m, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	// Unset keys keep their defaults
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	for key, f := range fields {
		if err := f.set(cfg, f.get(cfg)); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Config loaded")
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg := *m.config
	return &cfg
}

// Value returns the string form of key.
func (m *Manager) Value(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %s", key)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return f.get(m.config), nil
}

// Set validates value and stores it under key. It does not save.
func (m *Manager) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := *m.config
	if err := f.set(&cfg, value); err != nil {
		return err
	}
	m.config = &cfg
	return nil
}

// Save saves the current configuration to disk
func (m *Manager) Save() error {
	cfg := m.Get()
	log := logger.WithComponent("config")

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		log.Error().
			Err(err).
			Str("config_dir", configDir).
			Msg("Failed to create config directory")
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		log.Error().
			Err(err).
			Str("path", m.configPath).
			Msg("Failed to write config")
		return err
	}

	log.Info().
		Str("path", m.configPath).
		Msg("Config saved successfully")
	return nil
}

// GetConfigPath returns the path to the config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
