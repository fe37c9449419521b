// Package config manages application configuration using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Camera CameraConfig `mapstructure:"camera"`
	Demo   DemoConfig   `mapstructure:"demo"`
	Server ServerConfig `mapstructure:"server"`
	Tools  ToolsConfig  `mapstructure:"tools"`
	Log    LogConfig    `mapstructure:"log"`
}

// CameraConfig holds the default frame geometry.
type CameraConfig struct {
	Width  uint32 `mapstructure:"width"`
	Height uint32 `mapstructure:"height"`
}

// DemoConfig holds demo loop settings.
type DemoConfig struct {
	FPS int `mapstructure:"fps"`
}

// ServerConfig holds daemon settings.
type ServerConfig struct {
	Socket string `mapstructure:"socket"`
}

// ToolsConfig holds the repo-maintenance tool commands. Each entry is
// argv-style: the binary followed by its arguments. Format commands
// rewrite sources in place; Check commands are read-only.
type ToolsConfig struct {
	Format          [][]string `mapstructure:"format"`
	Check           [][]string `mapstructure:"check"`
	TimeoutSeconds  int        `mapstructure:"timeout_seconds"`
	CooldownSeconds int        `mapstructure:"cooldown_seconds"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from files and environment variables.
// It searches for config files in the following order:
// 1. /etc/vcam/config.{toml,yaml,yml}
// 2. $XDG_CONFIG_HOME/vcam/config.{toml,yaml,yml} (or ~/.config/vcam/)
// 3. ./config.{toml,yaml,yml}
//
// Environment variables override file settings using the prefix VCAM_
// For example: VCAM_CAMERA_WIDTH.
func Load() (*Config, error) {
	v := NewViper()

	// Try to read config file (it's OK if it doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return LoadWithViper(v)
}

// LoadWatchable loads configuration like Load but also returns the Viper
// instance so the caller can Watch it.
func LoadWatchable() (*Config, *viper.Viper, error) {
	v := NewViper()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// NewViper returns a Viper instance wired with vcam's search paths,
// environment prefix and defaults, without reading any file yet.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.AddConfigPath("/etc/vcam/")
	v.AddConfigPath(getXDGConfigPath())
	v.AddConfigPath(".")

	v.SetEnvPrefix("VCAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// LoadWithViper loads configuration using a provided Viper instance.
// This is useful for testing or when you want to configure Viper differently.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Watch re-reads configuration whenever the config file changes and hands
// the fresh Config to onChange. Parse failures keep the previous
// configuration and are reported through onError.
func Watch(v *viper.Viper, onChange func(*Config), onError func(error)) {
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := LoadWithViper(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("camera.width", 1280)
	v.SetDefault("camera.height", 720)
	v.SetDefault("demo.fps", 60)
	v.SetDefault("server.socket", "")
	v.SetDefault("tools.format", [][]string{
		{"gofmt", "-l", "-w", "."},
	})
	v.SetDefault("tools.check", [][]string{
		{"gofmt", "-l", "."},
		{"go", "vet", "./..."},
	})
	v.SetDefault("tools.timeout_seconds", 120)
	v.SetDefault("tools.cooldown_seconds", 2)
	v.SetDefault("log.level", "info")
}

// getXDGConfigPath returns the XDG config directory for vcam.
func getXDGConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "vcam")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if we can't get home
		return "."
	}

	return filepath.Join(homeDir, ".config", "vcam")
}
