// Package config loads and validates the miditape configuration.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// InputConfig selects the capture device.
type InputConfig struct {
	Device int    `mapstructure:"device" yaml:"device"`
	Name   string `mapstructure:"name" yaml:"name"`
}

// OutputConfig selects the playback path. An empty port with Enabled
// false runs headless (events recorded, nothing rendered).
type OutputConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    string `mapstructure:"port" yaml:"port"`
	Channel int    `mapstructure:"channel" yaml:"channel"`
}

// RecorderConfig tunes the session segmentation state machine.
type RecorderConfig struct {
	IdleTimeout float64 `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	Route       string  `mapstructure:"route" yaml:"route"`
}

// MonitorConfig tunes the status view polling cadence.
type MonitorConfig struct {
	FPS int `mapstructure:"fps" yaml:"fps"`
}

// Config is the root configuration document.
type Config struct {
	Input    InputConfig    `mapstructure:"input" yaml:"input"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Recorder RecorderConfig `mapstructure:"recorder" yaml:"recorder"`
	Monitor  MonitorConfig  `mapstructure:"monitor" yaml:"monitor"`
	LogLevel string         `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the configuration used when no file is present:
// first input device, headless output, 2-second idle timeout, 20 FPS
// monitor polling.
func Default() Config {
	return Config{
		Input:    InputConfig{Device: 0},
		Output:   OutputConfig{Enabled: false, Channel: 0},
		Recorder: RecorderConfig{IdleTimeout: 2.0, Route: "both"},
		Monitor:  MonitorConfig{FPS: 20},
		LogLevel: "info",
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	return os.ExpandEnv("$HOME/.config/miditape.yaml")
}

// Load reads the configuration file at path, falling back to defaults
// for anything unset. A missing file is only an error when the path was
// explicitly requested.
func Load(path string, explicit bool) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := Default()
	v.SetDefault("input.device", def.Input.Device)
	v.SetDefault("input.name", def.Input.Name)
	v.SetDefault("output.enabled", def.Output.Enabled)
	v.SetDefault("output.port", def.Output.Port)
	v.SetDefault("output.channel", def.Output.Channel)
	v.SetDefault("recorder.idle_timeout", def.Recorder.IdleTimeout)
	v.SetDefault("recorder.route", def.Recorder.Route)
	v.SetDefault("monitor.fps", def.Monitor.FPS)
	v.SetDefault("log_level", def.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); explicit || statErr == nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		// File absent and not explicitly requested: run on defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the value ranges the pipeline depends on.
func (c *Config) Validate() error {
	if c.Recorder.IdleTimeout <= 0 {
		return fmt.Errorf("recorder.idle_timeout must be positive, got %v", c.Recorder.IdleTimeout)
	}
	switch c.Recorder.Route {
	case "none", "left", "right", "both":
	default:
		return fmt.Errorf("recorder.route must be one of none, left, right, both; got %q", c.Recorder.Route)
	}
	if c.Output.Channel < 0 || c.Output.Channel > 15 {
		return fmt.Errorf("output.channel must be 0-15, got %d", c.Output.Channel)
	}
	if c.Monitor.FPS < 1 || c.Monitor.FPS > 120 {
		return fmt.Errorf("monitor.fps must be 1-120, got %d", c.Monitor.FPS)
	}
	if c.Input.Device < 0 {
		return fmt.Errorf("input.device must be non-negative, got %d", c.Input.Device)
	}
	return nil
}
