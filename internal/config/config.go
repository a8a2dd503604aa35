package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sm-kiosk/internal/display"
	"sm-kiosk/internal/flash"
)

const (
	appName    = "sm"
	configFile = "config.yaml"

	// CurrentVersion is the only config file version understood.
	CurrentVersion = 1
)

// Config is the on-disk kiosk configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Display  DisplayConfig  `yaml:"display"`
	Labels   LabelsConfig   `yaml:"labels"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// DisplayConfig controls the canvas and initial text.
type DisplayConfig struct {
	FontFamily  string `yaml:"font_family"`
	InitialSize int    `yaml:"initial_size"`
	Placeholder string `yaml:"placeholder"`
	Fullscreen  bool   `yaml:"fullscreen"`
	MinWidth    int    `yaml:"min_width"`
	MinHeight   int    `yaml:"min_height"`
}

// LabelsConfig holds the status texts shown during a commit.
type LabelsConfig struct {
	Uploading string `yaml:"uploading"`
	Finishing string `yaml:"finishing"`
	Done      string `yaml:"done"`
	Failed    string `yaml:"failed"`
}

// PipelineConfig describes the external flash pipeline.
type PipelineConfig struct {
	Mode        string        `yaml:"mode"`
	Command     []string      `yaml:"command"`
	WorkDir     string        `yaml:"workdir"`
	Timeout     time.Duration `yaml:"timeout"`
	Template    string        `yaml:"template"`
	Output      string        `yaml:"output"`
	Placeholder string        `yaml:"placeholder"`
	History     string        `yaml:"history"` // run log path; empty disables it
	SSH         SSHConfig     `yaml:"ssh"`
}

// SSHConfig moves the pipeline to a remote host when Host is set.
type SSHConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user,omitempty"`
	Key      string `yaml:"key,omitempty"`
	Password string `yaml:"password,omitempty"`
	Command  string `yaml:"command,omitempty"`
}

// Default returns the built-in configuration: the make pipeline in the
// current directory, launched without waiting for it to exit.
func Default() *Config {
	labels := display.DefaultLabels()
	pipeline := flash.DefaultConfig()
	return &Config{
		Version: CurrentVersion,
		Display: DisplayConfig{
			FontFamily:  "sans-serif",
			InitialSize: 60,
			Placeholder: ";-)",
			Fullscreen:  true,
			MinWidth:    400,
			MinHeight:   300,
		},
		Labels: LabelsConfig{
			Uploading: labels.Uploading,
			Finishing: labels.Finishing,
			Done:      labels.Done,
			Failed:    labels.Failed,
		},
		Pipeline: PipelineConfig{
			Mode:        string(display.ModeLegacy),
			Command:     pipeline.Command,
			WorkDir:     pipeline.WorkDir,
			Template:    pipeline.Template,
			Output:      pipeline.Output,
			Placeholder: pipeline.Placeholder,
			SSH:         SSHConfig{Port: pipeline.Remote.Port},
		},
	}
}

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/sm or $HOME/.config/sm
//   - macOS: $HOME/.config/sm
//   - Windows: %LOCALAPPDATA%\sm
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName), nil
		}
		profile := os.Getenv("USERPROFILE")
		if profile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(profile, "AppData", "Local", appName), nil

	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, ".config", appName), nil
	}
}

// GetConfigPath returns the default config file path.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config at path, or at the default location when path is
// empty. A missing file yields the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path atomically, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := []byte("# sm kiosk configuration\n# Location: " + path + "\n\n")
	data = append(header, data...)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

// Validate checks ranges and enum values.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}
	if c.Display.InitialSize < display.MinPixelSize {
		return fmt.Errorf("display.initial_size must be at least %d, got %d", display.MinPixelSize, c.Display.InitialSize)
	}
	if c.Display.MinWidth < 0 || c.Display.MinHeight < 0 {
		return fmt.Errorf("display.min_width and display.min_height must not be negative")
	}
	for key, label := range map[string]string{
		"labels.uploading": c.Labels.Uploading,
		"labels.finishing": c.Labels.Finishing,
		"labels.done":      c.Labels.Done,
		"labels.failed":    c.Labels.Failed,
	} {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
		if strings.ContainsAny(label, "\r\n") {
			return fmt.Errorf("%s must not contain a line break", key)
		}
	}
	if strings.ContainsAny(c.Pipeline.History, "\r\n") {
		return fmt.Errorf("pipeline.history must not contain a line break")
	}
	if _, err := display.ParseMode(c.Pipeline.Mode); err != nil {
		return fmt.Errorf("pipeline.mode: %w", err)
	}
	fc := c.Flash()
	if err := fc.Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}

// Flash converts the pipeline section into a launcher config.
func (c *Config) Flash() flash.Config {
	p := c.Pipeline
	return flash.Config{
		Command:     p.Command,
		WorkDir:     p.WorkDir,
		Timeout:     p.Timeout,
		Template:    p.Template,
		Output:      p.Output,
		Placeholder: p.Placeholder,
		Remote: flash.RemoteConfig{
			Host:     p.SSH.Host,
			Port:     p.SSH.Port,
			User:     p.SSH.User,
			KeyPath:  p.SSH.Key,
			Password: p.SSH.Password,
			Command:  p.SSH.Command,
		},
	}
}

// CommitLabels returns the status labels for the commit pipeline.
func (c *Config) CommitLabels() display.Labels {
	return display.Labels{
		Uploading: c.Labels.Uploading,
		Finishing: c.Labels.Finishing,
		Done:      c.Labels.Done,
		Failed:    c.Labels.Failed,
	}
}

// Mode returns the commit pipeline mode. Validate has already rejected
// unknown values.
func (c *Config) Mode() display.Mode {
	m, err := display.ParseMode(c.Pipeline.Mode)
	if err != nil {
		return display.ModeLegacy
	}
	return m
}

// Font returns the initial font state.
func (c *Config) Font() display.FontState {
	return display.FontState{Family: c.Display.FontFamily, PixelSize: c.Display.InitialSize}
}

// MinCanvas returns the minimum canvas extent.
func (c *Config) MinCanvas() display.Extent {
	return display.Extent{W: c.Display.MinWidth, H: c.Display.MinHeight}
}

// InitialText returns the joined args, or the placeholder when there are none.
func (c *Config) InitialText(args []string) string {
	if len(args) == 0 {
		return c.Display.Placeholder
	}
	return strings.Join(args, " ")
}
