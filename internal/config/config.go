// Package config loads scribe settings from defaults, a YAML file and the
// environment. Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultServerURL        = "http://127.0.0.1:7860"
	DefaultTimeout          = 30 * time.Second
	DefaultLongTimeout      = 30 * time.Minute
	DefaultLogLevel         = "info"
	DefaultConfigFile       = "config.yaml"
	DefaultWatchConcurrency = 2
)

// DefaultWatchExtensions are the audio files the watcher picks up.
var DefaultWatchExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".flac", ".webm", ".mp4"}

// LogConfig controls the log sink.
type LogConfig struct {
	Level string `yaml:"level"`
	// File receives logs; "-" means stderr.
	File string `yaml:"file"`
	JSON bool   `yaml:"json"`
}

// TranscribeConfig holds defaults for new transcriptions.
type TranscribeConfig struct {
	Language    string `yaml:"language"`
	Diarization bool   `yaml:"diarization"`
	HFToken     string `yaml:"hf_token"`
}

// WatchConfig tunes the directory watcher.
type WatchConfig struct {
	Extensions  []string `yaml:"extensions"`
	Concurrency int      `yaml:"concurrency"`
}

// Config is the resolved configuration.
type Config struct {
	ServerURL   string
	Timeout     time.Duration
	LongTimeout time.Duration
	CachePath   string
	Debug       bool
	Log         LogConfig
	Transcribe  TranscribeConfig
	Watch       WatchConfig
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   DefaultServerURL,
		Timeout:     DefaultTimeout,
		LongTimeout: DefaultLongTimeout,
		CachePath:   defaultCachePath(),
		Log: LogConfig{
			Level: DefaultLogLevel,
			File:  defaultLogPath(),
		},
		Watch: WatchConfig{
			Extensions:  append([]string(nil), DefaultWatchExtensions...),
			Concurrency: DefaultWatchConcurrency,
		},
	}
}

// ConfigDir returns $SCRIBE_CONFIG_DIR, or ~/.config/scribe.
func ConfigDir() (string, error) {
	if dir := os.Getenv("SCRIBE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting config directory: %w", err)
	}
	return filepath.Join(dir, "scribe"), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// Load reads configuration in this order, later sources winning:
// defaults, the YAML file at path (or ConfigPath() when empty), environment.
// A missing file is not an error unless path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("getting config path: %w", err)
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	} else if explicit {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// Durations are strings in the file.
	type configFile struct {
		ServerURL   string            `yaml:"server_url"`
		Timeout     string            `yaml:"timeout"`
		LongTimeout string            `yaml:"long_timeout"`
		CachePath   string            `yaml:"cache_path"`
		Debug       bool              `yaml:"debug"`
		Log         *LogConfig        `yaml:"log"`
		Transcribe  *TranscribeConfig `yaml:"transcribe"`
		Watch       *WatchConfig      `yaml:"watch"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.ServerURL != "" {
		cfg.ServerURL = fileCfg.ServerURL
	}
	if fileCfg.Timeout != "" {
		d, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if fileCfg.LongTimeout != "" {
		d, err := time.ParseDuration(fileCfg.LongTimeout)
		if err != nil {
			return fmt.Errorf("parsing long_timeout: %w", err)
		}
		cfg.LongTimeout = d
	}
	if fileCfg.CachePath != "" {
		cfg.CachePath = expandPath(fileCfg.CachePath)
	}
	cfg.Debug = fileCfg.Debug
	if l := fileCfg.Log; l != nil {
		if l.Level != "" {
			cfg.Log.Level = l.Level
		}
		if l.File != "" {
			cfg.Log.File = expandPath(l.File)
		}
		cfg.Log.JSON = l.JSON
	}
	if tr := fileCfg.Transcribe; tr != nil {
		cfg.Transcribe = *tr
	}
	if w := fileCfg.Watch; w != nil {
		if len(w.Extensions) > 0 {
			cfg.Watch.Extensions = w.Extensions
		}
		if w.Concurrency != 0 {
			cfg.Watch.Concurrency = w.Concurrency
		}
	}
	return nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("SCRIBE_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("SCRIBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing SCRIBE_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("SCRIBE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SCRIBE_LOG_FILE"); v != "" {
		cfg.Log.File = expandPath(v)
	}
	if v := os.Getenv("SCRIBE_CACHE_PATH"); v != "" {
		cfg.CachePath = expandPath(v)
	}
	if v := os.Getenv("SCRIBE_HF_TOKEN"); v != "" {
		cfg.Transcribe.HFToken = v
	}
	if v := os.Getenv("SCRIBE_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}
	return nil
}

// Validate checks the settings and normalizes the server URL.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server_url %q (want http://host:port)", c.ServerURL)
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.LongTimeout <= 0 {
		c.LongTimeout = DefaultLongTimeout
	}
	if c.Watch.Concurrency <= 0 {
		c.Watch.Concurrency = DefaultWatchConcurrency
	}
	if len(c.Watch.Extensions) == 0 {
		c.Watch.Extensions = append([]string(nil), DefaultWatchExtensions...)
	}
	for i, ext := range c.Watch.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Watch.Extensions[i] = ext
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", c.Log.Level)
	}
	if c.Debug {
		c.Log.Level = "debug"
	}
	return nil
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "scribe", "cache.sqlite")
}

func defaultLogPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "scribe", "scribe.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "-"
	}
	return filepath.Join(home, ".local", "state", "scribe", "scribe.log")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
