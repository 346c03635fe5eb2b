// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Tuning configuration for the threading toolkit plus a thread-safe dynamic
// store with reload propagation.
//
// Load order: built-in defaults, then an optional YAML file, then an optional
// .env file, then HIOLOAD_* environment variables.

package control

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-thread/api"
)

// ThreadConfig tunes managed thread lifecycles.
type ThreadConfig struct {
	StopTimeoutMs       int `yaml:"stop_timeout_ms"`       // restart: wait for previous incarnation
	StopSleepMs         int `yaml:"stop_sleep_ms"`         // restart: poll interval
	CancelPollMs        int `yaml:"cancel_poll_ms"`        // cancel: liveness poll interval
	ShutdownWaitSeconds int `yaml:"shutdown_wait_seconds"` // grace used by Shutdown
	LowNice             int `yaml:"low_nice"`              // niceness for low priority threads
	LowIOPriority       int `yaml:"low_io_priority"`       // idle-class I/O level for low priority threads
	MaxThreads          int `yaml:"max_threads"`           // 0 = unlimited
}

// LogConfig drives logger construction.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAgeDays  int    `yaml:"max_age_days"`
	Compress    bool   `yaml:"compress"`
}

// Config is the root configuration document.
type Config struct {
	Thread ThreadConfig `yaml:"thread"`
	Log    LogConfig    `yaml:"log"`
}

// DefaultThreadConfig returns the stock lifecycle timings.
func DefaultThreadConfig() ThreadConfig {
	return ThreadConfig{
		StopTimeoutMs:       3000,
		StopSleepMs:         30,
		CancelPollMs:        10,
		ShutdownWaitSeconds: 3,
		LowNice:             19,
		LowIOPriority:       7,
	}
}

// DefaultConfig returns defaults for every section.
func DefaultConfig() *Config {
	return &Config{
		Thread: DefaultThreadConfig(),
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// Validate rejects settings the lifecycle code cannot work with.
func (c *Config) Validate() error {
	return c.Thread.Validate()
}

// Validate rejects non-positive intervals and out-of-range priorities.
func (tc ThreadConfig) Validate() error {
	var errs []error
	if tc.StopTimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("thread.stop_timeout_ms must be > 0, got %d", tc.StopTimeoutMs))
	}
	if tc.StopSleepMs <= 0 {
		errs = append(errs, fmt.Errorf("thread.stop_sleep_ms must be > 0, got %d", tc.StopSleepMs))
	}
	if tc.CancelPollMs <= 0 {
		errs = append(errs, fmt.Errorf("thread.cancel_poll_ms must be > 0, got %d", tc.CancelPollMs))
	}
	if tc.LowNice < -20 || tc.LowNice > 19 {
		errs = append(errs, fmt.Errorf("thread.low_nice must be in [-20,19], got %d", tc.LowNice))
	}
	if tc.LowIOPriority < 0 || tc.LowIOPriority > 7 {
		errs = append(errs, fmt.Errorf("thread.low_io_priority must be in [0,7], got %d", tc.LowIOPriority))
	}
	if tc.MaxThreads < 0 {
		errs = append(errs, fmt.Errorf("thread.max_threads must be >= 0, got %d", tc.MaxThreads))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", api.ErrInvalidArgument, errors.Join(errs...))
	}
	return nil
}

// LoadConfig builds a Config from defaults, the YAML file at path (skipped
// when empty), the .env file at envFile (skipped when empty or missing) and
// the process environment.
func LoadConfig(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if envFile != "" {
		// godotenv never overrides variables already present in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	t := &c.Thread
	t.StopTimeoutMs = parseIntEnv("HIOLOAD_THREAD_STOP_TIMEOUT_MS", t.StopTimeoutMs)
	t.StopSleepMs = parseIntEnv("HIOLOAD_THREAD_STOP_SLEEP_MS", t.StopSleepMs)
	t.CancelPollMs = parseIntEnv("HIOLOAD_THREAD_CANCEL_POLL_MS", t.CancelPollMs)
	t.ShutdownWaitSeconds = parseIntEnv("HIOLOAD_THREAD_SHUTDOWN_WAIT_SECONDS", t.ShutdownWaitSeconds)
	t.LowNice = parseIntEnv("HIOLOAD_THREAD_LOW_NICE", t.LowNice)
	t.LowIOPriority = parseIntEnv("HIOLOAD_THREAD_LOW_IO_PRIORITY", t.LowIOPriority)
	t.MaxThreads = parseIntEnv("HIOLOAD_THREAD_MAX_THREADS", t.MaxThreads)

	l := &c.Log
	l.Level = getEnvOrDefault("HIOLOAD_LOG_LEVEL", l.Level)
	l.File = getEnvOrDefault("HIOLOAD_LOG_FILE", l.File)
	l.Development = parseBoolEnv("HIOLOAD_LOG_DEVELOPMENT", l.Development)
}

// Map flattens the configuration for ConfigStore snapshots.
func (c *Config) Map() map[string]any {
	return map[string]any{
		"thread.stop_timeout_ms":       c.Thread.StopTimeoutMs,
		"thread.stop_sleep_ms":         c.Thread.StopSleepMs,
		"thread.cancel_poll_ms":        c.Thread.CancelPollMs,
		"thread.shutdown_wait_seconds": c.Thread.ShutdownWaitSeconds,
		"thread.low_nice":              c.Thread.LowNice,
		"thread.low_io_priority":       c.Thread.LowIOPriority,
		"thread.max_threads":           c.Thread.MaxThreads,
		"log.level":                    c.Log.Level,
		"log.development":              c.Log.Development,
		"log.file":                     c.Log.File,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// ConfigStore is a dynamic key/value map with atomic snapshot and listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]any
	listeners []func()
}

// NewConfigStore initializes a new config store with empty data.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config:    make(map[string]any),
		listeners: make([]func(), 0),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		out[k] = v
	}
	return out
}

// SetConfig merges new values and notifies listeners once the lock is released.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.mu.Lock()
	for k, v := range newCfg {
		cs.config[k] = v
	}
	listeners := append([]func(){}, cs.listeners...)
	cs.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn func()) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
