// Package config loads kiosk configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all kiosk settings.
type Config struct {
	// Logging
	LogLevel  string
	LogFormat string
	LogPath   string

	// Mount monitoring
	MountRoots []string
	MountTable string
	MountPoll  time.Duration
	RootLabel  string
	StartDir   string
	ShowHidden bool

	// Presentation
	AssetsDir    string
	PageWidth    int
	PageHeight   int
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool

	// Metrics exposition, disabled when empty
	MetricsAddr string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:     envOr("KIOSK_LOG_LEVEL", "info"),
		LogFormat:    envOr("KIOSK_LOG_FORMAT", "console"),
		LogPath:      envOr("KIOSK_LOG_PATH", ""),
		MountRoots:   envList("KIOSK_MOUNT_ROOTS", []string{"/media", "/run/media", "/mnt"}),
		MountTable:   envOr("KIOSK_MOUNT_TABLE", "/proc/self/mounts"),
		MountPoll:    envDuration("KIOSK_MOUNT_POLL", 2*time.Second),
		RootLabel:    envOr("KIOSK_ROOT_LABEL", "Storage device"),
		StartDir:     envOr("KIOSK_START_DIR", ""),
		ShowHidden:   envBool("KIOSK_SHOW_HIDDEN", false),
		AssetsDir:    envOr("KIOSK_ASSETS_DIR", ""),
		PageWidth:    envInt("KIOSK_PAGE_WIDTH", 595),
		PageHeight:   envInt("KIOSK_PAGE_HEIGHT", 842),
		WindowWidth:  envInt("KIOSK_WINDOW_WIDTH", 1920),
		WindowHeight: envInt("KIOSK_WINDOW_HEIGHT", 1080),
		Fullscreen:   envBool("KIOSK_FULLSCREEN", false),
		MetricsAddr:  envOr("KIOSK_METRICS_ADDR", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are usable.
func (c *Config) Validate() error {
	if c.PageWidth <= 0 || c.PageHeight <= 0 {
		return fmt.Errorf("page size must be positive, got %dx%d", c.PageWidth, c.PageHeight)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if c.MountTable == "" {
		return fmt.Errorf("KIOSK_MOUNT_TABLE must not be empty")
	}
	if c.MountPoll <= 0 {
		return fmt.Errorf("KIOSK_MOUNT_POLL must be positive, got %s", c.MountPoll)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
