package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/janus.db"

	// Reader
	MockReader     bool
	DeviceID       string
	DefaultZoneID  int64
	PollIntervalMS int
	ReadTimeoutMS  int
	DebounceMS     int
	KnownDevices   []string

	// Minutes east of UTC used when checking zone hours and policy
	// windows. Default is +03:30.
	UTCOffsetMinutes int

	// Audit retention
	LogRetentionDays   int // 0 = keep forever
	PruneIntervalHours int // how often the pruner runs (default 24)
}

// fileConfig mirrors the optional TOML file named by JANUS_CONFIG.
// Environment variables override anything set here.
type fileConfig struct {
	HTTPAddr string `toml:"http_addr"`
	Env      string `toml:"env"`
	DBPath   string `toml:"db_path"`

	MockReader     *bool    `toml:"mock_reader"`
	DeviceID       string   `toml:"device_id"`
	DefaultZoneID  *int64   `toml:"default_zone_id"`
	PollIntervalMS *int     `toml:"poll_interval_ms"`
	ReadTimeoutMS  *int     `toml:"read_timeout_ms"`
	DebounceMS     *int     `toml:"debounce_ms"`
	KnownDevices   []string `toml:"known_devices"`

	UTCOffsetMinutes *int `toml:"utc_offset_minutes"`

	LogRetentionDays   *int `toml:"log_retention_days"`
	PruneIntervalHours *int `toml:"prune_interval_hours"`
}

func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("JANUS_CONFIG")); path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
		applyFile(&cfg, fc)
	}

	applyEnv(&cfg)

	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		HTTPAddr: ":8080",
		Env:      "dev",
		DBPath:   "./data/janus.db",

		MockReader:     true,
		DeviceID:       "MAIN_DOOR",
		DefaultZoneID:  1,
		PollIntervalMS: 500,
		ReadTimeoutMS:  1000,
		DebounceMS:     2000,

		UTCOffsetMinutes: 210,

		LogRetentionDays:   0,
		PruneIntervalHours: 24,
	}
}

func applyFile(cfg *Config, fc fileConfig) {
	if fc.HTTPAddr != "" {
		cfg.HTTPAddr = fc.HTTPAddr
	}
	if fc.Env != "" {
		cfg.Env = strings.ToLower(fc.Env)
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.MockReader != nil {
		cfg.MockReader = *fc.MockReader
	}
	if fc.DeviceID != "" {
		cfg.DeviceID = fc.DeviceID
	}
	if fc.DefaultZoneID != nil {
		cfg.DefaultZoneID = *fc.DefaultZoneID
	}
	if fc.PollIntervalMS != nil {
		cfg.PollIntervalMS = *fc.PollIntervalMS
	}
	if fc.ReadTimeoutMS != nil {
		cfg.ReadTimeoutMS = *fc.ReadTimeoutMS
	}
	if fc.DebounceMS != nil {
		cfg.DebounceMS = *fc.DebounceMS
	}
	if len(fc.KnownDevices) > 0 {
		cfg.KnownDevices = fc.KnownDevices
	}
	if fc.UTCOffsetMinutes != nil {
		cfg.UTCOffsetMinutes = *fc.UTCOffsetMinutes
	}
	if fc.LogRetentionDays != nil {
		cfg.LogRetentionDays = *fc.LogRetentionDays
	}
	if fc.PruneIntervalHours != nil {
		cfg.PruneIntervalHours = *fc.PruneIntervalHours
	}
}

func applyEnv(cfg *Config) {
	cfg.HTTPAddr = getenvDefault("JANUS_HTTP_ADDR", cfg.HTTPAddr)
	cfg.Env = strings.ToLower(getenvDefault("JANUS_ENV", cfg.Env))
	cfg.DBPath = getenvDefault("JANUS_DB_PATH", cfg.DBPath)

	if v := strings.TrimSpace(os.Getenv("JANUS_MOCK_READER")); v != "" {
		cfg.MockReader = strings.EqualFold(v, "true") || v == "1"
	}
	cfg.DeviceID = getenvDefault("JANUS_DEVICE_ID", cfg.DeviceID)
	cfg.DefaultZoneID = int64(getenvInt("JANUS_DEFAULT_ZONE_ID", int(cfg.DefaultZoneID)))
	cfg.PollIntervalMS = getenvInt("JANUS_POLL_INTERVAL_MS", cfg.PollIntervalMS)
	cfg.ReadTimeoutMS = getenvInt("JANUS_READ_TIMEOUT_MS", cfg.ReadTimeoutMS)
	cfg.DebounceMS = getenvInt("JANUS_DEBOUNCE_MS", cfg.DebounceMS)
	if devices := splitCSV(os.Getenv("JANUS_KNOWN_DEVICES")); len(devices) > 0 {
		cfg.KnownDevices = devices
	}

	if v := strings.TrimSpace(os.Getenv("JANUS_UTC_OFFSET_MINUTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.UTCOffsetMinutes = n
		}
	}

	cfg.LogRetentionDays = getenvInt("JANUS_LOG_RETENTION_DAYS", cfg.LogRetentionDays)
	cfg.PruneIntervalHours = getenvInt("JANUS_PRUNE_INTERVAL_HOURS", cfg.PruneIntervalHours)
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
