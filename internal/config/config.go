package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	BotToken  string `json:"bot_token" env:"CGB_BOT_TOKEN"`
	ChannelID string `json:"channel_id" env:"CGB_CHANNEL_ID"` // e.g. "@mychannel"
	DataDir   string `json:"data_dir" env:"CGB_DATA_DIR"`

	InitialAdminIDs []int64 `json:"initial_admin_ids,omitempty" env:"CGB_INITIAL_ADMINS" envSeparator:","`

	// Referral settings.
	ReferralReward int `json:"referral_reward,omitempty" env:"CGB_REFERRAL_REWARD"`

	// Campaign settings.
	SendRatePerMinute int     `json:"send_rate_per_minute,omitempty" env:"CGB_SEND_RATE"`
	ABSplitRatio      float64 `json:"ab_split_ratio,omitempty" env:"CGB_AB_SPLIT_RATIO"`
	ABMinSample       int     `json:"ab_min_sample,omitempty" env:"CGB_AB_MIN_SAMPLE"`
	ABPoolSize        int     `json:"ab_pool_size,omitempty" env:"CGB_AB_POOL_SIZE"`

	// Analytics settings.
	AnalyticsRetentionDays int `json:"analytics_retention_days,omitempty" env:"CGB_ANALYTICS_RETENTION_DAYS"`

	// Optional Prometheus listener, e.g. ":9090". Disabled when empty.
	MetricsAddr string `json:"metrics_addr,omitempty" env:"CGB_METRICS_ADDR"`

	// If true, bot will log debug messages.
	Debug bool `json:"debug,omitempty" env:"CGB_DEBUG"`
}

func DefaultDataDir() string {
	if v := os.Getenv("CGB_DATA_DIR"); v != "" {
		return v
	}
	return "/var/lib/channel-growth-bot"
}

func DefaultConfigPath() string {
	if v := os.Getenv("CGB_CONFIG"); v != "" {
		return v
	}
	return "/etc/channel-growth-bot/config.json"
}

func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	var cfg Config
	// 1) File, if present
	if b, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("invalid config json: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	// 2) Env override
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(cfg, path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	cfg.DataDir = filepath.Clean(cfg.DataDir)

	if cfg.ReferralReward == 0 {
		cfg.ReferralReward = 10
	}
	if cfg.SendRatePerMinute == 0 {
		cfg.SendRatePerMinute = 30
	}
	if cfg.ABSplitRatio == 0 {
		cfg.ABSplitRatio = 0.5
	}
	if cfg.ABMinSample == 0 {
		cfg.ABMinSample = 30
	}
	if cfg.ABPoolSize == 0 {
		cfg.ABPoolSize = 1000
	}
	if cfg.AnalyticsRetentionDays == 0 {
		cfg.AnalyticsRetentionDays = 90
	}
}

// validate rejects bad configuration at startup rather than coercing it.
func validate(cfg Config, path string) error {
	if cfg.BotToken == "" {
		return fmt.Errorf("missing bot_token (set in %s or CGB_BOT_TOKEN env)", path)
	}
	if cfg.ChannelID == "" {
		return fmt.Errorf("missing channel_id (set in %s or CGB_CHANNEL_ID env)", path)
	}
	if cfg.ReferralReward < 0 {
		return fmt.Errorf("referral_reward must be >= 0, got %d", cfg.ReferralReward)
	}
	if cfg.SendRatePerMinute <= 0 {
		return fmt.Errorf("send_rate_per_minute must be positive, got %d", cfg.SendRatePerMinute)
	}
	if cfg.ABSplitRatio <= 0 || cfg.ABSplitRatio >= 1 {
		return fmt.Errorf("ab_split_ratio must be in (0,1) exclusive, got %g", cfg.ABSplitRatio)
	}
	if cfg.ABMinSample < 1 {
		return fmt.Errorf("ab_min_sample must be >= 1, got %d", cfg.ABMinSample)
	}
	if cfg.AnalyticsRetentionDays < 1 {
		return fmt.Errorf("analytics_retention_days must be >= 1, got %d", cfg.AnalyticsRetentionDays)
	}
	return nil
}
