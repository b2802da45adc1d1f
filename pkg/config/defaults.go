package config

import (
	"strings"
	"time"

	"github.com/ftpgram/ftpgram/internal/bytesize"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields. Zero values are replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyFTPDefaults(&cfg.FTP)
	applyDeliveryDefaults(&cfg.Delivery)
	applyTranscodeDefaults(&cfg.Transcode)
	applyMetricsDefaults(&cfg.Metrics)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyFTPDefaults sets upload listener defaults. The passive range default
// is deliberately narrow so a single firewall rule covers it.
func applyFTPDefaults(cfg *FTPConfig) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":2121"
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	if cfg.PassivePortStart == 0 && cfg.PassivePortEnd == 0 {
		cfg.PassivePortStart = 50000
		cfg.PassivePortEnd = 50099
	}
}

// applyDeliveryDefaults sets pipeline defaults. The photo ceiling matches
// the platform's inline photo limit, which is decimal megabytes.
func applyDeliveryDefaults(cfg *DeliveryConfig) {
	if cfg.PhotoCeiling == 0 {
		cfg.PhotoCeiling = 10 * bytesize.MB
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 64
	}
}

// applyTranscodeDefaults sets converter defaults.
func applyTranscodeDefaults(cfg *TranscodeConfig) {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// GetDefaultConfig returns a Config with all default values applied and a
// sample destination table. Used by 'ftpgram init' to generate a starter
// configuration.
func GetDefaultConfig() *Config {
	folder := "camera1"
	cfg := &Config{
		Telegram: TelegramConfig{
			Token: "REPLACE_WITH_BOT_TOKEN",
		},
		Destinations: []DestinationConfig{
			{Folder: &folder, ChatID: -1001234567890},
			{ChatID: -1001234567890},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
