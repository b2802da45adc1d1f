// Package config loads, defaults and validates the relay configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (FTPGRAM_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ftpgram/ftpgram/internal/bytesize"
	"github.com/ftpgram/ftpgram/pkg/route"
)

// Config is the full relay configuration.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// FTP configures the upload listener
	FTP FTPConfig `mapstructure:"ftp" yaml:"ftp"`

	// Telegram configures the outbound bot
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`

	// Destinations is the folder routing table. Exactly one entry without a
	// folder acts as the catch-all for unmatched uploads.
	Destinations []DestinationConfig `mapstructure:"destinations" validate:"omitempty,dive" yaml:"destinations"`

	// Delivery tunes the classification and send pipeline
	Delivery DeliveryConfig `mapstructure:"delivery" yaml:"delivery"`

	// Transcode configures the video converter
	Transcode TranscodeConfig `mapstructure:"transcode" yaml:"transcode"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: text or json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// FTPConfig configures the FTP upload listener.
type FTPConfig struct {
	// ListenAddr is the control connection bind address
	// Default: ":2121"
	ListenAddr string `mapstructure:"listen_addr" validate:"required" yaml:"listen_addr"`

	// PublicHost, when set, is advertised verbatim in PASV responses.
	// Leave empty to resolve the passive IP per client from local interfaces.
	PublicHost string `mapstructure:"public_host" yaml:"public_host,omitempty"`

	// PassivePortStart and PassivePortEnd bound the passive data ports.
	// Both zero leaves the range unrestricted.
	PassivePortStart int `mapstructure:"passive_port_start" validate:"omitempty,min=1,max=65535" yaml:"passive_port_start,omitempty"`
	PassivePortEnd   int `mapstructure:"passive_port_end" validate:"omitempty,min=1,max=65535" yaml:"passive_port_end,omitempty"`

	// IdleTimeout disconnects control connections with no activity
	// Default: 5m
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// Credentials lists allowed logins. Empty enables anonymous access.
	Credentials []CredentialConfig `mapstructure:"credentials" validate:"omitempty,dive" yaml:"credentials,omitempty"`
}

// CredentialConfig is one allowed FTP login.
type CredentialConfig struct {
	Username string `mapstructure:"username" validate:"required" yaml:"username"`
	Password string `mapstructure:"password" validate:"required" yaml:"password"`
}

// TelegramConfig configures the outbound bot client.
type TelegramConfig struct {
	// Token is the bot API token (required).
	// Override: FTPGRAM_TELEGRAM_TOKEN
	Token string `mapstructure:"token" validate:"required" yaml:"token"`
}

// DestinationConfig maps one upload folder to a conversation. A nil Folder
// marks the catch-all entry.
type DestinationConfig struct {
	// Folder is the top-level upload directory name. Omit for the catch-all.
	Folder *string `mapstructure:"folder" yaml:"folder,omitempty"`

	// ChatID is the target conversation (required, never zero)
	ChatID int64 `mapstructure:"chat_id" validate:"required" yaml:"chat_id"`

	// TopicID selects an optional forum topic inside the chat
	TopicID int `mapstructure:"topic_id" yaml:"topic_id,omitempty"`
}

// DeliveryConfig tunes the send pipeline.
type DeliveryConfig struct {
	// PhotoCeiling is the maximum size sent as an inline photo; larger
	// images fall back to documents.
	// Default: 10MB
	PhotoCeiling bytesize.ByteSize `mapstructure:"photo_ceiling" yaml:"photo_ceiling"`

	// QueueSize bounds the number of uploads waiting for delivery.
	// Default: 64
	QueueSize int `mapstructure:"queue_size" validate:"omitempty,gt=0" yaml:"queue_size"`
}

// TranscodeConfig configures the external video converter.
type TranscodeConfig struct {
	// Binary is the ffmpeg executable, looked up on PATH when relative.
	// Default: "ffmpeg"
	Binary string `mapstructure:"binary" yaml:"binary"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port,omitempty"`
}

// Routes converts the destination table into the router's representation.
func (c *Config) Routes() []route.Destination {
	routes := make([]route.Destination, 0, len(c.Destinations))
	for _, d := range c.Destinations {
		routes = append(routes, route.Destination{
			Folder:  d.Folder,
			ChatID:  d.ChatID,
			TopicID: d.TopicID,
		})
	}
	return routes
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if configFileFound {
		if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages when the config
// file is missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  ftpgram init\n\n"+
				"Or specify a custom config file:\n"+
				"  ftpgram <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  ftpgram init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path in YAML.
// Permissions are restricted because the file carries the bot token.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper configures environment variables and config file settings.
// Environment variables use the FTPGRAM_ prefix with underscores, e.g.
// FTPGRAM_TELEGRAM_TOKEN or FTPGRAM_LOGGING_LEVEL.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("FTPGRAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and numbers to bytesize.ByteSize so
// config files can use human-readable sizes like "10MB" or "512KiB".
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings to time.Duration so config files can
// use durations like "30s" or "5m".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ftpgram")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "ftpgram")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
