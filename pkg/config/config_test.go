package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftpgram/ftpgram/internal/bytesize"
)

func folder(name string) *string { return &name }

func validConfig() *Config {
	cfg := &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		Destinations: []DestinationConfig{
			{Folder: folder("camA"), ChatID: -100},
			{ChatID: -999},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, ":2121", cfg.FTP.ListenAddr)
	assert.Equal(t, 50000, cfg.FTP.PassivePortStart)
	assert.Equal(t, 50099, cfg.FTP.PassivePortEnd)
	assert.Equal(t, 5*time.Minute, cfg.FTP.IdleTimeout)
	assert.Equal(t, 10*bytesize.MB, cfg.Delivery.PhotoCeiling)
	assert.Equal(t, 64, cfg.Delivery.QueueSize)
	assert.Equal(t, "ffmpeg", cfg.Transcode.Binary)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging:  LoggingConfig{Level: "debug"},
		Delivery: DeliveryConfig{PhotoCeiling: 5 * bytesize.MB},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
	assert.Equal(t, 5*bytesize.MB, cfg.Delivery.PhotoCeiling)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing token",
			mutate:  func(c *Config) { c.Telegram.Token = "" },
			wantErr: "Token",
		},
		{
			name:    "no destinations",
			mutate:  func(c *Config) { c.Destinations = nil },
			wantErr: "at least one destination",
		},
		{
			name: "no catch-all",
			mutate: func(c *Config) {
				c.Destinations = []DestinationConfig{{Folder: folder("camA"), ChatID: -1}}
			},
			wantErr: ErrNoCatchAll.Error(),
		},
		{
			name: "two catch-alls",
			mutate: func(c *Config) {
				c.Destinations = append(c.Destinations, DestinationConfig{ChatID: -2})
			},
			wantErr: "only one catch-all",
		},
		{
			name: "duplicate folder",
			mutate: func(c *Config) {
				c.Destinations = append(c.Destinations, DestinationConfig{Folder: folder("camA"), ChatID: -3})
			},
			wantErr: `duplicate destination folder "camA"`,
		},
		{
			name: "empty folder name",
			mutate: func(c *Config) {
				c.Destinations = append(c.Destinations, DestinationConfig{Folder: folder(""), ChatID: -3})
			},
			wantErr: "folder name must not be empty",
		},
		{
			name:    "zero chat id",
			mutate:  func(c *Config) { c.Destinations[0].ChatID = 0 },
			wantErr: "ChatID",
		},
		{
			name: "inverted passive range",
			mutate: func(c *Config) {
				c.FTP.PassivePortStart = 50100
				c.FTP.PassivePortEnd = 50000
			},
			wantErr: "inverted",
		},
		{
			name: "half-configured passive range",
			mutate: func(c *Config) {
				c.FTP.PassivePortStart = 50000
				c.FTP.PassivePortEnd = 0
			},
			wantErr: "must be set together",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "LOUD" },
			wantErr: "Level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	raw := `
logging:
  level: debug
telegram:
  token: "123:abc"
ftp:
  listen_addr: ":2121"
  public_host: "198.51.100.7"
destinations:
  - folder: camA
    chat_id: -1001
    topic_id: 4
  - chat_id: -1002
delivery:
  photo_ceiling: 5MB
  queue_size: 16
shutdown_timeout: 45s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "198.51.100.7", cfg.FTP.PublicHost)
	assert.Equal(t, 5*bytesize.MB, cfg.Delivery.PhotoCeiling)
	assert.Equal(t, 16, cfg.Delivery.QueueSize)
	assert.Equal(t, 45*time.Second, cfg.ShutdownTimeout)

	require.Len(t, cfg.Destinations, 2)
	require.NotNil(t, cfg.Destinations[0].Folder)
	assert.Equal(t, "camA", *cfg.Destinations[0].Folder)
	assert.Equal(t, int64(-1001), cfg.Destinations[0].ChatID)
	assert.Equal(t, 4, cfg.Destinations[0].TopicID)
	assert.Nil(t, cfg.Destinations[1].Folder)
}

func TestLoadMissingCatchAllFails(t *testing.T) {
	raw := `
telegram:
  token: "123:abc"
destinations:
  - folder: camA
    chat_id: -1001
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCatchAll)
}

func TestRoutes(t *testing.T) {
	cfg := validConfig()
	routes := cfg.Routes()

	require.Len(t, routes, 2)
	require.NotNil(t, routes[0].Folder)
	assert.Equal(t, "camA", *routes[0].Folder)
	assert.Equal(t, int64(-100), routes[0].ChatID)
	assert.True(t, routes[1].IsCatchAll())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := validConfig()
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Telegram.Token, loaded.Telegram.Token)
	assert.Equal(t, len(cfg.Destinations), len(loaded.Destinations))
}
