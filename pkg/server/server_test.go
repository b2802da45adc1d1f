package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftpgram/ftpgram/pkg/config"
)

func folder(name string) *string { return &name }

func testConfig() *config.Config {
	cfg := &config.Config{
		Telegram: config.TelegramConfig{Token: "123456:test-token"},
		Destinations: []config.DestinationConfig{
			{Folder: folder("camA"), ChatID: -100},
			{ChatID: -999},
		},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestNewWiresComponents(t *testing.T) {
	s, err := New(testConfig())
	require.NoError(t, err)

	assert.Equal(t, 2121, s.ftp.Port())
	assert.Nil(t, s.http, "HTTP server is off unless metrics are enabled")
}

func TestNewWithMetricsEnablesHTTP(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 9090

	s, err := New(cfg)
	require.NoError(t, err)

	require.NotNil(t, s.http)
	assert.Equal(t, 9090, s.http.Port())
}

func TestNewRejectsTableWithoutCatchAll(t *testing.T) {
	cfg := testConfig()
	cfg.Destinations = []config.DestinationConfig{{Folder: folder("camA"), ChatID: -100}}

	_, err := New(cfg)
	assert.ErrorIs(t, err, config.ErrNoCatchAll)
}

func TestAwaitShutdownPassesThroughResult(t *testing.T) {
	sentinel := errors.New("component failed")

	err := awaitShutdown(context.Background(), func() error { return sentinel }, time.Second)
	assert.ErrorIs(t, err, sentinel)
}

func TestAwaitShutdownWaitsForDrainAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	drained := make(chan error)
	go func() {
		time.Sleep(10 * time.Millisecond)
		drained <- nil
	}()

	err := awaitShutdown(ctx, func() error { return <-drained }, time.Second)
	assert.NoError(t, err)
}

func TestAwaitShutdownTimesOutOnStuckDrain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stuck := make(chan error)
	start := time.Now()
	err := awaitShutdown(ctx, func() error { return <-stuck }, 20*time.Millisecond)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "graceful shutdown timed out")
	assert.Less(t, time.Since(start), time.Second)
	close(stuck)
}
