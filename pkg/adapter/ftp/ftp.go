// Package ftp adapts the FTP protocol engine to the relay. The engine
// handles the wire protocol and passive transfers; this package wires it to
// the session gateway and the process lifecycle.
package ftp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	ftpserver "github.com/fclairamb/ftpserverlib"

	"github.com/ftpgram/ftpgram/internal/logger"
	"github.com/ftpgram/ftpgram/pkg/adapter"
	"github.com/ftpgram/ftpgram/pkg/gateway"
)

// Config holds the FTP listener configuration.
type Config struct {
	// ListenAddr is the control connection bind address, e.g. ":2121".
	ListenAddr string

	// PublicHost, when set, is advertised verbatim in PASV responses.
	// When empty the passive IP is resolved per client.
	PublicHost string

	// PassivePortStart and PassivePortEnd bound the passive data ports.
	// A zero start leaves the range unrestricted.
	PassivePortStart int
	PassivePortEnd   int

	// IdleTimeout disconnects control connections with no activity.
	IdleTimeout time.Duration
}

// Adapter serves FTP on top of the protocol engine.
type Adapter struct {
	config Config
	server *ftpserver.FtpServer

	stopOnce sync.Once
	stopErr  error
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates the FTP adapter for the given gateway.
func New(config Config, gw *gateway.Gateway) *Adapter {
	srv := ftpserver.NewFtpServer(newDriver(config, gw))
	srv.Logger = newEngineLogger()
	return &Adapter{config: config, server: srv}
}

// Serve runs the FTP server until the context is cancelled. Cancellation
// stops the listener; a stop-initiated exit returns nil.
func (a *Adapter) Serve(ctx context.Context) error {
	logger.Info("FTP server listening",
		"address", a.config.ListenAddr,
		"passive_range", fmt.Sprintf("%d-%d", a.config.PassivePortStart, a.config.PassivePortEnd))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = a.Stop(context.Background())
		case <-done:
		}
	}()

	if err := a.server.ListenAndServe(); err != nil {
		return fmt.Errorf("ftp server failed: %w", err)
	}
	return nil
}

// Stop closes the listener and lets active transfers finish. Idempotent.
func (a *Adapter) Stop(_ context.Context) error {
	a.stopOnce.Do(func() {
		logger.Debug("FTP server stopping")
		a.stopErr = a.server.Stop()
	})
	return a.stopErr
}

// Protocol returns the adapter's protocol name.
func (a *Adapter) Protocol() string {
	return "FTP"
}

// Port returns the configured control port.
func (a *Adapter) Port() int {
	_, port, err := net.SplitHostPort(a.config.ListenAddr)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return 0
	}
	return n
}
