// Package server assembles the relay from its parts and manages their
// lifecycle: the FTP adapter, the delivery dispatcher and the optional
// observability HTTP server all run under one context.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ftpgram/ftpgram/internal/logger"
	"github.com/ftpgram/ftpgram/pkg/adapter/ftp"
	"github.com/ftpgram/ftpgram/pkg/api"
	"github.com/ftpgram/ftpgram/pkg/config"
	"github.com/ftpgram/ftpgram/pkg/delivery"
	"github.com/ftpgram/ftpgram/pkg/gateway"
	"github.com/ftpgram/ftpgram/pkg/metrics"
	"github.com/ftpgram/ftpgram/pkg/route"
	"github.com/ftpgram/ftpgram/pkg/telegram"
	"github.com/ftpgram/ftpgram/pkg/transcode"
)

// Server is the assembled relay.
type Server struct {
	cfg        *config.Config
	dispatcher *delivery.Dispatcher
	ftp        *ftp.Adapter
	http       *api.Server
}

// New wires the relay from a validated configuration.
func New(cfg *config.Config) (*Server, error) {
	router := route.NewRouter(cfg.Routes())
	if !router.HasCatchAll() {
		return nil, config.ErrNoCatchAll
	}

	var deliveryMetrics delivery.Metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		deliveryMetrics = metrics.NewDeliveryMetrics()
	}

	messenger, err := telegram.New(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create messenger: %w", err)
	}

	pipeline := delivery.NewPipeline(
		messenger,
		transcode.New(cfg.Transcode.Binary),
		cfg.Delivery.PhotoCeiling,
		deliveryMetrics,
	)
	dispatcher := delivery.NewDispatcher(pipeline, cfg.Delivery.QueueSize)

	creds := make([]gateway.Credential, 0, len(cfg.FTP.Credentials))
	for _, c := range cfg.FTP.Credentials {
		creds = append(creds, gateway.Credential{Username: c.Username, Password: c.Password})
	}
	gw := gateway.New(router, dispatcher, creds)

	s := &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		ftp: ftp.New(ftp.Config{
			ListenAddr:       cfg.FTP.ListenAddr,
			PublicHost:       cfg.FTP.PublicHost,
			PassivePortStart: cfg.FTP.PassivePortStart,
			PassivePortEnd:   cfg.FTP.PassivePortEnd,
			IdleTimeout:      cfg.FTP.IdleTimeout,
		}, gw),
	}

	if cfg.Metrics.Enabled {
		s.http = api.NewServer(cfg.Metrics.Port, metrics.Registry())
	}

	return s, nil
}

// Serve runs all components until the context is cancelled or one of them
// fails. On cancellation the FTP listener closes first; the dispatcher then
// drains queued deliveries, bounded by the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	logger.Info("Relay starting",
		"ftp_port", s.ftp.Port(),
		"destinations", len(s.cfg.Destinations),
		"anonymous", len(s.cfg.FTP.Credentials) == 0)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.dispatcher.Run(ctx)
	})

	g.Go(func() error {
		return s.ftp.Serve(ctx)
	})

	if s.http != nil {
		g.Go(func() error {
			return s.http.Start(ctx)
		})
	}

	if err := awaitShutdown(ctx, g.Wait, s.cfg.ShutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Relay stopped")
	return nil
}

// awaitShutdown waits for the component group to finish. While ctx is live it
// blocks indefinitely; once ctx is cancelled the remaining drain gets at most
// timeout before Serve gives up on stragglers.
func awaitShutdown(ctx context.Context, wait func() error, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("graceful shutdown timed out after %s", timeout)
	}
}

// Stop shuts the relay down out-of-band. Serve's context cancellation is the
// usual path; Stop exists for embedders that manage components directly.
func (s *Server) Stop(ctx context.Context) error {
	var firstErr error
	if err := s.ftp.Stop(ctx); err != nil {
		firstErr = err
	}
	if s.http != nil {
		if err := s.http.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
