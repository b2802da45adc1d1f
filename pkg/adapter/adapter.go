// Package adapter defines the lifecycle contract for protocol servers
// managed by the relay. FTP is the only adapter today; the interface keeps
// the server loop protocol-agnostic so additional ingest protocols can be
// added without touching orchestration.
package adapter

import "context"

// Adapter is a protocol-specific server with a managed lifecycle.
//
// Lifecycle:
//  1. Creation with protocol-specific configuration
//  2. Serve() starts the server and blocks until shutdown
//  3. Stop() initiates graceful shutdown
//
// Implementations must tolerate Stop being called concurrently with Serve
// and more than once.
type Adapter interface {
	// Serve starts the protocol server and blocks until the context is
	// cancelled or an unrecoverable error occurs. Cancellation triggers
	// graceful shutdown; a graceful exit returns nil.
	Serve(ctx context.Context) error

	// Stop initiates graceful shutdown. The context bounds how long to wait
	// for active transfers to finish.
	Stop(ctx context.Context) error

	// Protocol returns the human-readable protocol name for logging.
	Protocol() string

	// Port returns the TCP port the adapter listens on, 0 before startup.
	Port() int
}
