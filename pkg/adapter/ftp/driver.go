package ftp

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"

	ftpserver "github.com/fclairamb/ftpserverlib"

	"github.com/ftpgram/ftpgram/internal/logger"
	"github.com/ftpgram/ftpgram/pkg/gateway"
)

// driver implements ftpserver.MainDriver on top of the session gateway.
// The engine owns the protocol; the driver only supplies settings, logins
// and per-session filesystems.
type driver struct {
	config Config
	gw     *gateway.Gateway

	mu       sync.Mutex
	sessions map[uint32]*gateway.Session
}

var _ ftpserver.MainDriver = (*driver)(nil)

func newDriver(config Config, gw *gateway.Gateway) *driver {
	return &driver{
		config:   config,
		gw:       gw,
		sessions: make(map[uint32]*gateway.Session),
	}
}

// GetSettings builds the engine settings from the adapter configuration.
// When no public host is pinned, the passive IP is resolved per client from
// the local interface on the client's subnet.
func (d *driver) GetSettings() (*ftpserver.Settings, error) {
	settings := &ftpserver.Settings{
		ListenAddr:  d.config.ListenAddr,
		IdleTimeout: int(d.config.IdleTimeout.Seconds()),
	}

	if d.config.PassivePortStart > 0 {
		settings.PassiveTransferPortRange = &ftpserver.PortRange{
			Start: d.config.PassivePortStart,
			End:   d.config.PassivePortEnd,
		}
	}

	if d.config.PublicHost != "" {
		settings.PublicHost = d.config.PublicHost
	} else {
		settings.PublicIPResolver = resolvePassiveIP
	}

	return settings, nil
}

// ClientConnected greets the client. Sessions are created at login, not at
// connect, so unauthenticated connections hold no filesystem.
func (d *driver) ClientConnected(cc ftpserver.ClientContext) (string, error) {
	logger.Debug("Client connected", logger.KeyClientIP, remoteHost(cc.RemoteAddr()))
	return "ftpgram ready", nil
}

// ClientDisconnected releases the session filesystem, if a login happened.
func (d *driver) ClientDisconnected(cc ftpserver.ClientContext) {
	d.mu.Lock()
	s, ok := d.sessions[cc.ID()]
	delete(d.sessions, cc.ID())
	d.mu.Unlock()
	if ok {
		s.Close()
	}
}

// AuthUser validates the login and binds a fresh session filesystem to the
// connection.
func (d *driver) AuthUser(cc ftpserver.ClientContext, user, pass string) (ftpserver.ClientDriver, error) {
	if err := d.gw.Authenticate(user, pass); err != nil {
		logger.Warn("Login rejected",
			logger.KeyUsername, user,
			logger.KeyClientIP, remoteHost(cc.RemoteAddr()))
		return nil, err
	}

	s := d.gw.OpenSession(remoteHost(cc.RemoteAddr()))
	d.mu.Lock()
	d.sessions[cc.ID()] = s
	d.mu.Unlock()

	logger.Info("Session opened",
		logger.KeySession, s.ID,
		logger.KeyUsername, user,
		logger.KeyClientIP, s.ClientIP)
	return s.Driver(), nil
}

// GetTLSConfig is unsupported; AUTH TLS is refused.
func (d *driver) GetTLSConfig() (*tls.Config, error) {
	return nil, errors.New("TLS is not configured")
}

// remoteHost extracts the bare IP from a client address.
func remoteHost(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// resolvePassiveIP advertises the local interface address that shares a
// subnet with the client, so PASV works for LAN cameras without a pinned
// public host.
func resolvePassiveIP(cc ftpserver.ClientContext) (string, error) {
	client := net.ParseIP(remoteHost(cc.RemoteAddr()))
	if client == nil {
		return "", fmt.Errorf("cannot parse client address %q", cc.RemoteAddr())
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("failed to list interface addresses: %w", err)
	}
	return passiveIPFor(client, addrs)
}

// passiveIPFor picks the interface address whose subnet contains the client,
// falling back to the first global unicast address.
func passiveIPFor(client net.IP, addrs []net.Addr) (string, error) {
	var fallback string
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil {
			continue
		}
		if ipNet.Contains(client) {
			return ip.String(), nil
		}
		if fallback == "" && ip.IsGlobalUnicast() {
			fallback = ip.String()
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("no usable interface address for client %s", client)
}
