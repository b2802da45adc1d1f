// Package gateway ties FTP sessions to the relay pipeline. It owns
// authentication, per-session virtual filesystems and the handoff of
// completed uploads to the delivery queue.
package gateway

import (
	"errors"

	"github.com/google/uuid"

	"github.com/ftpgram/ftpgram/pkg/route"
)

// ErrInvalidCredentials rejects a login attempt. The same error covers wrong
// username and wrong password so probing cannot tell them apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credential is one allowed username/password pair.
type Credential struct {
	Username string
	Password string
}

// Enqueuer accepts completed uploads for asynchronous delivery. The delivery
// dispatcher implements it; tests substitute a recorder.
type Enqueuer interface {
	Enqueue(dest route.Destination, filename, path, session string, data []byte) bool
}

// Gateway is shared across all FTP sessions. It is immutable after New and
// safe for concurrent use.
type Gateway struct {
	router *route.Router
	queue  Enqueuer
	creds  []Credential
}

// New creates a gateway over the given routing table and delivery queue.
// An empty credential list enables anonymous access: any username and
// password are accepted.
func New(router *route.Router, queue Enqueuer, creds []Credential) *Gateway {
	return &Gateway{router: router, queue: queue, creds: creds}
}

// Authenticate checks a login against the credential table.
func (g *Gateway) Authenticate(username, password string) error {
	if len(g.creds) == 0 {
		return nil
	}
	for _, c := range g.creds {
		if c.Username == username && c.Password == password {
			return nil
		}
	}
	return ErrInvalidCredentials
}

// Anonymous reports whether the gateway accepts any login.
func (g *Gateway) Anonymous() bool {
	return len(g.creds) == 0
}

// OpenSession creates a fresh session with its own empty filesystem. One
// directory per configured folder destination is pre-created so cameras can
// CWD into their target without a prior MKD.
func (g *Gateway) OpenSession(clientIP string) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		ClientIP: clientIP,
		gw:       g,
	}
	s.init()
	return s
}
