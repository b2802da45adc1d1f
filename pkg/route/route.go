// Package route maps upload directories to configured Telegram destinations.
// Matching is intentionally shallow: only the first path segment below the
// root selects a destination, so routing stays O(1) against a small static
// table and matches the "one folder per camera" deployment model.
package route

import (
	"errors"
	"strings"
)

// ErrNoDestination indicates the table has no catch-all entry for an
// unmatched folder. Configuration validation prevents such a table from
// reaching a running server, so hitting this at runtime is a bug.
var ErrNoDestination = errors.New("no destination configured for folder")

// Destination is one configured target conversation. Folder is nil for the
// catch-all entry that receives everything without a folder-specific match.
// TopicID selects an optional forum topic (sub-channel) inside the chat;
// zero means the chat's main thread.
type Destination struct {
	Folder  *string
	ChatID  int64
	TopicID int
}

// IsCatchAll reports whether this entry is the fallback destination.
func (d Destination) IsCatchAll() bool {
	return d.Folder == nil
}

// Router resolves upload directories against an immutable destination table.
// It is built once at startup and safe for unsynchronized concurrent reads.
type Router struct {
	byFolder map[string]Destination
	catchAll *Destination
}

// NewRouter builds a router from the configured destination table.
// Later duplicate folder entries are ignored; the first catch-all wins.
func NewRouter(destinations []Destination) *Router {
	r := &Router{byFolder: make(map[string]Destination, len(destinations))}
	for _, d := range destinations {
		if d.Folder == nil {
			if r.catchAll == nil {
				dd := d
				r.catchAll = &dd
			}
			continue
		}
		if _, exists := r.byFolder[*d.Folder]; !exists {
			r.byFolder[*d.Folder] = d
		}
	}
	return r
}

// HasCatchAll reports whether unmatched folders have somewhere to go.
func (r *Router) HasCatchAll() bool {
	return r.catchAll != nil
}

// Route maps a normalized absolute directory path to exactly one
// destination. The top folder is the first path segment; the root has no top
// folder and always routes to the catch-all. Unmatched folders fall back to
// the catch-all as well. Fails with ErrNoDestination only when the table has
// no catch-all.
func (r *Router) Route(directory string) (Destination, error) {
	top := topFolder(directory)
	if top != "" {
		if d, ok := r.byFolder[top]; ok {
			return d, nil
		}
	}
	if r.catchAll != nil {
		return *r.catchAll, nil
	}
	return Destination{}, ErrNoDestination
}

// topFolder extracts the first path segment, or "" for the root.
func topFolder(directory string) string {
	clean := strings.Trim(directory, "/")
	if clean == "" {
		return ""
	}
	if i := strings.IndexByte(clean, '/'); i >= 0 {
		return clean[:i]
	}
	return clean
}

// Folders returns the folder names of all non-catch-all destinations, used
// by the gateway to pre-create one directory per configured target.
func (r *Router) Folders() []string {
	folders := make([]string, 0, len(r.byFolder))
	for f := range r.byFolder {
		folders = append(folders, f)
	}
	return folders
}
