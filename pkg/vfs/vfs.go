// Package vfs implements the per-session in-memory virtual filesystem backing
// FTP upload sessions. It emulates a POSIX-like namespace well enough to
// satisfy a generic FTP client (working directory, listings, stat) while
// keeping every byte in memory: directories are a flat set of normalized
// absolute paths and files are buffers that exist only between upload
// completion and the delivery attempt.
//
// A FS instance is owned by exactly one session. Sessions never share state,
// so no locking is performed for directory or buffer access.
package vfs

import (
	"path"
	"sort"
	"strings"
	"time"
)

// Root is the fixed root of every session namespace.
const Root = "/"

// Entry describes an immediate child of a directory as reported by
// ListDirectory. Timestamps and modes are placeholders: listing clients need
// plausible values, not meaningful ones.
type Entry struct {
	Name    string
	Dir     bool
	Size    int64
	ModTime time.Time
}

// FS is one session's virtual filesystem.
//
// The directory tree is represented as a set of known absolute paths rather
// than a linked node structure. The invariant maintained by every mutation is
// that the root always exists and every ancestor of a known path is also
// known (ancestors are created eagerly on MakeDirectory and BeginWrite).
type FS struct {
	dirs    map[string]struct{}
	files   map[string][]byte
	pending map[string]*Sink
	cwd     string
	created time.Time
}

// New creates an empty session filesystem containing only the root.
func New() *FS {
	return &FS{
		dirs:    map[string]struct{}{Root: {}},
		files:   make(map[string][]byte),
		pending: make(map[string]*Sink),
		cwd:     Root,
		created: time.Now(),
	}
}

// ResolvePath normalizes input into an absolute POSIX path. Backslash
// separators are accepted (some camera firmwares produce them), relative
// paths are joined against the current working directory, and "." / ".."
// segments are collapsed. The result can never escape the root: ascending
// past "/" clamps to "/".
func (f *FS) ResolvePath(input string) string {
	return resolve(input, f.cwd)
}

// resolve is ResolvePath against an explicit working directory.
func resolve(input, cwd string) string {
	p := strings.ReplaceAll(input, "\\", "/")
	if !path.IsAbs(p) {
		p = path.Join(cwd, p)
	}
	// Join/Clean collapse "..", and rooting the path clamps ascents: the
	// cleaned form of "/.." is "/".
	p = path.Clean("/" + strings.TrimPrefix(p, "/"))
	return p
}

// CurrentDirectory returns the session's working directory.
func (f *FS) CurrentDirectory() string {
	return f.cwd
}

// IsDirectory reports whether the resolved path is a known directory.
func (f *FS) IsDirectory(p string) bool {
	_, ok := f.dirs[f.ResolvePath(p)]
	return ok
}

// MakeDirectory creates the directory at the resolved path along with every
// missing ancestor. Creating an existing directory is a no-op. Returns the
// normalized absolute path.
func (f *FS) MakeDirectory(p string) string {
	resolved := f.ResolvePath(p)
	f.makeAncestors(resolved)
	return resolved
}

// makeAncestors inserts resolved and all its ancestors into the directory
// set. resolved must already be normalized.
func (f *FS) makeAncestors(resolved string) {
	for p := resolved; p != Root; p = path.Dir(p) {
		f.dirs[p] = struct{}{}
	}
}

// ChangeDirectory resolves p and makes it the working directory. Fails with
// ErrDirectoryNotFound if the resolved path was never created; on failure the
// working directory is unchanged.
func (f *FS) ChangeDirectory(p string) (string, error) {
	resolved := f.ResolvePath(p)
	if _, ok := f.dirs[resolved]; !ok {
		return "", newPathError(ErrDirectoryNotFound, resolved)
	}
	f.cwd = resolved
	return resolved, nil
}

// ChangeDirectoryUp moves the working directory to its parent. At the root
// it stays at the root.
func (f *FS) ChangeDirectoryUp() (string, error) {
	return f.ChangeDirectory("..")
}

// BeginWrite opens a write sink for the resolved path, eagerly creating its
// parent directories. Append mode is not supported for uploads and fails with
// ErrAppendNotSupported. The sink accumulates bytes in memory; when finalized
// the accumulated buffer atomically replaces any prior content at the path
// (last writer wins, no partial visibility).
func (f *FS) BeginWrite(p string, appendMode bool) (*Sink, error) {
	resolved := f.ResolvePath(p)
	if appendMode {
		return nil, newPathError(ErrAppendNotSupported, resolved)
	}
	f.makeAncestors(path.Dir(resolved))

	sink := newSink(f, resolved)
	f.pending[resolved] = sink
	return sink, nil
}

// finalize installs the sink's buffer as the file content. Called exactly
// once from Sink.Close. A stale sink (replaced by a newer BeginWrite on the
// same path) does not overwrite the newer pending entry.
func (f *FS) finalize(s *Sink, data []byte) {
	f.files[s.path] = data
	if f.pending[s.path] == s {
		delete(f.pending, s.path)
	}
}

// ListDirectory returns the immediate children of the resolved path, both
// subdirectories and finalized files, sorted by name. Fails with
// ErrDirectoryNotFound for unknown directories.
func (f *FS) ListDirectory(p string) ([]Entry, error) {
	resolved := f.ResolvePath(p)
	if _, ok := f.dirs[resolved]; !ok {
		return nil, newPathError(ErrDirectoryNotFound, resolved)
	}

	var entries []Entry
	for dir := range f.dirs {
		if dir != Root && path.Dir(dir) == resolved {
			entries = append(entries, Entry{
				Name:    path.Base(dir),
				Dir:     true,
				ModTime: f.created,
			})
		}
	}
	for file, data := range f.files {
		if path.Dir(file) == resolved {
			entries = append(entries, Entry{
				Name:    path.Base(file),
				Size:    int64(len(data)),
				ModTime: f.created,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// TakeUploaded returns the finalized buffer for the resolved path without
// removing it. The canonical consumption path is RemoveUploaded after the
// delivery attempt.
func (f *FS) TakeUploaded(p string) ([]byte, bool) {
	data, ok := f.files[f.ResolvePath(p)]
	return data, ok
}

// RemoveUploaded deletes the buffer at the resolved path. Removing an absent
// buffer is a no-op: the delivery path calls this unconditionally so an
// upload can never be delivered twice.
func (f *FS) RemoveUploaded(p string) {
	delete(f.files, f.ResolvePath(p))
}
