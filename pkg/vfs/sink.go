package vfs

import (
	"bytes"
	"io"
)

// Sink accumulates an upload's bytes in memory. It is returned by
// FS.BeginWrite and handed to the protocol engine as the data-connection
// target. Closing the sink freezes the buffer and installs it in the
// filesystem; further writes fail.
type Sink struct {
	fs     *FS
	path   string
	buf    bytes.Buffer
	closed bool
}

func newSink(fs *FS, path string) *Sink {
	return &Sink{fs: fs, path: path}
}

// Path returns the normalized absolute path the sink writes to.
func (s *Sink) Path() string {
	return s.path
}

// Size returns the number of bytes accumulated so far.
func (s *Sink) Size() int64 {
	return int64(s.buf.Len())
}

// Write appends a chunk to the pending buffer.
func (s *Sink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	return s.buf.Write(p)
}

// Close finalizes the upload: the accumulated bytes become the file content
// at the sink's path. Idempotent.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.fs.finalize(s, s.buf.Bytes())
	return nil
}

// Discard drops the accumulated bytes without installing them. Used when the
// transfer failed mid-stream; the partial upload must never become a file.
// Idempotent, and a no-op after Close.
func (s *Sink) Discard() {
	if s.closed {
		return
	}
	s.closed = true
	if s.fs.pending[s.path] == s {
		delete(s.fs.pending, s.path)
	}
}
