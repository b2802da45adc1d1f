package gateway

import (
	"path"

	"github.com/ftpgram/ftpgram/internal/logger"
	"github.com/ftpgram/ftpgram/pkg/vfs"
)

// Session is the state of one FTP connection. The filesystem is private to
// the connection's goroutine; only the completed-upload handoff crosses into
// the dispatcher, and it does so by value.
type Session struct {
	ID       string
	ClientIP string

	fs     *vfs.FS
	bridge *vfs.Bridge
	gw     *Gateway
}

func (s *Session) init() {
	s.fs = vfs.New()
	for _, folder := range s.gw.router.Folders() {
		s.fs.MakeDirectory("/" + folder)
	}
	s.bridge = vfs.NewBridge(s.fs, s.handleStored)
}

// Driver returns the filesystem view handed to the FTP engine.
func (s *Session) Driver() *vfs.Bridge {
	return s.bridge
}

// FS returns the session filesystem. Exposed for tests.
func (s *Session) FS() *vfs.FS {
	return s.fs
}

// handleStored runs on the session goroutine after an upload finalizes. It
// resolves the destination, snapshots the buffer, frees it, and queues the
// delivery. The buffer is released before the delivery outcome is known, so
// an upload can never be delivered twice.
func (s *Session) handleStored(p string, size int64) {
	filename := path.Base(p)
	directory := path.Dir(p)

	logger.Info("Upload received",
		logger.KeySession, s.ID,
		logger.KeyClientIP, s.ClientIP,
		logger.KeyPath, p,
		logger.KeySize, size)

	dest, err := s.gw.router.Route(directory)
	if err != nil {
		logger.Error("No destination for upload, discarding",
			logger.KeySession, s.ID,
			logger.KeyPath, p,
			logger.KeyError, err)
		s.fs.RemoveUploaded(p)
		return
	}

	data, ok := s.fs.TakeUploaded(p)
	if !ok {
		logger.Warn("Upload buffer already gone",
			logger.KeySession, s.ID,
			logger.KeyPath, p)
		return
	}
	s.fs.RemoveUploaded(p)

	if !s.gw.queue.Enqueue(dest, filename, p, s.ID, data) {
		logger.Error("Delivery queue full, upload dropped",
			logger.KeySession, s.ID,
			logger.KeyPath, p,
			logger.KeySize, size)
	}
}

// Close releases the session. The filesystem is garbage with the session;
// nothing external holds a reference to it.
func (s *Session) Close() {
	logger.Debug("Session closed", logger.KeySession, s.ID, logger.KeyClientIP, s.ClientIP)
}
