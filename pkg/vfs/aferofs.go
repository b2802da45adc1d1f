package vfs

import (
	"bytes"
	"os"
	"path"
	"time"

	"github.com/spf13/afero"
)

// Bridge exposes a session FS through the afero.Fs interface so the FTP
// protocol engine can drive it as a client driver. The engine hands in
// already-joined absolute paths; the bridge maps them onto the session
// filesystem and reports placeholder stat data.
//
// onStored, when non-nil, is invoked after a write sink finalizes. The
// gateway uses it to kick off routing and delivery for completed uploads.
type Bridge struct {
	fs       *FS
	onStored func(path string, size int64)
}

var _ afero.Fs = (*Bridge)(nil)

// NewBridge wraps a session filesystem for the protocol engine.
func NewBridge(fs *FS, onStored func(path string, size int64)) *Bridge {
	return &Bridge{fs: fs, onStored: onStored}
}

// FS returns the underlying session filesystem.
func (b *Bridge) FS() *FS {
	return b.fs
}

// Name identifies the filesystem implementation.
func (b *Bridge) Name() string {
	return "ftpgram-vfs"
}

// Chdir keeps the session working directory in sync with the engine's CWD
// handling. Returning an error rejects the change-directory command.
func (b *Bridge) Chdir(name string) error {
	_, err := b.fs.ChangeDirectory(name)
	return err
}

// Mkdir creates the directory and any missing ancestors.
func (b *Bridge) Mkdir(name string, _ os.FileMode) error {
	b.fs.MakeDirectory(name)
	return nil
}

// MkdirAll is identical to Mkdir: ancestor creation is always eager.
func (b *Bridge) MkdirAll(name string, _ os.FileMode) error {
	b.fs.MakeDirectory(name)
	return nil
}

// Stat reports placeholder attributes for known directories and finalized
// uploads. Everything else does not exist.
func (b *Bridge) Stat(name string) (os.FileInfo, error) {
	resolved := b.fs.ResolvePath(name)
	if _, ok := b.fs.dirs[resolved]; ok {
		return dirInfo(path.Base(resolved), b.fs.created), nil
	}
	if data, ok := b.fs.files[resolved]; ok {
		return fileInfo(path.Base(resolved), int64(len(data)), b.fs.created), nil
	}
	return nil, &os.PathError{Op: "stat", Path: resolved, Err: os.ErrNotExist}
}

// Open opens a directory for listing or a finalized upload for reading.
func (b *Bridge) Open(name string) (afero.File, error) {
	resolved := b.fs.ResolvePath(name)
	if _, ok := b.fs.dirs[resolved]; ok {
		entries, err := b.fs.ListDirectory(resolved)
		if err != nil {
			return nil, err
		}
		infos := make([]os.FileInfo, 0, len(entries))
		for _, e := range entries {
			if e.Dir {
				infos = append(infos, dirInfo(e.Name, e.ModTime))
			} else {
				infos = append(infos, fileInfo(e.Name, e.Size, e.ModTime))
			}
		}
		return &bridgeFile{name: resolved, dir: true, entries: infos, created: b.fs.created}, nil
	}
	if data, ok := b.fs.files[resolved]; ok {
		return &bridgeFile{name: resolved, reader: bytes.NewReader(data), size: int64(len(data)), created: b.fs.created}, nil
	}
	return nil, &os.PathError{Op: "open", Path: resolved, Err: os.ErrNotExist}
}

// OpenFile opens a write sink for uploads (STOR) or falls back to Open for
// reads. Append mode (APPE) is rejected: uploads are whole-file only.
func (b *Bridge) OpenFile(name string, flag int, _ os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return b.Open(name)
	}
	sink, err := b.fs.BeginWrite(name, flag&os.O_APPEND != 0)
	if err != nil {
		return nil, err
	}
	return &bridgeFile{name: sink.Path(), sink: sink, bridge: b, created: b.fs.created}, nil
}

// Create opens a truncating write sink.
func (b *Bridge) Create(name string) (afero.File, error) {
	return b.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
}

// Remove deletes a finalized upload or an empty directory.
func (b *Bridge) Remove(name string) error {
	resolved := b.fs.ResolvePath(name)
	if _, ok := b.fs.files[resolved]; ok {
		b.fs.RemoveUploaded(resolved)
		return nil
	}
	if _, ok := b.fs.dirs[resolved]; ok && resolved != Root {
		delete(b.fs.dirs, resolved)
		return nil
	}
	return &os.PathError{Op: "remove", Path: resolved, Err: os.ErrNotExist}
}

// RemoveAll behaves like Remove; nested cleanup has nothing extra to free.
func (b *Bridge) RemoveAll(name string) error {
	return b.Remove(name)
}

// Rename is not supported: an upload's path is its routing key.
func (b *Bridge) Rename(oldname, _ string) error {
	return newPathError(ErrNotSupported, b.fs.ResolvePath(oldname))
}

// Chmod is accepted and ignored; permissions are placeholders.
func (b *Bridge) Chmod(string, os.FileMode) error { return nil }

// Chown is accepted and ignored.
func (b *Bridge) Chown(string, int, int) error { return nil }

// Chtimes is accepted and ignored; some clients send MFMT after upload.
func (b *Bridge) Chtimes(string, time.Time, time.Time) error { return nil }

// ============================================================================
// File handle
// ============================================================================

// bridgeFile is the afero.File handed to the protocol engine. Exactly one of
// reader (RETR), sink (STOR) or dir listing mode is active.
type bridgeFile struct {
	name    string
	created time.Time

	reader *bytes.Reader
	size   int64

	sink    *Sink
	bridge  *Bridge
	aborted bool

	dir       bool
	entries   []os.FileInfo
	dirOffset int
}

var _ afero.File = (*bridgeFile)(nil)

func (f *bridgeFile) Name() string { return f.name }

func (f *bridgeFile) Read(p []byte) (int, error) {
	if f.reader == nil {
		return 0, newPathError(ErrNotSupported, f.name)
	}
	return f.reader.Read(p)
}

func (f *bridgeFile) ReadAt(p []byte, off int64) (int, error) {
	if f.reader == nil {
		return 0, newPathError(ErrNotSupported, f.name)
	}
	return f.reader.ReadAt(p, off)
}

func (f *bridgeFile) Seek(offset int64, whence int) (int64, error) {
	if f.reader == nil {
		// REST 0 before a fresh upload is harmless.
		if f.sink != nil && offset == 0 {
			return 0, nil
		}
		return 0, newPathError(ErrNotSupported, f.name)
	}
	return f.reader.Seek(offset, whence)
}

func (f *bridgeFile) Write(p []byte) (int, error) {
	if f.sink == nil {
		return 0, newPathError(ErrNotSupported, f.name)
	}
	return f.sink.Write(p)
}

func (f *bridgeFile) WriteAt([]byte, int64) (int, error) {
	return 0, newPathError(ErrNotSupported, f.name)
}

func (f *bridgeFile) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// TransferError marks the upload as failed mid-stream. The engine calls it
// when a data connection drops or a transfer is aborted, always before Close;
// the partial buffer is then discarded instead of finalized.
func (f *bridgeFile) TransferError(error) {
	f.aborted = true
}

// Close finalizes a write sink and notifies the gateway that an upload
// completed. Aborted transfers are discarded without notification. Read and
// directory handles close without side effects.
func (f *bridgeFile) Close() error {
	if f.sink == nil {
		return nil
	}
	if f.aborted {
		f.sink.Discard()
		return nil
	}
	size := f.sink.Size()
	if err := f.sink.Close(); err != nil {
		return err
	}
	if f.bridge != nil && f.bridge.onStored != nil {
		f.bridge.onStored(f.sink.Path(), size)
	}
	return nil
}

func (f *bridgeFile) Readdir(count int) ([]os.FileInfo, error) {
	if !f.dir {
		return nil, newPathError(ErrNotSupported, f.name)
	}
	if count <= 0 {
		res := f.entries[f.dirOffset:]
		f.dirOffset = len(f.entries)
		return res, nil
	}
	if f.dirOffset >= len(f.entries) {
		return nil, nil
	}
	end := f.dirOffset + count
	if end > len(f.entries) {
		end = len(f.entries)
	}
	res := f.entries[f.dirOffset:end]
	f.dirOffset = end
	return res, nil
}

func (f *bridgeFile) Readdirnames(n int) ([]string, error) {
	infos, err := f.Readdir(n)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, fi := range infos {
		names[i] = fi.Name()
	}
	return names, nil
}

func (f *bridgeFile) Stat() (os.FileInfo, error) {
	if f.dir {
		return dirInfo(path.Base(f.name), f.created), nil
	}
	if f.sink != nil {
		return fileInfo(path.Base(f.name), f.sink.Size(), f.created), nil
	}
	return fileInfo(path.Base(f.name), f.size, f.created), nil
}

func (f *bridgeFile) Sync() error { return nil }

func (f *bridgeFile) Truncate(int64) error { return nil }

// ============================================================================
// Placeholder stat
// ============================================================================

// entryInfo implements os.FileInfo with fixed placeholder permissions.
type entryInfo struct {
	name string
	size int64
	dir  bool
	mod  time.Time
}

func dirInfo(name string, mod time.Time) os.FileInfo {
	return entryInfo{name: name, dir: true, mod: mod}
}

func fileInfo(name string, size int64, mod time.Time) os.FileInfo {
	return entryInfo{name: name, size: size, mod: mod}
}

func (e entryInfo) Name() string { return e.name }
func (e entryInfo) Size() int64  { return e.size }
func (e entryInfo) Mode() os.FileMode {
	if e.dir {
		return os.ModeDir | 0755
	}
	return 0644
}
func (e entryInfo) ModTime() time.Time { return e.mod }
func (e entryInfo) IsDir() bool        { return e.dir }
func (e entryInfo) Sys() any           { return nil }
