package vfs

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeStat(t *testing.T) {
	fs := New()
	fs.MakeDirectory("/camA")
	bridge := NewBridge(fs, nil)

	fi, err := bridge.Stat("/camA")
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	assert.Equal(t, "camA", fi.Name())
	assert.Equal(t, os.ModeDir|os.FileMode(0755), fi.Mode())

	_, err = bridge.Stat("/missing")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestBridgeUploadRoundTrip(t *testing.T) {
	fs := New()
	var storedPath string
	var storedSize int64
	bridge := NewBridge(fs, func(path string, size int64) {
		storedPath = path
		storedSize = size
	})

	f, err := bridge.OpenFile("/camA/clip.265", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	require.NoError(t, err)

	n, err := f.Write([]byte("h265 payload"))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	require.NoError(t, f.Close())

	assert.Equal(t, "/camA/clip.265", storedPath)
	assert.Equal(t, int64(12), storedSize)

	data, ok := fs.TakeUploaded("/camA/clip.265")
	require.True(t, ok)
	assert.Equal(t, []byte("h265 payload"), data)

	// Reading back through the bridge sees the finalized buffer.
	rf, err := bridge.Open("/camA/clip.265")
	require.NoError(t, err)
	back, err := io.ReadAll(rf)
	require.NoError(t, err)
	assert.Equal(t, []byte("h265 payload"), back)
	require.NoError(t, rf.Close())
}

func TestBridgeAbortedUploadDiscarded(t *testing.T) {
	fs := New()
	stored := 0
	bridge := NewBridge(fs, func(string, int64) { stored++ })

	// A dropped data connection: the engine reports the failure, then
	// closes the handle. The partial buffer must not become a file.
	f, err := bridge.OpenFile("/camA/clip.265", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte("first-half-of-the-clip"))
	require.NoError(t, err)

	f.(*bridgeFile).TransferError(io.ErrUnexpectedEOF)
	require.NoError(t, f.Close())

	assert.Zero(t, stored, "aborted upload must not be announced")
	_, ok := fs.TakeUploaded("/camA/clip.265")
	assert.False(t, ok, "partial bytes must not be installed")

	// The path is free for a clean retry.
	f, err = bridge.OpenFile("/camA/clip.265", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte("whole clip"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, 1, stored)
	data, ok := fs.TakeUploaded("/camA/clip.265")
	require.True(t, ok)
	assert.Equal(t, []byte("whole clip"), data)
}

func TestBridgeAppendRejected(t *testing.T) {
	bridge := NewBridge(New(), nil)
	_, err := bridge.OpenFile("/f", os.O_WRONLY|os.O_APPEND, 0644)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrAppendNotSupported))
}

func TestBridgeReaddir(t *testing.T) {
	fs := New()
	fs.MakeDirectory("/camA")
	fs.MakeDirectory("/camB")
	bridge := NewBridge(fs, nil)

	dir, err := bridge.Open("/")
	require.NoError(t, err)

	infos, err := dir.Readdir(-1)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "camA", infos[0].Name())
	assert.True(t, infos[0].IsDir())

	// Exhausted handle returns no more entries.
	infos, err = dir.Readdir(-1)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestBridgeReaddirPaged(t *testing.T) {
	fs := New()
	fs.MakeDirectory("/a")
	fs.MakeDirectory("/b")
	fs.MakeDirectory("/c")
	bridge := NewBridge(fs, nil)

	dir, err := bridge.Open("/")
	require.NoError(t, err)

	first, err := dir.Readdir(2)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	rest, err := dir.Readdir(2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	empty, err := dir.Readdir(2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBridgeChdir(t *testing.T) {
	fs := New()
	fs.MakeDirectory("/camA")
	bridge := NewBridge(fs, nil)

	require.NoError(t, bridge.Chdir("/camA"))
	assert.Equal(t, "/camA", fs.CurrentDirectory())

	err := bridge.Chdir("/missing")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrDirectoryNotFound))
}

func TestBridgeRenameNotSupported(t *testing.T) {
	bridge := NewBridge(New(), nil)
	err := bridge.Rename("/a", "/b")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrNotSupported))
}

func TestBridgeRemove(t *testing.T) {
	fs := New()
	bridge := NewBridge(fs, nil)

	sink, err := fs.BeginWrite("/f", false)
	require.NoError(t, err)
	_, _ = sink.Write([]byte("x"))
	require.NoError(t, sink.Close())

	require.NoError(t, bridge.Remove("/f"))
	_, ok := fs.TakeUploaded("/f")
	assert.False(t, ok)

	err = bridge.Remove("/f")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
