// Package transcode converts proprietary camera bitstreams into MP4 by
// shelling out to ffmpeg. Everything is streamed through pipes: the input
// buffer goes to stdin and the fragmented-MP4 result comes back on stdout,
// so no temporary files are written.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ftpgram/ftpgram/internal/logger"
	"github.com/ftpgram/ftpgram/pkg/delivery"
)

// DefaultBinary is the converter executable looked up on PATH when the
// configuration does not name one.
const DefaultBinary = "ffmpeg"

// FFmpeg is the delivery.Transcoder implementation. One instance serves all
// deliveries; each Transcode call runs its own process.
type FFmpeg struct {
	binary string
}

var _ delivery.Transcoder = (*FFmpeg)(nil)

// New creates a transcoder using the given ffmpeg binary path, or
// DefaultBinary when empty.
func New(binary string) *FFmpeg {
	if binary == "" {
		binary = DefaultBinary
	}
	return &FFmpeg{binary: binary}
}

// args builds the ffmpeg invocation for a stdin→stdout conversion.
// Fragmented MP4 (frag_keyframe+empty_moov) is required because a pipe
// target is not seekable.
func (f *FFmpeg) args() []string {
	return []string{
		"-i", "pipe:0",
		"-c:v", "libx265",
		"-movflags", "faststart",
		"-movflags", "frag_keyframe+empty_moov",
		"-f", "mp4",
		"pipe:1",
	}
}

// Transcode converts a raw bitstream into an MP4 buffer. The filename is
// used for logging only. A non-zero exit or empty output fails with an error
// carrying the tail of ffmpeg's stderr.
func (f *FFmpeg) Transcode(ctx context.Context, data []byte, filename string) ([]byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, f.binary, f.args()...)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed for %s: %w: %s", f.binary, filename, err, stderrTail(&stderr))
	}

	out := stdout.Bytes()
	if len(out) == 0 {
		return nil, fmt.Errorf("%s produced no output for %s: %s", f.binary, filename, stderrTail(&stderr))
	}

	logger.Debug("Transcode finished",
		logger.KeyFilename, filename,
		logger.KeySize, len(out),
		logger.KeyDuration, time.Since(start))
	return out, nil
}

// stderrTail keeps error messages bounded: ffmpeg is chatty and only the
// last lines explain a failure.
func stderrTail(buf *bytes.Buffer) string {
	const maxLines = 5
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, " | ")
}
