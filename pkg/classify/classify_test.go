package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Minimal real signatures for sniffing tests.
var (
	jpegSig = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 64)...)
	pngSig  = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, make([]byte, 64)...)
	gifSig  = append([]byte("GIF89a"), make([]byte, 64)...)
	pdfSig  = append([]byte("%PDF-1.4"), make([]byte, 64)...)
	mp4Sig  = append([]byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
		0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'm', 'p', '4', '1'}, make([]byte, 64)...)
)

func TestClassifySniffing(t *testing.T) {
	tests := []struct {
		name     string
		buf      []byte
		filename string
		want     Category
		mime     string
	}{
		{"jpeg by signature", jpegSig, "noext", CategoryImage, "image/jpeg"},
		{"png by signature", pngSig, "x.bin", CategoryImage, "image/png"},
		{"gif by signature", gifSig, "anim.gif", CategoryImage, "image/gif"},
		{"pdf by signature", pdfSig, "report", CategoryDocument, "application/pdf"},
		{"mp4 by signature", mp4Sig, "clip.dat", CategoryVideo, "video/mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.buf, tt.filename)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.mime, got.MIME)
			assert.False(t, got.Transcode)
		})
	}
}

func TestClassifyExtensionFallback(t *testing.T) {
	junk := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	tests := []struct {
		filename  string
		want      Category
		mime      string
		transcode bool
	}{
		{"photo.jpg", CategoryImage, "image/jpeg", false},
		{"photo.JPEG", CategoryImage, "image/jpeg", false},
		{"clip.mp4", CategoryVideo, "video/mp4", false},
		{"clip.265", CategoryVideo, "video/mp4", true},
		{"clip.h265", CategoryVideo, "video/mp4", true},
		{"clip.264", CategoryVideo, "video/mp4", true},
		{"clip.H264", CategoryVideo, "video/mp4", true},
		{"report.pdf", CategoryDocument, "application/pdf", false},
		{"data.xyz", CategoryUnknown, "application/octet-stream", false},
		{"noextension", CategoryUnknown, "application/octet-stream", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := Classify(junk, tt.filename)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.mime, got.MIME)
			assert.Equal(t, tt.transcode, got.Transcode)
		})
	}
}

func TestClassifyTranscodeExtensionWins(t *testing.T) {
	// A camera-named .265 is a raw bitstream even if the leading bytes
	// happen to resemble something else.
	got := Classify(jpegSig, "/camB/clip.265")
	assert.Equal(t, CategoryVideo, got.Category)
	assert.True(t, got.Transcode)
}

func TestClassifyTotal(t *testing.T) {
	// Never panics, never fails: empty buffers, nil buffers, empty names.
	for _, buf := range [][]byte{nil, {}, {0x00}} {
		for _, name := range []string{"", ".", "..", "a.", "/", "weird..ext."} {
			got := Classify(buf, name)
			assert.NotEmpty(t, got.MIME, "buf=%v name=%q", buf, name)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	a := Classify(jpegSig, "photo.jpg")
	b := Classify(jpegSig, "photo.jpg")
	assert.Equal(t, a, b)
}
