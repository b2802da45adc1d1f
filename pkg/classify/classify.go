// Package classify decides how an uploaded buffer should be delivered.
// Byte-signature sniffing runs first; when the bytes are unrecognizable
// (raw camera bitstreams mostly are) a static extension table takes over.
// Classification is total: it always yields a category and never fails.
package classify

import (
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Category is the closed set of delivery strategies.
type Category int

const (
	// CategoryUnknown is unrecognizable content, delivered as a generic
	// document.
	CategoryUnknown Category = iota

	// CategoryImage is photo-deliverable content.
	CategoryImage

	// CategoryDocument is anything best delivered as a file attachment.
	CategoryDocument

	// CategoryVideo is video content, deliverable directly or after
	// transcoding depending on Content.Transcode.
	CategoryVideo
)

func (c Category) String() string {
	switch c {
	case CategoryImage:
		return "image"
	case CategoryDocument:
		return "document"
	case CategoryVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Content is the classification result. Transcode marks proprietary video
// codecs (raw H.264/H.265 camera clips) that must be converted to a standard
// container before the platform will accept them.
type Content struct {
	Category  Category
	MIME      string
	Transcode bool
}

const octetStream = "application/octet-stream"

// transcodeExts are raw-bitstream extensions produced by camera firmwares.
// They carry no container signature, so only the name identifies them.
var transcodeExts = map[string]bool{
	"265": true, "h265": true,
	"264": true, "h264": true,
}

// extTable is the extension fallback for content whose bytes don't sniff.
var extTable = map[string]string{
	"mp4":  "video/mp4",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"pdf":  "application/pdf",
}

// Classify determines the delivery category for a buffer. The filename is
// only consulted when sniffing yields nothing, except that transcode-needing
// extensions always force the video-with-transcode path: a file a camera
// named clip.265 is a raw bitstream no matter what its first bytes resemble.
func Classify(buf []byte, filename string) Content {
	ext := extension(filename)

	if transcodeExts[ext] {
		return Content{Category: CategoryVideo, MIME: "video/mp4", Transcode: true}
	}

	if detected := mimetype.Detect(buf); detected.String() != octetStream {
		return fromMIME(detected.String())
	}

	if mime, ok := extTable[ext]; ok {
		return fromMIME(mime)
	}

	return Content{Category: CategoryUnknown, MIME: octetStream}
}

// fromMIME maps a recognized MIME type onto a category.
func fromMIME(mime string) Content {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return Content{Category: CategoryImage, MIME: mime}
	case strings.HasPrefix(mime, "video/"):
		return Content{Category: CategoryVideo, MIME: mime}
	default:
		return Content{Category: CategoryDocument, MIME: mime}
	}
}

// extension returns the lowercased filename extension without the dot.
func extension(filename string) string {
	ext := path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
