// Package delivery turns a routed upload into exactly one outbound message.
//
// The pipeline validates the destination, classifies the buffer, then picks a
// sending strategy: photo for images within the configured ceiling (with a
// one-shot document fallback when the platform rejects the photo), video with
// an out-of-process transcode for raw camera bitstreams, and a generic
// document for everything else. Failures are terminal for the attempt; no
// retries are performed and the upload is dropped, by design, so failed media
// never accumulates.
package delivery

import (
	"context"
	"errors"
)

// Sentinel errors for the per-upload failure taxonomy. All of them are
// logged and absorbed at the dispatcher boundary; they never reach a session.
var (
	// ErrDestinationUnreachable means the destination chat does not exist or
	// the bot cannot see it. Terminal for the attempt.
	ErrDestinationUnreachable = errors.New("destination unreachable")

	// ErrTranscodeFailed means the external converter could not produce a
	// standard container. Terminal for the attempt.
	ErrTranscodeFailed = errors.New("transcode failed")

	// ErrDeliveryFailed means every applicable send strategy failed.
	ErrDeliveryFailed = errors.New("delivery failed")
)

// Message is one outbound send request. Data is the complete payload;
// Caption always carries the original filename and Silent is always set —
// these are fixed delivery defaults, not per-file knobs.
type Message struct {
	ChatID   int64
	TopicID  int
	Data     []byte
	Filename string
	Caption  string
	Silent   bool
}

// Messenger is the outbound messaging-platform contract. Implementations
// must be safe for use from the dispatcher goroutine; the pipeline never
// calls them concurrently.
type Messenger interface {
	// ValidateDestination confirms the chat exists and is reachable.
	ValidateDestination(ctx context.Context, chatID int64) error

	// SendPhoto delivers an image as an inline photo.
	SendPhoto(ctx context.Context, msg Message) error

	// SendDocument delivers any payload as a file attachment.
	SendDocument(ctx context.Context, msg Message) error

	// SendVideo delivers a standard-container video.
	SendVideo(ctx context.Context, msg Message) error
}

// Transcoder converts a proprietary video bitstream into a standard
// container. Implementations run out of process; a slow conversion must not
// hold anything but the dispatcher.
type Transcoder interface {
	Transcode(ctx context.Context, data []byte, filename string) ([]byte, error)
}

// Metrics records delivery outcomes. A nil Metrics disables recording with
// zero overhead.
type Metrics interface {
	RecordUpload(bytes int64)
	RecordDelivery(kind string)
	RecordFailure(reason string)
}
