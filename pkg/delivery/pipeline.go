package delivery

import (
	"context"
	"fmt"

	"github.com/ftpgram/ftpgram/internal/bytesize"
	"github.com/ftpgram/ftpgram/internal/logger"
	"github.com/ftpgram/ftpgram/pkg/classify"
	"github.com/ftpgram/ftpgram/pkg/route"
)

// Pipeline executes delivery attempts against a messenger and a transcoder.
// It is stateless apart from its collaborators and configuration; one
// instance serves all sessions.
type Pipeline struct {
	messenger    Messenger
	transcoder   Transcoder
	photoCeiling int64
	metrics      Metrics
}

// NewPipeline builds a pipeline. photoCeiling bounds the buffer size for the
// inline-photo strategy; larger images degrade to documents. metrics may be
// nil.
func NewPipeline(m Messenger, t Transcoder, photoCeiling bytesize.ByteSize, metrics Metrics) *Pipeline {
	return &Pipeline{
		messenger:    m,
		transcoder:   t,
		photoCeiling: int64(photoCeiling),
		metrics:      metrics,
	}
}

// Deliver sends one upload to its destination. filename is the upload's base
// name and becomes the caption. Exactly one outbound message results on
// success; zero on error. Deliver never removes buffers or touches session
// state: the caller owns the upload's lifecycle.
func (p *Pipeline) Deliver(ctx context.Context, dest route.Destination, filename string, data []byte) error {
	if p.metrics != nil {
		p.metrics.RecordUpload(int64(len(data)))
	}

	if err := p.messenger.ValidateDestination(ctx, dest.ChatID); err != nil {
		p.recordFailure("destination_unreachable")
		return fmt.Errorf("%w: chat %d: %v", ErrDestinationUnreachable, dest.ChatID, err)
	}

	content := classify.Classify(data, filename)
	logger.Debug("Upload classified",
		logger.KeyFilename, filename,
		logger.KeyCategory, content.Category.String(),
		logger.KeyMIME, content.MIME,
		logger.KeySize, len(data))

	msg := Message{
		ChatID:   dest.ChatID,
		TopicID:  dest.TopicID,
		Data:     data,
		Filename: filename,
		Caption:  filename,
		Silent:   true,
	}

	switch {
	case content.Category == classify.CategoryVideo && content.Transcode:
		return p.deliverTranscoded(ctx, msg)

	case content.Category == classify.CategoryVideo:
		if err := p.messenger.SendVideo(ctx, msg); err != nil {
			p.recordFailure("send_video")
			return fmt.Errorf("%w: video %s: %v", ErrDeliveryFailed, filename, err)
		}
		p.recordDelivery("video")
		return nil

	case content.Category == classify.CategoryImage && p.photoEligible(content, msg):
		return p.deliverPhoto(ctx, msg)

	default:
		return p.deliverDocument(ctx, msg)
	}
}

// photoEligible applies the inline-photo constraints: within the ceiling and
// not a GIF (the platform renders GIF photos poorly; they go as documents).
func (p *Pipeline) photoEligible(content classify.Content, msg Message) bool {
	return content.MIME != "image/gif" && int64(len(msg.Data)) <= p.photoCeiling
}

// deliverTranscoded converts a raw bitstream and sends the result as a
// video named <original>.mp4, captioned with the original filename.
func (p *Pipeline) deliverTranscoded(ctx context.Context, msg Message) error {
	converted, err := p.transcoder.Transcode(ctx, msg.Data, msg.Filename)
	if err != nil {
		p.recordFailure("transcode")
		return fmt.Errorf("%w: %s: %v", ErrTranscodeFailed, msg.Filename, err)
	}

	out := msg
	out.Data = converted
	out.Filename = msg.Filename + ".mp4"

	if err := p.messenger.SendVideo(ctx, out); err != nil {
		p.recordFailure("send_video")
		return fmt.Errorf("%w: transcoded video %s: %v", ErrDeliveryFailed, out.Filename, err)
	}
	p.recordDelivery("video")
	return nil
}

// deliverPhoto attempts the inline-photo strategy with a one-shot document
// fallback. The fallback is not retried recursively: if the document send
// fails too, the attempt is over.
func (p *Pipeline) deliverPhoto(ctx context.Context, msg Message) error {
	err := p.messenger.SendPhoto(ctx, msg)
	if err == nil {
		p.recordDelivery("photo")
		return nil
	}

	logger.Warn("Photo send rejected, falling back to document",
		logger.KeyFilename, msg.Filename,
		logger.KeyChatID, msg.ChatID,
		logger.KeyError, err)

	if err := p.messenger.SendDocument(ctx, msg); err != nil {
		p.recordFailure("send_document")
		return fmt.Errorf("%w: photo fallback %s: %v", ErrDeliveryFailed, msg.Filename, err)
	}
	p.recordDelivery("document")
	return nil
}

// deliverDocument sends the payload as a generic file attachment.
func (p *Pipeline) deliverDocument(ctx context.Context, msg Message) error {
	if err := p.messenger.SendDocument(ctx, msg); err != nil {
		p.recordFailure("send_document")
		return fmt.Errorf("%w: document %s: %v", ErrDeliveryFailed, msg.Filename, err)
	}
	p.recordDelivery("document")
	return nil
}

func (p *Pipeline) recordDelivery(kind string) {
	if p.metrics != nil {
		p.metrics.RecordDelivery(kind)
	}
}

func (p *Pipeline) recordFailure(reason string) {
	if p.metrics != nil {
		p.metrics.RecordFailure(reason)
	}
}
