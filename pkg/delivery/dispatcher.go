package delivery

import (
	"context"
	"time"

	"github.com/ftpgram/ftpgram/internal/logger"
	"github.com/ftpgram/ftpgram/pkg/route"
)

// DefaultQueueSize bounds the number of uploads awaiting delivery. A camera
// relay is bursty but low-volume; a modest queue absorbs bursts while a full
// queue sheds load instead of buffering failed media without bound.
const DefaultQueueSize = 64

// job is one pending delivery. data is an immutable snapshot of the upload;
// the session's buffer has already been released by the time a job is
// queued, so a job cannot observe later uploads to the same path.
type job struct {
	dest     route.Destination
	filename string
	path     string
	session  string
	data     []byte
}

// Dispatcher funnels every delivery through a single worker goroutine.
//
// Serializing sends keeps the relay inside the platform's rate limits
// without any client-side locking, and guarantees a slow transcode or send
// only ever delays other deliveries, never a protocol session: sessions hand
// off completed uploads with a non-blocking enqueue and return to serving
// commands immediately.
type Dispatcher struct {
	pipeline *Pipeline
	jobs     chan job
	done     chan struct{}
}

// NewDispatcher creates a dispatcher over the given pipeline. queueSize <= 0
// selects DefaultQueueSize.
func NewDispatcher(p *Pipeline, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		pipeline: p,
		jobs:     make(chan job, queueSize),
		done:     make(chan struct{}),
	}
}

// Run processes deliveries until the context is cancelled, then drains
// whatever is already queued. In-flight deliveries are never cancelled; they
// run to success, fallback, or terminal failure. Run returns nil on
// shutdown and must be called at most once.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.done)

	// Sends must outlive ctx cancellation once started.
	sendCtx := context.WithoutCancel(ctx)

	for {
		select {
		case j := <-d.jobs:
			d.process(sendCtx, j)
		case <-ctx.Done():
			for {
				select {
				case j := <-d.jobs:
					d.process(sendCtx, j)
				default:
					return nil
				}
			}
		}
	}
}

// Wait blocks until Run has returned.
func (d *Dispatcher) Wait() {
	<-d.done
}

// Enqueue hands a completed upload to the dispatcher. It never blocks: when
// the queue is full the delivery is dropped with a warning, mirroring the
// no-retry policy for failures. filename is the base name used for the
// caption; path and session are carried for logging only.
func (d *Dispatcher) Enqueue(dest route.Destination, filename, path, session string, data []byte) bool {
	j := job{
		dest:     dest,
		filename: filename,
		path:     path,
		session:  session,
		data:     data,
	}
	select {
	case d.jobs <- j:
		return true
	default:
		logger.Warn("Delivery queue full, dropping upload",
			logger.KeySession, session,
			logger.KeyPath, path,
			logger.KeySize, len(data))
		return false
	}
}

// process runs one delivery attempt and absorbs its outcome: errors are
// operator-visible only, never surfaced back to the uploading device.
func (d *Dispatcher) process(ctx context.Context, j job) {
	start := time.Now()
	err := d.pipeline.Deliver(ctx, j.dest, j.filename, j.data)
	if err != nil {
		logger.Error("Delivery failed",
			logger.KeySession, j.session,
			logger.KeyPath, j.path,
			logger.KeyChatID, j.dest.ChatID,
			logger.KeyError, err)
		return
	}
	logger.Info("File delivered",
		logger.KeySession, j.session,
		logger.KeyFilename, j.filename,
		logger.KeyChatID, j.dest.ChatID,
		logger.KeyDuration, time.Since(start))
}
