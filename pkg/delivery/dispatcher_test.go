package delivery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ftpgram/ftpgram/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncMessenger signals on each document send.
type syncMessenger struct {
	fakeMessenger
	mu    sync.Mutex
	sends chan struct{}
}

func newSyncMessenger(buffer int) *syncMessenger {
	return &syncMessenger{sends: make(chan struct{}, buffer)}
}

func (s *syncMessenger) SendDocument(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.fakeMessenger.SendDocument(ctx, msg)
	s.sends <- struct{}{}
	return err
}

func (s *syncMessenger) documentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.documents)
}

func TestDispatcherProcessesJobs(t *testing.T) {
	m := newSyncMessenger(4)
	p := NewPipeline(m, &fakeTranscoder{}, ceiling, nil)
	d := NewDispatcher(p, 8)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = d.Run(ctx) }()

	ok := d.Enqueue(route.Destination{ChatID: -1}, "a.xyz", "/camA/a.xyz", "s1", []byte{1, 2})
	require.True(t, ok)

	select {
	case <-m.sends:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery was never processed")
	}
	assert.Equal(t, 1, m.documentCount())

	cancel()
	d.Wait()
}

func TestDispatcherDrainsOnShutdown(t *testing.T) {
	m := newSyncMessenger(8)
	p := NewPipeline(m, &fakeTranscoder{}, ceiling, nil)
	d := NewDispatcher(p, 8)

	// Queue before the worker starts, then cancel immediately: the drain
	// loop must still process everything already queued.
	for i := 0; i < 3; i++ {
		require.True(t, d.Enqueue(route.Destination{ChatID: -1}, "f.xyz", "/f.xyz", "s1", []byte{1}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))

	assert.Equal(t, 3, m.documentCount())
}

func TestDispatcherQueueFullDrops(t *testing.T) {
	p := NewPipeline(&fakeMessenger{}, &fakeTranscoder{}, ceiling, nil)
	d := NewDispatcher(p, 1)

	// No worker running: the first enqueue fills the queue, the second drops.
	assert.True(t, d.Enqueue(route.Destination{ChatID: -1}, "a", "/a", "s1", nil))
	assert.False(t, d.Enqueue(route.Destination{ChatID: -1}, "b", "/b", "s1", nil))
}
