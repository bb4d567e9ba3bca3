package hub

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu       sync.Mutex
	written  []string
	writeErr error
	closed   bool
}

func (f *fakeTransport) Write(_ context.Context, _ websocket.MessageType, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, string(data))
	return nil
}

func (f *fakeTransport) Close(_ websocket.StatusCode, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.written...)
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestHub_AddRemove(t *testing.T) {
	h := New(testLogger())
	assert.Equal(t, 0, h.Count())

	c1 := h.Add(&fakeTransport{})
	c2 := h.Add(&fakeTransport{})
	assert.Equal(t, 2, h.Count())
	assert.NotEqual(t, c1.ID(), c2.ID())

	h.Remove(c1)
	assert.Equal(t, 1, h.Count())

	// Removing twice is harmless.
	h.Remove(c1)
	assert.Equal(t, 1, h.Count())
}

func TestHub_Broadcast(t *testing.T) {
	h := New(testLogger())
	t1 := &fakeTransport{}
	t2 := &fakeTransport{}
	h.Add(t1)
	h.Add(t2)

	h.Broadcast(context.Background(), "bestmove e2e4")

	assert.Equal(t, []string{"bestmove e2e4"}, t1.lines())
	assert.Equal(t, []string{"bestmove e2e4"}, t2.lines())
}

func TestHub_BroadcastPrunesFailedConnections(t *testing.T) {
	h := New(testLogger())
	good := &fakeTransport{}
	bad := &fakeTransport{writeErr: errors.New("broken pipe")}
	h.Add(good)
	h.Add(bad)

	h.Broadcast(context.Background(), "info depth 1")

	assert.Equal(t, 1, h.Count())
	assert.True(t, bad.isClosed())
	require.Len(t, good.lines(), 1)

	// The surviving connection keeps receiving.
	h.Broadcast(context.Background(), "info depth 2")
	assert.Equal(t, []string{"info depth 1", "info depth 2"}, good.lines())
}

// stuckTransport models a client whose TCP window is full: writes never
// complete on their own, only the context ends them.
type stuckTransport struct {
	mu     sync.Mutex
	closed bool
}

func (s *stuckTransport) Write(ctx context.Context, _ websocket.MessageType, _ []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

func (s *stuckTransport) Close(_ websocket.StatusCode, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stuckTransport) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func TestHub_BroadcastDropsUnresponsiveClient(t *testing.T) {
	orig := writeTimeout
	writeTimeout = 50 * time.Millisecond
	defer func() { writeTimeout = orig }()

	h := New(testLogger())
	stuck := &stuckTransport{}
	healthy := &fakeTransport{}
	h.Add(stuck)
	h.Add(healthy)

	done := make(chan struct{})
	go func() {
		h.Broadcast(context.Background(), "info depth 1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast stalled on an unresponsive client")
	}

	assert.Equal(t, []string{"info depth 1"}, healthy.lines(), "healthy client must still be served")
	assert.Equal(t, 1, h.Count())
	assert.True(t, stuck.isClosed())

	// The next sweep runs against the pruned registry.
	h.Broadcast(context.Background(), "info depth 2")
	assert.Equal(t, []string{"info depth 1", "info depth 2"}, healthy.lines())
}

func TestHub_BroadcastEmpty(t *testing.T) {
	h := New(testLogger())
	h.Broadcast(context.Background(), "noop")
}

func TestHub_CloseAll(t *testing.T) {
	h := New(testLogger())
	t1 := &fakeTransport{}
	t2 := &fakeTransport{}
	h.Add(t1)
	h.Add(t2)

	h.CloseAll()

	assert.Equal(t, 0, h.Count())
	assert.True(t, t1.isClosed())
	assert.True(t, t2.isClosed())
}
