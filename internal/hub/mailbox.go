// ABOUTME: Bounded per-connection outbound queue with a kind-aware drop policy.
// ABOUTME: Droppable frames are evicted oldest-first; non-droppable overflow is fatal.

package hub

import (
	"sync"

	"github.com/arclight-systems/relay-hub/internal/protocol"
)

// droppableKinds are high-volume frames a client can tolerate losing. When a
// mailbox is full these are evicted oldest-first to make room; everything else
// must be delivered or the connection is torn down as a slow consumer.
var droppableKinds = map[protocol.Kind]struct{}{
	protocol.KindAudioChunk:           {},
	protocol.KindReasoningStep:        {},
	protocol.KindCommentary:           {},
	protocol.KindOptimizationProgress: {},
}

func droppable(k protocol.Kind) bool {
	_, ok := droppableKinds[k]
	return ok
}

// mailbox is the outbound queue between the hub's fan-out and a connection's
// writer goroutine. Enqueue never blocks: the hub holds per-conversation
// ordering locks while fanning out, so a stalled client must not stall anyone
// else's delivery.
type mailbox struct {
	mu       sync.Mutex
	frames   []protocol.Frame
	capacity int
	dropped  uint64
	closed   bool

	ready chan struct{}
	done  chan struct{}
}

func newMailbox(capacity int) *mailbox {
	if capacity < 1 {
		capacity = 1
	}
	return &mailbox{
		capacity: capacity,
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// enqueue appends f, evicting the oldest droppable frame if the queue is full.
// It returns false only when the queue is full of non-droppable frames and f
// itself cannot be dropped: the connection is a slow consumer and must close.
// Enqueueing on a closed mailbox is a silent no-op.
func (m *mailbox) enqueue(f protocol.Frame) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return true
	}

	if len(m.frames) >= m.capacity {
		if i := m.oldestDroppable(); i >= 0 {
			m.frames = append(m.frames[:i], m.frames[i+1:]...)
			m.dropped++
		} else if droppable(f.Kind) {
			m.dropped++
			return true
		} else {
			return false
		}
	}

	m.frames = append(m.frames, f)
	select {
	case m.ready <- struct{}{}:
	default:
	}
	return true
}

func (m *mailbox) oldestDroppable() int {
	for i, f := range m.frames {
		if droppable(f.Kind) {
			return i
		}
	}
	return -1
}

// next pops the oldest queued frame without blocking.
func (m *mailbox) next() (protocol.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.frames) == 0 {
		return protocol.Frame{}, false
	}
	f := m.frames[0]
	m.frames = m.frames[1:]
	return f, true
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

func (m *mailbox) droppedCount() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// close marks the mailbox dead and wakes the writer. Idempotent.
func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.frames = nil
	close(m.done)
}

func (m *mailbox) readyCh() <-chan struct{} { return m.ready }
func (m *mailbox) doneCh() <-chan struct{}  { return m.done }
