// ABOUTME: In-memory per-conversation frame log with a bounded replay window.
// ABOUTME: Assigns monotonic sequence numbers and serves catch-up reads on reconnect.

package convlog

import (
	"sync"
	"time"

	"github.com/arclight-systems/relay-hub/internal/protocol"
)

// Log retains the most recent frames of each conversation in a fixed-size
// ring. Sequence numbers start at 1 and never repeat within a conversation;
// once the ring wraps, the oldest frames fall out of the replay window.
type Log struct {
	mu       sync.RWMutex
	capacity int
	convs    map[string]*buffer
}

type buffer struct {
	mu       sync.Mutex
	frames   []protocol.Frame
	next     uint64 // next sequence to assign, starts at 1
	lastUsed time.Time
}

// New creates a log that retains up to capacity frames per conversation.
func New(capacity int) *Log {
	if capacity < 1 {
		capacity = 1
	}
	return &Log{
		capacity: capacity,
		convs:    make(map[string]*buffer),
	}
}

// Append stores f under conversationID, assigning the next sequence number
// and stamping the current time if the frame carries none. The returned frame
// is the stamped copy that should be fanned out to subscribers.
func (l *Log) Append(conversationID string, f protocol.Frame) protocol.Frame {
	b := l.bufferFor(conversationID)

	b.mu.Lock()
	defer b.mu.Unlock()

	f.ConversationID = conversationID
	f.Sequence = b.next
	if f.Timestamp == 0 {
		f.Timestamp = time.Now().UnixMilli()
	}
	b.frames[(f.Sequence-1)%uint64(l.capacity)] = f
	b.next++
	b.lastUsed = time.Now()
	return f
}

// Since returns the retained frames with sequence greater than since, oldest
// first. Truncated reports that the window no longer reaches back to since,
// meaning frames between since and the oldest retained one are gone and the
// caller cannot reconstruct the full history from the replay alone.
func (l *Log) Since(conversationID string, since uint64) (frames []protocol.Frame, truncated bool) {
	l.mu.RLock()
	b, ok := l.convs[conversationID]
	l.mu.RUnlock()
	if !ok {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastUsed = time.Now()

	stored := b.next - 1
	if stored == 0 {
		return nil, false
	}
	oldest := uint64(1)
	if stored > uint64(l.capacity) {
		oldest = stored - uint64(l.capacity) + 1
	}
	truncated = since+1 < oldest

	start := since + 1
	if start < oldest {
		start = oldest
	}
	if start > stored {
		return nil, truncated
	}
	frames = make([]protocol.Frame, 0, stored-start+1)
	for seq := start; seq <= stored; seq++ {
		frames = append(frames, b.frames[(seq-1)%uint64(l.capacity)])
	}
	return frames, truncated
}

// Head returns the highest sequence assigned to the conversation, or 0 when
// nothing has been logged.
func (l *Log) Head(conversationID string) uint64 {
	l.mu.RLock()
	b, ok := l.convs[conversationID]
	l.mu.RUnlock()
	if !ok {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.next - 1
}

// Conversations returns the number of conversations currently retained.
func (l *Log) Conversations() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.convs)
}

// Sweep drops conversations that have been idle for at least idleFor and that
// inUse does not claim. It returns the ids of the conversations removed.
// Sequence numbers restart at 1 if a swept conversation comes back, which is
// safe because no subscriber still holds a reference to the old numbering.
func (l *Log) Sweep(idleFor time.Duration, inUse func(conversationID string) bool) []string {
	cutoff := time.Now().Add(-idleFor)

	l.mu.Lock()
	defer l.mu.Unlock()

	var removed []string
	for id, b := range l.convs {
		b.mu.Lock()
		idle := b.lastUsed.Before(cutoff)
		b.mu.Unlock()
		if idle && (inUse == nil || !inUse(id)) {
			delete(l.convs, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func (l *Log) bufferFor(conversationID string) *buffer {
	l.mu.RLock()
	b, ok := l.convs[conversationID]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.convs[conversationID]; ok {
		return b
	}
	b = &buffer{
		frames:   make([]protocol.Frame, l.capacity),
		next:     1,
		lastUsed: time.Now(),
	}
	l.convs[conversationID] = b
	return b
}
