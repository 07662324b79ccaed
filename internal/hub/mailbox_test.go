// ABOUTME: Tests for the mailbox drop policy.
// ABOUTME: Exercises droppable eviction, overflow faults, and close semantics.

package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-systems/relay-hub/internal/protocol"
)

func frame(t *testing.T, kind protocol.Kind, marker string) protocol.Frame {
	t.Helper()
	f, err := protocol.NewFrame(kind, "conv-1", &protocol.Commentary{ID: marker})
	require.NoError(t, err)
	return f
}

func TestMailboxEvictsOldestDroppable(t *testing.T) {
	m := newMailbox(2)

	require.True(t, m.enqueue(frame(t, protocol.KindAudioChunk, "a")))
	require.True(t, m.enqueue(frame(t, protocol.KindAudioChunk, "b")))
	require.True(t, m.enqueue(frame(t, protocol.KindAudioChunk, "c")))

	// the two most recent survive
	f1, ok := m.next()
	require.True(t, ok)
	f2, ok := m.next()
	require.True(t, ok)
	_, ok = m.next()
	assert.False(t, ok)

	b, err := protocol.DecodeBody[protocol.Commentary](f1)
	require.NoError(t, err)
	assert.Equal(t, "b", b.ID)
	c, err := protocol.DecodeBody[protocol.Commentary](f2)
	require.NoError(t, err)
	assert.Equal(t, "c", c.ID)
	assert.Equal(t, uint64(1), m.droppedCount())
}

func TestMailboxDroppableEvictedForNonDroppable(t *testing.T) {
	m := newMailbox(2)

	require.True(t, m.enqueue(frame(t, protocol.KindUserMessage, "keep")))
	require.True(t, m.enqueue(frame(t, protocol.KindReasoningStep, "evict")))
	require.True(t, m.enqueue(frame(t, protocol.KindAssistantMessage, "incoming")))

	f1, _ := m.next()
	f2, _ := m.next()
	assert.Equal(t, protocol.KindUserMessage, f1.Kind)
	assert.Equal(t, protocol.KindAssistantMessage, f2.Kind)
}

func TestMailboxDropsIncomingDroppableWhenNothingEvictable(t *testing.T) {
	m := newMailbox(2)

	require.True(t, m.enqueue(frame(t, protocol.KindUserMessage, "a")))
	require.True(t, m.enqueue(frame(t, protocol.KindUserMessage, "b")))
	require.True(t, m.enqueue(frame(t, protocol.KindCommentary, "discarded")))

	assert.Equal(t, 2, m.len())
	assert.Equal(t, uint64(1), m.droppedCount())
	f1, _ := m.next()
	assert.Equal(t, protocol.KindUserMessage, f1.Kind)
}

func TestMailboxOverflowFault(t *testing.T) {
	m := newMailbox(2)

	require.True(t, m.enqueue(frame(t, protocol.KindUserMessage, "a")))
	require.True(t, m.enqueue(frame(t, protocol.KindUserMessage, "b")))
	assert.False(t, m.enqueue(frame(t, protocol.KindAssistantMessage, "c")))
}

func TestMailboxCloseIsSilent(t *testing.T) {
	m := newMailbox(2)
	m.close()
	m.close() // idempotent

	assert.True(t, m.enqueue(frame(t, protocol.KindUserMessage, "x")))
	_, ok := m.next()
	assert.False(t, ok)

	select {
	case <-m.doneCh():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestMailboxReadySignal(t *testing.T) {
	m := newMailbox(4)

	select {
	case <-m.readyCh():
		t.Fatal("ready before any enqueue")
	default:
	}

	m.enqueue(frame(t, protocol.KindUserMessage, "a"))
	m.enqueue(frame(t, protocol.KindUserMessage, "b"))

	select {
	case <-m.readyCh():
	default:
		t.Fatal("expected ready signal")
	}
	// coalesced: one signal covers both frames
	_, ok := m.next()
	require.True(t, ok)
	_, ok = m.next()
	require.True(t, ok)
}
