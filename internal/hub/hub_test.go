// ABOUTME: Tests for the hub's publish, subscribe, and lifecycle semantics.
// ABOUTME: Covers ordering, replay on subscribe, backpressure, and teardown.

package hub

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-systems/relay-hub/internal/protocol"
)

func newTestHub(t *testing.T, opts Options) *Hub {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := New(opts)
	t.Cleanup(h.Close)
	return h
}

func registered(t *testing.T, h *Hub, id string) *Conn {
	t.Helper()
	c := h.NewConn(id, "127.0.0.1:1234", "test-client")
	h.Register(c)
	return c
}

func drain(c *Conn) []protocol.Frame {
	var out []protocol.Frame
	for {
		f, ok := c.Next()
		if !ok {
			return out
		}
		out = append(out, f)
	}
}

func publish(t *testing.T, h *Hub, conv, content string) protocol.Frame {
	t.Helper()
	f, err := protocol.NewFrame(protocol.KindUserMessage, conv, &protocol.UserMessage{
		ConversationID: conv,
		Content:        content,
	})
	require.NoError(t, err)
	return h.Publish(f)
}

func TestPublishFansOutInOrder(t *testing.T) {
	h := newTestHub(t, Options{})
	c1 := registered(t, h, "conn-1")
	c2 := registered(t, h, "conn-2")

	require.NoError(t, h.Subscribe(c1, "conv-1", 0))
	require.NoError(t, h.Subscribe(c2, "conv-1", 0))
	drain(c1) // discard acks
	drain(c2)

	for i := 1; i <= 3; i++ {
		stamped := publish(t, h, "conv-1", fmt.Sprintf("m%d", i))
		assert.Equal(t, uint64(i), stamped.Sequence)
	}

	for _, c := range []*Conn{c1, c2} {
		frames := drain(c)
		require.Len(t, frames, 3)
		for i, f := range frames {
			assert.Equal(t, uint64(i+1), f.Sequence)
			assert.Equal(t, "conv-1", f.ConversationID)
		}
	}
}

func TestSubscribeReplaysMissedFrames(t *testing.T) {
	h := newTestHub(t, Options{LogCapacity: 3})

	for i := 1; i <= 5; i++ {
		publish(t, h, "conv-1", fmt.Sprintf("m%d", i))
	}

	c := registered(t, h, "conn-1")
	require.NoError(t, h.Subscribe(c, "conv-1", 2))

	frames := drain(c)
	require.Len(t, frames, 1)
	require.Equal(t, protocol.KindSubscribeAck, frames[0].Kind)

	ack, err := protocol.DecodeBody[protocol.SubscribeAck](frames[0])
	require.NoError(t, err)
	assert.True(t, ack.Success)
	assert.False(t, ack.Truncated)
	require.Len(t, ack.MissedFrames, 3)
	assert.Equal(t, uint64(3), ack.MissedFrames[0].Sequence)
	assert.Equal(t, uint64(5), ack.MissedFrames[2].Sequence)
}

func TestSubscribeReportsTruncation(t *testing.T) {
	h := newTestHub(t, Options{LogCapacity: 3})

	for i := 1; i <= 5; i++ {
		publish(t, h, "conv-1", fmt.Sprintf("m%d", i))
	}

	c := registered(t, h, "conn-1")
	require.NoError(t, h.Subscribe(c, "conv-1", 0))

	frames := drain(c)
	ack, err := protocol.DecodeBody[protocol.SubscribeAck](frames[0])
	require.NoError(t, err)
	assert.True(t, ack.Truncated)
	assert.Len(t, ack.MissedFrames, 3)
}

func TestSubscribeToUnknownConversation(t *testing.T) {
	h := newTestHub(t, Options{})
	c := registered(t, h, "conn-1")

	require.NoError(t, h.Subscribe(c, "fresh", 0))

	frames := drain(c)
	require.Len(t, frames, 1)
	ack, err := protocol.DecodeBody[protocol.SubscribeAck](frames[0])
	require.NoError(t, err)
	assert.True(t, ack.Success)
	assert.Empty(t, ack.MissedFrames)
	assert.False(t, ack.Truncated)

	// live delivery starts immediately after the empty replay
	publish(t, h, "fresh", "first")
	live := drain(c)
	require.Len(t, live, 1)
	assert.Equal(t, uint64(1), live[0].Sequence)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := newTestHub(t, Options{})
	c1 := registered(t, h, "conn-1")
	c2 := registered(t, h, "conn-2")

	require.NoError(t, h.Subscribe(c1, "conv-1", 0))
	require.NoError(t, h.Subscribe(c2, "conv-1", 0))
	require.NoError(t, h.Unsubscribe(c1, "conv-1"))
	drain(c1)
	drain(c2)

	publish(t, h, "conv-1", "after")

	assert.Empty(t, drain(c1))
	assert.Len(t, drain(c2), 1)
	assert.False(t, h.IsSubscribed("conn-1", "conv-1"))
	assert.True(t, h.IsSubscribed("conn-2", "conv-1"))
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	h := newTestHub(t, Options{})
	c := registered(t, h, "conn-1")

	require.NoError(t, h.Unsubscribe(c, "never-joined"))

	frames := drain(c)
	require.Len(t, frames, 1)
	ack, err := protocol.DecodeBody[protocol.UnsubscribeAck](frames[0])
	require.NoError(t, err)
	assert.True(t, ack.Success)
}

func TestSlowConsumerAborted(t *testing.T) {
	h := newTestHub(t, Options{MailboxCapacity: 2})
	c := registered(t, h, "conn-1")
	require.NoError(t, h.Subscribe(c, "conv-1", 0))
	drain(c)

	// fill the mailbox with undeliverable frames, never draining
	publish(t, h, "conv-1", "m1")
	publish(t, h, "conv-1", "m2")
	publish(t, h, "conv-1", "m3")

	assert.Equal(t, StateClosing, c.State())
	code, _, ok := c.CloseReason()
	require.True(t, ok)
	assert.Equal(t, protocol.ErrCodeQueueOverflow, code)

	select {
	case <-c.Done():
	default:
		t.Fatal("expected mailbox teardown")
	}
}

func TestDroppableFramesNeverAbort(t *testing.T) {
	h := newTestHub(t, Options{MailboxCapacity: 2})
	c := registered(t, h, "conn-1")
	require.NoError(t, h.Subscribe(c, "conv-1", 0))
	drain(c)

	for i := 0; i < 10; i++ {
		f, err := protocol.NewFrame(protocol.KindAudioChunk, "conv-1", &protocol.AudioChunk{
			ConversationID: "conv-1",
			Sequence:       int32(i),
		})
		require.NoError(t, err)
		h.Publish(f)
	}

	assert.Equal(t, StateActive, c.State())
	frames := drain(c)
	require.Len(t, frames, 2)
	// the two most recent survive the eviction policy
	assert.Equal(t, uint64(9), frames[0].Sequence)
	assert.Equal(t, uint64(10), frames[1].Sequence)
}

func TestSendToBypassesLog(t *testing.T) {
	h := newTestHub(t, Options{})
	c := registered(t, h, "conn-1")

	f, err := protocol.NewFrame(protocol.KindSyncResponse, "conv-1", &protocol.SyncResponse{
		ConversationID: "conv-1",
	})
	require.NoError(t, err)
	h.SendTo(c, f)

	frames := drain(c)
	require.Len(t, frames, 1)
	assert.Zero(t, frames[0].Sequence)
	assert.Zero(t, h.log.Head("conv-1"))
}

func TestUnregisterDropsSubscriptions(t *testing.T) {
	h := newTestHub(t, Options{})
	c := registered(t, h, "conn-1")
	require.NoError(t, h.Subscribe(c, "conv-1", 0))

	h.Unregister("conn-1")
	h.Unregister("conn-1") // idempotent

	assert.False(t, h.IsSubscribed("conn-1", "conv-1"))
	assert.Equal(t, StateClosed, c.State())
	assert.Zero(t, h.Stats().Connections)

	// publishing after unregister must not panic or deliver
	publish(t, h, "conv-1", "after")
	assert.Empty(t, drain(c))
}

func TestRegisterReplacesStaleConnection(t *testing.T) {
	h := newTestHub(t, Options{})
	old := registered(t, h, "conn-1")
	require.NoError(t, h.Subscribe(old, "conv-1", 0))

	fresh := registered(t, h, "conn-1")

	assert.Equal(t, StateClosed, old.State())
	assert.False(t, h.IsSubscribed("conn-1", "conv-1"))
	assert.Equal(t, 1, h.Stats().Connections)
	assert.Equal(t, StateActive, fresh.State())
}

func TestRecordAckMovesForwardOnly(t *testing.T) {
	c := NewConn("conn-1", "", "", 4)

	c.RecordAck("conv-1", 5)
	c.RecordAck("conv-1", 3)
	assert.Equal(t, uint64(5), c.LastAck("conv-1"))

	c.RecordAck("conv-2", 1)
	assert.Equal(t, uint64(1), c.LastAck("conv-2"))
	assert.Zero(t, c.LastAck("conv-3"))
}
