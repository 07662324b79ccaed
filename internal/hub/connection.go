// ABOUTME: Conn models one client connection as the hub sees it.
// ABOUTME: Tracks lifecycle state, per-conversation ack progress, and the mailbox.

package hub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/arclight-systems/relay-hub/internal/protocol"
)

// State is a connection's lifecycle phase.
type State int32

const (
	// StateConnecting covers the window between upgrade and the first frame.
	StateConnecting State = iota
	// StateActive means both pumps are running and frames flow.
	StateActive
	// StateClosing means teardown has begun; no new frames are accepted.
	StateClosing
	// StateClosed means the connection is fully gone.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn is the hub-side handle for one client connection. The transport layer
// owns the socket; the hub only ever touches the mailbox and state.
type Conn struct {
	id          string
	remoteAddr  string
	userAgent   string
	connectedAt time.Time

	mailbox *mailbox
	state   atomic.Int32

	ackMu sync.Mutex
	acks  map[string]uint64 // conversation id -> highest acked sequence

	closeReason atomic.Pointer[closeReason]
}

type closeReason struct {
	code    int32
	message string
}

// NewConn creates a connection handle with a mailbox of the given capacity.
func NewConn(id, remoteAddr, userAgent string, mailboxCapacity int) *Conn {
	return &Conn{
		id:          id,
		remoteAddr:  remoteAddr,
		userAgent:   userAgent,
		connectedAt: time.Now(),
		mailbox:     newMailbox(mailboxCapacity),
		acks:        make(map[string]uint64),
	}
}

func (c *Conn) ID() string             { return c.id }
func (c *Conn) RemoteAddr() string     { return c.remoteAddr }
func (c *Conn) UserAgent() string      { return c.userAgent }
func (c *Conn) ConnectedAt() time.Time { return c.connectedAt }

// State returns the current lifecycle phase.
func (c *Conn) State() State { return State(c.state.Load()) }

// Activate moves the connection from connecting to active.
func (c *Conn) Activate() {
	c.state.CompareAndSwap(int32(StateConnecting), int32(StateActive))
}

// Enqueue queues a frame for delivery. A false return means the mailbox is
// full of undeliverable non-droppable frames; the caller must abort the
// connection.
func (c *Conn) Enqueue(f protocol.Frame) bool {
	if c.State() >= StateClosing {
		return true
	}
	return c.mailbox.enqueue(f)
}

// Next pops the oldest queued frame; Ready signals when frames are waiting and
// Done closes when the connection is torn down. These drive the writer loop.
func (c *Conn) Next() (protocol.Frame, bool) { return c.mailbox.next() }
func (c *Conn) Ready() <-chan struct{}       { return c.mailbox.readyCh() }
func (c *Conn) Done() <-chan struct{}        { return c.mailbox.doneCh() }

// Queued reports the number of frames waiting plus how many were dropped.
func (c *Conn) Queued() (pending int, dropped uint64) {
	return c.mailbox.len(), c.mailbox.droppedCount()
}

// RecordAck notes the client has processed the conversation up to seq.
// Regressions are ignored; acks only move forward.
func (c *Conn) RecordAck(conversationID string, seq uint64) {
	c.ackMu.Lock()
	defer c.ackMu.Unlock()
	if seq > c.acks[conversationID] {
		c.acks[conversationID] = seq
	}
}

// LastAck returns the highest sequence the client acknowledged for a
// conversation, 0 if it never acked.
func (c *Conn) LastAck(conversationID string) uint64 {
	c.ackMu.Lock()
	defer c.ackMu.Unlock()
	return c.acks[conversationID]
}

// Abort begins teardown with a reason the transport can report to the client
// before closing the socket. Safe to call more than once; the first reason
// wins.
func (c *Conn) Abort(code int32, message string) {
	c.closeReason.CompareAndSwap(nil, &closeReason{code: code, message: message})
	c.beginClose()
}

// CloseReason returns the abort code and message, if teardown was initiated
// with one.
func (c *Conn) CloseReason() (code int32, message string, ok bool) {
	r := c.closeReason.Load()
	if r == nil {
		return 0, "", false
	}
	return r.code, r.message, true
}

// Close tears the connection down. Idempotent.
func (c *Conn) Close() {
	c.beginClose()
	c.state.Store(int32(StateClosed))
}

func (c *Conn) beginClose() {
	for {
		s := c.state.Load()
		if s >= int32(StateClosing) {
			return
		}
		if c.state.CompareAndSwap(s, int32(StateClosing)) {
			c.mailbox.close()
			return
		}
	}
}
