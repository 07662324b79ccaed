// ABOUTME: Hub wires the registry, subscription index, and conversation log together.
// ABOUTME: Publish orders frames per conversation and fans them out without blocking.

package hub

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arclight-systems/relay-hub/internal/convlog"
	"github.com/arclight-systems/relay-hub/internal/protocol"
)

const (
	// DefaultMailboxCapacity bounds each connection's outbound queue.
	DefaultMailboxCapacity = 64
	// DefaultLogCapacity bounds each conversation's replay window.
	DefaultLogCapacity = 200
	// DefaultLogRetention is how long an idle conversation's log survives.
	DefaultLogRetention = 10 * time.Minute
	// DefaultSweepInterval is how often idle conversations are reclaimed.
	DefaultSweepInterval = time.Minute
)

// Options configures a Hub. Zero values take the defaults above.
type Options struct {
	MailboxCapacity int
	LogCapacity     int
	LogRetention    time.Duration
	SweepInterval   time.Duration
	Logger          *slog.Logger
}

// Hub multiplexes frames between every live connection. All delivery goes
// through per-connection mailboxes so one stalled client never blocks the
// rest; per-conversation locks keep every subscriber seeing frames in the
// same sequence order.
type Hub struct {
	opts   Options
	log    *convlog.Log
	conns  *registry
	subs   *subscriptionIndex
	logger *slog.Logger

	convMu    sync.Mutex
	convLocks map[string]*sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a hub and starts its background sweeper.
func New(opts Options) *Hub {
	if opts.MailboxCapacity <= 0 {
		opts.MailboxCapacity = DefaultMailboxCapacity
	}
	if opts.LogCapacity <= 0 {
		opts.LogCapacity = DefaultLogCapacity
	}
	if opts.LogRetention <= 0 {
		opts.LogRetention = DefaultLogRetention
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	h := &Hub{
		opts:      opts,
		log:       convlog.New(opts.LogCapacity),
		conns:     newRegistry(),
		subs:      newSubscriptionIndex(),
		logger:    opts.Logger.With("component", "hub"),
		convLocks: make(map[string]*sync.Mutex),
		done:      make(chan struct{}),
	}

	h.wg.Add(1)
	go h.sweepLoop()

	return h
}

// NewConn builds a connection handle sized for this hub's mailbox policy.
func (h *Hub) NewConn(id, remoteAddr, userAgent string) *Conn {
	return NewConn(id, remoteAddr, userAgent, h.opts.MailboxCapacity)
}

// Register adds the connection to the hub. If an earlier connection with the
// same id is still registered it is closed first.
func (h *Hub) Register(c *Conn) {
	if old := h.conns.add(c); old != nil {
		h.logger.Warn("replacing stale connection", "conn_id", c.id)
		h.dropConn(old)
	}
	c.Activate()
	h.logger.Info("connection registered",
		"conn_id", c.id,
		"remote_addr", c.remoteAddr,
		"connections", h.conns.count())
}

// Unregister removes the connection, drops its subscriptions, and closes its
// mailbox. Safe to call more than once.
func (h *Hub) Unregister(connID string) {
	c := h.conns.remove(connID)
	if c == nil {
		return
	}
	convs := h.subs.removeConn(connID)
	c.Close()
	h.logger.Info("connection unregistered",
		"conn_id", connID,
		"subscriptions_dropped", len(convs),
		"connections", h.conns.count())
}

// Publish appends f to its conversation's log and fans the stamped frame out
// to every subscriber. The per-conversation lock is held across append and
// fan-out so all subscribers observe identical ordering. The stamped frame is
// returned so callers can reference the assigned sequence.
func (h *Hub) Publish(f protocol.Frame) protocol.Frame {
	mu := h.lockFor(f.ConversationID)
	mu.Lock()
	defer mu.Unlock()

	stamped := h.log.Append(f.ConversationID, f)
	for _, c := range h.subs.subscribers(f.ConversationID) {
		if !c.Enqueue(stamped) {
			h.slowConsumer(c)
		}
	}
	return stamped
}

// Subscribe adds the connection to a conversation and enqueues a SubscribeAck
// carrying the replay since the client's last seen sequence. Running under the
// conversation's publish lock guarantees no gap or duplicate between the
// replayed frames and subsequent live delivery.
func (h *Hub) Subscribe(c *Conn, conversationID string, since uint64) error {
	mu := h.lockFor(conversationID)
	mu.Lock()
	defer mu.Unlock()

	h.subs.add(c, conversationID)
	missed, truncated := h.log.Since(conversationID, since)

	ack, err := protocol.NewFrame(protocol.KindSubscribeAck, conversationID, &protocol.SubscribeAck{
		ConversationID: conversationID,
		Success:        true,
		MissedFrames:   missed,
		Truncated:      truncated,
	})
	if err != nil {
		return fmt.Errorf("build subscribe ack: %w", err)
	}
	if !c.Enqueue(ack) {
		h.slowConsumer(c)
		return nil
	}

	h.logger.Debug("subscribed",
		"conn_id", c.id,
		"conversation_id", conversationID,
		"since", since,
		"replayed", len(missed),
		"truncated", truncated)
	return nil
}

// Unsubscribe removes the subscription and enqueues an UnsubscribeAck.
// Unsubscribing from a conversation the connection never joined still acks;
// the operation is idempotent.
func (h *Hub) Unsubscribe(c *Conn, conversationID string) error {
	h.subs.remove(c.id, conversationID)

	ack, err := protocol.NewFrame(protocol.KindUnsubscribeAck, conversationID, &protocol.UnsubscribeAck{
		ConversationID: conversationID,
		Success:        true,
	})
	if err != nil {
		return fmt.Errorf("build unsubscribe ack: %w", err)
	}
	if !c.Enqueue(ack) {
		h.slowConsumer(c)
	}
	return nil
}

// SendTo delivers a frame to one connection only, bypassing the conversation
// log. Used for acks, sync responses, and error replies that are not part of
// any conversation's history.
func (h *Hub) SendTo(c *Conn, f protocol.Frame) {
	if !c.Enqueue(f) {
		h.slowConsumer(c)
	}
}

// IsSubscribed reports whether the connection currently holds a subscription
// to the conversation.
func (h *Hub) IsSubscribed(connID, conversationID string) bool {
	return h.subs.isSubscribed(connID, conversationID)
}

// Stats is a point-in-time snapshot for health reporting.
type Stats struct {
	Connections   int `json:"connections"`
	Conversations int `json:"conversations"`
}

func (h *Hub) Stats() Stats {
	return Stats{
		Connections:   h.conns.count(),
		Conversations: h.log.Conversations(),
	}
}

// Close stops the sweeper and tears down every connection.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		for _, c := range h.conns.snapshot() {
			h.Unregister(c.id)
		}
	})
	h.wg.Wait()
}

func (h *Hub) slowConsumer(c *Conn) {
	pending, dropped := c.Queued()
	h.logger.Warn("closing slow consumer",
		"conn_id", c.id,
		"pending", pending,
		"dropped", dropped)
	c.Abort(protocol.ErrCodeQueueOverflow, "outbound queue overflow")
}

func (h *Hub) dropConn(c *Conn) {
	h.subs.removeConn(c.id)
	c.Close()
}

func (h *Hub) lockFor(conversationID string) *sync.Mutex {
	h.convMu.Lock()
	defer h.convMu.Unlock()
	mu, ok := h.convLocks[conversationID]
	if !ok {
		mu = &sync.Mutex{}
		h.convLocks[conversationID] = mu
	}
	return mu
}

func (h *Hub) sweepLoop() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			removed := h.log.Sweep(h.opts.LogRetention, h.subs.hasSubscribers)
			if len(removed) == 0 {
				continue
			}
			h.convMu.Lock()
			for _, id := range removed {
				delete(h.convLocks, id)
			}
			h.convMu.Unlock()
			h.logger.Debug("swept idle conversations", "count", len(removed))
		}
	}
}
