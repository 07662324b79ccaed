// Package hub is the in-process broadcast core: it tracks live connections,
// their conversation subscriptions, and fans published frames out to every
// subscriber.
//
// # Delivery Model
//
// Each connection owns a bounded mailbox drained by its transport writer.
// Publish appends the frame to the conversation log, which assigns the
// sequence number, then enqueues the stamped frame into every subscriber's
// mailbox while holding that conversation's publish lock. Holding the lock
// across append and fan-out means all subscribers see a conversation's frames
// in identical sequence order; because enqueue never blocks, a slow client
// cannot stall the lock.
//
// # Backpressure
//
// A full mailbox evicts its oldest droppable frame (audio chunks, reasoning
// steps, commentary, optimization progress) to make room. If nothing is
// droppable and the incoming frame must be delivered, the connection is
// aborted as a slow consumer with a queue overflow reason.
//
// # Reconnects
//
// Subscribe runs under the same per-conversation lock as Publish: the replay
// returned in the SubscribeAck and the live frames that follow it are gapless
// and duplicate-free. When the log's window no longer reaches the client's
// last seen sequence, the ack is marked truncated.
//
// An idle conversation's log is reclaimed by a background sweeper once its
// retention lapses and no subscriber remains.
package hub
