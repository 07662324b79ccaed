// Package convlog keeps a bounded in-memory history of each conversation's
// frames so reconnecting clients can catch up without a durable store.
//
// Each conversation gets its own ring buffer and monotonic sequence counter.
// Append assigns the next sequence and overwrites the oldest retained frame
// once the ring is full. Since serves the replay window for a reconnect and
// reports truncation when the requested starting point has already been
// evicted. Sweep reclaims conversations that have gone idle.
//
// The log is not persistence: a restart forgets everything, and clients that
// fall behind the window must reconcile through other means.
package convlog
