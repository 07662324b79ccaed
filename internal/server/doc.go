// Package server exposes the hub over WebSocket and owns the process
// lifecycle.
//
// # Endpoints
//
//   - /ws           WebSocket upgrade; msgpack frames per the protocol package
//   - /health       liveness
//   - /health/ready readiness with hub statistics
//
// # Connection Lifecycle
//
// Each accepted connection gets a ServerInfo greeting, then runs two
// goroutines: a reader that decodes and dispatches inbound frames, and a
// writer that drains the hub mailbox onto the socket and sends keepalive
// pings. A decode failure answers with an ErrorMessage and keeps the
// connection open; only socket errors, missed pongs, or a slow-consumer
// abort end it. When the reader exits it unregisters the connection, which
// closes the mailbox and stops the writer; when the writer exits it closes
// the socket, which unblocks the reader.
//
// # Collaborators
//
// Feedback, notes, memory actions, sync, generation control, and optimizer
// steering are delegated to the Collaborators bundle. The hub stays a relay:
// a collaborator's result is published back into the conversation (or sent
// directly to the requester for sync), and a missing collaborator answers
// with a service-unavailable error.
package server
