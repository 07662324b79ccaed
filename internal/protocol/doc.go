// Package protocol defines the application wire protocol spoken over each
// WebSocket connection.
//
// # Overview
//
// Every message on the wire is a Frame: a msgpack-encoded envelope carrying a
// numeric Kind, the conversation it belongs to, the sequence number assigned
// by the conversation log, a millisecond timestamp, and an opaque msgpack
// body. The hub relays bodies without re-encoding them; only the envelope is
// interpreted for routing.
//
// # Kinds
//
// The catalog covers conversation content (user and assistant messages,
// streaming sentences, audio, transcriptions), tool use, reasoning and
// commentary traces, feedback and notes, memory actions, optimization
// progress, and the control plane (subscribe/unsubscribe and their acks).
// Kinds 1-32 mirror the conversation domain; kinds 40-43 are hub control
// frames and are never logged or rebroadcast.
//
// # Encoding
//
//	frame, err := protocol.NewFrame(protocol.KindUserMessage, convID, &body)
//	data, err := protocol.Encode(frame)
//
// Decoding validates the envelope and, for kinds the hub acts on, the
// required body fields. A frame whose numeric kind is outside the catalog is
// not rejected: it decodes as a KindErrorMessage frame (code 102), so newer
// peers can speak kinds this build does not know about:
//
//	frame, err := protocol.Decode(data)
//	if de, ok := protocol.AsDecodeError(err); ok {
//		// reply with an ErrorMessage carrying de.Code
//	}
//
// Typed bodies are decoded lazily:
//
//	sub, err := protocol.DecodeBody[protocol.Subscribe](frame)
//
// # Error Codes
//
// ErrorMessage payloads carry a numeric code: 1xx for protocol violations
// (malformed data, unknown kind, not subscribed), 2xx for missing resources,
// and 5xx for server-side conditions including queue overflow.
package protocol
