// ABOUTME: Frame is the sequenced envelope every payload travels in.
// ABOUTME: Bodies stay as raw msgpack so the hub can relay without re-encoding.

package protocol

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame wraps a payload with its kind, conversation routing, and the sequence
// number the hub assigned when the frame entered the conversation log. Sequence
// is 0 for frames that were never logged (acks, sync responses, direct errors).
type Frame struct {
	Kind           Kind               `msgpack:"kind" json:"kind"`
	ConversationID string             `msgpack:"conversationId,omitempty" json:"conversationId,omitempty"`
	Sequence       uint64             `msgpack:"sequence,omitempty" json:"sequence,omitempty"`
	Timestamp      int64              `msgpack:"timestamp" json:"timestamp"`
	Body           msgpack.RawMessage `msgpack:"body" json:"body"`
}

// NewFrame builds a frame around body, stamping the current time. The sequence
// stays zero until the conversation log assigns one.
func NewFrame(kind Kind, conversationID string, body any) (Frame, error) {
	raw, err := msgpack.Marshal(body)
	if err != nil {
		return Frame{}, fmt.Errorf("marshal %s body: %w", kind, err)
	}
	return Frame{
		Kind:           kind,
		ConversationID: conversationID,
		Timestamp:      time.Now().UnixMilli(),
		Body:           raw,
	}, nil
}

// DecodeBody unmarshals a frame's raw body into the typed payload for its kind.
func DecodeBody[T any](f Frame) (T, error) {
	var body T
	if err := msgpack.Unmarshal(f.Body, &body); err != nil {
		return body, fmt.Errorf("decode %s body: %w", f.Kind, err)
	}
	return body, nil
}
