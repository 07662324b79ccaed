// ABOUTME: Wire codec for frames: msgpack encode/decode plus kind-aware validation.
// ABOUTME: Decode failures carry a protocol error code so handlers can reply in kind.

package protocol

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// DecodeError describes a frame that could not be accepted. Code is one of the
// ErrCode constants and is safe to echo back to the client in an ErrorMessage.
type DecodeError struct {
	Code    int32
	Kind    Kind
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode frame: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("decode frame: %s", e.Message)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// AsDecodeError unwraps err into a *DecodeError if one is in the chain.
func AsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Encode serializes a frame for the wire.
func Encode(f Frame) ([]byte, error) {
	data, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", f.Kind, err)
	}
	return data, nil
}

// Decode parses a wire message into a frame and validates it. Malformed data
// returns a *DecodeError. An unrecognized numeric kind is not an error: the
// frame degrades to an ErrorMessage (code 102) so well-formed future kinds
// pass through old peers without killing the connection.
func Decode(data []byte) (Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return Frame{}, &DecodeError{
			Code:    ErrCodeMalformedData,
			Message: "malformed frame",
			Err:     err,
		}
	}
	if !f.Kind.Known() {
		return fallbackFrame(f), nil
	}
	if err := validate(f); err != nil {
		return f, err
	}
	return f, nil
}

// fallbackFrame rewrites a frame of unknown kind into an ErrorMessage
// carrying the original numeric code.
func fallbackFrame(f Frame) Frame {
	body, err := msgpack.Marshal(&ErrorMessage{
		ConversationID: f.ConversationID,
		Code:           ErrCodeUnknownKind,
		Message:        fmt.Sprintf("unknown frame kind %d", f.Kind),
		Severity:       SeverityWarning,
		Recoverable:    true,
	})
	if err != nil {
		body = nil
	}
	f.Kind = KindErrorMessage
	f.Body = body
	return f
}

// validate checks the envelope fields a client is required to fill for the
// kinds the hub itself acts on. Relay-only kinds pass through untouched.
func validate(f Frame) error {
	switch f.Kind {
	case KindSubscribe, KindUnsubscribe:
		body, err := DecodeBody[Subscribe](f)
		if err != nil {
			return malformed(f.Kind, err)
		}
		if body.ConversationID == "" {
			return missingField(f.Kind, "conversationId")
		}
	case KindAcknowledgement:
		body, err := DecodeBody[Acknowledgement](f)
		if err != nil {
			return malformed(f.Kind, err)
		}
		if body.ConversationID == "" {
			return missingField(f.Kind, "conversationId")
		}
	case KindControlStop:
		body, err := DecodeBody[ControlStop](f)
		if err != nil {
			return malformed(f.Kind, err)
		}
		if body.ConversationID == "" {
			return missingField(f.Kind, "conversationId")
		}
	case KindControlVariation:
		body, err := DecodeBody[ControlVariation](f)
		if err != nil {
			return malformed(f.Kind, err)
		}
		if body.ConversationID == "" {
			return missingField(f.Kind, "conversationId")
		}
		if body.TargetID == "" {
			return missingField(f.Kind, "targetId")
		}
	case KindSyncRequest:
		body, err := DecodeBody[SyncRequest](f)
		if err != nil {
			return malformed(f.Kind, err)
		}
		if body.ConversationID == "" {
			return missingField(f.Kind, "conversationId")
		}
	}
	return nil
}

func malformed(k Kind, err error) *DecodeError {
	return &DecodeError{
		Code:    ErrCodeMalformedData,
		Kind:    k,
		Message: fmt.Sprintf("malformed %s body", k),
		Err:     err,
	}
}

func missingField(k Kind, field string) *DecodeError {
	return &DecodeError{
		Code:    ErrCodeMalformedData,
		Kind:    k,
		Message: fmt.Sprintf("%s missing required field %q", k, field),
	}
}
