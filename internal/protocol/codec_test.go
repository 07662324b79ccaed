// ABOUTME: Tests for frame encoding, decoding, and kind-aware validation.
// ABOUTME: Covers malformed input, unknown kinds, and required-field checks.

package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frame, err := NewFrame(KindUserMessage, "conv-1", &UserMessage{
		ID:             "msg-1",
		ConversationID: "conv-1",
		Content:        "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, KindUserMessage, frame.Kind)
	assert.NotZero(t, frame.Timestamp)
	assert.Zero(t, frame.Sequence)

	data, err := Encode(frame)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, frame.Kind, decoded.Kind)
	assert.Equal(t, "conv-1", decoded.ConversationID)

	body, err := DecodeBody[UserMessage](decoded)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", body.ID)
	assert.Equal(t, "hello", body.Content)
}

func TestDecodeMalformedData(t *testing.T) {
	_, err := Decode([]byte{0xc1, 0xff, 0x00})
	require.Error(t, err)

	de, ok := AsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeMalformedData, de.Code)
}

func TestDecodeUnknownKindFallsBack(t *testing.T) {
	data, err := msgpack.Marshal(Frame{Kind: Kind(99), ConversationID: "conv-1"})
	require.NoError(t, err)

	frame, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, KindErrorMessage, frame.Kind)
	assert.Equal(t, "conv-1", frame.ConversationID)

	body, err := DecodeBody[ErrorMessage](frame)
	require.NoError(t, err)
	assert.Equal(t, ErrCodeUnknownKind, body.Code)
	assert.True(t, body.Recoverable)
	assert.Contains(t, body.Message, "99")
}

func TestDecodeValidation(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		body any
		ok   bool
	}{
		{"subscribe with conversation", KindSubscribe, &Subscribe{ConversationID: "conv-1"}, true},
		{"subscribe missing conversation", KindSubscribe, &Subscribe{}, false},
		{"unsubscribe missing conversation", KindUnsubscribe, &Unsubscribe{}, false},
		{"ack missing conversation", KindAcknowledgement, &Acknowledgement{AckedSequence: 3}, false},
		{"stop with conversation", KindControlStop, &ControlStop{ConversationID: "conv-1"}, true},
		{"variation missing target", KindControlVariation, &ControlVariation{ConversationID: "conv-1"}, false},
		{"sync missing conversation", KindSyncRequest, &SyncRequest{}, false},
		{"relay kind passes untouched", KindAssistantSentence, &AssistantSentence{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := NewFrame(tt.kind, "", tt.body)
			require.NoError(t, err)
			data, err := Encode(frame)
			require.NoError(t, err)

			_, err = Decode(data)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			de, ok := AsDecodeError(err)
			require.True(t, ok)
			assert.Equal(t, ErrCodeMalformedData, de.Code)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "UserMessage", KindUserMessage.String())
	assert.Equal(t, "SubscribeAck", KindSubscribeAck.String())
	assert.Equal(t, "Unknown", Kind(99).String())

	assert.True(t, KindOptimizationProgress.Known())
	assert.False(t, Kind(19).Known())
	assert.False(t, Kind(0).Known())
}
