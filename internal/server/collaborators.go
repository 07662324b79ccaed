// ABOUTME: Collaborator interfaces the frame dispatcher calls out to.
// ABOUTME: Each is optional; a missing collaborator turns its frames into 503 errors.

package server

import (
	"context"

	"github.com/arclight-systems/relay-hub/internal/protocol"
)

// FeedbackRecorder stores votes on messages, sentences, tool uses, and
// memories, returning the updated aggregates for the target.
type FeedbackRecorder interface {
	RecordFeedback(ctx context.Context, fb protocol.Feedback) (protocol.FeedbackConfirmation, error)
}

// NoteKeeper stores freeform user notes attached to messages.
type NoteKeeper interface {
	SaveNote(ctx context.Context, note protocol.UserNote) (protocol.NoteConfirmation, error)
}

// MemoryActor applies create/update/delete actions to the memory store.
type MemoryActor interface {
	ApplyMemoryAction(ctx context.Context, action protocol.MemoryAction) (protocol.MemoryConfirmation, error)
}

// MessageSyncer reconciles client-side messages against the server's record.
type MessageSyncer interface {
	SyncMessages(ctx context.Context, req protocol.SyncRequest) (protocol.SyncResponse, error)
}

// MessageSink receives user messages for downstream processing. The hub
// rebroadcasts the message to subscribers regardless; the sink is where
// generation pipelines hook in.
type MessageSink interface {
	HandleUserMessage(ctx context.Context, msg protocol.UserMessage) error
}

// GenerationController reacts to stop and variation requests.
type GenerationController interface {
	Stop(ctx context.Context, req protocol.ControlStop) error
	Vary(ctx context.Context, req protocol.ControlVariation) error
}

// Optimizer receives steering input for optimization runs.
type Optimizer interface {
	SetDimensionPreference(ctx context.Context, pref protocol.DimensionPreference) error
	SelectElite(ctx context.Context, sel protocol.EliteSelect) error
}

// Collaborators bundles the optional backends the dispatcher consults. Any
// nil field makes the corresponding frame kinds answer with a
// service-unavailable error instead of being silently dropped.
type Collaborators struct {
	Feedback   FeedbackRecorder
	Notes      NoteKeeper
	Memory     MemoryActor
	Sync       MessageSyncer
	Messages   MessageSink
	Generation GenerationController
	Optimizer  Optimizer
}
