// ABOUTME: Numeric message kind catalog for the relay-hub wire protocol.
// ABOUTME: Defines all 43 frame kinds, error codes, and enum helpers.

package protocol

// Kind identifies the type of a protocol frame. The catalog is closed and
// numeric; unknown values decode as KindErrorMessage rather than failing.
type Kind uint16

const (
	// KindErrorMessage (1) - error notification
	KindErrorMessage Kind = 1
	// KindUserMessage (2) - user's text input
	KindUserMessage Kind = 2
	// KindAssistantMessage (3) - complete assistant response
	KindAssistantMessage Kind = 3
	// KindAudioChunk (4) - raw audio data segment
	KindAudioChunk Kind = 4
	// KindReasoningStep (5) - internal reasoning trace
	KindReasoningStep Kind = 5
	// KindToolUseRequest (6) - request to execute a tool
	KindToolUseRequest Kind = 6
	// KindToolUseResult (7) - tool execution result
	KindToolUseResult Kind = 7
	// KindAcknowledgement (8) - confirm receipt of a frame
	KindAcknowledgement Kind = 8
	// KindTranscription (9) - speech-to-text output
	KindTranscription Kind = 9
	// KindControlStop (10) - stop the current operation
	KindControlStop Kind = 10
	// KindControlVariation (11) - edit/regenerate a previous message
	KindControlVariation Kind = 11
	// KindConfiguration (12) - session configuration
	KindConfiguration Kind = 12
	// KindStartAnswer (13) - begin a streaming response
	KindStartAnswer Kind = 13
	// KindMemoryTrace (14) - memory retrieval log
	KindMemoryTrace Kind = 14
	// KindCommentary (15) - assistant's internal commentary
	KindCommentary Kind = 15
	// KindAssistantSentence (16) - streaming response chunk
	KindAssistantSentence Kind = 16
	// KindSyncRequest (17) - client offline message sync
	KindSyncRequest Kind = 17
	// KindSyncResponse (18) - server reply to a sync request
	KindSyncResponse Kind = 18
	// KindFeedback (20) - client vote on a message or sentence
	KindFeedback Kind = 20
	// KindFeedbackConfirmation (21) - server confirmation with aggregates
	KindFeedbackConfirmation Kind = 21
	// KindUserNote (22) - user note attached to a message
	KindUserNote Kind = 22
	// KindNoteConfirmation (23) - note confirmation
	KindNoteConfirmation Kind = 23
	// KindMemoryAction (24) - memory create/update/delete request
	KindMemoryAction Kind = 24
	// KindMemoryConfirmation (25) - memory action confirmation
	KindMemoryConfirmation Kind = 25
	// KindServerInfo (26) - server info, sent on connect
	KindServerInfo Kind = 26
	// KindSessionStats (27) - session statistics
	KindSessionStats Kind = 27
	// KindConversationUpdate (28) - conversation metadata change
	KindConversationUpdate Kind = 28
	// KindDimensionPreference (29) - user adjusts dimension weights
	KindDimensionPreference Kind = 29
	// KindEliteSelect (30) - user selects an elite solution
	KindEliteSelect Kind = 30
	// KindEliteOptions (31) - server sends available elite solutions
	KindEliteOptions Kind = 31
	// KindOptimizationProgress (32) - optimization progress update
	KindOptimizationProgress Kind = 32
	// KindSubscribe (40) - subscribe to a conversation
	KindSubscribe Kind = 40
	// KindUnsubscribe (41) - unsubscribe from a conversation
	KindUnsubscribe Kind = 41
	// KindSubscribeAck (42) - subscription acknowledgement with replay
	KindSubscribeAck Kind = 42
	// KindUnsubscribeAck (43) - unsubscription acknowledgement
	KindUnsubscribeAck Kind = 43
)

var kindNames = map[Kind]string{
	KindErrorMessage:         "ErrorMessage",
	KindUserMessage:          "UserMessage",
	KindAssistantMessage:     "AssistantMessage",
	KindAudioChunk:           "AudioChunk",
	KindReasoningStep:        "ReasoningStep",
	KindToolUseRequest:       "ToolUseRequest",
	KindToolUseResult:        "ToolUseResult",
	KindAcknowledgement:      "Acknowledgement",
	KindTranscription:        "Transcription",
	KindControlStop:          "ControlStop",
	KindControlVariation:     "ControlVariation",
	KindConfiguration:        "Configuration",
	KindStartAnswer:          "StartAnswer",
	KindMemoryTrace:          "MemoryTrace",
	KindCommentary:           "Commentary",
	KindAssistantSentence:    "AssistantSentence",
	KindSyncRequest:          "SyncRequest",
	KindSyncResponse:         "SyncResponse",
	KindFeedback:             "Feedback",
	KindFeedbackConfirmation: "FeedbackConfirmation",
	KindUserNote:             "UserNote",
	KindNoteConfirmation:     "NoteConfirmation",
	KindMemoryAction:         "MemoryAction",
	KindMemoryConfirmation:   "MemoryConfirmation",
	KindServerInfo:           "ServerInfo",
	KindSessionStats:         "SessionStats",
	KindConversationUpdate:   "ConversationUpdate",
	KindDimensionPreference:  "DimensionPreference",
	KindEliteSelect:          "EliteSelect",
	KindEliteOptions:         "EliteOptions",
	KindOptimizationProgress: "OptimizationProgress",
	KindSubscribe:            "Subscribe",
	KindUnsubscribe:          "Unsubscribe",
	KindSubscribeAck:         "SubscribeAck",
	KindUnsubscribeAck:       "UnsubscribeAck",
}

// String returns the name of the kind, or "Unknown" for codes outside the catalog.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Known reports whether the kind is part of the catalog.
func (k Kind) Known() bool {
	_, ok := kindNames[k]
	return ok
}

// Error codes carried in ErrorMessage bodies.
const (
	// Format and protocol errors (100-199)
	ErrCodeMalformedData int32 = 101
	ErrCodeUnknownKind   int32 = 102
	ErrCodeNotSubscribed int32 = 103

	// Conversation errors (200-299)
	ErrCodeConversationNotFound int32 = 201

	// Server errors (500-599)
	ErrCodeInternalError      int32 = 501
	ErrCodeServiceUnavailable int32 = 503
	ErrCodeQueueOverflow      int32 = 504
)

// Severity levels for error messages.
type Severity int32

const (
	SeverityInfo     Severity = 0
	SeverityWarning  Severity = 1
	SeverityError    Severity = 2
	SeverityCritical Severity = 3
)

// StopType indicates what a ControlStop targets.
type StopType string

const (
	StopTypeGeneration StopType = "generation"
	StopTypeSpeech     StopType = "speech"
	StopTypeAll        StopType = "all"
)

// VariationType indicates the mode of a ControlVariation request.
type VariationType string

const (
	VariationTypeRegenerate VariationType = "regenerate"
	VariationTypeEdit       VariationType = "edit"
	VariationTypeContinue   VariationType = "continue"
)

// MemoryActionType enumerates the operations a MemoryAction can request.
type MemoryActionType string

const (
	MemoryActionCreate MemoryActionType = "create"
	MemoryActionUpdate MemoryActionType = "update"
	MemoryActionDelete MemoryActionType = "delete"
)
