// ABOUTME: Typed payload bodies for every frame kind in the catalog.
// ABOUTME: Shapes are stable wire contracts shared by all client implementations.

package protocol

// ErrorMessage (kind 1) conveys errors and exceptional conditions.
type ErrorMessage struct {
	ID             string   `msgpack:"id,omitempty" json:"id,omitempty"`
	ConversationID string   `msgpack:"conversationId,omitempty" json:"conversationId,omitempty"`
	Code           int32    `msgpack:"code" json:"code"`
	Message        string   `msgpack:"message" json:"message"`
	Severity       Severity `msgpack:"severity" json:"severity"`
	Recoverable    bool     `msgpack:"recoverable" json:"recoverable"`
	OriginatingID  string   `msgpack:"originatingId,omitempty" json:"originatingId,omitempty"`
}

// UserMessage (kind 2) carries a user's input message.
type UserMessage struct {
	ID             string `msgpack:"id" json:"id"`
	PreviousID     string `msgpack:"previousId,omitempty" json:"previousId,omitempty"`
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	Content        string `msgpack:"content" json:"content"`
	Timestamp      int64  `msgpack:"timestamp,omitempty" json:"timestamp,omitempty"`
}

// AssistantMessage (kind 3) conveys a complete assistant response.
type AssistantMessage struct {
	ID             string `msgpack:"id" json:"id"`
	PreviousID     string `msgpack:"previousId,omitempty" json:"previousId,omitempty"`
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	Content        string `msgpack:"content" json:"content"`
	Reasoning      string `msgpack:"reasoning,omitempty" json:"reasoning,omitempty"`
	Timestamp      int64  `msgpack:"timestamp,omitempty" json:"timestamp,omitempty"`
}

// AudioChunk (kind 4) is a raw audio data segment.
type AudioChunk struct {
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	Format         string `msgpack:"format" json:"format"` // e.g. "audio/opus"
	Sequence       int32  `msgpack:"sequence" json:"sequence"`
	DurationMs     int32  `msgpack:"durationMs" json:"durationMs"`
	Data           []byte `msgpack:"data,omitempty" json:"data,omitempty"`
	IsLast         bool   `msgpack:"isLast,omitempty" json:"isLast,omitempty"`
}

// ReasoningStep (kind 5) is one step of an internal reasoning trace.
type ReasoningStep struct {
	ID             string `msgpack:"id" json:"id"`
	MessageID      string `msgpack:"messageId" json:"messageId"`
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	Sequence       int32  `msgpack:"sequence" json:"sequence"`
	Content        string `msgpack:"content" json:"content"`
}

// ToolUseRequest (kind 6) requests execution of a tool.
type ToolUseRequest struct {
	ID             string         `msgpack:"id" json:"id"`
	MessageID      string         `msgpack:"messageId" json:"messageId"`
	ConversationID string         `msgpack:"conversationId" json:"conversationId"`
	ToolName       string         `msgpack:"toolName" json:"toolName"`
	Parameters     map[string]any `msgpack:"parameters" json:"parameters"`
	TimeoutMs      int32          `msgpack:"timeoutMs,omitempty" json:"timeoutMs,omitempty"`
}

// ToolUseResult (kind 7) is a tool execution result.
type ToolUseResult struct {
	ID             string `msgpack:"id" json:"id"`
	RequestID      string `msgpack:"requestId" json:"requestId"`
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	Success        bool   `msgpack:"success" json:"success"`
	Result         any    `msgpack:"result,omitempty" json:"result,omitempty"`
	ErrorMessage   string `msgpack:"errorMessage,omitempty" json:"errorMessage,omitempty"`
}

// Acknowledgement (kind 8) confirms receipt of a sequenced frame.
type Acknowledgement struct {
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	AckedSequence  uint64 `msgpack:"ackedSequence" json:"ackedSequence"`
	Success        bool   `msgpack:"success" json:"success"`
}

// Transcription (kind 9) is speech-to-text output.
type Transcription struct {
	ID             string  `msgpack:"id" json:"id"`
	ConversationID string  `msgpack:"conversationId" json:"conversationId"`
	Text           string  `msgpack:"text" json:"text"`
	Final          bool    `msgpack:"final" json:"final"`
	Confidence     float32 `msgpack:"confidence,omitempty" json:"confidence,omitempty"`
	Language       string  `msgpack:"language,omitempty" json:"language,omitempty"`
}

// ControlStop (kind 10) halts the assistant's current action.
type ControlStop struct {
	ConversationID string   `msgpack:"conversationId" json:"conversationId"`
	TargetID       string   `msgpack:"targetId,omitempty" json:"targetId,omitempty"`
	Reason         string   `msgpack:"reason,omitempty" json:"reason,omitempty"`
	StopType       StopType `msgpack:"stopType,omitempty" json:"stopType,omitempty"`
}

// ControlVariation (kind 11) requests a variation of a previous message.
type ControlVariation struct {
	ConversationID string        `msgpack:"conversationId" json:"conversationId"`
	TargetID       string        `msgpack:"targetId" json:"targetId"`
	Mode           VariationType `msgpack:"mode" json:"mode"`
	NewContent     string        `msgpack:"newContent,omitempty" json:"newContent,omitempty"`
}

// Configuration (kind 12) configures the session after connect.
type Configuration struct {
	ConversationID    string   `msgpack:"conversationId,omitempty" json:"conversationId,omitempty"`
	ClientVersion     string   `msgpack:"clientVersion,omitempty" json:"clientVersion,omitempty"`
	PreferredLanguage string   `msgpack:"preferredLanguage,omitempty" json:"preferredLanguage,omitempty"`
	Device            string   `msgpack:"device,omitempty" json:"device,omitempty"`
	Features          []string `msgpack:"features,omitempty" json:"features,omitempty"`
}

// StartAnswer (kind 13) initiates a streaming assistant response.
type StartAnswer struct {
	ID                   string `msgpack:"id" json:"id"`
	PreviousID           string `msgpack:"previousId" json:"previousId"`
	ConversationID       string `msgpack:"conversationId" json:"conversationId"`
	PlannedSentenceCount int32  `msgpack:"plannedSentenceCount,omitempty" json:"plannedSentenceCount,omitempty"`
}

// MemoryTrace (kind 14) logs a memory retrieval event.
type MemoryTrace struct {
	ID             string  `msgpack:"id" json:"id"`
	MessageID      string  `msgpack:"messageId" json:"messageId"`
	ConversationID string  `msgpack:"conversationId" json:"conversationId"`
	MemoryID       string  `msgpack:"memoryId" json:"memoryId"`
	Content        string  `msgpack:"content" json:"content"`
	Relevance      float32 `msgpack:"relevance" json:"relevance"`
}

// Commentary (kind 15) is the assistant's internal commentary.
type Commentary struct {
	ID             string `msgpack:"id" json:"id"`
	MessageID      string `msgpack:"messageId" json:"messageId"`
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	Content        string `msgpack:"content" json:"content"`
	CommentaryType string `msgpack:"commentaryType,omitempty" json:"commentaryType,omitempty"`
}

// AssistantSentence (kind 16) delivers a streaming response chunk.
type AssistantSentence struct {
	ID             string `msgpack:"id,omitempty" json:"id,omitempty"`
	PreviousID     string `msgpack:"previousId" json:"previousId"` // references StartAnswer's ID
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	Sequence       int32  `msgpack:"sequence" json:"sequence"`
	Text           string `msgpack:"text" json:"text"`
	IsFinal        bool   `msgpack:"isFinal,omitempty" json:"isFinal,omitempty"`
	Audio          []byte `msgpack:"audio,omitempty" json:"audio,omitempty"`
}

// SyncMessage is one client-side message offered for synchronization.
type SyncMessage struct {
	LocalID   string `msgpack:"localId" json:"localId"`
	Role      string `msgpack:"role" json:"role"`
	Content   string `msgpack:"content" json:"content"`
	Timestamp int64  `msgpack:"timestamp,omitempty" json:"timestamp,omitempty"`
}

// SyncRequest (kind 17) offers locally-created messages for server reconciliation.
type SyncRequest struct {
	ConversationID string        `msgpack:"conversationId" json:"conversationId"`
	Messages       []SyncMessage `msgpack:"messages" json:"messages"`
}

// SyncedMessage reports the outcome of synchronizing one message.
type SyncedMessage struct {
	LocalID  string `msgpack:"localId" json:"localId"`
	ServerID string `msgpack:"serverId,omitempty" json:"serverId,omitempty"`
	Status   string `msgpack:"status" json:"status"` // "synced" or "conflict"
	Conflict string `msgpack:"conflict,omitempty" json:"conflict,omitempty"`
}

// SyncResponse (kind 18) answers a SyncRequest, delivered only to the requester.
type SyncResponse struct {
	ConversationID string          `msgpack:"conversationId" json:"conversationId"`
	SyncedMessages []SyncedMessage `msgpack:"syncedMessages" json:"syncedMessages"`
	SyncedAt       string          `msgpack:"syncedAt" json:"syncedAt"`
}

// Feedback (kind 20) is a client vote on a message, sentence, tool use, or memory.
type Feedback struct {
	ID             string `msgpack:"id" json:"id"`
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	TargetType     string `msgpack:"targetType" json:"targetType"` // "message", "sentence", "tool_use", "memory", "reasoning"
	TargetID       string `msgpack:"targetId" json:"targetId"`
	MessageID      string `msgpack:"messageId,omitempty" json:"messageId,omitempty"`
	Value          int32  `msgpack:"value" json:"value"` // 1 upvote, -1 downvote
	QuickFeedback  string `msgpack:"quickFeedback,omitempty" json:"quickFeedback,omitempty"`
	Note           string `msgpack:"note,omitempty" json:"note,omitempty"`
}

// FeedbackConfirmation (kind 21) confirms a vote and carries the new aggregates.
type FeedbackConfirmation struct {
	FeedbackID     string `msgpack:"feedbackId" json:"feedbackId"`
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	TargetType     string `msgpack:"targetType" json:"targetType"`
	TargetID       string `msgpack:"targetId" json:"targetId"`
	Success        bool   `msgpack:"success" json:"success"`
	Upvotes        int32  `msgpack:"upvotes" json:"upvotes"`
	Downvotes      int32  `msgpack:"downvotes" json:"downvotes"`
	NetScore       int32  `msgpack:"netScore" json:"netScore"`
}

// UserNote (kind 22) attaches a freeform note to a message.
type UserNote struct {
	ID             string `msgpack:"id" json:"id"`
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	MessageID      string `msgpack:"messageId" json:"messageId"`
	Content        string `msgpack:"content" json:"content"`
	Category       string `msgpack:"category,omitempty" json:"category,omitempty"` // "improvement", "correction", "context", "general"
}

// NoteConfirmation (kind 23) confirms a stored note.
type NoteConfirmation struct {
	NoteID         string `msgpack:"noteId" json:"noteId"`
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	MessageID      string `msgpack:"messageId" json:"messageId"`
	Success        bool   `msgpack:"success" json:"success"`
	Error          string `msgpack:"error,omitempty" json:"error,omitempty"`
}

// MemoryAction (kind 24) requests a memory create/update/delete.
type MemoryAction struct {
	ID             string           `msgpack:"id" json:"id"`
	ConversationID string           `msgpack:"conversationId" json:"conversationId"`
	Action         MemoryActionType `msgpack:"action" json:"action"`
	MemoryID       string           `msgpack:"memoryId,omitempty" json:"memoryId,omitempty"`
	Content        string           `msgpack:"content,omitempty" json:"content,omitempty"`
	Importance     int32            `msgpack:"importance,omitempty" json:"importance,omitempty"`
}

// MemoryConfirmation (kind 25) confirms a memory action.
type MemoryConfirmation struct {
	ActionID       string           `msgpack:"actionId" json:"actionId"`
	ConversationID string           `msgpack:"conversationId" json:"conversationId"`
	Action         MemoryActionType `msgpack:"action" json:"action"`
	MemoryID       string           `msgpack:"memoryId,omitempty" json:"memoryId,omitempty"`
	Success        bool             `msgpack:"success" json:"success"`
	Error          string           `msgpack:"error,omitempty" json:"error,omitempty"`
}

// ServerInfo (kind 26) describes the server; sent to every connection on accept.
type ServerInfo struct {
	Name         string   `msgpack:"name" json:"name"`
	Version      string   `msgpack:"version" json:"version"`
	Capabilities []string `msgpack:"capabilities,omitempty" json:"capabilities,omitempty"`
	StartedAt    int64    `msgpack:"startedAt" json:"startedAt"`
}

// SessionStats (kind 27) carries statistics for a conversation session.
type SessionStats struct {
	ConversationID    string `msgpack:"conversationId" json:"conversationId"`
	MessageCount      int32  `msgpack:"messageCount" json:"messageCount"`
	ToolCallCount     int32  `msgpack:"toolCallCount" json:"toolCallCount"`
	MemoryRetrievals  int32  `msgpack:"memoryRetrievals" json:"memoryRetrievals"`
	ErrorCount        int32  `msgpack:"errorCount" json:"errorCount"`
	SessionDurationMs int64  `msgpack:"sessionDurationMs" json:"sessionDurationMs"`
}

// ConversationUpdate (kind 28) announces a conversation metadata change.
type ConversationUpdate struct {
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	Title          string `msgpack:"title,omitempty" json:"title,omitempty"`
	Status         string `msgpack:"status,omitempty" json:"status,omitempty"`
	UpdatedAt      string `msgpack:"updatedAt" json:"updatedAt"`
}

// DimensionPreference (kind 29) adjusts per-dimension optimization weights.
type DimensionPreference struct {
	ConversationID string             `msgpack:"conversationId" json:"conversationId"`
	Weights        map[string]float64 `msgpack:"weights" json:"weights"`
}

// EliteSelect (kind 30) selects a specific elite solution from the archive.
type EliteSelect struct {
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	RunID          string `msgpack:"runId" json:"runId"`
	EliteID        string `msgpack:"eliteId" json:"eliteId"`
}

// EliteOption is one available elite solution.
type EliteOption struct {
	ID              string             `msgpack:"id" json:"id"`
	Score           float64            `msgpack:"score" json:"score"`
	Summary         string             `msgpack:"summary,omitempty" json:"summary,omitempty"`
	DimensionScores map[string]float64 `msgpack:"dimensionScores,omitempty" json:"dimensionScores,omitempty"`
}

// EliteOptions (kind 31) lists the elite solutions a user can pick from.
type EliteOptions struct {
	ConversationID string        `msgpack:"conversationId" json:"conversationId"`
	RunID          string        `msgpack:"runId" json:"runId"`
	Options        []EliteOption `msgpack:"options" json:"options"`
}

// OptimizationProgress (kind 32) is a progress update during an optimization run.
type OptimizationProgress struct {
	RunID           string             `msgpack:"runId" json:"runId"`
	ConversationID  string             `msgpack:"conversationId" json:"conversationId"`
	Type            string             `msgpack:"type" json:"type"` // "started", "progress", "completed", "failed"
	Iteration       int32              `msgpack:"iteration" json:"iteration"`
	MaxIterations   int32              `msgpack:"maxIterations" json:"maxIterations"`
	CurrentScore    float64            `msgpack:"currentScore" json:"currentScore"`
	BestScore       float64            `msgpack:"bestScore" json:"bestScore"`
	DimensionScores map[string]float64 `msgpack:"dimensionScores,omitempty" json:"dimensionScores,omitempty"`
	Message         string             `msgpack:"message,omitempty" json:"message,omitempty"`
}

// Subscribe (kind 40) subscribes the connection to a conversation. SinceSequence
// is the last sequence the client has seen; 0 requests the full retained window.
type Subscribe struct {
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	SinceSequence  uint64 `msgpack:"sinceSequence" json:"sinceSequence"`
}

// Unsubscribe (kind 41) removes the connection's subscription.
type Unsubscribe struct {
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
}

// SubscribeAck (kind 42) acknowledges a subscription. MissedFrames replays the
// retained frames after SinceSequence; Truncated signals the window no longer
// reaches back to the requested point and the client must reconcile from the
// history API.
type SubscribeAck struct {
	ConversationID string  `msgpack:"conversationId" json:"conversationId"`
	Success        bool    `msgpack:"success" json:"success"`
	MissedFrames   []Frame `msgpack:"missedFrames" json:"missedFrames"`
	Truncated      bool    `msgpack:"truncated" json:"truncated"`
	Error          string  `msgpack:"error,omitempty" json:"error,omitempty"`
}

// UnsubscribeAck (kind 43) acknowledges an unsubscription.
type UnsubscribeAck struct {
	ConversationID string `msgpack:"conversationId" json:"conversationId"`
	Success        bool   `msgpack:"success" json:"success"`
}
