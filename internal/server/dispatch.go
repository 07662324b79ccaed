// ABOUTME: Per-connection frame dispatcher: routes each inbound kind to the hub
// ABOUTME: or a collaborator and replies with confirmations or protocol errors.

package server

import (
	"context"
	"log/slog"

	"github.com/arclight-systems/relay-hub/internal/hub"
	"github.com/arclight-systems/relay-hub/internal/protocol"
)

// serverOnlyKinds never originate from a client; receiving one is a protocol
// violation.
var serverOnlyKinds = map[protocol.Kind]struct{}{
	protocol.KindSubscribeAck:         {},
	protocol.KindUnsubscribeAck:       {},
	protocol.KindSyncResponse:         {},
	protocol.KindServerInfo:           {},
	protocol.KindFeedbackConfirmation: {},
	protocol.KindNoteConfirmation:     {},
	protocol.KindMemoryConfirmation:   {},
}

type dispatcher struct {
	hub    *hub.Hub
	collab Collaborators
	conn   *hub.Conn
	logger *slog.Logger
}

func newDispatcher(h *hub.Hub, collab Collaborators, conn *hub.Conn, logger *slog.Logger) *dispatcher {
	return &dispatcher{
		hub:    h,
		collab: collab,
		conn:   conn,
		logger: logger.With("conn_id", conn.ID()),
	}
}

func (d *dispatcher) dispatch(ctx context.Context, f protocol.Frame) {
	if _, ok := serverOnlyKinds[f.Kind]; ok {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "kind "+f.Kind.String()+" is server-originated")
		return
	}

	switch f.Kind {
	case protocol.KindErrorMessage:
		d.handleErrorMessage(f)
	case protocol.KindSubscribe:
		d.handleSubscribe(f)
	case protocol.KindUnsubscribe:
		d.handleUnsubscribe(f)
	case protocol.KindAcknowledgement:
		d.handleAck(f)
	case protocol.KindConfiguration:
		d.handleConfiguration(f)
	case protocol.KindFeedback:
		d.handleFeedback(ctx, f)
	case protocol.KindUserNote:
		d.handleUserNote(ctx, f)
	case protocol.KindMemoryAction:
		d.handleMemoryAction(ctx, f)
	case protocol.KindSyncRequest:
		d.handleSyncRequest(ctx, f)
	case protocol.KindControlStop:
		d.handleControlStop(ctx, f)
	case protocol.KindControlVariation:
		d.handleControlVariation(ctx, f)
	case protocol.KindDimensionPreference:
		d.handleDimensionPreference(ctx, f)
	case protocol.KindEliteSelect:
		d.handleEliteSelect(ctx, f)
	case protocol.KindUserMessage:
		d.handleUserMessage(ctx, f)
	default:
		d.relay(f)
	}
}

// handleErrorMessage reflects error frames to the sender. This is where frames
// of unrecognized kinds land after the decoder rewrites them, so the sender
// learns its frame was not understood without losing the connection.
func (d *dispatcher) handleErrorMessage(f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.ErrorMessage](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed error body")
		return
	}
	d.logger.Warn("client error frame",
		"code", body.Code,
		"message", body.Message,
		"conversation_id", body.ConversationID)
	d.hub.SendTo(d.conn, f)
}

func (d *dispatcher) handleSubscribe(f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.Subscribe](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed subscribe body")
		return
	}
	if err := d.hub.Subscribe(d.conn, body.ConversationID, body.SinceSequence); err != nil {
		d.logger.Error("subscribe failed", "conversation_id", body.ConversationID, "error", err)
		d.sendError(body.ConversationID, protocol.ErrCodeInternalError, "subscribe failed")
	}
}

func (d *dispatcher) handleUnsubscribe(f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.Unsubscribe](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed unsubscribe body")
		return
	}
	if err := d.hub.Unsubscribe(d.conn, body.ConversationID); err != nil {
		d.logger.Error("unsubscribe failed", "conversation_id", body.ConversationID, "error", err)
		d.sendError(body.ConversationID, protocol.ErrCodeInternalError, "unsubscribe failed")
	}
}

func (d *dispatcher) handleAck(f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.Acknowledgement](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed acknowledgement body")
		return
	}
	d.conn.RecordAck(body.ConversationID, body.AckedSequence)
}

func (d *dispatcher) handleConfiguration(f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.Configuration](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed configuration body")
		return
	}
	d.logger.Debug("client configured",
		"client_version", body.ClientVersion,
		"device", body.Device,
		"features", body.Features)
}

func (d *dispatcher) handleFeedback(ctx context.Context, f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.Feedback](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed feedback body")
		return
	}
	if d.collab.Feedback == nil {
		d.sendError(body.ConversationID, protocol.ErrCodeServiceUnavailable, "feedback is not available")
		return
	}
	conf, err := d.collab.Feedback.RecordFeedback(ctx, body)
	if err != nil {
		d.logger.Error("record feedback failed", "target_id", body.TargetID, "error", err)
		d.sendError(body.ConversationID, protocol.ErrCodeInternalError, "feedback could not be recorded")
		return
	}
	d.publishResult(protocol.KindFeedbackConfirmation, body.ConversationID, &conf)
}

func (d *dispatcher) handleUserNote(ctx context.Context, f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.UserNote](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed note body")
		return
	}
	if d.collab.Notes == nil {
		d.sendError(body.ConversationID, protocol.ErrCodeServiceUnavailable, "notes are not available")
		return
	}
	conf, err := d.collab.Notes.SaveNote(ctx, body)
	if err != nil {
		d.logger.Error("save note failed", "message_id", body.MessageID, "error", err)
		d.sendError(body.ConversationID, protocol.ErrCodeInternalError, "note could not be saved")
		return
	}
	d.publishResult(protocol.KindNoteConfirmation, body.ConversationID, &conf)
}

func (d *dispatcher) handleMemoryAction(ctx context.Context, f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.MemoryAction](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed memory action body")
		return
	}
	if d.collab.Memory == nil {
		d.sendError(body.ConversationID, protocol.ErrCodeServiceUnavailable, "memory actions are not available")
		return
	}
	conf, err := d.collab.Memory.ApplyMemoryAction(ctx, body)
	if err != nil {
		d.logger.Error("memory action failed", "action", body.Action, "error", err)
		d.sendError(body.ConversationID, protocol.ErrCodeInternalError, "memory action failed")
		return
	}
	d.publishResult(protocol.KindMemoryConfirmation, body.ConversationID, &conf)
}

// handleSyncRequest answers the requester directly; sync results are not part
// of the conversation history and never reach other subscribers.
func (d *dispatcher) handleSyncRequest(ctx context.Context, f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.SyncRequest](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed sync request body")
		return
	}
	if d.collab.Sync == nil {
		d.sendError(body.ConversationID, protocol.ErrCodeServiceUnavailable, "sync is not available")
		return
	}
	resp, err := d.collab.Sync.SyncMessages(ctx, body)
	if err != nil {
		d.logger.Error("sync failed", "conversation_id", body.ConversationID, "error", err)
		d.sendError(body.ConversationID, protocol.ErrCodeInternalError, "sync failed")
		return
	}
	frame, err := protocol.NewFrame(protocol.KindSyncResponse, body.ConversationID, &resp)
	if err != nil {
		d.logger.Error("build sync response", "error", err)
		return
	}
	d.hub.SendTo(d.conn, frame)
}

func (d *dispatcher) handleControlStop(ctx context.Context, f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.ControlStop](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed stop body")
		return
	}
	if d.collab.Generation == nil {
		d.sendError(body.ConversationID, protocol.ErrCodeServiceUnavailable, "generation control is not available")
		return
	}
	if err := d.collab.Generation.Stop(ctx, body); err != nil {
		d.logger.Error("stop failed", "conversation_id", body.ConversationID, "error", err)
		d.sendError(body.ConversationID, protocol.ErrCodeInternalError, "stop failed")
	}
}

func (d *dispatcher) handleControlVariation(ctx context.Context, f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.ControlVariation](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed variation body")
		return
	}
	if d.collab.Generation == nil {
		d.sendError(body.ConversationID, protocol.ErrCodeServiceUnavailable, "generation control is not available")
		return
	}
	if err := d.collab.Generation.Vary(ctx, body); err != nil {
		d.logger.Error("variation failed", "target_id", body.TargetID, "error", err)
		d.sendError(body.ConversationID, protocol.ErrCodeInternalError, "variation failed")
	}
}

func (d *dispatcher) handleDimensionPreference(ctx context.Context, f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.DimensionPreference](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed dimension preference body")
		return
	}
	if d.collab.Optimizer == nil {
		d.sendError(body.ConversationID, protocol.ErrCodeServiceUnavailable, "optimization is not available")
		return
	}
	if err := d.collab.Optimizer.SetDimensionPreference(ctx, body); err != nil {
		d.logger.Error("dimension preference failed", "conversation_id", body.ConversationID, "error", err)
		d.sendError(body.ConversationID, protocol.ErrCodeInternalError, "dimension preference failed")
	}
}

func (d *dispatcher) handleEliteSelect(ctx context.Context, f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.EliteSelect](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed elite select body")
		return
	}
	if d.collab.Optimizer == nil {
		d.sendError(body.ConversationID, protocol.ErrCodeServiceUnavailable, "optimization is not available")
		return
	}
	if err := d.collab.Optimizer.SelectElite(ctx, body); err != nil {
		d.logger.Error("elite select failed", "elite_id", body.EliteID, "error", err)
		d.sendError(body.ConversationID, protocol.ErrCodeInternalError, "elite select failed")
	}
}

// handleUserMessage broadcasts the message to subscribers and hands it to the
// message sink. Sink failures are reported back but do not retract the
// broadcast; the message is already part of the conversation.
func (d *dispatcher) handleUserMessage(ctx context.Context, f protocol.Frame) {
	body, err := protocol.DecodeBody[protocol.UserMessage](f)
	if err != nil {
		d.sendError(f.ConversationID, protocol.ErrCodeMalformedData, "malformed user message body")
		return
	}
	f.ConversationID = body.ConversationID
	if !d.requireSubscription(f.ConversationID) {
		return
	}
	d.hub.Publish(f)
	if d.collab.Messages != nil {
		if err := d.collab.Messages.HandleUserMessage(ctx, body); err != nil {
			d.logger.Error("message sink failed", "message_id", body.ID, "error", err)
			d.sendError(body.ConversationID, protocol.ErrCodeInternalError, "message could not be processed")
		}
	}
}

// relay rebroadcasts content kinds the hub itself has no opinion about
// (assistant output, audio, transcriptions, traces) to the conversation's
// subscribers.
func (d *dispatcher) relay(f protocol.Frame) {
	if f.ConversationID == "" {
		d.sendError("", protocol.ErrCodeMalformedData, "frame is missing conversationId")
		return
	}
	if !d.requireSubscription(f.ConversationID) {
		return
	}
	d.hub.Publish(f)
}

func (d *dispatcher) requireSubscription(conversationID string) bool {
	if conversationID == "" {
		d.sendError("", protocol.ErrCodeMalformedData, "frame is missing conversationId")
		return false
	}
	if !d.hub.IsSubscribed(d.conn.ID(), conversationID) {
		d.sendError(conversationID, protocol.ErrCodeNotSubscribed, "not subscribed to conversation "+conversationID)
		return false
	}
	return true
}

func (d *dispatcher) publishResult(kind protocol.Kind, conversationID string, body any) {
	frame, err := protocol.NewFrame(kind, conversationID, body)
	if err != nil {
		d.logger.Error("build result frame", "kind", kind.String(), "error", err)
		return
	}
	d.hub.Publish(frame)
}

// sendError delivers an ErrorMessage directly to this connection. Errors are
// advisory; the connection stays open.
func (d *dispatcher) sendError(conversationID string, code int32, message string) {
	frame, err := protocol.NewFrame(protocol.KindErrorMessage, conversationID, &protocol.ErrorMessage{
		ConversationID: conversationID,
		Code:           code,
		Message:        message,
		Severity:       protocol.SeverityError,
		Recoverable:    true,
	})
	if err != nil {
		d.logger.Error("build error frame", "error", err)
		return
	}
	d.hub.SendTo(d.conn, frame)
}
