// ABOUTME: WebSocket endpoint: upgrade, origin checks, and the reader/writer pumps.
// ABOUTME: Each connection runs one reader and one writer; the hub sits between them.

package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/arclight-systems/relay-hub/internal/hub"
	"github.com/arclight-systems/relay-hub/internal/protocol"
)

const (
	// writeWait is the deadline for a single socket write.
	writeWait = 10 * time.Second
	// pongWait is how long we tolerate silence before the read deadline fires.
	pongWait = 60 * time.Second
	// pingPeriod is how often the writer pings; must be under pongWait.
	pingPeriod = 30 * time.Second
	// maxMessageSize caps inbound frames.
	maxMessageSize = 1 << 20
)

// WSHandler upgrades HTTP requests and runs the connection pumps.
type WSHandler struct {
	hub      *hub.Hub
	collab   Collaborators
	info     protocol.ServerInfo
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWSHandler builds the WebSocket endpoint. allowedOrigins lists the Origin
// values accepted on upgrade; empty means same-host only. allowEmptyOrigin
// accepts requests with no Origin header at all, which is what native (non
// browser) clients send.
func NewWSHandler(h *hub.Hub, collab Collaborators, info protocol.ServerInfo, allowedOrigins []string, allowEmptyOrigin bool, logger *slog.Logger) *WSHandler {
	ws := &WSHandler{
		hub:    h,
		collab: collab,
		info:   info,
		logger: logger.With("component", "ws"),
	}
	ws.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins, allowEmptyOrigin),
	}
	return ws
}

func originChecker(allowed []string, allowEmpty bool) func(*http.Request) bool {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		allowedSet[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return allowEmpty
		}
		if _, ok := allowedSet[origin]; ok {
			return true
		}
		if len(allowedSet) > 0 {
			return false
		}
		// no explicit allowlist: accept same-host origins only
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	}
}

func (ws *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsconn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Warn("upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	conn := ws.hub.NewConn(uuid.NewString(), r.RemoteAddr, r.UserAgent())
	ws.hub.Register(conn)

	// greet before anything else so the client learns capabilities first
	if info, err := protocol.NewFrame(protocol.KindServerInfo, "", &ws.info); err == nil {
		ws.hub.SendTo(conn, info)
	}

	go ws.writePump(conn, wsconn)
	ws.readPump(conn, wsconn, r)
}

// readPump consumes frames until the socket dies, dispatching each one. It
// owns teardown: when it returns the connection is unregistered, which closes
// the mailbox and stops the writer.
func (ws *WSHandler) readPump(conn *hub.Conn, wsconn *websocket.Conn, r *http.Request) {
	defer func() {
		ws.hub.Unregister(conn.ID())
		wsconn.Close()
	}()

	wsconn.SetReadLimit(maxMessageSize)
	wsconn.SetReadDeadline(time.Now().Add(pongWait))
	wsconn.SetPongHandler(func(string) error {
		return wsconn.SetReadDeadline(time.Now().Add(pongWait))
	})

	d := newDispatcher(ws.hub, ws.collab, conn, ws.logger)

	for {
		_, data, err := wsconn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ws.logger.Warn("read error", "conn_id", conn.ID(), "error", err)
			}
			return
		}

		frame, err := protocol.Decode(data)
		if err != nil {
			// protocol violations get an error reply, not a disconnect
			if de, ok := protocol.AsDecodeError(err); ok {
				d.sendError(frame.ConversationID, de.Code, de.Message)
				continue
			}
			d.sendError("", protocol.ErrCodeMalformedData, "unreadable frame")
			continue
		}

		d.dispatch(r.Context(), frame)
	}
}

// writePump drains the mailbox onto the socket and keeps the connection alive
// with pings. It exits when the mailbox closes, sending the abort reason (if
// any) as a final frame before closing the socket, which unblocks the reader.
func (ws *WSHandler) writePump(conn *hub.Conn, wsconn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsconn.Close()
	}()

	for {
		select {
		case <-conn.Done():
			ws.sendCloseReason(conn, wsconn)
			wsconn.SetWriteDeadline(time.Now().Add(writeWait))
			wsconn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-conn.Ready():
			for {
				frame, ok := conn.Next()
				if !ok {
					break
				}
				if !ws.writeFrame(conn, wsconn, frame) {
					return
				}
			}

		case <-ticker.C:
			wsconn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsconn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ws *WSHandler) writeFrame(conn *hub.Conn, wsconn *websocket.Conn, frame protocol.Frame) bool {
	data, err := protocol.Encode(frame)
	if err != nil {
		ws.logger.Error("encode frame", "conn_id", conn.ID(), "kind", frame.Kind.String(), "error", err)
		return true // skip the frame, keep the connection
	}
	wsconn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := wsconn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		ws.logger.Debug("write failed", "conn_id", conn.ID(), "error", err)
		return false
	}
	return true
}

// sendCloseReason pushes the abort reason (slow consumer, shutdown) to the
// client on a best-effort basis before the socket closes.
func (ws *WSHandler) sendCloseReason(conn *hub.Conn, wsconn *websocket.Conn) {
	code, message, ok := conn.CloseReason()
	if !ok {
		return
	}
	frame, err := protocol.NewFrame(protocol.KindErrorMessage, "", &protocol.ErrorMessage{
		Code:        code,
		Message:     message,
		Severity:    protocol.SeverityError,
		Recoverable: false,
	})
	if err != nil {
		return
	}
	ws.writeFrame(conn, wsconn, frame)
}
