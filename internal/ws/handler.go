package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"huddle/internal/hub"
)

// Command types accepted from clients. Disconnect is implicit: it fires
// when the read pump exits.
const (
	cmdJoin        = "join"
	cmdSendMessage = "send_message"
	cmdTypingStart = "typing_start"
	cmdTypingStop  = "typing_stop"
)

// command is the JSON envelope clients send. Data for join and the typing
// commands is a bare display-name string; send_message carries an object.
type command struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// sendMessagePayload mirrors the reference wire format. Client-supplied
// author identity is ignored: the hub snapshots the sender from its own
// registry, and ids/timestamps are never client-supplied.
type sendMessagePayload struct {
	Content  string        `json:"content"`
	Kind     hub.Kind      `json:"type"`
	FileMeta *hub.FileMeta `json:"fileInfo"`
}

// Handler upgrades HTTP requests to WebSocket sessions and dispatches
// decoded commands to the hub.
type Handler struct {
	hub            *hub.Hub
	sessions       *SessionManager
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	maxMessageSize int64
}

// NewHandler builds the WebSocket handler. An empty origin list (or a "*"
// entry) allows any origin.
func NewHandler(h *hub.Hub, sessions *SessionManager, allowedOrigins []string, maxMessageSize int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		hub:            h,
		sessions:       sessions,
		logger:         logger,
		maxMessageSize: maxMessageSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ServeWS handles a WebSocket upgrade request and runs the connection's
// read loop until the client goes away.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	client := newClient(uuid.NewString(), conn, h.maxMessageSize, h.logger)
	h.sessions.Add(client)
	h.logger.Info("connection opened", "conn", client.id, "remote", r.RemoteAddr, "total", h.sessions.Count())

	go client.writePump()
	client.readPump(func(raw []byte) {
		h.dispatch(client, raw)
	})

	// Implicit disconnect: runs exactly once, when the read pump exits.
	h.hub.Disconnect(client.id)
	h.sessions.Remove(client.id)
	h.logger.Info("connection closed", "conn", client.id, "total", h.sessions.Count())
}

// dispatch decodes one command envelope and applies it. Malformed input is
// dropped: command errors are connection-scoped and must never take down
// the hub or affect other connections.
func (h *Handler) dispatch(c *Client, raw []byte) {
	var cmd command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		h.logger.Warn("malformed command envelope", "conn", c.id, "err", err)
		return
	}

	switch cmd.Type {
	case cmdJoin:
		name, ok := h.decodeName(c, cmd.Data)
		if !ok {
			return
		}
		if err := h.hub.Join(c.id, name); err != nil {
			h.logger.Warn("join rejected", "conn", c.id, "err", err)
		}

	case cmdSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			h.logger.Warn("malformed send_message payload", "conn", c.id, "err", err)
			return
		}
		if _, err := h.hub.SendMessage(c.id, p.Kind, p.Content, p.FileMeta); err != nil {
			h.logger.Warn("message rejected", "conn", c.id, "err", err)
		}

	case cmdTypingStart:
		if name, ok := h.decodeName(c, cmd.Data); ok {
			h.hub.StartTyping(c.id, name)
		}

	case cmdTypingStop:
		if name, ok := h.decodeName(c, cmd.Data); ok {
			h.hub.StopTyping(c.id, name)
		}

	default:
		h.logger.Warn("unknown command", "conn", c.id, "type", cmd.Type)
	}
}

func (h *Handler) decodeName(c *Client, data json.RawMessage) (string, bool) {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		h.logger.Warn("malformed name payload", "conn", c.id, "err", err)
		return "", false
	}
	return name, true
}

func originChecker(allowedOrigins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := len(allowedOrigins) == 0
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		return allowed[r.Header.Get("Origin")]
	}
}
