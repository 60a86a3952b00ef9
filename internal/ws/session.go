package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"huddle/internal/hub"
)

// SessionManager tracks live clients by connection id and implements
// hub.Broadcaster on top of them. Delivery is per-recipient
// fire-and-forget: a client whose send buffer is full has that frame
// dropped; it never blocks the hub or the other recipients.
type SessionManager struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *slog.Logger
}

func NewSessionManager(logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Add registers a client for delivery.
func (m *SessionManager) Add(c *Client) {
	m.mu.Lock()
	m.clients[c.id] = c
	m.mu.Unlock()
}

// Remove drops the client and closes its send channel. Safe to call for
// ids that were already removed.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	c, ok := m.clients[id]
	if ok {
		delete(m.clients, id)
	}
	m.mu.Unlock()

	if ok {
		close(c.send)
	}
}

// Count reports the number of connected clients.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// SendTo delivers an event to a single connection.
func (m *SessionManager) SendTo(connID string, evt hub.Event) {
	payload, ok := m.marshal(evt)
	if !ok {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, present := m.clients[connID]; present {
		m.trySend(c, payload)
	}
}

// SendToAll delivers an event to every connection.
func (m *SessionManager) SendToAll(evt hub.Event) {
	m.sendExcept("", evt)
}

// SendToAllExcept delivers an event to every connection but connID.
func (m *SessionManager) SendToAllExcept(connID string, evt hub.Event) {
	m.sendExcept(connID, evt)
}

func (m *SessionManager) sendExcept(excludeID string, evt hub.Event) {
	payload, ok := m.marshal(evt)
	if !ok {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, c := range m.clients {
		if id == excludeID {
			continue
		}
		m.trySend(c, payload)
	}
}

// CloseAll force-closes every underlying connection, unblocking the read
// pumps so their cleanup runs. Used during shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.RUnlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

// trySend must be called with m.mu held: Remove closes the send channel
// only after delisting the client under the write lock, so a client found
// in the map here is safe to send to.
func (m *SessionManager) trySend(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		m.logger.Warn("dropping event, send buffer full", "conn", c.id)
	}
}

func (m *SessionManager) marshal(evt hub.Event) ([]byte, bool) {
	payload, err := json.Marshal(evt)
	if err != nil {
		m.logger.Error("marshal event", "type", evt.Type, "err", err)
		return nil, false
	}
	return payload, true
}
