// Package hub implements the session coordination and broadcast engine:
// presence registry, display-name uniqueness, bounded message history, and
// audience-routed event fan-out. The hub is the sole owner and mutator of
// the registry and history; transports only issue commands and deliver the
// resulting events.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// Archiver is an optional write-only sink for accepted messages. Records
// are fire-and-forget; the archive is never read back into the history
// buffer, which stays memory-only.
type Archiver interface {
	Record(ctx context.Context, msg Message) error
}

const archiveTimeout = 5 * time.Second

// Hub coordinates sessions for one chat room. All registry and history
// access happens under a single mutex so the online-name uniqueness and
// bounded-history invariants hold under concurrent connection handlers.
type Hub struct {
	mu       sync.Mutex
	registry *Registry
	history  *History
	lastID   int64

	bc      Broadcaster
	archive Archiver
	logger  *slog.Logger
}

// Option configures optional hub collaborators.
type Option func(*Hub)

// WithArchiver attaches a write-only message archive.
func WithArchiver(a Archiver) Option {
	return func(h *Hub) { h.archive = a }
}

// WithLogger sets the hub's logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// WithHistoryLimit overrides the history buffer cap.
func WithHistoryLimit(limit int) Option {
	return func(h *Hub) { h.history = NewHistory(limit) }
}

// New creates a hub that emits events through bc.
func New(bc Broadcaster, opts ...Option) *Hub {
	h := &Hub{
		registry: NewRegistry(),
		history:  NewHistory(DefaultHistoryLimit),
		bc:       bc,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Join registers connID under name and announces the arrival.
//
// On a name collision only the requester is notified, via username_taken.
// On success the other connections receive user_joined, the requester
// receives the full presence and history snapshots (both taken after its
// own entry was inserted), and finally everyone receives users_update.
// The trailing full resend is intentional: every roster is an
// authoritative replace, never an incremental patch.
func (h *Hub) Join(connID, name string) error {
	if err := ValidateDisplayName(name); err != nil {
		return err
	}

	h.mu.Lock()
	if _, joined := h.registry.Get(connID); joined {
		h.mu.Unlock()
		return fmt.Errorf("connection %s already joined: %w", connID, ErrPayloadInvalid)
	}

	conn, err := h.registry.Register(connID, name)
	if err != nil {
		h.mu.Unlock()
		if errors.Is(err, ErrNameTaken) {
			h.bc.SendTo(connID, Event{Type: EventUsernameTaken, Data: "This username is already in use"})
		}
		return err
	}

	users := h.registry.SnapshotAll()
	msgs := h.history.SnapshotAll()
	h.mu.Unlock()

	h.bc.SendToAllExcept(connID, Event{Type: EventUserJoined, Data: conn})
	h.bc.SendTo(connID, Event{Type: EventUsersList, Data: users})
	h.bc.SendTo(connID, Event{Type: EventMessagesHistory, Data: msgs})
	h.bc.SendToAll(Event{Type: EventUsersUpdate, Data: users})

	h.logger.Info("user joined", "conn", connID, "name", name, "online", len(users))
	return nil
}

// SendMessage accepts a message from a joined connection, assigns its id
// and timestamp, appends it to the history buffer (evicting the oldest
// entry beyond the cap), and broadcasts new_message to everyone including
// the sender. The sender relies on that echo; there is no separate ack.
func (h *Hub) SendMessage(connID string, kind Kind, content string, meta *FileMeta) (Message, error) {
	if err := validateMessageShape(kind, content, meta); err != nil {
		return Message{}, err
	}

	h.mu.Lock()
	conn, joined := h.registry.Get(connID)
	if !joined {
		h.mu.Unlock()
		return Message{}, fmt.Errorf("send from %s: %w", connID, ErrNotJoined)
	}

	now := time.Now()
	msg := Message{
		ID:         h.nextMessageID(now),
		AuthorID:   conn.ID,
		AuthorName: conn.Name,
		Content:    content,
		CreatedAt:  now,
		Kind:       kind,
		FileMeta:   meta,
	}
	h.history.Append(msg)
	h.mu.Unlock()

	if h.archive != nil {
		go h.recordMessage(msg)
	}

	h.bc.SendToAll(Event{Type: EventNewMessage, Data: msg})
	return msg, nil
}

// StartTyping relays a typing indicator to everyone except the sender.
// The hub keeps no typing state; deduplication is the receiver's job.
func (h *Hub) StartTyping(connID, name string) {
	h.bc.SendToAllExcept(connID, Event{Type: EventUserTyping, Data: name})
}

// StopTyping relays the end of a typing indicator to everyone except the
// sender. Note that a connection which disconnects mid-typing never
// produces this signal; that matches the reference behavior.
func (h *Hub) StopTyping(connID, name string) {
	h.bc.SendToAllExcept(connID, Event{Type: EventUserStopTyping, Data: name})
}

// Disconnect removes connID from the registry and announces the departure:
// user_left with the offline snapshot to all others, then users_update to
// everyone remaining. Disconnecting an unknown or already-removed id is a
// silent no-op, which makes duplicate close events safe.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	conn, ok := h.registry.MarkOffline(connID, time.Now())
	if !ok {
		h.mu.Unlock()
		return
	}
	users := h.registry.SnapshotAll()
	h.mu.Unlock()

	h.bc.SendToAllExcept(connID, Event{Type: EventUserLeft, Data: conn})
	h.bc.SendToAll(Event{Type: EventUsersUpdate, Data: users})

	h.logger.Info("user left", "conn", connID, "name", conn.Name, "online", len(users))
}

// OnlineCount reports how many connections are currently joined.
func (h *Hub) OnlineCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Len()
}

// nextMessageID derives a strictly increasing id from the wall clock.
// Callers must hold h.mu.
func (h *Hub) nextMessageID(now time.Time) string {
	id := now.UnixMilli()
	if id <= h.lastID {
		id = h.lastID + 1
	}
	h.lastID = id
	return strconv.FormatInt(id, 10)
}

func (h *Hub) recordMessage(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := h.archive.Record(ctx, msg); err != nil {
		h.logger.Warn("archive message", "id", msg.ID, "err", err)
	}
}

func validateMessageShape(kind Kind, content string, meta *FileMeta) error {
	switch kind {
	case KindText:
		if content == "" {
			return fmt.Errorf("text message without content: %w", ErrPayloadInvalid)
		}
		if meta != nil {
			return fmt.Errorf("text message with file metadata: %w", ErrPayloadInvalid)
		}
	case KindFile:
		if meta == nil {
			return fmt.Errorf("file message without file metadata: %w", ErrPayloadInvalid)
		}
	default:
		return fmt.Errorf("unknown message kind %q: %w", kind, ErrPayloadInvalid)
	}
	return nil
}
