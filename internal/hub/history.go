package hub

// DefaultHistoryLimit caps the shared message log.
const DefaultHistoryLimit = 1000

// History is the bounded, append-only message log shared by all
// connections. Oldest entries are evicted once the cap is reached. Like
// the registry, it is guarded by the hub lock rather than internally.
type History struct {
	msgs  []Message
	limit int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Append adds msg to the tail, evicting the oldest entries beyond the cap.
func (b *History) Append(msg Message) {
	b.msgs = append(b.msgs, msg)
	if len(b.msgs) > b.limit {
		b.msgs = b.msgs[len(b.msgs)-b.limit:]
	}
}

// SnapshotAll returns a copy of the buffer, oldest first, for replay to a
// newly joined connection.
func (b *History) SnapshotAll() []Message {
	out := make([]Message, len(b.msgs))
	copy(out, b.msgs)
	return out
}

// Len reports the number of buffered messages.
func (b *History) Len() int { return len(b.msgs) }
