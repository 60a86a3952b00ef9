package hub

import "time"

// Kind distinguishes plain text messages from file-reference messages.
type Kind string

const (
	KindText Kind = "text"
	KindFile Kind = "file"
)

// Connection is one live participant as seen by the registry. JSON field
// names follow the wire format the reference frontend expects.
type Connection struct {
	ID       string    `json:"id"`
	Name     string    `json:"username"`
	Online   bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen,omitzero"`
}

// FileMeta describes an externally hosted file attached to a message.
// The hub never touches file bytes; the URL is opaque to us.
type FileMeta struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size"`
	URL       string `json:"url"`
	MimeType  string `json:"type"`
}

// Message is an immutable chat message. ID and CreatedAt are assigned by
// the hub at acceptance time, never by the client. Author fields are a
// snapshot of the sender's identity at send time.
type Message struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"userId"`
	AuthorName string    `json:"username"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"timestamp"`
	Kind       Kind      `json:"type"`
	FileMeta   *FileMeta `json:"fileInfo,omitempty"`
}
