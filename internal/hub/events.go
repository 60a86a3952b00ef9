package hub

// Event types emitted by the hub. Names and payload shapes match the wire
// protocol consumed by the frontend.
const (
	EventUsernameTaken   = "username_taken"
	EventUserJoined      = "user_joined"
	EventUsersList       = "users_list"
	EventMessagesHistory = "messages_history"
	EventUsersUpdate     = "users_update"
	EventNewMessage      = "new_message"
	EventUserTyping      = "user_typing"
	EventUserStopTyping  = "user_stop_typing"
	EventUserLeft        = "user_left"
)

// Event is the envelope delivered to connections.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}
