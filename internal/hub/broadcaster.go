package hub

// Broadcaster is the delivery capability the hub depends on. Concrete
// implementations live in the transport layer (and in tests). Delivery is
// fire-and-forget per recipient: a slow or gone recipient must not block
// the caller or other recipients.
type Broadcaster interface {
	SendTo(connID string, evt Event)
	SendToAll(evt Event)
	SendToAllExcept(connID string, evt Event)
}
