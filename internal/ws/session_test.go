package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huddle/internal/hub"
)

func drain(c *Client) []hub.Event {
	var out []hub.Event
	for {
		select {
		case payload := <-c.send:
			var evt hub.Event
			if err := json.Unmarshal(payload, &evt); err == nil {
				out = append(out, evt)
			}
		default:
			return out
		}
	}
}

func TestSessionManagerSendTo(t *testing.T) {
	m := NewSessionManager(nil)
	a := newClient("a", nil, 0, nil)
	b := newClient("b", nil, 0, nil)
	m.Add(a)
	m.Add(b)

	m.SendTo("a", hub.Event{Type: hub.EventUsersList})

	require.Len(t, drain(a), 1)
	assert.Empty(t, drain(b))
}

func TestSessionManagerSendToAllExcept(t *testing.T) {
	m := NewSessionManager(nil)
	a := newClient("a", nil, 0, nil)
	b := newClient("b", nil, 0, nil)
	c := newClient("c", nil, 0, nil)
	m.Add(a)
	m.Add(b)
	m.Add(c)

	m.SendToAllExcept("b", hub.Event{Type: hub.EventUserTyping, Data: "alice"})

	require.Len(t, drain(a), 1)
	assert.Empty(t, drain(b))
	require.Len(t, drain(c), 1)
}

func TestSessionManagerSendToAll(t *testing.T) {
	m := NewSessionManager(nil)
	a := newClient("a", nil, 0, nil)
	b := newClient("b", nil, 0, nil)
	m.Add(a)
	m.Add(b)

	m.SendToAll(hub.Event{Type: hub.EventNewMessage})

	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
}

func TestSessionManagerRemoveIsIdempotent(t *testing.T) {
	m := NewSessionManager(nil)
	a := newClient("a", nil, 0, nil)
	m.Add(a)
	require.Equal(t, 1, m.Count())

	m.Remove("a")
	assert.Equal(t, 0, m.Count())

	// A second remove (duplicate close event) must not panic on the
	// already-closed channel.
	m.Remove("a")

	m.SendTo("a", hub.Event{Type: hub.EventNewMessage})
}

func TestSessionManagerDropsOnFullBuffer(t *testing.T) {
	m := NewSessionManager(nil)
	a := newClient("a", nil, 0, nil)
	m.Add(a)

	// Nothing drains the channel; the manager must never block even far
	// past the buffer size.
	for i := 0; i < sendBufferSize*2; i++ {
		m.SendToAll(hub.Event{Type: hub.EventNewMessage})
	}

	assert.Len(t, drain(a), sendBufferSize)
}
