// internal/handlers/connections.go
package handlers

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client is the outbound half of one websocket connection. Messages are
// pre-encoded frames drained by the connection's write pump.
type Client struct {
	ID      uuid.UUID
	OutChan chan []byte
	Cancel  context.CancelFunc

	closeOnce sync.Once
	logger    *logrus.Entry
}

// NewClient returns a client with a buffered outbound queue of size buffer.
func NewClient(buffer int, cancel context.CancelFunc, logger *logrus.Logger) *Client {
	id := uuid.New()
	return &Client{
		ID:      id,
		OutChan: make(chan []byte, buffer),
		Cancel:  cancel,
		logger:  logger.WithField("conn", id.String()),
	}
}

// Send queues a frame without blocking. A client that cannot keep up is
// closed rather than left with a gap in its event stream; it has to reconnect
// and join again to get a fresh state.
func (c *Client) Send(frame []byte) bool {
	select {
	case c.OutChan <- frame:
		return true
	default:
		c.logger.Warn("Outbound queue full, closing slow client")
		c.Close()
		return false
	}
}

// Close stops the client's pumps. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.Cancel != nil {
			c.Cancel()
		}
	})
}

// Binding is the room and player a connection acts as.
type Binding struct {
	RoomID string
	Player string
}

// ConnTable tracks live connections, their bindings and each room's members.
type ConnTable struct {
	mu       sync.Mutex
	clients  map[uuid.UUID]*Client
	bindings map[uuid.UUID]Binding
	rooms    map[string]map[uuid.UUID]struct{}
}

func NewConnTable() *ConnTable {
	return &ConnTable{
		clients:  make(map[uuid.UUID]*Client),
		bindings: make(map[uuid.UUID]Binding),
		rooms:    make(map[string]map[uuid.UUID]struct{}),
	}
}

// Add registers an unbound connection.
func (t *ConnTable) Add(c *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clients[c.ID] = c
}

// Remove forgets a connection and returns the binding it held, if any.
func (t *ConnTable) Remove(id uuid.UUID) (Binding, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.clients, id)
	b, ok := t.bindings[id]
	if ok {
		t.unbindUnsafe(id, b)
	}
	return b, ok
}

// Binding returns the room and player bound to a connection.
func (t *ConnTable) Binding(id uuid.UUID) (Binding, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.bindings[id]
	return b, ok
}

// Bind attaches a connection to a room as player.
func (t *ConnTable) Bind(id uuid.UUID, b Binding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.bindings[id]; ok {
		t.unbindUnsafe(id, old)
	}
	t.bindings[id] = b
	members, ok := t.rooms[b.RoomID]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		t.rooms[b.RoomID] = members
	}
	members[id] = struct{}{}
}

// UnbindPlayer detaches every connection bound to player in room.
func (t *ConnTable) UnbindPlayer(roomID, player string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.rooms[roomID] {
		if b := t.bindings[id]; b.Player == player {
			t.unbindUnsafe(id, b)
		}
	}
}

func (t *ConnTable) unbindUnsafe(id uuid.UUID, b Binding) {
	delete(t.bindings, id)
	if members, ok := t.rooms[b.RoomID]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(t.rooms, b.RoomID)
		}
	}
}

// RoomClients returns every connection bound to room.
func (t *ConnTable) RoomClients(roomID string) []*Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Client, 0, len(t.rooms[roomID]))
	for id := range t.rooms[roomID] {
		if c, ok := t.clients[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// PlayerClients returns every connection bound to player in room.
func (t *ConnTable) PlayerClients(roomID, player string) []*Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*Client
	for id := range t.rooms[roomID] {
		if t.bindings[id].Player != player {
			continue
		}
		if c, ok := t.clients[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of live connections.
func (t *ConnTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

// All returns a snapshot of every live connection.
func (t *ConnTable) All() []*Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Client, 0, len(t.clients))
	for _, c := range t.clients {
		out = append(out, c)
	}
	return out
}
