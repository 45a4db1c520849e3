package notify

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Hub maintains the set of connected clients and their room memberships and
// fans events out to them. Sends never block: a client whose buffer is full
// simply misses the event.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
}

// Ensure Hub implements Publisher
var _ Publisher = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
	}
}

// Register adds a connected client.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	log.Printf("notify: client %s connected (user=%s)", client.id, client.userLabel())
}

// Unregister removes a client and its room memberships and closes its send
// channel. Safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for room, clients := range h.rooms {
		if clients[client] {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	close(client.send)
	log.Printf("notify: client %s disconnected", client.id)
}

// JoinRoom adds a client to a room. Authorization happens at the call sites:
// the connect handler auto-joins sellers, and client join requests are only
// honored for the client's own verified identity.
func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
}

// LeaveRoom removes a client from a room.
func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event Event) {
	event.Room = ""
	h.publish(event)
}

// ToRoom sends an event to the members of one room.
func (h *Hub) ToRoom(room string, event Event) {
	event.Room = room
	h.publish(event)
}

func (h *Hub) publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("notify: marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if event.Room != "" {
		for client := range h.rooms[event.Room] {
			client.trySend(data)
		}
		return
	}
	for client := range h.clients {
		client.trySend(data)
	}
}

// Stats reports connection and room counts.
func (h *Hub) Stats() map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomSizes := make(map[string]int)
	for room, clients := range h.rooms {
		roomSizes[room] = len(clients)
	}
	return map[string]any{
		"total_clients": len(h.clients),
		"total_rooms":   len(h.rooms),
		"rooms":         roomSizes,
	}
}
