package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Payment lifecycle event types pushed to connected clients.
const (
	EventPaymentCreated  = "payment.created"
	EventPaymentApproved = "payment.approved"
	EventPaymentRejected = "payment.rejected"
	EventPayoutCompleted = "payout.completed"
	EventPayoutFailed    = "payout.failed"
)

// Event represents a message sent over WebSocket
type Event struct {
	Type       string      `json:"type"`
	Message    string      `json:"message"`
	ResellerID string      `json:"resellerId,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	ResellerID string // empty for admin dashboard connections
	Conn       *websocket.Conn
}

// Hub maintains the set of active clients and broadcasts payment lifecycle
// events to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an event to every connected client. Clients watching a
// specific reseller filter on resellerId themselves.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		client.Conn.WriteJSON(event)
	}
}

// SendToReseller sends an event to the clients subscribed as a specific
// reseller.
func (h *Hub) SendToReseller(resellerID string, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := false
	for client := range h.clients {
		if client.ResellerID == resellerID {
			if err := client.Conn.WriteJSON(event); err == nil {
				sent = true
			}
		}
	}
	if !sent {
		return fmt.Errorf("reseller not connected")
	}
	return nil
}

// NotifyPaymentEvent broadcasts a payment lifecycle event.
func (h *Hub) NotifyPaymentEvent(eventType, message, resellerID string, data interface{}) {
	h.Broadcast(Event{
		Type:       eventType,
		Message:    message,
		ResellerID: resellerID,
		Data:       data,
	})
}
