// Package hub fans server events out to every connected websocket client.
// Delivery is at-most-once: each connection gets events in order, but a
// client that cannot keep up is dropped rather than buffered forever.
package hub

import (
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/ovalhq/pavilion/internal/metrics"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	clients    map[*Client]bool
}

func New() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 64),
		clients:    make(map[*Client]bool),
	}
}

// Publish queues an event for every connected client. Fire-and-forget;
// this is the app.Publisher implementation.
func (h *Hub) Publish(event string, payload any) {
	h.broadcast <- Event{Type: event, Payload: payload}
}

func (h *Hub) Register(c *Client) {
	h.register <- c
}

func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Run owns the client set; all membership changes and fan-out go through
// this single goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			metrics.ConnectedClients.Inc()

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				metrics.ConnectedClients.Dec()
			}

		case event := <-h.broadcast:
			metrics.BroadcastEventsTotal.WithLabelValues(event.Type).Inc()
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					logger.Debug.Printf("Dropping slow websocket client")
					delete(h.clients, client)
					client.closeSend()
					metrics.ConnectedClients.Dec()
				}
			}
		}
	}
}
