// Package hub fans server events out to every live WebSocket connection.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/arcadia-live/chat-service/internal/config"
	"github.com/arcadia-live/chat-service/pkg/log"
)

// Hub manages all client connections and delivers broadcasts through a
// single event-loop goroutine, so every connection observes events in the
// same relative order.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *outboundEvent
	done       chan struct{}
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

// outboundEvent is a marshalled event plus an optional client ID to skip
// (typing relays exclude their originator).
type outboundEvent struct {
	data    []byte
	exclude string
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *outboundEvent, 256),
		done:       make(chan struct{}),
		config:     cfg,
	}
}

// Run starts the hub event loop. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.L().Debug().Str(log.FieldClientID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				client.close()
			}
			h.mu.Unlock()
			log.L().Debug().Str(log.FieldClientID, client.ID).Msg("client unregistered")

		case ev := <-h.broadcast:
			h.mu.RLock()
			for clientID, client := range h.clients {
				if clientID == ev.exclude {
					continue
				}
				select {
				case client.Send <- ev.data:
				default:
					// Slow consumer: drop rather than stall the loop.
					log.L().Warn().Str(log.FieldClientID, clientID).Msg("send buffer full, dropping event")
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// Stop halts the hub event loop.
func (h *Hub) Stop() {
	close(h.done)
}

// Register queues a client for registration.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister queues a client for removal and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast delivers an event to every live connection. exclude names one
// client ID to skip; pass "" to reach everyone.
func (h *Hub) Broadcast(event interface{}, exclude string) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.broadcast <- &outboundEvent{data: data, exclude: exclude}
	return nil
}

// Count reports the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
