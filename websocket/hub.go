package websocket

import (
	"fmt"
	"log"
	"sync"
	"time"

	"tunesmith/types"
)

// AllBatches is the subscription key for clients that follow every run
const AllBatches = "all"

// Hub interface defines the methods for managing WebSocket connections
type Hub interface {
	Run()
	Stop()
	BroadcastEvent(event types.BatchEvent)
	Notify(n types.Notification)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
	ClientCount() int
}

// hub maintains the set of active clients and broadcasts events to them
type hub struct {
	// Registered clients mapped by batch ID
	clients map[string]map[*Client]bool

	// Broadcast channel for sending events to the clients of a batch
	broadcast chan types.BatchEvent

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	stop chan struct{}
	once sync.Once

	// Mutex for thread-safe operations
	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() Hub {
	return &hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan types.BatchEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
	}
}

// Run starts the hub's main event loop
func (h *hub) Run() {
	for {
		select {
		case <-h.stop:
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.batchID] == nil {
				h.clients[client.batchID] = make(map[*Client]bool)
			}
			h.clients[client.batchID][client] = true
			h.mu.Unlock()
			log.Printf("WebSocket client connected for batch %s", client.batchID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.batchID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.batchID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected for batch %s", client.batchID)

		case event := <-h.broadcast:
			h.mu.Lock()
			if event.BatchID != AllBatches {
				h.deliver(event.BatchID, event)
			}
			// Also send to "all" clients for any batch update
			h.deliver(AllBatches, event)
			h.mu.Unlock()
		}
	}
}

// deliver sends event to every client subscribed to key, dropping slow clients.
// Caller holds h.mu.
func (h *hub) deliver(key string, event types.BatchEvent) {
	clients, ok := h.clients[key]
	if !ok {
		return
	}
	for client := range clients {
		select {
		case client.send <- event:
		default:
			close(client.send)
			delete(clients, client)
		}
	}
	if len(clients) == 0 {
		delete(h.clients, key)
	}
}

// Stop ends the event loop
func (h *hub) Stop() {
	h.once.Do(func() { close(h.stop) })
}

// BroadcastEvent queues an event for the clients of its batch
func (h *hub) BroadcastEvent(event types.BatchEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case h.broadcast <- event:
	default:
		log.Printf("WebSocket broadcast channel full, dropping event for batch %s", event.BatchID)
	}
}

// Notify forwards a user-facing notification to every "all" subscriber
func (h *hub) Notify(n types.Notification) {
	h.BroadcastEvent(types.BatchEvent{
		BatchID: AllBatches,
		Type:    "notify",
		Status:  string(n.Severity),
		Message: fmt.Sprintf("%s: %s", n.Title, n.Description),
	})
}

// RegisterClient registers a new client with the hub
func (h *hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client from the hub
func (h *hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// ClientCount returns the number of connected clients
func (h *hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}
