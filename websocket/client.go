package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tunesmith/types"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write one frame
	writeWait = 10 * time.Second

	// Clients must answer a ping within pongWait
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames, so inbound messages stay small
	maxMessageSize = 512

	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origins are already filtered by the CORS middleware
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection following a batch, or every batch when
// its key is AllBatches
type Client struct {
	hub     Hub
	conn    *websocket.Conn
	send    chan types.BatchEvent
	batchID string
}

// NewClient creates a client following batchID
func NewClient(hub Hub, conn *websocket.Conn, batchID string) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan types.BatchEvent, sendBuffer),
		batchID: batchID,
	}
}

// BatchID returns the subscription key of the client
func (c *Client) BatchID() string {
	return c.batchID
}

// StartPumps starts the read and write loops. The hub closes send when the
// client is unregistered, which ends the write loop.
func (c *Client) StartPumps() {
	go c.writePump()
	go c.readPump()
}

// readPump discards inbound messages and keeps the read deadline alive on
// pongs. Any read error unregisters the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error for batch %s: %v", c.batchID, err)
			}
			return
		}
	}
}

// writePump sends queued events as separate JSON text frames, draining
// whatever is already queued on each wake-up
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}
			if err := c.writeEvent(event); err != nil {
				log.Printf("WebSocket write error for batch %s: %v", c.batchID, err)
				return
			}
			for pending := len(c.send); pending > 0; pending-- {
				next, ok := <-c.send
				if !ok {
					return
				}
				if err := c.writeEvent(next); err != nil {
					log.Printf("WebSocket write error for batch %s: %v", c.batchID, err)
					return
				}
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeEvent(event types.BatchEvent) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(w).Encode(event); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// GetUpgrader returns the WebSocket upgrader
func GetUpgrader() websocket.Upgrader {
	return upgrader
}
