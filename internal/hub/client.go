package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/ovalhq/pavilion/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 32
)

// InboundMessage is a client-to-server frame; payload decoding is up to
// the dispatcher.
type InboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client is one websocket connection plus the session identity attached
// at upgrade time.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan Event
	Session *models.Session

	mu     sync.Mutex
	closed bool
}

func NewClient(h *Hub, conn *websocket.Conn, session *models.Session) *Client {
	return &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan Event, sendBufferSize),
		Session: session,
	}
}

// Send queues an event for this client only, e.g. the connect snapshot or
// an error frame. Drops silently if the client's buffer is full or the hub
// has already dropped the client. The read goroutine calls this while the
// hub goroutine may be closing the channel, hence the flag under the mutex.
func (c *Client) Send(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- event:
	default:
	}
}

// closeSend is called by the hub goroutine only, once the client leaves the
// broadcast set.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WritePump drains the send queue onto the connection. One writer per
// connection keeps frames ordered.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump parses inbound frames and hands them to dispatch until the
// connection dies, then unregisters.
func (c *Client) ReadPump(dispatch func(*Client, InboundMessage)) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg InboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug.Printf("Websocket read error: %v", err)
			}
			return
		}
		dispatch(c, msg)
	}
}
