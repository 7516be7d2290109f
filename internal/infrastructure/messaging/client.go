package messaging

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Upgrader upgrades preview requests. Origins are checked by the CORS layer.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// PreviewClient is one websocket watching a session
type PreviewClient struct {
	SessionID string
	Send      chan []byte
	conn      *websocket.Conn
}

// NewPreviewClient wraps an upgraded connection
func NewPreviewClient(sessionID string, conn *websocket.Conn) *PreviewClient {
	return &PreviewClient{SessionID: sessionID, Send: make(chan []byte, 16), conn: conn}
}

// Serve registers the client and pumps messages until either side closes.
// It blocks until the connection ends.
func (c *PreviewClient) Serve(b *PreviewBroadcaster, initial []byte) {
	b.Register(c)
	if initial != nil {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, initial); err != nil {
			b.Unregister(c)
			c.conn.Close()
			return
		}
	}
	go c.writePump()
	c.readPump(b)
}

// readPump only watches for close and pong frames; clients send nothing
func (c *PreviewClient) readPump(b *PreviewBroadcaster) {
	defer func() {
		b.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				b.logger.Preview().Warn("Preview client read error", "sessionId", c.SessionID, "error", err)
			}
			return
		}
	}
}

func (c *PreviewClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
