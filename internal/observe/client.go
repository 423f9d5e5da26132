package observe

import (
	"sync"

	"github.com/gorilla/websocket"
)

// client is one connected viewer
type client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	remote    string
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, remote string) *client {
	return &client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		remote: remote,
	}
}

// close stops the write pump, which closes the connection
func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump discards anything the viewer sends and notices disconnects
func (c *client) readPump() {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(c.hub.clock.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(c.hub.clock.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Viewer read error", "remote", c.remote, "error", err)
			}
			return
		}
	}
}

// writePump delivers queued messages and keeps the connection alive
func (c *client) writePump() {
	ticker := c.hub.clock.NewTicker(pingPeriod, "observe", "ping")
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(c.hub.clock.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.hub.logger.Debug("Failed to write to viewer", "remote", c.remote, "error", err)
				c.hub.unregister(c)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(c.hub.clock.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.unregister(c)
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(c.hub.clock.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
