package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one authenticated websocket connection.
type Client struct {
	UserID primitive.ObjectID
	Name   string
	Email  string

	hub  *Hub
	conn *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID primitive.ObjectID, name, email string) *Client {
	return &Client{
		UserID: userID,
		Name:   name,
		Email:  email,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// trySend queues a message without blocking. A client whose buffer is
// full simply drops the message; realtime events are advisory. Safe
// to call on a closed client.
func (c *Client) trySend(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		logrus.Debugf("realtime: dropping message to user %s, send buffer full", c.UserID.Hex())
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// ReadPump consumes inbound messages until the connection drops, then
// unregisters the client. Run as a goroutine per connection.
func (c *Client) ReadPump() {
	defer c.hub.Unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Debugf("realtime: read error for user %s", c.UserID.Hex())
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logrus.Debugf("realtime: discarding malformed message from user %s", c.UserID.Hex())
			continue
		}

		switch msg.Action {
		case ActionStartEditing:
			if msg.FileID != "" {
				c.hub.StartEditing(c, msg.FileID)
			}
		case ActionStopEditing:
			if msg.FileID != "" {
				c.hub.StopEditing(c, msg.FileID)
			}
		case ActionJoinRoom:
			if msg.RoomID != "" {
				c.hub.JoinRoom(c, msg.RoomID)
			}
		case ActionLeaveRoom:
			if msg.RoomID != "" {
				c.hub.LeaveRoom(c, msg.RoomID)
			}
		}
	}
}

// WritePump drains the send buffer onto the connection and keeps the
// connection alive with pings. Run as a goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
