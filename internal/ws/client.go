package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"lucky_streets/internal/game"
	"lucky_streets/internal/logger"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

type Client struct {
	UserID int64
	Name   string
	Conn   *websocket.Conn
	Send   chan []byte

	Hub     *Hub
	limiter *rate.Limiter
	done    chan struct{}
	once    sync.Once
}

func NewClient(id Identity, conn *websocket.Conn, hub *Hub, limit rate.Limit, burst int) *Client {
	return &Client{
		UserID:  id.ID,
		Name:    id.Name,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Hub:     hub,
		limiter: rate.NewLimiter(limit, burst),
		done:    make(chan struct{}),
	}
}

func (c *Client) PlayerID() int64 { return c.UserID }

// Deliver queues msg without blocking. A full buffer drops the message; the
// next event carries a full snapshot anyway.
func (c *Client) Deliver(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) identity() Identity {
	return Identity{ID: c.UserID, Name: c.Name}
}

// Run serves the connection until it closes.
func (c *Client) Run() {
	log := logger.With("user_id", c.UserID)
	go c.writePump()

	c.Deliver([]byte(`{"type":"ready"}`))
	c.Hub.Register(context.Background(), c)
	log.Debug("client registered")

	c.readPump()

	c.Hub.Unregister(context.Background(), c)
	c.once.Do(func() { close(c.done) })
	log.Debug("client gone")
}

func (c *Client) readPump() {
	defer c.Conn.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		if !c.limiter.Allow() {
			c.Deliver(mustJSON(ErrorMessage{Type: MsgError, Code: "rate_limited", Message: "too many messages"}))
			continue
		}
		c.handle(raw)
	}
}

func (c *Client) handle(raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil || in.Type == "" {
		c.Deliver(errorMessage(game.ErrInvalidAction))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), ledgerTimeout)
	defer cancel()
	ctx = logger.Into(ctx, "user_id", c.UserID, "msg", in.Type)

	reply, err := c.Hub.Handle(ctx, c.identity(), in)
	if err != nil {
		logger.WithContext(ctx).Debug("action rejected", "error", err)
		c.Deliver(errorMessage(err))
		return
	}
	if reply != nil {
		c.Deliver(reply)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
