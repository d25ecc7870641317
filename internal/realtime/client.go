package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameBytes  = 4096
	sendQueueDepth = 64
)

// Client frame types
const (
	FrameJoinChat  = "join_chat"
	FrameLeaveChat = "leave_chat"
	FramePing      = "ping"
)

// RoomAuthorizer decides whether a user may join a chat room.
type RoomAuthorizer interface {
	EnsureParticipant(ctx context.Context, chatID int64, userID string) error
}

type clientFrame struct {
	Type   string `json:"type"`
	ChatID int64  `json:"chat_id"`
}

// Client is a websocket Session. Writes go through a buffered queue drained
// by a single writer goroutine.
type Client struct {
	id     string
	userID string
	conn   *websocket.Conn
	hub    *Hub
	rooms  RoomAuthorizer

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, hub *Hub, rooms RoomAuthorizer, userID string) *Client {
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		hub:    hub,
		rooms:  rooms,
		send:   make(chan []byte, sendQueueDepth),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string     { return c.id }
func (c *Client) UserID() string { return c.userID }

// Send drops the frame when the queue is full or the client is closed.
func (c *Client) Send(ev domain.Event) bool {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Error("Failed to encode realtime event", "type", ev.Type, "error", err)
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		framesDropped.Inc()
		return false
	}
}

// Close asks the writer to send a going-away frame and release the socket.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Serve registers the client, pumps frames until the connection ends and
// then unregisters it. It blocks for the lifetime of the connection.
func (c *Client) Serve(ctx context.Context) {
	c.hub.Register(c)
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Debug("Realtime connection closed", "user_id", c.userID, "error", err)
			}
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.Send(domain.Event{Type: domain.EventError, Data: "malformed frame"})
			continue
		}
		c.handle(ctx, frame)
	}
}

func (c *Client) handle(ctx context.Context, frame clientFrame) {
	switch frame.Type {
	case FramePing:
		c.Send(domain.Event{Type: domain.EventPong})
	case FrameJoinChat:
		if frame.ChatID <= 0 {
			c.Send(domain.Event{Type: domain.EventError, Data: "chat_id is required"})
			return
		}
		if err := c.rooms.EnsureParticipant(ctx, frame.ChatID, c.userID); err != nil {
			c.Send(domain.Event{Type: domain.EventError, Data: "chat not found"})
			return
		}
		c.hub.Join(frame.ChatID, c)
	case FrameLeaveChat:
		c.hub.Leave(frame.ChatID, c)
	default:
		c.Send(domain.Event{Type: domain.EventError, Data: "unknown frame type"})
	}
}

// writePump is the only writer and owns closing the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// NewUpgrader accepts browser origins from the CORS allow list. Requests
// without an Origin header (non-browser clients) are accepted.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		},
	}
}
