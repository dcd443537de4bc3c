package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/soonland/nexus-gaming/internal/permission"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// TokenParser verifies the token passed in the query string
type TokenParser interface {
	Parse(token string) (permission.Principal, error)
}

// AccountStates reports the live role and active flag of an account
type AccountStates interface {
	AccountState(ctx context.Context, userID string) (permission.Role, bool, error)
}

// Client represents a single connected WebSocket client
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID string
	Send   chan []byte
}

// message targets one user, or everybody when userID is empty
type message struct {
	userID  string
	payload []byte
}

// Hub maintains the set of active clients and routes messages to them
type Hub struct {
	clients    map[*Client]bool
	byUser     map[string]map[*Client]bool
	messages   chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
}

// NewHub initializes a new WS Hub instance. An empty origin list accepts any origin.
func NewHub(allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		byUser:     make(map[string]map[*Client]bool),
		messages:   make(chan message, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// Run starts the core dispatch loop for WebSocket events until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if h.byUser[client.UserID] == nil {
				h.byUser[client.UserID] = make(map[*Client]bool)
			}
			h.byUser[client.UserID][client] = true
			h.mu.Unlock()
			logrus.WithField("user_id", client.UserID).Debug("websocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				h.remove(client)
				logrus.WithField("user_id", client.UserID).Debug("websocket client disconnected")
			}
			h.mu.Unlock()
		case msg := <-h.messages:
			h.mu.Lock()
			targets := h.clients
			if msg.userID != "" {
				targets = h.byUser[msg.userID]
			}
			for client := range targets {
				select {
				case client.Send <- msg.payload:
				default:
					// slow consumer
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held
func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	if set := h.byUser[client.UserID]; set != nil {
		delete(set, client)
		if len(set) == 0 {
			delete(h.byUser, client.UserID)
		}
	}
	close(client.Send)
}

// enqueue waits for room in the queue; it only gives up once Run has stopped
func (h *Hub) enqueue(msg message) {
	select {
	case h.messages <- msg:
	case <-h.done:
	}
}

// SendToUser pushes payload to every connection of userID.
// Users without an open connection are skipped before touching the queue.
func (h *Hub) SendToUser(userID string, payload []byte) {
	if userID == "" || !h.Connected(userID) {
		return
	}
	h.enqueue(message{userID: userID, payload: payload})
}

// Broadcast pushes payload to every connected client
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return
	}
	h.enqueue(message{payload: payload})
}

// Connected reports whether userID has at least one open connection
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID]) > 0
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		_ = c.Conn.Close()
	}()
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// clients only listen; reading keeps the connection alive
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("user_id", c.UserID).Warn("websocket closed unexpectedly")
			}
			break
		}
	}
}

// ServeWs handles websocket requests from the peer. When states is non-nil the
// account behind the token must still be active.
func ServeWs(hub *Hub, c *gin.Context, tokens TokenParser, states AccountStates) {
	// browsers cannot set headers on websocket handshakes, hence the query param
	tokenString := c.Query("token")
	if tokenString == "" {
		logrus.Debug("websocket connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	p, err := tokens.Parse(tokenString)
	if err != nil {
		logrus.WithError(err).Debug("websocket connection rejected: invalid token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	if states != nil {
		_, active, err := states.AccountState(c.Request.Context(), p.ID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", p.ID).Debug("websocket connection rejected: unknown account")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if !active {
			logrus.WithField("user_id", p.ID).Debug("websocket connection rejected: inactive account")
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
	}

	conn, err := hub.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}
	client := &Client{Hub: hub, Conn: conn, UserID: p.ID, Send: make(chan []byte, sendBuffer)}
	select {
	case hub.register <- client:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}
