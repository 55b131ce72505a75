package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/crazyeights/eights-server-go/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsMessage is the envelope for both directions of the socket.
type wsMessage struct {
	Type         string   `json:"type"`
	MatchID      string   `json:"matchId,omitempty"`
	Cards        []string `json:"cards,omitempty"`
	DeclaredSuit string   `json:"declaredSuit,omitempty"`
	Count        int      `json:"count,omitempty"`
	Data         any      `json:"data,omitempty"`
	Error        string   `json:"error,omitempty"`
	Reason       string   `json:"reason,omitempty"`
}

// Client is one websocket connection. The connection id is transport
// identity only; the session maps it to the stable player id.
type Client struct {
	connectionID string
	playerID     string
	matchID      string
	conn         *websocket.Conn
	send         chan []byte
}

// Hub tracks connected clients and fans match updates out to them.
type Hub struct {
	server     *Server
	logger     *zap.Logger
	register   chan *Client
	unregister chan *Client
	broadcast  chan matchUpdate
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*Client]bool
}

type matchUpdate struct {
	matchID string
	payload []byte
}

// NewHub creates a hub bound to the server's collaborators.
func NewHub(s *Server, logger *zap.Logger) *Hub {
	return &Hub{
		server:     s,
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan matchUpdate, 64),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("ws client registered",
				zap.String("connection_id", client.connectionID),
				zap.String("player_id", client.playerID),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case update := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if client.matchID != update.matchID {
					continue
				}
				select {
				case client.send <- update.payload:
				default:
					// Slow consumer; drop the update rather than
					// blocking every other table.
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) stop() {
	close(h.done)
}

// handleEvent pushes a fresh state view to a match's clients after any
// engine event. It runs on the engine goroutine, so it only queues.
func (h *Hub) handleEvent(event game.Event) {
	match, ok := h.server.matches.Get(event.MatchID)
	if !ok {
		return
	}

	// GetState would deadlock here: the emitting operation still holds
	// the match lock. Queue the snapshot work instead.
	go func() {
		view := h.server.stateView(match)
		payload, err := json.Marshal(wsMessage{Type: "state", MatchID: event.MatchID, Data: view})
		if err != nil {
			return
		}
		select {
		case h.broadcast <- matchUpdate{matchID: event.MatchID, payload: payload}:
		case <-h.done:
		}
	}()
}

// handleUpgrade upgrades the HTTP request to a websocket and binds the
// connection to the caller's session.
func (h *Hub) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	sess, ok := h.server.sessions.Get(sessionID)
	if !ok {
		http.Error(w, "session not found", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		connectionID: uuid.New().String(),
		playerID:     sess.PlayerID,
		matchID:      sess.MatchID,
		conn:         conn,
		send:         make(chan []byte, 16),
	}
	h.server.sessions.BindConnection(sess.ID, client.connectionID)
	if sess.MatchID != "" {
		if match, ok := h.server.matches.Get(sess.MatchID); ok {
			_ = match.SetConnected(sess.PlayerID, true)
		}
	}

	h.register <- client
	go client.writePump(h)
	go client.readPump(h)
}

func (c *Client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
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

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
		h.dropConnection(c)
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(wsMessage{Type: "error", Error: "malformed message"})
			continue
		}
		h.dispatch(c, msg)
	}
}

func (c *Client) reply(msg wsMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// dropConnection unbinds the transport connection and flags the player
// disconnected. The player's seat and hand are untouched; reconnection
// is just a new binding.
func (h *Hub) dropConnection(c *Client) {
	sess, ok := h.server.sessions.UnbindConnection(c.connectionID)
	if !ok {
		return
	}
	if sess.MatchID == "" {
		return
	}
	if match, found := h.server.matches.Get(sess.MatchID); found {
		_ = match.SetConnected(sess.PlayerID, false)
	}
}
