package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// backlogSize caps events kept for a submission whose browser has not
	// connected yet.
	backlogSize = 8
)

// Logger defines minimal logging interface required by the hub.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

// TokenParser resolves a connection token to a submission id.
type TokenParser interface {
	Parse(token string) (string, error)
}

// Hub fans submission events out to the browser that created the submission.
type Hub struct {
	logger Logger
	tokens TokenParser

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	conns   map[string]*websocket.Conn
	locks   map[string]*sync.Mutex
	backlog map[string][][]byte
}

func NewHub(tokens TokenParser, logger Logger) *Hub {
	return &Hub{
		logger: logger,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns:   make(map[string]*websocket.Conn),
		locks:   make(map[string]*sync.Mutex),
		backlog: make(map[string][][]byte),
	}
}

// ServeWS authenticates the token query parameter and upgrades the request.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	id, err := h.tokens.Parse(token)
	if err != nil || id == "" {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.errorf("quote ws upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	if old, ok := h.conns[id]; ok {
		_ = old.Close()
	}
	h.conns[id] = conn
	connMu := &sync.Mutex{}
	h.locks[id] = connMu
	pending := h.backlog[id]
	delete(h.backlog, id)
	// Hold the write lock until the backlog is flushed so live events queue
	// behind it.
	connMu.Lock()
	h.mu.Unlock()

	h.infof("quote ws %s connected, %d buffered events", id, len(pending))

	var flushErr error
	for _, data := range pending {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if flushErr = conn.WriteMessage(websocket.TextMessage, data); flushErr != nil {
			break
		}
	}
	connMu.Unlock()
	if flushErr != nil {
		h.errorf("quote ws %s backlog flush failed: %v", id, flushErr)
		h.closeConn(id, conn)
		return
	}

	go h.pingLoop(id, conn)
	go h.readLoop(id, conn)
}

// Push sends payload to the submission's socket, or keeps it until the
// socket connects.
func (h *Hub) Push(id string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.errorf("quote ws marshal failed: %v", err)
		return
	}

	h.mu.Lock()
	if _, ok := h.conns[id]; !ok {
		q := append(h.backlog[id], data)
		if len(q) > backlogSize {
			q = q[len(q)-backlogSize:]
		}
		h.backlog[id] = q
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	h.write(id, data)
}

// Forget drops any buffered events for id.
func (h *Hub) Forget(id string) {
	h.mu.Lock()
	delete(h.backlog, id)
	h.mu.Unlock()
}

// Connected reports whether id has a live socket.
func (h *Hub) Connected(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[id]
	return ok
}

func (h *Hub) pingLoop(id string, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		h.mu.RLock()
		alive := h.conns[id] == conn
		h.mu.RUnlock()
		if !alive {
			return
		}
		h.safeWrite(id, func(c *websocket.Conn) error {
			return c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		})
	}
}

func (h *Hub) readLoop(id string, conn *websocket.Conn) {
	defer h.closeConn(id, conn)

	conn.SetReadLimit(4 << 10)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		if mt == websocket.TextMessage && strings.EqualFold(strings.TrimSpace(string(msg)), "ping") {
			h.write(id, []byte("pong"))
		}
	}
}

func (h *Hub) closeConn(id string, conn *websocket.Conn) {
	_ = conn.Close()
	h.mu.Lock()
	if current, ok := h.conns[id]; ok && current == conn {
		delete(h.conns, id)
		delete(h.locks, id)
	}
	h.mu.Unlock()
}

func (h *Hub) write(id string, data []byte) {
	h.safeWrite(id, func(conn *websocket.Conn) error {
		return conn.WriteMessage(websocket.TextMessage, data)
	})
}

func (h *Hub) safeWrite(id string, fn func(*websocket.Conn) error) {
	h.mu.RLock()
	conn := h.conns[id]
	mu := h.locks[id]
	h.mu.RUnlock()
	if conn == nil || mu == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := fn(conn); err != nil {
		h.errorf("quote ws %s write failed: %v", id, err)
		h.closeConn(id, conn)
	}
}

func (h *Hub) infof(format string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Infof(format, args...)
	}
}

func (h *Hub) errorf(format string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Errorf(format, args...)
	}
}
