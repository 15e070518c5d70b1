package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	reloadPingInterval = 30 * time.Second
	reloadReadTimeout  = 60 * time.Second
	reloadWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 1024,
	// Only mounted in dev mode, on localhost.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ReloadMessage is the JSON frame sent to pages.
type ReloadMessage struct {
	Type string `json:"type"` // "connected" or "reload"
	Data any    `json:"data,omitempty"`
}

// ReloadHub pushes live-reload signals to open pages in dev mode.
// It carries template change notices only, never record data.
type ReloadHub struct {
	mu      sync.Mutex
	clients map[*reloadClient]struct{}
	closed  bool
	logger  *zap.Logger
}

// reloadClient is one open page. send is closed exactly once, by the hub.
type reloadClient struct {
	hub  *ReloadHub
	conn *websocket.Conn
	send chan []byte
}

// NewReloadHub creates an empty hub.
func NewReloadHub(logger *zap.Logger) *ReloadHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReloadHub{
		clients: make(map[*reloadClient]struct{}),
		logger:  logger,
	}
}

// OnFileChange implements ChangeSubscriber.
func (h *ReloadHub) OnFileChange(change FileChange) {
	data, err := json.Marshal(ReloadMessage{Type: "reload", Data: change})
	if err != nil {
		h.logger.Warn("failed to marshal reload message", zap.Error(err))
		return
	}
	h.broadcast(data)
}

// broadcast queues data for every page. A page whose queue is full already
// has a reload pending, so dropping the frame is harmless.
func (h *ReloadHub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *ReloadHub) add(c *reloadClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *ReloadHub) remove(c *reloadClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Close disconnects every page and refuses new ones.
func (h *ReloadHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// ClientCount returns the number of connected pages.
func (h *ReloadHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and registers the page.
func (h *ReloadHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &reloadClient{hub: h, conn: conn, send: make(chan []byte, 8)}
	if !h.add(c) {
		_ = conn.Close()
		return
	}
	if data, err := json.Marshal(ReloadMessage{Type: "connected"}); err == nil {
		c.send <- data
	}

	go c.writeLoop()
	go c.readLoop()
}

// readLoop only exists to notice disconnects and answer pongs.
func (c *reloadClient) readLoop() {
	defer c.hub.remove(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(reloadReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(reloadReadTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// writeLoop owns the connection and closes it on exit.
func (c *reloadClient) writeLoop() {
	ticker := time.NewTicker(reloadPingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(reloadWriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(reloadWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
