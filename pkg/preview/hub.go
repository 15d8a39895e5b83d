package preview

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is one rendered state of the document.
type Snapshot struct {
	Revision uint64 `msgpack:"revision" json:"revision"`
	HTML     string `msgpack:"html" json:"html"`
}

// Encode returns the msgpack encoding of s.
func (s Snapshot) Encode() ([]byte, error) {
	return msgpack.Marshal(s)
}

// DecodeSnapshot decodes a msgpack snapshot message.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	err := msgpack.Unmarshal(data, &s)
	return s, err
}

// client serializes writes to one connection; gorilla connections allow a
// single concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Hub manages websocket clients of the snapshot stream.
type Hub struct {
	clients  map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// current returns the snapshot sent to a client when it connects.
	current func() (Snapshot, bool)
}

// NewHub creates a hub. current may be nil.
func NewHub(logger *slog.Logger, current func() (Snapshot, bool)) *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // preview is a development server
			},
		},
		logger:  logger,
		current: current,
	}
}

// ServeHTTP upgrades the connection, sends the current snapshot and keeps
// the client registered until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.logger.Debug("preview client connected", "remote", req.RemoteAddr)

	if h.current != nil {
		if snap, ok := h.current(); ok {
			if data, err := snap.Encode(); err == nil {
				c.send(data)
			}
		}
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("preview client read failed", "error", err)
			}
			break
		}
	}

	h.remove(c)
}

// Broadcast sends snap to every client. Clients that fail to receive it are
// dropped.
func (h *Hub) Broadcast(snap Snapshot) {
	data, err := snap.Encode()
	if err != nil {
		h.logger.Error("encode snapshot", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			h.remove(c)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}
