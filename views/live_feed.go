package views

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sensor-recorder/models"
	"sensor-recorder/utils"
)

const writeWait = 2 * time.Second

// LiveFeed pushes LiveStatus updates to websocket subscribers. It is an
// http.Handler; mount it on the path live clients connect to.
type LiveFeed struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewLiveFeed() *LiveFeed {
	return &LiveFeed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the connection until the
// client goes away.
func (f *LiveFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.L().Warn("live feed upgrade: %v", err)
		return
	}

	f.mu.Lock()
	f.clients[conn] = struct{}{}
	f.mu.Unlock()
	utils.L().Debug("live feed client connected: %s", r.RemoteAddr)

	// Drain reads so close frames are processed.
	go func() {
		defer f.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends st to every client. Clients that fail the write are dropped.
// Only one goroutine may broadcast at a time.
func (f *LiveFeed) Broadcast(st models.LiveStatus) {
	f.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(f.clients))
	for c := range f.clients {
		conns = append(conns, c)
	}
	f.mu.Unlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteJSON(st); err != nil {
			f.drop(c)
		}
	}
}

// Clients returns the number of connected subscribers.
func (f *LiveFeed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every client.
func (f *LiveFeed) Close() {
	f.mu.Lock()
	conns := f.clients
	f.clients = make(map[*websocket.Conn]struct{})
	f.mu.Unlock()
	for c := range conns {
		c.Close()
	}
}

func (f *LiveFeed) drop(c *websocket.Conn) {
	f.mu.Lock()
	_, ok := f.clients[c]
	delete(f.clients, c)
	f.mu.Unlock()
	if ok {
		c.Close()
	}
}
