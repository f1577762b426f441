package observer

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	writeTimeout = 5 * time.Second
	maxSends     = 32
)

// Event is the JSON frame a Broadcaster sends for each update.
type Event struct {
	Source  string    `json:"source"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Broadcaster is an Observer that forwards every update to the websocket
// clients connected through its ServeHTTP.
type Broadcaster struct {
	name     string
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla allows one concurrent writer
}

func NewBroadcaster(name string) *Broadcaster {
	return &Broadcaster{
		name:     name,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		clients:  make(map[*client]struct{}),
	}
}

func (b *Broadcaster) Name() string { return b.name }

// Len is the number of connected clients.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warn("websocket upgrade failed", "broadcaster", b.name, "error", err)
		return
	}
	c := &client{conn: conn}

	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
	Log.Info("client connected", "broadcaster", b.name, "remote", r.RemoteAddr)

	// clients only listen; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	b.drop(c)
}

// Update sends message to all clients in parallel. Clients that fail to
// accept it are disconnected.
func (b *Broadcaster) Update(message string) {
	evt := Event{Source: b.name, Message: message, Time: time.Now().UTC()}

	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	var g errgroup.Group
	g.SetLimit(maxSends)
	for _, c := range clients {
		g.Go(func() error {
			if err := c.send(evt); err != nil {
				Log.Warn("dropping client", "broadcaster", b.name, "error", err)
				b.drop(c)
			}
			return nil
		})
	}
	g.Wait()
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	clients := b.clients
	b.clients = make(map[*client]struct{})
	b.mu.Unlock()
	for c := range clients {
		c.close()
	}
}

func (b *Broadcaster) drop(c *client) {
	b.mu.Lock()
	_, ok := b.clients[c]
	delete(b.clients, c)
	b.mu.Unlock()
	if ok {
		c.close()
	}
}

func (c *client) send(evt Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(evt)
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.conn.Close()
}
