// Package messaging provides the concrete implementation of the live feed broadcaster.
package messaging

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/pkg/config"
	"github.com/gorilla/websocket"
)

var _ Broadcaster = (*LiveFeedBroadcaster)(nil)

// client wraps one WebSocket connection with a buffered outbound queue
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// LiveFeedBroadcaster manages tenant-scoped WebSocket connections.
// Events for one tenant are never delivered to another tenant's clients.
type LiveFeedBroadcaster struct {
	tenantClients map[string]map[*client]bool
	mu            sync.Mutex
	logger        *logging.ChanneledLogger
}

var (
	globalBroadcaster *LiveFeedBroadcaster
	once              sync.Once
)

// NewLiveFeedBroadcaster creates the singleton LiveFeedBroadcaster instance.
func NewLiveFeedBroadcaster(logger *logging.ChanneledLogger) *LiveFeedBroadcaster {
	once.Do(func() {
		globalBroadcaster = &LiveFeedBroadcaster{
			tenantClients: make(map[string]map[*client]bool),
			logger:        logger,
		}
	})
	return globalBroadcaster
}

// AddClient registers an upgraded WebSocket connection under a tenant and
// starts its write pump. The connection is closed when the tenant is at
// its client limit.
func (b *LiveFeedBroadcaster) AddClient(tenantID string, conn *websocket.Conn) error {
	b.mu.Lock()

	if b.tenantClients[tenantID] == nil {
		b.tenantClients[tenantID] = make(map[*client]bool)
	}
	if len(b.tenantClients[tenantID]) >= config.MaxLiveClientsPerTenant {
		b.mu.Unlock()
		conn.Close()
		return fmt.Errorf("live feed client limit reached for tenant %s", tenantID)
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, config.LiveFeedBufferSize),
	}
	b.tenantClients[tenantID][c] = true
	b.mu.Unlock()

	b.logger.LiveFeed().Debug("Live feed client registered", "tenantId", tenantID)

	go b.writePump(tenantID, c)
	go b.readPump(tenantID, c)
	return nil
}

// writePump drains the client's outbound queue onto the wire
func (b *LiveFeedBroadcaster) writePump(tenantID string, c *client) {
	defer b.removeClient(tenantID, c)

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(config.LiveFeedWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames and detects client disconnect.
// The live feed is one-way; clients only listen.
func (b *LiveFeedBroadcaster) readPump(tenantID string, c *client) {
	defer b.removeClient(tenantID, c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// removeClient unregisters a client and closes its connection
func (b *LiveFeedBroadcaster) removeClient(tenantID string, c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if clients, exists := b.tenantClients[tenantID]; exists {
		if _, registered := clients[c]; registered {
			delete(clients, c)
			close(c.send)
			c.conn.Close()
			b.logger.LiveFeed().Debug("Live feed client unregistered", "tenantId", tenantID)
		}
		if len(clients) == 0 {
			delete(b.tenantClients, tenantID)
		}
	}
}

// Broadcast pushes an event to every client of one tenant.
func (b *LiveFeedBroadcaster) Broadcast(tenantID string, event *LiveEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.LiveFeed().Error("Panic recovered in Broadcast", "error", r, "tenantId", tenantID)
		}
	}()

	event.TenantID = tenantID
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	message, err := json.Marshal(event)
	if err != nil {
		b.logger.LiveFeed().Error("Failed to encode live event", "error", err.Error(), "event", event.Event)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	clients, exists := b.tenantClients[tenantID]
	if !exists {
		return
	}

	for c := range clients {
		select {
		case c.send <- message:
		default:
			b.logger.LiveFeed().Warn("Live feed channel full, event dropped", "tenantId", tenantID, "event", event.Event)
		}
	}
}

// ConnectionCount returns the number of connected clients for a tenant.
func (b *LiveFeedBroadcaster) ConnectionCount(tenantID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.tenantClients[tenantID])
}
