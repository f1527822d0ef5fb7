// Package ws streams order lifecycle events to connected staff
// dashboards over WebSocket.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	// Origins are not restricted; the feed carries no credentials and
	// staff authorization happens before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type event struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	Time time.Time `json:"time"`
}

type client struct {
	conn *websocket.Conn
	send chan event
}

// Feed fans order events out to every connected client. Slow clients
// are dropped rather than allowed to stall the rest.
type Feed struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *logrus.Logger
}

func NewFeed(logger *logrus.Logger) *Feed {
	return &Feed{clients: make(map[*client]struct{}), logger: logger}
}

func (f *Feed) OrderCreated(o models.Order) {
	f.broadcast(event{Type: "order_created", Data: o, Time: time.Now().UTC()})
}

func (f *Feed) OrderStatusChanged(orderID int64, from, to models.Status) {
	f.broadcast(event{
		Type: "order_status_changed",
		Data: map[string]any{"order_id": orderID, "from": from, "to": to},
		Time: time.Now().UTC(),
	})
}

func (f *Feed) broadcast(e event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		select {
		case c.send <- e:
		default:
			delete(f.clients, c)
			close(c.send)
		}
	}
}

func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// ServeHTTP upgrades the connection and keeps it subscribed until the
// peer goes away.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan event, 64)}
	f.mu.Lock()
	f.clients[c] = struct{}{}
	n := len(f.clients)
	f.mu.Unlock()
	f.logger.WithField("clients", n).Info("Order feed client connected")

	go f.writePump(c)
	go f.readPump(c)
}

func (f *Feed) readPump(c *client) {
	defer f.drop(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case e, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				f.logger.WithError(err).Error("Failed to marshal feed event")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (f *Feed) drop(c *client) {
	f.mu.Lock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
	n := len(f.clients)
	f.mu.Unlock()
	c.conn.Close()
	f.logger.WithField("clients", n).Info("Order feed client disconnected")
}
