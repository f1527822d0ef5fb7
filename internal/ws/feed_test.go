package ws

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

func newTestFeed() *Feed {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewFeed(logger)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestFeedBroadcastsOrderCreated(t *testing.T) {
	feed := newTestFeed()
	srv := httptest.NewServer(feed)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	waitForClients(t, feed, 1)
	feed.OrderCreated(models.Order{
		ID:          7,
		CustomerID:  1,
		Status:      models.StatusProcessing,
		TotalAmount: decimal.RequireFromString("250.00"),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var e struct {
		Type string `json:"type"`
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Type != "order_created" {
		t.Errorf("expected order_created, got %q", e.Type)
	}
	if e.Data.ID != 7 {
		t.Errorf("expected order id 7, got %d", e.Data.ID)
	}
}

func TestFeedBroadcastsStatusChange(t *testing.T) {
	feed := newTestFeed()
	srv := httptest.NewServer(feed)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	waitForClients(t, feed, 1)
	feed.OrderStatusChanged(3, models.StatusProcessing, models.StatusCompleted)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var e struct {
		Type string `json:"type"`
		Data struct {
			OrderID int64  `json:"order_id"`
			From    string `json:"from"`
			To      string `json:"to"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Type != "order_status_changed" {
		t.Errorf("expected order_status_changed, got %q", e.Type)
	}
	if e.Data.From != "processing" || e.Data.To != "completed" {
		t.Errorf("unexpected transition %s->%s", e.Data.From, e.Data.To)
	}
}

func TestFeedDropsDisconnectedClient(t *testing.T) {
	feed := newTestFeed()
	srv := httptest.NewServer(feed)
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, feed, 1)
	conn.Close()
	waitForClients(t, feed, 0)
}

func waitForClients(t *testing.T, feed *Feed, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if feed.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d connected clients, got %d", want, feed.ClientCount())
}
