package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MessageEvent is pushed to real-time subscribers for every logged message
type MessageEvent struct {
	Type           string    `json:"type"`
	ConversationID string    `json:"conversation_id"`
	Direction      string    `json:"direction"`
	MessageType    string    `json:"message_type"`
	Body           string    `json:"body"`
	At             time.Time `json:"at"`
}

// Notifier publishes message events to an external hub
type Notifier interface {
	Notify(ctx context.Context, ev MessageEvent) error
}

// NopNotifier drops every event
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, MessageEvent) error { return nil }

// WSNotifier pushes events over a WebSocket connection to the admin hub.
// The connection is opened on first use and reopened after a write fails.
type WSNotifier struct {
	url   string
	token string
	conn  *websocket.Conn
	mu    sync.Mutex
}

// NewWSNotifier creates a new hub client
func NewWSNotifier(url, token string) *WSNotifier {
	return &WSNotifier{url: url, token: token}
}

func (n *WSNotifier) connect(ctx context.Context) error {
	header := http.Header{}
	if n.token != "" {
		header.Set("Authorization", "Bearer "+n.token)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, n.url, header)
	if err != nil {
		return fmt.Errorf("connect to hub: %w", err)
	}

	n.conn = conn
	log.Printf("connected to realtime hub at %s", n.url)
	return nil
}

// Notify sends one event, reconnecting once if the connection went away
func (n *WSNotifier) Notify(ctx context.Context, ev MessageEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		if n.conn == nil {
			if err := n.connect(ctx); err != nil {
				return err
			}
		}
		n.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err = n.conn.WriteMessage(websocket.TextMessage, data); err == nil {
			return nil
		}
		n.conn.Close()
		n.conn = nil
	}
	return fmt.Errorf("write event: %w", err)
}

// Close closes the WebSocket connection.
func (n *WSNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn != nil {
		err := n.conn.Close()
		n.conn = nil
		return err
	}
	return nil
}
