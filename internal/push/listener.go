// Package push consumes the backend's realtime event channel. Any event on
// a subscribed topic should trigger a full re-fetch by the owning screen;
// events carry no patch data.
package push

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/websocket"
)

// Topics the POS client subscribes to.
const (
	TopicNewInvoice  = "jarz_pos_new_invoice"
	TopicInvoicePaid = "jarz_pos_invoice_paid"
)

// TopicConnected is a synthetic local event, delivered after every
// successful connect and subscribe. It marks connectivity (re)established,
// so consumers can flush offline work and re-fetch stale views.
const TopicConnected = "connected"

// reconnectDelay is the fixed pause between connection attempts.
const reconnectDelay = 3 * time.Second

// Event is one message from the push channel.
type Event struct {
	Topic string `json:"topic"`
	Name  string `json:"name,omitempty"`
}

// subscribeMsg is the frame sent to register interest in a topic.
type subscribeMsg struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

// Listener is a long-lived subscription to the push channel. It lives for
// the lifetime of its owning screen and is torn down by cancelling the
// context passed to Run.
type Listener struct {
	wsURL  string
	origin string
	topics []string
	logger *log.Logger
	events chan Event
}

// NewListener creates a listener against the backend base URL for the given
// topics.
func NewListener(baseURL string, logger *log.Logger, topics ...string) *Listener {
	return &Listener{
		wsURL:  WebsocketURL(baseURL),
		origin: baseURL,
		topics: topics,
		logger: logger,
		events: make(chan Event, 16),
	}
}

// WebsocketURL derives the push endpoint from the backend base URL.
func WebsocketURL(baseURL string) string {
	ws := baseURL
	ws = strings.Replace(ws, "https://", "wss://", 1)
	ws = strings.Replace(ws, "http://", "ws://", 1)
	return strings.TrimSuffix(ws, "/") + "/ws"
}

// Events returns the channel on which push events are delivered.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Run connects and consumes events until ctx is cancelled, reconnecting
// with a fixed delay after any failure. The events channel is closed on
// return so receivers unblock at teardown.
func (l *Listener) Run(ctx context.Context) {
	defer close(l.events)
	for {
		if err := l.consume(ctx); err != nil && ctx.Err() == nil {
			l.logger.Warn("push channel disconnected", "err", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) consume(ctx context.Context) error {
	conn, err := websocket.Dial(l.wsURL, "", l.origin)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Close the socket when the context ends so the blocked read returns.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for _, topic := range l.topics {
		if err := websocket.JSON.Send(conn, subscribeMsg{Type: "subscribe", Topic: topic}); err != nil {
			return err
		}
	}
	l.logger.Debug("push channel subscribed", "topics", strings.Join(l.topics, ","))

	// Announce the (re)established connection so queued offline work gets
	// flushed even when no server event ever arrives.
	select {
	case l.events <- Event{Topic: TopicConnected}:
	case <-ctx.Done():
		return ctx.Err()
	}

	for {
		var ev Event
		if err := websocket.JSON.Receive(conn, &ev); err != nil {
			return err
		}
		select {
		case l.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
