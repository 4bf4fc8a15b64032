package push

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/websocket"
)

func TestWebsocketURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"http://localhost:8000", "ws://localhost:8000/ws"},
		{"https://erp.example.com/", "wss://erp.example.com/ws"},
	}
	for _, c := range cases {
		if got := WebsocketURL(c.base); got != c.want {
			t.Errorf("WebsocketURL(%q) = %q, want %q", c.base, got, c.want)
		}
	}
}

func TestListenerSubscribesAndDelivers(t *testing.T) {
	subs := make(chan subscribeMsg, 4)
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		for i := 0; i < 2; i++ {
			var msg subscribeMsg
			if err := websocket.JSON.Receive(conn, &msg); err != nil {
				t.Errorf("receive subscribe: %v", err)
				return
			}
			subs <- msg
		}
		if err := websocket.JSON.Send(conn, Event{Topic: TopicInvoicePaid, Name: "ACC-SINV-0042"}); err != nil {
			t.Errorf("send event: %v", err)
		}
		// Hold the connection open until the client goes away.
		io.Copy(io.Discard, conn)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.New(io.Discard)
	l := NewListener(srv.URL, logger, TopicNewInvoice, TopicInvoicePaid)
	go l.Run(ctx)

	topics := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case msg := <-subs:
			if msg.Type != "subscribe" {
				t.Errorf("subscribe frame type = %q", msg.Type)
			}
			topics[msg.Topic] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for subscribe frames")
		}
	}
	if !topics[TopicNewInvoice] || !topics[TopicInvoicePaid] {
		t.Errorf("subscribed topics = %v", topics)
	}

	select {
	case ev := <-l.Events():
		if ev.Topic != TopicConnected {
			t.Errorf("first event = %+v, want connected marker", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connected event")
	}

	select {
	case ev := <-l.Events():
		if ev.Topic != TopicInvoicePaid || ev.Name != "ACC-SINV-0042" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestListenerEmitsConnectedPerReconnect(t *testing.T) {
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		var msg subscribeMsg
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			return
		}
		// Drop the connection right after the subscription so the next
		// attempt has to reconnect.
		conn.Close()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewListener(srv.URL, log.New(io.Discard), TopicNewInvoice)
	go l.Run(ctx)

	// Each successful connect announces itself, so a backend that comes
	// back without sending any event still wakes the consumer.
	for i := 0; i < 2; i++ {
		select {
		case ev := <-l.Events():
			if ev.Topic != TopicConnected {
				t.Errorf("event %d = %+v, want connected marker", i, ev)
			}
		case <-time.After(reconnectDelay + 2*time.Second):
			t.Fatalf("connected event %d never arrived", i+1)
		}
	}
}

func TestListenerClosesEventsOnStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewListener("http://127.0.0.1:0", log.New(io.Discard), TopicNewInvoice)
	go l.Run(ctx)
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-l.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after Run stopped")
		}
	}
}

func TestListenerReconnects(t *testing.T) {
	connects := make(chan struct{}, 8)
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		connects <- struct{}{}
		// Drop the connection immediately to force a reconnect.
		conn.Close()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewListener(srv.URL, log.New(io.Discard), TopicNewInvoice)
	go l.Run(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-connects:
		case <-time.After(reconnectDelay + 2*time.Second):
			t.Fatalf("connection attempt %d never arrived", i+1)
		}
	}
}

func TestWebsocketURLNoTrailingSlashDoubling(t *testing.T) {
	if got := WebsocketURL("http://h/"); strings.Contains(got, "//ws") {
		t.Errorf("got %q", got)
	}
}
