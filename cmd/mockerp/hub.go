package main

import (
	"encoding/json"
	"io"
	"log"
	"sync"

	"golang.org/x/net/websocket"
)

// hub fans push events out to websocket clients by subscribed topic.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]map[string]bool
}

type subscribeMsg struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

type pushEvent struct {
	Topic string `json:"topic"`
	Name  string `json:"name,omitempty"`
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]map[string]bool)}
}

// serve handles one websocket client: it reads subscribe frames until the
// connection drops.
func (h *hub) serve(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = make(map[string]bool)
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		var msg subscribeMsg
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			if err != io.EOF {
				log.Printf("websocket read: %v", err)
			}
			return
		}
		if msg.Type == "subscribe" && msg.Topic != "" {
			h.mu.Lock()
			h.clients[conn][msg.Topic] = true
			h.mu.Unlock()
		}
	}
}

// broadcast sends the event to every client subscribed to the topic.
func (h *hub) broadcast(topic, name string) {
	payload, err := json.Marshal(pushEvent{Topic: topic, Name: name})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, topics := range h.clients {
		if topics[topic] {
			if _, err := conn.Write(payload); err != nil {
				log.Printf("websocket write: %v", err)
			}
		}
	}
}
