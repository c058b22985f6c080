package services

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 512
)

// WebSocketSubscriber adapts a websocket connection to Subscriber.
// gorilla connections allow one concurrent writer, so every write holds mu.
type WebSocketSubscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewWebSocketSubscriber(conn *websocket.Conn) *WebSocketSubscriber {
	return &WebSocketSubscriber{conn: conn}
}

func (s *WebSocketSubscriber) Send(event HubEvent) error {
	return s.WriteJSON(event)
}

func (s *WebSocketSubscriber) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(v)
}

func (s *WebSocketSubscriber) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(WriteWait))
}

func (s *WebSocketSubscriber) Close() error {
	return s.conn.Close()
}
