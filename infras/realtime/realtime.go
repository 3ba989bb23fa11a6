package realtime

//go:generate go run go.uber.org/mock/mockgen -source=./realtime.go -destination=./mocks/realtime_mock.go -package=mocks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"roombook/config"
	"roombook/shared/constant"
)

// Hub fans JSON messages out to websocket clients subscribed to a topic.
type Hub interface {
	Serve(w http.ResponseWriter, r *http.Request, topic string) error
	Broadcast(topic string, payload any) error
	Subscribers(topic string) int
	Close()
}

type hubImpl struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	mu          sync.Mutex
	subscribers map[string][]*websocket.Conn
}

func New(cfg *config.Config) Hub {
	return &hubImpl{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.Realtime.ReadBufferSize,
			WriteBufferSize: cfg.Realtime.WriteBufferSize,
			CheckOrigin:     originChecker(cfg.App.CORS.AllowedOrigins),
		},
		writeTimeout: time.Duration(cfg.Realtime.WriteTimeoutSeconds) * time.Second,
		subscribers:  make(map[string][]*websocket.Conn),
	}
}

// originChecker allows any origin when none are configured or "*" is listed.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get(constant.RequestHeaderOrigin)
		if origin == "" || len(allowed) == 0 || slices.Contains(allowed, "*") {
			return true
		}

		return slices.Contains(allowed, origin)
	}
}

// Serve upgrades the request and blocks until the client disconnects.
func (h *hubImpl) Serve(w http.ResponseWriter, r *http.Request, topic string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}

	h.mu.Lock()
	h.subscribers[topic] = append(h.subscribers[topic], conn)
	h.mu.Unlock()

	log.Debug().Str("topic", topic).Msg("websocket client subscribed")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(topic, conn)

	return nil
}

func (h *hubImpl) remove(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := slices.DeleteFunc(h.subscribers[topic], func(c *websocket.Conn) bool { return c == conn })
	if len(conns) == 0 {
		delete(h.subscribers, topic)
	} else {
		h.subscribers[topic] = conns
	}

	conn.Close()
}

// Broadcast writes payload to every subscriber of topic and drops clients that fail to receive it.
func (h *hubImpl) Broadcast(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast payload: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	alive := h.subscribers[topic][:0]

	for _, conn := range h.subscribers[topic] {
		if h.writeTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		}

		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug().Err(err).Str("topic", topic).Msg("dropping websocket client")
			conn.Close()

			continue
		}

		alive = append(alive, conn)
	}

	if len(alive) == 0 {
		delete(h.subscribers, topic)
	} else {
		h.subscribers[topic] = alive
	}

	return nil
}

func (h *hubImpl) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subscribers[topic])
}

// Close disconnects every client.
func (h *hubImpl) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for topic, conns := range h.subscribers {
		for _, conn := range conns {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			conn.Close()
		}

		delete(h.subscribers, topic)
	}
}
