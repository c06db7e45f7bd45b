package server

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"crypto-arbitrage-dashboard/internal/arbitrage"
)

// Hub pushes each completed polling cycle to connected dashboard clients as
// a JSON array of asset boards.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]chan []byte
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]chan []byte),
		log:   log,
	}
}

// PublishCycle is the watcher's end-of-cycle hook.
func (h *Hub) PublishCycle(boards []arbitrage.AssetBoard) {
	payload, err := json.Marshal(boards)
	if err != nil {
		h.log.Error("Failed to marshal cycle broadcast: " + err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, updates := range h.conns {
		select {
		case updates <- payload:
		default:
			// Client is not keeping up; skip this update for it rather
			// than hold up the broadcast.
		}
	}
}

// Clients reports how many dashboard clients are connected.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Serve runs one websocket connection until the client disconnects or a
// write fails.
func (h *Hub) Serve(conn *websocket.Conn) {
	updates := make(chan []byte, 4)

	h.mu.Lock()
	h.conns[conn] = updates
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
	}()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case payload := <-updates:
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}
