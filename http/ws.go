package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"firewatch/db"
	"firewatch/logger"
)

// riskHub pushes every served prediction to connected dashboard
// clients over websockets.
type riskHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte

	upgrader websocket.Upgrader
}

func newHub() *riskHub {
	return &riskHub{
		clients: make(map[*websocket.Conn]chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type riskEvent struct {
	Type       string        `json:"type"`
	Timestamp  time.Time     `json:"timestamp"`
	Prediction db.Prediction `json:"prediction"`
}

// BroadcastPrediction fans a prediction out to all clients. Clients
// that cannot keep up are dropped rather than blocking the handler.
func (h *riskHub) BroadcastPrediction(p db.Prediction) {
	event := riskEvent{Type: "prediction", Timestamp: time.Now().UTC(), Prediction: p}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.S().Warnf("risk event encode failed: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		select {
		case send <- payload:
		default:
			delete(h.clients, conn)
			close(send)
		}
	}
}

func (h *riskHub) register(conn *websocket.Conn) chan []byte {
	send := make(chan []byte, 16)
	h.mu.Lock()
	h.clients[conn] = send
	total := len(h.clients)
	h.mu.Unlock()
	logger.S().Infof("risk feed client connected (total: %d)", total)
	return send
}

func (h *riskHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	logger.S().Infof("risk feed client disconnected (total: %d)", total)
}

func handleRiskFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.S().Warnf("websocket upgrade failed: %v", err)
		return
	}
	send := hub.register(conn)

	// Writer: drains the send channel until the client goes away.
	go func() {
		for payload := range send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				break
			}
		}
		_ = conn.Close()
	}()

	// Reader: discard incoming frames, detect disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	hub.unregister(conn)
	_ = conn.Close()
}
