package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocketHandler streams pipeline stage events and new-message
// notifications to connected clients
type WebSocketHandler struct {
	logger           arbor.ILogger
	clients          map[*websocket.Conn]bool
	clientMutex      map[*websocket.Conn]*sync.Mutex
	mu               sync.RWMutex
	events           interfaces.EventService
	stageThrottler   *rate.Limiter   // Shared limiter for stage event fan-out, not per client
	allowedEvents    map[string]bool // Whitelist of events to broadcast (empty = allow all)
	serverInstanceID string          // Clients use this to detect server restarts
}

// NewWebSocketHandler creates the handler and subscribes it to the
// event bus
func NewWebSocketHandler(eventService interfaces.EventService, config *common.WebSocketConfig, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]bool),
		clientMutex:      make(map[*websocket.Conn]*sync.Mutex),
		events:           eventService,
		allowedEvents:    make(map[string]bool),
		serverInstanceID: uuid.New().String(),
	}

	if config != nil {
		for _, eventType := range config.AllowedEvents {
			h.allowedEvents[eventType] = true
		}
		if config.ThrottleInterval != "" {
			if duration, err := time.ParseDuration(config.ThrottleInterval); err == nil {
				h.stageThrottler = rate.NewLimiter(rate.Every(duration), 1)
			} else {
				logger.Warn().
					Err(err).
					Str("interval", config.ThrottleInterval).
					Msg("Failed to parse throttle interval, throttling disabled")
			}
		}
	}

	if eventService != nil {
		h.subscribe()
	}

	return h
}

func (h *WebSocketHandler) subscribe() {
	_ = h.events.Subscribe(interfaces.EventPipelineStage, func(ctx context.Context, event interfaces.Event) error {
		// Stage events fire on every transition; throttle the fan-out
		// so slow clients don't see a burst per request
		if h.stageThrottler != nil && !h.stageThrottler.Allow() {
			if stage, ok := event.Payload.(interfaces.StageEvent); !ok || stage.Stage != interfaces.StageDone {
				return nil
			}
			// Terminal stage always goes out
		}
		h.broadcast(string(event.Type), event.Payload)
		return nil
	})
	_ = h.events.Subscribe(interfaces.EventMessageCreated, func(ctx context.Context, event interfaces.Event) error {
		h.broadcast(string(event.Type), event.Payload)
		return nil
	})
}

// HandleWebSocket handles GET /ws upgrade requests
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().
		Int("clients", clientCount).
		Msg("WebSocket client connected")

	// Tell the client which server instance it reached
	h.send(conn, map[string]interface{}{
		"type":               "hello",
		"server_instance_id": h.serverInstanceID,
	})

	// Reader loop exists only to detect disconnects; clients don't send
	go func() {
		defer h.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *WebSocketHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	delete(h.clientMutex, conn)
	clientCount := len(h.clients)
	h.mu.Unlock()

	_ = conn.Close()
	h.logger.Debug().
		Int("clients", clientCount).
		Msg("WebSocket client disconnected")
}

// broadcast sends an event to every connected client
func (h *WebSocketHandler) broadcast(eventType string, payload interface{}) {
	if len(h.allowedEvents) > 0 && !h.allowedEvents[eventType] {
		return
	}

	message := map[string]interface{}{
		"type":      eventType,
		"payload":   payload,
		"timestamp": time.Now().Format(time.RFC3339),
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		h.send(conn, message)
	}
}

// send writes a JSON message to one client, serialized per connection
func (h *WebSocketHandler) send(conn *websocket.Conn, message interface{}) {
	h.mu.RLock()
	mutex, ok := h.clientMutex[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal WebSocket message")
		return
	}

	mutex.Lock()
	defer mutex.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		go h.removeClient(conn)
	}
}
