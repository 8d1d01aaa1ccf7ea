package websocket

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: limit your cors, don't get true so easy in production
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	Hub            *Hub
	Authenticator  AuthenticatorFunc
	MaxConnections int
	Limiter        *IPRateLimiter
}

func NewWebSocketHandler(hub *Hub, auth AuthenticatorFunc, maxConnections int) *WebSocketHandler {
	return &WebSocketHandler{
		Hub:            hub,
		Authenticator:  auth,
		MaxConnections: maxConnections,
		Limiter:        NewIPRateLimiter(5, 10),
	}
}

// ServeDirectory subscribes the connection to room directory snapshots.
func (h *WebSocketHandler) ServeDirectory(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "directory")
}

// ServeRoom subscribes the connection to one room's message snapshots.
func (h *WebSocketHandler) ServeRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		http.Error(w, "room id is required", http.StatusBadRequest)
		return
	}
	h.serve(w, r, "room:"+roomID)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, scope string) {
	if h.Limiter != nil && !h.Limiter.Allow(r) {
		http.Error(w, "too many connection attempts", http.StatusTooManyRequests)
		return
	}

	userID, err := h.Authenticator(r)
	if err != nil {
		log.Warn().Err(err).Str("scope", scope).Msg("ws: authentication failed")
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if h.MaxConnections > 0 && h.Hub.CountClients() >= h.MaxConnections {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, upErr := upgrader.Upgrade(w, r, nil)
	if upErr != nil {
		log.Error().Err(upErr).Msg("ws: upgrade failed")
		return
	}

	client := NewClient(uuid.New().String(), userID, scope, conn, h.Hub)
	h.Hub.Register(client)
}
