package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/ToyoKou0322/my-sns-app/internal/websocket"
)

// WsRouter wires the live subscription endpoints. Auth happens inside the
// handshake because browsers cannot send headers with the upgrade request.
func WsRouter(r chi.Router, wsHandler *websocket.WebSocketHandler) {
	r.Get("/ws/rooms", wsHandler.ServeDirectory)
	r.Get("/ws/rooms/{roomId}", wsHandler.ServeRoom)
}
