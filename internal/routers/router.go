package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ToyoKou0322/my-sns-app/internal/middleware"
	"github.com/ToyoKou0322/my-sns-app/internal/preview"
	"github.com/ToyoKou0322/my-sns-app/internal/websocket"
	"github.com/ToyoKou0322/my-sns-app/state"
)

func NewRouter(state *state.AppState, wsHandler *websocket.WebSocketHandler, fetcher *preview.Fetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)
	r.Use(middleware.GetDeviceFingerprint)
	UserRouter(r, state)
	RoomRouter(r, state, fetcher)
	ChatRouter(r, state)
	WsRouter(r, wsHandler)
	return r
}
