package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/ToyoKou0322/my-sns-app/internal/handlers"
	chat_handler "github.com/ToyoKou0322/my-sns-app/internal/handlers/chat-handler"
	"github.com/ToyoKou0322/my-sns-app/internal/middleware"
	"github.com/ToyoKou0322/my-sns-app/state"
)

func ChatRouter(r chi.Router, state *state.AppState) {
	chatHandler := chat_handler.NewChatHandler(state)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(state.JwtSecret.Public, state.Redis))

		r.Route("/api/v1/rooms/{roomId}/messages", func(r chi.Router) {
			r.Get("/", handlers.WrapHandler(chatHandler.ListMessages))
			r.Post("/", handlers.WrapHandler(chatHandler.PostMessage))
			r.Delete("/{messageId}", handlers.WrapHandler(chatHandler.DeleteMessage))
		})

		r.Post("/api/v1/messages/{messageId}/like", handlers.WrapHandler(chatHandler.ToggleLike))
	})
}
