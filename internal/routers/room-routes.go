package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/ToyoKou0322/my-sns-app/internal/handlers"
	preview_handler "github.com/ToyoKou0322/my-sns-app/internal/handlers/preview-handler"
	room_handler "github.com/ToyoKou0322/my-sns-app/internal/handlers/room-handler"
	"github.com/ToyoKou0322/my-sns-app/internal/middleware"
	"github.com/ToyoKou0322/my-sns-app/internal/preview"
	"github.com/ToyoKou0322/my-sns-app/state"
)

func RoomRouter(r chi.Router, state *state.AppState, fetcher *preview.Fetcher) {
	roomHandler := room_handler.NewRoomHandler(state)
	previewHandler := preview_handler.NewPreviewHandler(fetcher)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(state.JwtSecret.Public, state.Redis))

		r.Route("/api/v1/rooms", func(r chi.Router) {
			r.Get("/", handlers.WrapHandler(roomHandler.ListRooms))
			r.Post("/", handlers.WrapHandler(roomHandler.CreateRoom))

			r.Route("/{roomId}", func(r chi.Router) {
				r.Delete("/", handlers.WrapHandler(roomHandler.DeleteRoom))
				r.Post("/bookmark", handlers.WrapHandler(roomHandler.ToggleBookmark))
				r.Post("/read", handlers.WrapHandler(roomHandler.MarkRead))
			})
		})

		r.Post("/api/v1/dm/{peerId}", handlers.WrapHandler(roomHandler.OpenDM))
		r.Get("/api/v1/preview", handlers.WrapHandler(previewHandler.GetPreview))
	})
}
