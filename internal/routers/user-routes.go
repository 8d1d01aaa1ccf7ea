package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/ToyoKou0322/my-sns-app/internal/handlers"
	user_handler "github.com/ToyoKou0322/my-sns-app/internal/handlers/user-handler"
	"github.com/ToyoKou0322/my-sns-app/internal/middleware"
	"github.com/ToyoKou0322/my-sns-app/state"
)

func UserRouter(r chi.Router, state *state.AppState) {
	userHandler := user_handler.NewUserHandler(state)

	r.Post("/api/v1/users", handlers.WrapHandler(userHandler.CreateUser))
	r.Post("/api/v1/auth/login", handlers.WrapHandler(userHandler.LoginUser))
	r.Post("/api/v1/auth/refresh", handlers.WrapHandler(userHandler.RefreshToken))

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(state.JwtSecret.Public, state.Redis))
		r.Post("/api/v1/auth/logout", handlers.WrapHandler(userHandler.LogoutUser))
		r.Get("/api/v1/me", handlers.WrapHandler(userHandler.GetMe))
		r.Patch("/api/v1/me/profile", handlers.WrapHandler(userHandler.UpdateProfile))
	})
}
