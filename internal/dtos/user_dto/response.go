package user_dto

import (
	"time"

	"github.com/ToyoKou0322/my-sns-app/internal/entity"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	Identity    entity.Identity `json:"identity"`
}
