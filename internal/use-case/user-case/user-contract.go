package user_service

import (
	"context"

	"github.com/ToyoKou0322/my-sns-app/internal/dtos/user_dto"
	"github.com/ToyoKou0322/my-sns-app/internal/entity"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
)

type UserServiceContract interface {
	Register(ctx context.Context, req user_dto.CreateUserRequest) (*user_dto.UserResponse, *app_error.AppError)
	// Login returns the response body plus the refresh token, which the
	// handler sets as an http-only cookie rather than exposing in json.
	Login(ctx context.Context, req user_dto.LoginRequest, fingerprint string) (*user_dto.LoginResponse, string, *app_error.AppError)
	// Refresh trades a valid refresh token for a new token pair, rotating the
	// session's jti.
	Refresh(ctx context.Context, refreshToken, fingerprint string) (*user_dto.LoginResponse, string, *app_error.AppError)
	Logout(ctx context.Context, userId, fingerprint string) *app_error.AppError
	UpdateProfile(ctx context.Context, req user_dto.UpdateProfileRequest, userId string) (*entity.Identity, *app_error.AppError)
	ResolveIdentity(ctx context.Context, userId string) (*entity.Identity, *app_error.AppError)
}
