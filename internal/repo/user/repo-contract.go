package user_repo

import (
	"context"

	"github.com/ToyoKou0322/my-sns-app/internal/entity"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
)

type UserRepoContract interface {
	CountUser(ctx context.Context, filter entity.UserFilter) (int64, *app_error.AppError)
	SaveUser(ctx context.Context, model entity.User) *app_error.AppError
	FindUserByID(ctx context.Context, userId string) (*entity.User, *app_error.AppError)
	FindUserByCredential(ctx context.Context, username string) (*entity.User, *app_error.AppError)
}
