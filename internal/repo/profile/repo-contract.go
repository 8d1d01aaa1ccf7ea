package profile_repo

import (
	"context"

	"github.com/ToyoKou0322/my-sns-app/internal/entity"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
)

type ProfileRepoContract interface {
	FindProfile(ctx context.Context, uid string) (*entity.Profile, *app_error.AppError)
	UpsertProfile(ctx context.Context, uid string, displayName, photoURL *string) *app_error.AppError
}
