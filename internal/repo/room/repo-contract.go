package room_repo

import (
	"context"
	"time"

	"github.com/ToyoKou0322/my-sns-app/internal/entity"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
)

type RoomRepoContract interface {
	ListRooms(ctx context.Context) ([]entity.Room, *app_error.AppError)
	FindRoomByID(ctx context.Context, roomID string) (*entity.Room, *app_error.AppError)
	CreateRoom(ctx context.Context, room *entity.Room) (string, *app_error.AppError)
	DeleteRoom(ctx context.Context, roomID string) *app_error.AppError
	ToggleBookmark(ctx context.Context, roomID, uid string) (bool, *app_error.AppError)
	GetOrCreateDMRoom(ctx context.Context, uidA, uidB, createdBy string) (*entity.Room, *app_error.AppError)
	TouchLastPosted(ctx context.Context, roomID string, at time.Time) *app_error.AppError
}
