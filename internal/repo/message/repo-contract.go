package message_repo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/ToyoKou0322/my-sns-app/internal/entity"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
)

type MessageRepoContract interface {
	ListByRoom(ctx context.Context, roomID string) ([]entity.Message, *app_error.AppError)
	FindMessageByID(ctx context.Context, messageID string) (*entity.Message, *app_error.AppError)
	InsertMessage(ctx context.Context, msg *entity.Message) (bson.ObjectID, *app_error.AppError)
	DeleteMessage(ctx context.Context, messageID string) *app_error.AppError
	ToggleLike(ctx context.Context, messageID, uid string) (bool, *app_error.AppError)
}
