package chat_service

import (
	"context"

	"github.com/ToyoKou0322/my-sns-app/internal/dtos/chat_dto"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
)

type ChatServiceContract interface {
	ListMessages(ctx context.Context, roomID, userId string) (*chat_dto.ListMessagesResponse, *app_error.AppError)
	PostMessage(ctx context.Context, req chat_dto.PostMessageRequest, roomID, userId string) (*chat_dto.PostMessageResponse, *app_error.AppError)
	DeleteMessage(ctx context.Context, roomID, messageID, userId string) *app_error.AppError
	ToggleLike(ctx context.Context, messageID, userId string) (*chat_dto.ToggleLikeResponse, *app_error.AppError)
}
