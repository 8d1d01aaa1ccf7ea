package room_service

import (
	"context"

	"github.com/ToyoKou0322/my-sns-app/internal/dtos/room_dto"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
)

type RoomServiceContract interface {
	ListRooms(ctx context.Context, userId, fingerprint, search string) (*room_dto.ListRoomsResponse, *app_error.AppError)
	CreateRoom(ctx context.Context, req room_dto.CreateRoomRequest, userId string) (*room_dto.CreateRoomResponse, *app_error.AppError)
	DeleteRoom(ctx context.Context, roomID, userId string) *app_error.AppError
	ToggleBookmark(ctx context.Context, roomID, userId string) (*room_dto.ToggleBookmarkResponse, *app_error.AppError)
	OpenDM(ctx context.Context, userId, peerUID string) (*room_dto.DMRoomResponse, *app_error.AppError)
	MarkRead(ctx context.Context, roomID, fingerprint string) (*room_dto.MarkReadResponse, *app_error.AppError)
}
