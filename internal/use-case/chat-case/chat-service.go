package chat_service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ToyoKou0322/my-sns-app/internal/dtos/chat_dto"
	"github.com/ToyoKou0322/my-sns-app/internal/entity"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
	"github.com/ToyoKou0322/my-sns-app/internal/queue"
	"github.com/ToyoKou0322/my-sns-app/internal/realtime"
	message_repo "github.com/ToyoKou0322/my-sns-app/internal/repo/message"
	room_repo "github.com/ToyoKou0322/my-sns-app/internal/repo/room"
	user_service "github.com/ToyoKou0322/my-sns-app/internal/use-case/user-case"
	"github.com/ToyoKou0322/my-sns-app/internal/view"
	"github.com/ToyoKou0322/my-sns-app/state"
)

type ChatService struct {
	AppState    *state.AppState
	RoomRepo    room_repo.RoomRepoContract
	MessageRepo message_repo.MessageRepoContract
	Users       user_service.UserServiceContract
	Events      realtime.Publisher
	Jobs        queue.Producer
}

func NewChatService(appState *state.AppState) ChatServiceContract {
	return &ChatService{
		AppState:    appState,
		RoomRepo:    room_repo.NewRoomRepo(appState),
		MessageRepo: message_repo.NewMessageRepo(appState),
		Users:       user_service.NewUserService(appState),
		Events:      realtime.NewPublisher(appState.Redis),
		Jobs:        queue.NewProducer(appState.Redis),
	}
}

// DMNotifyPayload is the job body queued after a dm post so the recipient
// gets a mail nudge even when no device is connected.
type DMNotifyPayload struct {
	RoomID       string `json:"room_id"`
	SenderUID    string `json:"sender_uid"`
	SenderName   string `json:"sender_name"`
	RecipientUID string `json:"recipient_uid"`
	Preview      string `json:"preview"`
}

func (c *ChatService) ListMessages(ctx context.Context, roomID, userId string) (*chat_dto.ListMessagesResponse, *app_error.AppError) {
	room, err := c.roomForViewer(ctx, roomID, userId)
	if err != nil {
		return nil, err
	}

	messages, err := c.MessageRepo.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	views := make([]chat_dto.MessageView, 0, len(messages))
	for _, msg := range messages {
		likedByMe, likeCount := view.LikeState(&msg, userId)
		views = append(views, chat_dto.MessageView{
			ID:        msg.ID.Hex(),
			RoomID:    msg.RoomID,
			UID:       msg.UID,
			Author:    msg.Author,
			PhotoURL:  msg.PhotoURL,
			Text:      msg.Text,
			Type:      msg.Type,
			CreatedAt: msg.CreatedAt,
			LikedByMe: likedByMe,
			LikeCount: likeCount,
		})
	}

	return &chat_dto.ListMessagesResponse{
		RoomID:   room.ID,
		Messages: views,
	}, nil
}

func (c *ChatService) PostMessage(ctx context.Context, req chat_dto.PostMessageRequest, roomID, userId string) (*chat_dto.PostMessageResponse, *app_error.AppError) {
	room, err := c.roomForViewer(ctx, roomID, userId)
	if err != nil {
		return nil, err
	}

	msgType := req.Type
	if msgType == "" {
		msgType = entity.MessageTypeText
	}

	switch msgType {
	case entity.MessageTypeStamp:
		if !view.IsStamp(req.Text) {
			return nil, app_error.NewAppError(http.StatusBadRequest, "unknown stamp token", "text")
		}
	case entity.MessageTypeImage:
		if !strings.HasPrefix(req.Text, "data:image/") {
			return nil, app_error.NewAppError(http.StatusBadRequest, "image message must carry a data-uri", "text")
		}
	}

	identity, err := c.Users.ResolveIdentity(ctx, userId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	msg := &entity.Message{
		RoomID:    room.ID,
		UID:       userId,
		Author:    identity.DisplayName,
		PhotoURL:  identity.PhotoURL,
		Text:      req.Text,
		Type:      msgType,
		CreatedAt: now,
	}

	msgID, err := c.MessageRepo.InsertMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	// lastPostedAt drives unread badges, not the feed itself, so a failure
	// here must not fail the post
	if tErr := c.RoomRepo.TouchLastPosted(ctx, room.ID, now); tErr != nil {
		log.Warn().Str("room_id", room.ID).Str("error", tErr.Message).Msg("failed to touch lastPostedAt")
	}

	c.Events.PostsChanged(ctx, room.ID, realtime.KindInsert)
	c.Events.RoomsChanged(ctx, realtime.KindUpdate)

	if room.IsDM() {
		c.enqueueDMNotify(ctx, room, identity, req.Text, msgType)
	}

	return &chat_dto.PostMessageResponse{
		MessageID: msgID.Hex(),
		RoomID:    room.ID,
		Author:    msg.Author,
		Text:      msg.Text,
		Type:      msg.Type,
		CreatedAt: msg.CreatedAt,
	}, nil
}

func (c *ChatService) DeleteMessage(ctx context.Context, roomID, messageID, userId string) *app_error.AppError {
	msg, err := c.MessageRepo.FindMessageByID(ctx, messageID)
	if err != nil {
		return err
	}

	if msg.RoomID != roomID {
		return app_error.NewAppError(http.StatusNotFound, "message not found in this room", "message")
	}

	if msg.UID != userId {
		return app_error.NewAppError(http.StatusForbidden, "only the author can delete a message", "author")
	}

	if err := c.MessageRepo.DeleteMessage(ctx, messageID); err != nil {
		return err
	}

	c.Events.PostsChanged(ctx, roomID, realtime.KindDelete)
	return nil
}

func (c *ChatService) ToggleLike(ctx context.Context, messageID, userId string) (*chat_dto.ToggleLikeResponse, *app_error.AppError) {
	msg, err := c.MessageRepo.FindMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	liked, err := c.MessageRepo.ToggleLike(ctx, messageID, userId)
	if err != nil {
		return nil, err
	}

	c.Events.PostsChanged(ctx, msg.RoomID, realtime.KindUpdate)

	return &chat_dto.ToggleLikeResponse{
		MessageID: messageID,
		Liked:     liked,
	}, nil
}

// roomForViewer loads the room and enforces dm membership. Public rooms are
// open to everyone.
func (c *ChatService) roomForViewer(ctx context.Context, roomID, userId string) (*entity.Room, *app_error.AppError) {
	room, err := c.RoomRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if room.IsDM() && !room.HasMember(userId) {
		return nil, app_error.NewAppError(http.StatusForbidden, "not a member of this dm", "member")
	}

	return room, nil
}

func (c *ChatService) enqueueDMNotify(ctx context.Context, room *entity.Room, sender *entity.Identity, text, msgType string) {
	recipient := ""
	for _, m := range room.Members {
		if m != sender.UID {
			recipient = m
			break
		}
	}
	if recipient == "" {
		return
	}

	preview := text
	if msgType != entity.MessageTypeText {
		preview = msgType
	} else if runes := []rune(preview); len(runes) > 80 {
		// cut on a rune boundary, multi-byte text must stay valid utf-8
		preview = string(runes[:80])
	}

	now := time.Now()
	job := queue.Job{
		ID:   uuid.New().String(),
		Type: "dm_notify",
		Payload: queue.MustMarshal(DMNotifyPayload{
			RoomID:       room.ID,
			SenderUID:    sender.UID,
			SenderName:   sender.DisplayName,
			RecipientUID: recipient,
			Preview:      preview,
		}),
		Priority:  1,
		MaxRetry:  3,
		CreatedAt: now.Unix(),
		ExpireAt:  now.Add(10 * time.Minute).Unix(),
	}

	if err := c.Jobs.Enqueue(ctx, job); err != nil {
		log.Warn().Err(err).Str("room_id", room.ID).Msg("failed to enqueue dm notification")
	}
}
