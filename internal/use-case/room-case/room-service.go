package room_service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ToyoKou0322/my-sns-app/internal/dtos/room_dto"
	"github.com/ToyoKou0322/my-sns-app/internal/entity"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
	"github.com/ToyoKou0322/my-sns-app/internal/readmarker"
	"github.com/ToyoKou0322/my-sns-app/internal/realtime"
	room_repo "github.com/ToyoKou0322/my-sns-app/internal/repo/room"
	user_service "github.com/ToyoKou0322/my-sns-app/internal/use-case/user-case"
	"github.com/ToyoKou0322/my-sns-app/internal/view"
	"github.com/ToyoKou0322/my-sns-app/state"
)

type RoomService struct {
	AppState *state.AppState
	RoomRepo room_repo.RoomRepoContract
	Users    user_service.UserServiceContract
	Markers  *readmarker.Store
	Events   realtime.Publisher
}

func NewRoomService(appState *state.AppState) RoomServiceContract {
	return &RoomService{
		AppState: appState,
		RoomRepo: room_repo.NewRoomRepo(appState),
		Users:    user_service.NewUserService(appState),
		Markers:  readmarker.NewStore(appState.Redis),
		Events:   realtime.NewPublisher(appState.Redis),
	}
}

// ListRooms returns the full directory split into tabs, with unread flags
// resolved against the device's read markers. DM rooms the viewer is not a
// member of are filtered out before anything else.
func (s *RoomService) ListRooms(ctx context.Context, userId, fingerprint, search string) (*room_dto.ListRoomsResponse, *app_error.AppError) {
	rooms, err := s.RoomRepo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]entity.Room, 0, len(rooms))
	for _, r := range rooms {
		if r.IsDM() && !r.HasMember(userId) {
			continue
		}
		visible = append(visible, r)
	}

	visible = view.FilterBySearch(visible, search)
	public, bookmarked, dm := view.Partition(visible, userId)

	ids := make([]string, 0, len(visible))
	for _, r := range visible {
		ids = append(ids, r.ID)
	}
	markers, mErr := s.Markers.GetAll(ctx, fingerprint, ids)
	if mErr != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, "failed to load read markers", "redis-markers")
	}

	return &room_dto.ListRoomsResponse{
		Public:     s.toSummaries(public, userId, markers),
		Bookmarked: s.toSummaries(bookmarked, userId, markers),
		DM:         s.toSummaries(dm, userId, markers),
	}, nil
}

func (s *RoomService) toSummaries(rooms []entity.Room, userId string, markers map[string]time.Time) []room_dto.RoomSummary {
	out := make([]room_dto.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, room_dto.RoomSummary{
			ID:           r.ID,
			Title:        r.Title,
			CreatedBy:    r.CreatedBy,
			OwnerID:      r.OwnerID,
			Type:         r.Type,
			Members:      r.Members,
			Bookmarked:   r.IsBookmarkedBy(userId),
			Unread:       view.IsUnread(&r, markers[r.ID]),
			LastPostedAt: r.LastPostedAt,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out
}

func (s *RoomService) CreateRoom(ctx context.Context, req room_dto.CreateRoomRequest, userId string) (*room_dto.CreateRoomResponse, *app_error.AppError) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, app_error.NewAppError(http.StatusBadRequest, "room title must not be empty", "title")
	}

	identity, err := s.Users.ResolveIdentity(ctx, userId)
	if err != nil {
		return nil, err
	}

	room := &entity.Room{
		Title:     title,
		CreatedBy: identity.DisplayName,
		OwnerID:   userId,
		Type:      entity.RoomTypePublic,
	}

	roomID, err := s.RoomRepo.CreateRoom(ctx, room)
	if err != nil {
		return nil, err
	}

	s.Events.RoomsChanged(ctx, realtime.KindInsert)

	return &room_dto.CreateRoomResponse{
		RoomID:    roomID,
		Title:     room.Title,
		CreatedBy: room.CreatedBy,
		CreatedAt: room.CreatedAt,
	}, nil
}

// DeleteRoom removes the directory entry only. Messages in the room are left
// behind as orphans; nothing reads them once the room is gone.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID, userId string) *app_error.AppError {
	room, err := s.RoomRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return err
	}

	if room.OwnerID != userId {
		return app_error.NewAppError(http.StatusForbidden, "only the room owner can delete it", "owner")
	}

	if err := s.RoomRepo.DeleteRoom(ctx, roomID); err != nil {
		return err
	}

	s.Events.RoomsChanged(ctx, realtime.KindDelete)
	return nil
}

func (s *RoomService) ToggleBookmark(ctx context.Context, roomID, userId string) (*room_dto.ToggleBookmarkResponse, *app_error.AppError) {
	bookmarked, err := s.RoomRepo.ToggleBookmark(ctx, roomID, userId)
	if err != nil {
		return nil, err
	}

	s.Events.RoomsChanged(ctx, realtime.KindUpdate)

	return &room_dto.ToggleBookmarkResponse{
		RoomID:     roomID,
		Bookmarked: bookmarked,
	}, nil
}

func (s *RoomService) OpenDM(ctx context.Context, userId, peerUID string) (*room_dto.DMRoomResponse, *app_error.AppError) {
	if userId == peerUID {
		return nil, app_error.NewAppError(http.StatusBadRequest, "cannot open a dm with yourself", "peer")
	}

	identity, err := s.Users.ResolveIdentity(ctx, userId)
	if err != nil {
		return nil, err
	}

	// make sure the peer actually exists before minting a room id
	if _, err := s.Users.ResolveIdentity(ctx, peerUID); err != nil {
		return nil, err
	}

	room, err := s.RoomRepo.GetOrCreateDMRoom(ctx, userId, peerUID, identity.DisplayName)
	if err != nil {
		return nil, err
	}

	s.Events.RoomsChanged(ctx, realtime.KindInsert)

	return &room_dto.DMRoomResponse{
		RoomID:  room.ID,
		Members: room.Members,
	}, nil
}

func (s *RoomService) MarkRead(ctx context.Context, roomID, fingerprint string) (*room_dto.MarkReadResponse, *app_error.AppError) {
	at, err := s.Markers.Record(ctx, fingerprint, roomID)
	if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, "failed to record read marker", "redis-markers")
	}

	return &room_dto.MarkReadResponse{
		RoomID: roomID,
		ReadAt: at,
	}, nil
}
