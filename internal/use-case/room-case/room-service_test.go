package room_service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ToyoKou0322/my-sns-app/internal/dtos/room_dto"
	"github.com/ToyoKou0322/my-sns-app/internal/dtos/user_dto"
	"github.com/ToyoKou0322/my-sns-app/internal/entity"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
	"github.com/ToyoKou0322/my-sns-app/internal/readmarker"
)

type fakeRoomRepo struct {
	rooms   []entity.Room
	deleted []string
}

func (f *fakeRoomRepo) ListRooms(ctx context.Context) ([]entity.Room, *app_error.AppError) {
	out := make([]entity.Room, len(f.rooms))
	copy(out, f.rooms)
	return out, nil
}

func (f *fakeRoomRepo) FindRoomByID(ctx context.Context, roomID string) (*entity.Room, *app_error.AppError) {
	for i := range f.rooms {
		if f.rooms[i].ID == roomID {
			return &f.rooms[i], nil
		}
	}
	return nil, app_error.NewAppError(http.StatusNotFound, "room not found", "room")
}

func (f *fakeRoomRepo) CreateRoom(ctx context.Context, room *entity.Room) (string, *app_error.AppError) {
	if room.ID == "" {
		room.ID = "generated"
	}
	room.CreatedAt = time.Now()
	f.rooms = append(f.rooms, *room)
	return room.ID, nil
}

func (f *fakeRoomRepo) DeleteRoom(ctx context.Context, roomID string) *app_error.AppError {
	f.deleted = append(f.deleted, roomID)
	return nil
}

func (f *fakeRoomRepo) ToggleBookmark(ctx context.Context, roomID, uid string) (bool, *app_error.AppError) {
	for i := range f.rooms {
		if f.rooms[i].ID != roomID {
			continue
		}
		if f.rooms[i].IsBookmarkedBy(uid) {
			out := f.rooms[i].BookmarkedBy[:0]
			for _, b := range f.rooms[i].BookmarkedBy {
				if b != uid {
					out = append(out, b)
				}
			}
			f.rooms[i].BookmarkedBy = out
			return false, nil
		}
		f.rooms[i].BookmarkedBy = append(f.rooms[i].BookmarkedBy, uid)
		return true, nil
	}
	return false, app_error.NewAppError(http.StatusNotFound, "room not found", "room")
}

func (f *fakeRoomRepo) GetOrCreateDMRoom(ctx context.Context, uidA, uidB, createdBy string) (*entity.Room, *app_error.AppError) {
	id := entity.DMRoomID(uidA, uidB)
	for i := range f.rooms {
		if f.rooms[i].ID == id {
			return &f.rooms[i], nil
		}
	}
	if uidB < uidA {
		uidA, uidB = uidB, uidA
	}
	room := entity.Room{ID: id, Type: entity.RoomTypeDM, Members: []string{uidA, uidB}, CreatedBy: createdBy}
	f.rooms = append(f.rooms, room)
	return &f.rooms[len(f.rooms)-1], nil
}

func (f *fakeRoomRepo) TouchLastPosted(ctx context.Context, roomID string, at time.Time) *app_error.AppError {
	return nil
}

type fakeUsers struct {
	known map[string]entity.Identity
}

func (f *fakeUsers) ResolveIdentity(ctx context.Context, userId string) (*entity.Identity, *app_error.AppError) {
	id, ok := f.known[userId]
	if !ok {
		return nil, app_error.NewAppError(http.StatusNotFound, "user not found", "user")
	}
	return &id, nil
}

func (f *fakeUsers) Register(ctx context.Context, req user_dto.CreateUserRequest) (*user_dto.UserResponse, *app_error.AppError) {
	return nil, nil
}

func (f *fakeUsers) Login(ctx context.Context, req user_dto.LoginRequest, fingerprint string) (*user_dto.LoginResponse, string, *app_error.AppError) {
	return nil, "", nil
}

func (f *fakeUsers) Refresh(ctx context.Context, refreshToken, fingerprint string) (*user_dto.LoginResponse, string, *app_error.AppError) {
	return nil, "", nil
}

func (f *fakeUsers) Logout(ctx context.Context, userId, fingerprint string) *app_error.AppError {
	return nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, req user_dto.UpdateProfileRequest, userId string) (*entity.Identity, *app_error.AppError) {
	return nil, nil
}

type fakePublisher struct {
	roomEvents []string
	postEvents []string
}

func (f *fakePublisher) RoomsChanged(ctx context.Context, kind string) {
	f.roomEvents = append(f.roomEvents, kind)
}

func (f *fakePublisher) PostsChanged(ctx context.Context, roomID, kind string) {
	f.postEvents = append(f.postEvents, roomID+":"+kind)
}

func newTestRoomService(t *testing.T, repo *fakeRoomRepo) (*RoomService, *fakePublisher) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	pub := &fakePublisher{}
	svc := &RoomService{
		RoomRepo: repo,
		Users: &fakeUsers{known: map[string]entity.Identity{
			"alice": {UID: "alice", DisplayName: "Alice"},
			"bob":   {UID: "bob", DisplayName: "Bob"},
		}},
		Markers: readmarker.NewStore(rdb),
		Events:  pub,
	}
	return svc, pub
}

func TestCreateRoomRejectsBlankTitle(t *testing.T) {
	svc, _ := newTestRoomService(t, &fakeRoomRepo{})

	_, err := svc.CreateRoom(context.Background(), room_dto.CreateRoomRequest{Title: "   "}, "alice")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadRequest, err.Code)
}

func TestCreateRoomSnapshotsCreatorName(t *testing.T) {
	repo := &fakeRoomRepo{}
	svc, pub := newTestRoomService(t, repo)

	resp, err := svc.CreateRoom(context.Background(), room_dto.CreateRoomRequest{Title: "  general  "}, "alice")
	require.Nil(t, err)
	assert.Equal(t, "general", resp.Title)
	assert.Equal(t, "Alice", resp.CreatedBy)
	assert.Equal(t, []string{"insert"}, pub.roomEvents)

	require.Len(t, repo.rooms, 1)
	assert.Equal(t, entity.RoomTypePublic, repo.rooms[0].Type)
	assert.Equal(t, "alice", repo.rooms[0].OwnerID)
}

func TestDeleteRoomOwnerOnly(t *testing.T) {
	repo := &fakeRoomRepo{rooms: []entity.Room{{ID: "r1", Title: "general", OwnerID: "alice", Type: entity.RoomTypePublic}}}
	svc, _ := newTestRoomService(t, repo)

	err := svc.DeleteRoom(context.Background(), "r1", "bob")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusForbidden, err.Code)
	assert.Empty(t, repo.deleted)

	err = svc.DeleteRoom(context.Background(), "r1", "alice")
	require.Nil(t, err)
	assert.Equal(t, []string{"r1"}, repo.deleted)
}

func TestOpenDMSelfRejected(t *testing.T) {
	svc, _ := newTestRoomService(t, &fakeRoomRepo{})

	_, err := svc.OpenDM(context.Background(), "alice", "alice")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadRequest, err.Code)
}

func TestOpenDMUnknownPeerRejected(t *testing.T) {
	svc, _ := newTestRoomService(t, &fakeRoomRepo{})

	_, err := svc.OpenDM(context.Background(), "alice", "ghost")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.Code)
}

func TestOpenDMIsDeterministic(t *testing.T) {
	repo := &fakeRoomRepo{}
	svc, _ := newTestRoomService(t, repo)

	first, err := svc.OpenDM(context.Background(), "alice", "bob")
	require.Nil(t, err)

	second, err := svc.OpenDM(context.Background(), "bob", "alice")
	require.Nil(t, err)

	assert.Equal(t, first.RoomID, second.RoomID)
	assert.Equal(t, entity.DMRoomID("alice", "bob"), first.RoomID)
	assert.Len(t, repo.rooms, 1)
}

func TestListRoomsPartitionsAndHidesForeignDMs(t *testing.T) {
	now := time.Now()
	repo := &fakeRoomRepo{rooms: []entity.Room{
		{ID: "r1", Title: "general", Type: entity.RoomTypePublic, LastPostedAt: &now},
		{ID: "r2", Title: "random", Type: entity.RoomTypePublic, BookmarkedBy: []string{"alice"}},
		{ID: entity.DMRoomID("alice", "bob"), Title: "", Type: entity.RoomTypeDM, Members: []string{"alice", "bob"}},
		{ID: entity.DMRoomID("bob", "carol"), Title: "", Type: entity.RoomTypeDM, Members: []string{"bob", "carol"}},
	}}
	svc, _ := newTestRoomService(t, repo)

	resp, err := svc.ListRooms(context.Background(), "alice", "device-1", "")
	require.Nil(t, err)

	require.Len(t, resp.Public, 1)
	assert.Equal(t, "r1", resp.Public[0].ID)
	require.Len(t, resp.Bookmarked, 1)
	assert.Equal(t, "r2", resp.Bookmarked[0].ID)
	require.Len(t, resp.DM, 1)
	assert.Equal(t, entity.DMRoomID("alice", "bob"), resp.DM[0].ID)

	// r1 posted and this device never opened it
	assert.True(t, resp.Public[0].Unread)
	// r2 never had a post at all
	assert.False(t, resp.Bookmarked[0].Unread)
}

func TestListRoomsUnreadClearsAfterMarkRead(t *testing.T) {
	now := time.Now()
	repo := &fakeRoomRepo{rooms: []entity.Room{
		{ID: "r1", Title: "general", Type: entity.RoomTypePublic, LastPostedAt: &now},
	}}
	svc, _ := newTestRoomService(t, repo)

	resp, err := svc.ListRooms(context.Background(), "alice", "device-1", "")
	require.Nil(t, err)
	assert.True(t, resp.Public[0].Unread)

	_, err = svc.MarkRead(context.Background(), "r1", "device-1")
	require.Nil(t, err)

	resp, err = svc.ListRooms(context.Background(), "alice", "device-1", "")
	require.Nil(t, err)
	assert.False(t, resp.Public[0].Unread)

	// markers are per device, another device still sees it unread
	resp, err = svc.ListRooms(context.Background(), "alice", "device-2", "")
	require.Nil(t, err)
	assert.True(t, resp.Public[0].Unread)
}

func TestListRoomsSearchFiltersByTitle(t *testing.T) {
	repo := &fakeRoomRepo{rooms: []entity.Room{
		{ID: "r1", Title: "general", Type: entity.RoomTypePublic},
		{ID: "r2", Title: "Gentle Talk", Type: entity.RoomTypePublic},
		{ID: "r3", Title: "random", Type: entity.RoomTypePublic},
	}}
	svc, _ := newTestRoomService(t, repo)

	resp, err := svc.ListRooms(context.Background(), "alice", "device-1", "gen")
	require.Nil(t, err)
	require.Len(t, resp.Public, 2)
}

func TestToggleBookmarkPublishesUpdate(t *testing.T) {
	repo := &fakeRoomRepo{rooms: []entity.Room{{ID: "r1", Title: "general", Type: entity.RoomTypePublic}}}
	svc, pub := newTestRoomService(t, repo)

	resp, err := svc.ToggleBookmark(context.Background(), "r1", "alice")
	require.Nil(t, err)
	assert.True(t, resp.Bookmarked)

	resp, err = svc.ToggleBookmark(context.Background(), "r1", "alice")
	require.Nil(t, err)
	assert.False(t, resp.Bookmarked)

	assert.Equal(t, []string{"update", "update"}, pub.roomEvents)
}
