package room_repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ToyoKou0322/my-sns-app/internal/entity"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
	"github.com/ToyoKou0322/my-sns-app/state"
)

const (
	databaseName    = "talkroom"
	roomsCollection = "rooms"
)

type RoomRepo struct {
	AppState *state.AppState
}

func NewRoomRepo(appState *state.AppState) RoomRepoContract {
	return &RoomRepo{
		AppState: appState,
	}
}

func (r *RoomRepo) collection() *mongo.Collection {
	return r.AppState.Mongo.Database(databaseName).Collection(roomsCollection)
}

// ListRooms returns the whole directory, newest room first.
func (r *RoomRepo) ListRooms(ctx context.Context) ([]entity.Room, *app_error.AppError) {
	cur, err := r.collection().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch rooms: %v", err), "mongo")
	}
	defer cur.Close(ctx)

	var rooms []entity.Room
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to decode rooms: %v", err), "mongo")
	}

	return rooms, nil
}

func (r *RoomRepo) FindRoomByID(ctx context.Context, roomID string) (*entity.Room, *app_error.AppError) {
	var room entity.Room
	if err := r.collection().FindOne(ctx, bson.M{"_id": roomID}).Decode(&room); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_error.NewAppError(http.StatusNotFound, "room not found", "not-found")
		}
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch room: %v", err), "mongo")
	}
	return &room, nil
}

func (r *RoomRepo) CreateRoom(ctx context.Context, room *entity.Room) (string, *app_error.AppError) {
	if room.ID == "" {
		room.ID = bson.NewObjectID().Hex()
	}
	if room.BookmarkedBy == nil {
		room.BookmarkedBy = []string{}
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}

	if _, err := r.collection().InsertOne(ctx, room); err != nil {
		return "", app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to create room: %v", err), "mongo")
	}

	return room.ID, nil
}

// DeleteRoom removes the room document only. Messages are left in place; the
// feed for a deleted room simply never gets subscribed again.
func (r *RoomRepo) DeleteRoom(ctx context.Context, roomID string) *app_error.AppError {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": roomID})
	if err != nil {
		return app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to delete room: %v", err), "mongo")
	}
	if result.DeletedCount == 0 {
		return app_error.NewAppError(http.StatusNotFound, "room not found or already deleted", "not-found")
	}
	return nil
}

// ToggleBookmark flips uid membership in bookmarkedBy and reports the new
// state. The read and the set mutation are two steps; racing toggles converge
// on whichever write lands last.
func (r *RoomRepo) ToggleBookmark(ctx context.Context, roomID, uid string) (bool, *app_error.AppError) {
	room, appErr := r.FindRoomByID(ctx, roomID)
	if appErr != nil {
		return false, appErr
	}

	var update bson.M
	bookmarked := !room.IsBookmarkedBy(uid)
	if bookmarked {
		update = bson.M{"$addToSet": bson.M{"bookmarkedBy": uid}}
	} else {
		update = bson.M{"$pull": bson.M{"bookmarkedBy": uid}}
	}

	if _, err := r.collection().UpdateOne(ctx, bson.M{"_id": roomID}, update); err != nil {
		return false, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to toggle bookmark: %v", err), "mongo")
	}

	return bookmarked, nil
}

// GetOrCreateDMRoom resolves the one dm room for a user pair. The upsert on
// the deterministic id makes concurrent initiations from both sides converge
// on a single document regardless of write order.
func (r *RoomRepo) GetOrCreateDMRoom(ctx context.Context, uidA, uidB, createdBy string) (*entity.Room, *app_error.AppError) {
	roomID := entity.DMRoomID(uidA, uidB)

	doc := bson.M{
		"title":        "",
		"createdBy":    createdBy,
		"type":         entity.RoomTypeDM,
		"members":      []string{uidA, uidB},
		"bookmarkedBy": []string{},
		"createdAt":    time.Now(),
	}

	_, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": roomID},
		bson.M{"$setOnInsert": doc},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		// a duplicate-key race against the concurrent initiator is fine, the
		// document exists either way
		if !mongo.IsDuplicateKeyError(err) {
			return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to upsert dm room: %v", err), "mongo")
		}
		log.Debug().Str("roomID", roomID).Msg("dm room upsert raced with concurrent initiator")
	}

	return r.FindRoomByID(ctx, roomID)
}

// TouchLastPosted is the best-effort second write after a message insert; the
// caller logs and moves on if it fails.
func (r *RoomRepo) TouchLastPosted(ctx context.Context, roomID string, at time.Time) *app_error.AppError {
	if _, err := r.collection().UpdateOne(ctx, bson.M{"_id": roomID}, bson.M{"$set": bson.M{"lastPostedAt": at}}); err != nil {
		return app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to update lastPostedAt: %v", err), "mongo")
	}
	return nil
}
