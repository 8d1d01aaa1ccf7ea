package message_repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ToyoKou0322/my-sns-app/internal/entity"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
	"github.com/ToyoKou0322/my-sns-app/state"
)

const (
	databaseName    = "talkroom"
	postsCollection = "posts"
)

type MessageRepo struct {
	AppState *state.AppState
}

func NewMessageRepo(appState *state.AppState) MessageRepoContract {
	return &MessageRepo{
		AppState: appState,
	}
}

func (r *MessageRepo) collection() *mongo.Collection {
	return r.AppState.Mongo.Database(databaseName).Collection(postsCollection)
}

// ListByRoom returns the room's feed oldest-first. _id is the secondary sort
// key: ObjectIDs carry insertion order, which breaks ties between messages
// stamped within the same clock tick.
func (r *MessageRepo) ListByRoom(ctx context.Context, roomID string) ([]entity.Message, *app_error.AppError) {
	cur, err := r.collection().Find(ctx,
		bson.M{"roomId": roomID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch messages: %v", err), "mongo")
	}
	defer cur.Close(ctx)

	var messages []entity.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to decode messages: %v", err), "mongo")
	}

	return messages, nil
}

func (r *MessageRepo) FindMessageByID(ctx context.Context, messageID string) (*entity.Message, *app_error.AppError) {
	objID, err := bson.ObjectIDFromHex(messageID)
	if err != nil {
		return nil, app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("invalid message ID: %v", err), "invalid-id")
	}

	var message entity.Message
	if err := r.collection().FindOne(ctx, bson.M{"_id": objID}).Decode(&message); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_error.NewAppError(http.StatusNotFound, "message not found or has been deleted", "not-found")
		}
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch message: %v", err), "mongo")
	}

	return &message, nil
}

func (r *MessageRepo) InsertMessage(ctx context.Context, msg *entity.Message) (bson.ObjectID, *app_error.AppError) {
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}
	if msg.LikedBy == nil {
		msg.LikedBy = []string{}
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	if _, err := r.collection().InsertOne(ctx, msg); err != nil {
		return bson.NilObjectID, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to create message: %v", err), "mongo")
	}
	return msg.ID, nil
}

func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID string) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(messageID)
	if err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("invalid message ID: %v", err), "invalid-id")
	}

	result, delErr := r.collection().DeleteOne(ctx, bson.M{"_id": objID})
	if delErr != nil {
		return app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to delete message: %v", delErr), "mongo")
	}
	if result.DeletedCount == 0 {
		return app_error.NewAppError(http.StatusNotFound, "message not found or already deleted", "not-found")
	}
	return nil
}

// ToggleLike flips uid membership in likedBy and reports the new state. Each
// user only ever touches their own membership, so concurrent toggles by
// different users cannot interfere; $addToSet keeps the set idempotent when a
// double-click fires the same add twice. Legacy counter-only messages gain a
// likedBy set on their first toggle, the old counter is left untouched.
func (r *MessageRepo) ToggleLike(ctx context.Context, messageID, uid string) (bool, *app_error.AppError) {
	msg, appErr := r.FindMessageByID(ctx, messageID)
	if appErr != nil {
		return false, appErr
	}

	var update bson.M
	liked := !msg.IsLikedBy(uid)
	if liked {
		update = bson.M{"$addToSet": bson.M{"likedBy": uid}}
	} else {
		update = bson.M{"$pull": bson.M{"likedBy": uid}}
	}

	if _, err := r.collection().UpdateOne(ctx, bson.M{"_id": msg.ID}, update); err != nil {
		return false, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to toggle like: %v", err), "mongo")
	}

	return liked, nil
}
