package profile_repo

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
	databaseName       = "talkroom"
	profilesCollection = "profiles"
)

type ProfileRepo struct {
	AppState *state.AppState
}

func NewProfileRepo(appState *state.AppState) ProfileRepoContract {
	return &ProfileRepo{
		AppState: appState,
	}
}

func (r *ProfileRepo) collection() *mongo.Collection {
	return r.AppState.Mongo.Database(databaseName).Collection(profilesCollection)
}

// FindProfile returns nil without an error when no override document exists;
// a missing profile is the normal state for users who never edited theirs.
func (r *ProfileRepo) FindProfile(ctx context.Context, uid string) (*entity.Profile, *app_error.AppError) {
	var profile entity.Profile
	if err := r.collection().FindOne(ctx, bson.M{"_id": uid}).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch profile: %v", err), "mongo")
	}
	return &profile, nil
}

// UpsertProfile merges the provided fields into the override document. A nil
// field is left as-is, so updating the display name never clobbers the avatar
// and vice versa.
func (r *ProfileRepo) UpsertProfile(ctx context.Context, uid string, displayName, photoURL *string) *app_error.AppError {
	set := bson.M{"updatedAt": time.Now()}
	if displayName != nil {
		set["displayName"] = *displayName
	}
	if photoURL != nil {
		set["photoURL"] = *photoURL
	}

	_, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": set},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to upsert profile: %v", err), "mongo")
	}
	return nil
}
