package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestMessageIDMarshalsAsCanonicalObjectID(t *testing.T) {
	id := bson.NewObjectID()
	raw, err := bson.Marshal(Message{ID: id, RoomID: "r1", UID: "alice", Text: "hi"})
	require.NoError(t, err)

	// _id must be a real ObjectID on the wire, not a binary blob, or any
	// other mongo client reading the collection sees garbage
	val := bson.Raw(raw).Lookup("_id")
	assert.Equal(t, bson.TypeObjectID, val.Type)
	assert.Equal(t, id, val.ObjectID())
}

func TestMessageDecodesDocumentWithObjectIDKey(t *testing.T) {
	id := bson.NewObjectID()
	raw, err := bson.Marshal(bson.M{
		"_id":    id,
		"roomId": "r1",
		"uid":    "alice",
		"text":   "legacy row",
		"likes":  int64(3),
	})
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, id, decoded.ID)
	assert.Equal(t, int64(3), decoded.Likes)
	assert.Nil(t, decoded.LikedBy)
}

func TestMessageIsLikedBy(t *testing.T) {
	m := Message{LikedBy: []string{"alice", "bob"}}
	assert.True(t, m.IsLikedBy("bob"))
	assert.False(t, m.IsLikedBy("mallory"))
}
