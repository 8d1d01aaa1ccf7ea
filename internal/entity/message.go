package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	MessageTypeText  = "text"
	MessageTypeStamp = "stamp"
	MessageTypeImage = "image"
)

// Message lives in the mongo "posts" collection. Author and PhotoURL are
// snapshots taken at post time, not live references to the profile.
//
// Likes is a legacy plain counter from documents written before likedBy
// existed. Readers must treat both representations transparently; the rules
// live in the view package (LikeCount / LikeState).
type Message struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomID    string        `bson:"roomId" json:"room_id"`
	UID       string        `bson:"uid" json:"uid"`
	Author    string        `bson:"author" json:"author"`
	PhotoURL  string        `bson:"photoURL,omitempty" json:"photo_url,omitempty"`
	Text      string        `bson:"text" json:"text"`
	Type      string        `bson:"type" json:"type"`
	CreatedAt time.Time     `bson:"createdAt" json:"created_at"`
	LikedBy   []string      `bson:"likedBy,omitempty" json:"liked_by,omitempty"`
	Likes     int64         `bson:"likes,omitempty" json:"-"`
}

func (m *Message) IsLikedBy(uid string) bool {
	for _, u := range m.LikedBy {
		if u == uid {
			return true
		}
	}
	return false
}
