package entity

import (
	"fmt"
	"time"
)

const (
	RoomTypePublic = "public"
	RoomTypeDM     = "dm"
)

// Room lives in the mongo "rooms" collection. Public rooms get a generated
// ObjectID hex as _id, DM rooms use the deterministic id from DMRoomID so the
// same pair of users always lands on the same document.
type Room struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	Title        string     `bson:"title" json:"title"`
	CreatedBy    string     `bson:"createdBy" json:"created_by"` // display-name snapshot
	OwnerID      string     `bson:"ownerId,omitempty" json:"owner_id,omitempty"`
	Type         string     `bson:"type" json:"type"`
	Members      []string   `bson:"members,omitempty" json:"members,omitempty"` // dm rooms only, exactly 2
	BookmarkedBy []string   `bson:"bookmarkedBy" json:"bookmarked_by"`
	LastPostedAt *time.Time `bson:"lastPostedAt,omitempty" json:"last_posted_at,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"created_at"`
}

// DMRoomID derives the room id for a user pair. The pair is sorted first, so
// either side initiating the DM resolves to the same id.
func DMRoomID(uidA, uidB string) string {
	if uidB < uidA {
		uidA, uidB = uidB, uidA
	}
	return fmt.Sprintf("dm_%s_%s", uidA, uidB)
}

func (r *Room) IsDM() bool {
	return r.Type == RoomTypeDM
}

func (r *Room) HasMember(uid string) bool {
	for _, m := range r.Members {
		if m == uid {
			return true
		}
	}
	return false
}

func (r *Room) IsBookmarkedBy(uid string) bool {
	for _, b := range r.BookmarkedBy {
		if b == uid {
			return true
		}
	}
	return false
}
