// Package view holds the pure projection logic over room and message
// snapshots: tab classification, unread detection, like state and search.
// Nothing here touches the network or keeps state; callers recompute from the
// latest snapshot on every change.
package view

import (
	"strings"
	"time"

	"github.com/ToyoKou0322/my-sns-app/internal/entity"
)

const (
	ClassPublic     = "public"
	ClassBookmarked = "bookmarked"
	ClassDM         = "dm"
)

// ReadMarkerSkew is added to "now" when recording a read marker, so a message
// whose server-assigned timestamp lands slightly after the read still counts
// as seen.
const ReadMarkerSkew = 2 * time.Second

// Stamps is the fixed set of tokens a stamp message may carry.
var Stamps = []string{"👍", "🎉", "😂", "🙏", "❤️", "😭"}

func IsStamp(token string) bool {
	for _, s := range Stamps {
		if s == token {
			return true
		}
	}
	return false
}

// Classify puts a room into exactly one tab. A dm room is never classified
// public or bookmarked, even when the user bookmarked it.
func Classify(room *entity.Room, uid string) string {
	if room.IsDM() {
		return ClassDM
	}
	if room.IsBookmarkedBy(uid) {
		return ClassBookmarked
	}
	return ClassPublic
}

// Partition splits a directory snapshot into the three tabs, preserving the
// input order within each.
func Partition(rooms []entity.Room, uid string) (public, bookmarked, dm []entity.Room) {
	for _, r := range rooms {
		switch Classify(&r, uid) {
		case ClassDM:
			dm = append(dm, r)
		case ClassBookmarked:
			bookmarked = append(bookmarked, r)
		default:
			public = append(public, r)
		}
	}
	return public, bookmarked, dm
}

// IsUnread reports whether the room has activity past the given read marker.
// A room that never had a post is read; a zero lastRead means the device never
// opened the room.
func IsUnread(room *entity.Room, lastRead time.Time) bool {
	if room.LastPostedAt == nil {
		return false
	}
	return room.LastPostedAt.After(lastRead)
}

// LikeCount reads the like total across both message generations: likedBy set
// when present, else the legacy plain counter.
func LikeCount(m *entity.Message) int {
	if m.LikedBy != nil {
		return len(m.LikedBy)
	}
	return int(m.Likes)
}

// LikeState resolves (liked-by-me, total). Legacy counter-only messages track
// no identities, so liked-by-me is always false for them.
func LikeState(m *entity.Message, uid string) (bool, int) {
	if m.LikedBy == nil {
		return false, int(m.Likes)
	}
	return m.IsLikedBy(uid), len(m.LikedBy)
}

// FilterBySearch keeps rooms whose title contains the query,
// case-insensitively. An empty query keeps everything.
func FilterBySearch(rooms []entity.Room, query string) []entity.Room {
	if query == "" {
		return rooms
	}
	q := strings.ToLower(query)
	out := make([]entity.Room, 0, len(rooms))
	for _, r := range rooms {
		if strings.Contains(strings.ToLower(r.Title), q) {
			out = append(out, r)
		}
	}
	return out
}
