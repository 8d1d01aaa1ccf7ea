package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ToyoKou0322/my-sns-app/internal/entity"
)

func ts(t time.Time) *time.Time { return &t }

func TestClassify(t *testing.T) {
	uid := "me"

	public := entity.Room{Type: entity.RoomTypePublic}
	bookmarked := entity.Room{Type: entity.RoomTypePublic, BookmarkedBy: []string{"me"}}
	dm := entity.Room{Type: entity.RoomTypeDM, Members: []string{"me", "other"}}
	// a bookmarked dm must still classify as dm
	bookmarkedDM := entity.Room{Type: entity.RoomTypeDM, Members: []string{"me", "other"}, BookmarkedBy: []string{"me"}}

	assert.Equal(t, ClassPublic, Classify(&public, uid))
	assert.Equal(t, ClassBookmarked, Classify(&bookmarked, uid))
	assert.Equal(t, ClassDM, Classify(&dm, uid))
	assert.Equal(t, ClassDM, Classify(&bookmarkedDM, uid))

	// bookmarked by someone else is still public for me
	otherBookmark := entity.Room{Type: entity.RoomTypePublic, BookmarkedBy: []string{"other"}}
	assert.Equal(t, ClassPublic, Classify(&otherBookmark, uid))
}

func TestClassify_ExactlyOneClass(t *testing.T) {
	rooms := []entity.Room{
		{Type: entity.RoomTypePublic},
		{Type: entity.RoomTypePublic, BookmarkedBy: []string{"me"}},
		{Type: entity.RoomTypeDM, BookmarkedBy: []string{"me"}},
	}
	for _, r := range rooms {
		c := Classify(&r, "me")
		assert.Contains(t, []string{ClassPublic, ClassBookmarked, ClassDM}, c)
	}
}

func TestPartition_PreservesOrder(t *testing.T) {
	rooms := []entity.Room{
		{ID: "1", Type: entity.RoomTypePublic},
		{ID: "2", Type: entity.RoomTypePublic, BookmarkedBy: []string{"me"}},
		{ID: "3", Type: entity.RoomTypeDM},
		{ID: "4", Type: entity.RoomTypePublic},
	}

	public, bookmarked, dm := Partition(rooms, "me")

	require.Len(t, public, 2)
	assert.Equal(t, "1", public[0].ID)
	assert.Equal(t, "4", public[1].ID)
	require.Len(t, bookmarked, 1)
	assert.Equal(t, "2", bookmarked[0].ID)
	require.Len(t, dm, 1)
	assert.Equal(t, "3", dm[0].ID)
}

func TestIsUnread(t *testing.T) {
	now := time.Now()

	// no activity at all: always read
	quiet := entity.Room{}
	assert.False(t, IsUnread(&quiet, time.Time{}))
	assert.False(t, IsUnread(&quiet, now))

	active := entity.Room{LastPostedAt: ts(now)}

	// never opened on this device
	assert.True(t, IsUnread(&active, time.Time{}))
	// read before the post
	assert.True(t, IsUnread(&active, now.Add(-time.Minute)))
	// read after the post
	assert.False(t, IsUnread(&active, now.Add(time.Minute)))
	// strictly-greater comparison: equal timestamps count as read
	assert.False(t, IsUnread(&active, now))
}

func TestLikeCount_LegacyFallback(t *testing.T) {
	withSet := entity.Message{LikedBy: []string{"a", "b"}}
	legacy := entity.Message{Likes: 5}
	neither := entity.Message{}
	// an empty (non-nil) set wins over a stale counter
	emptySet := entity.Message{LikedBy: []string{}, Likes: 3}

	assert.Equal(t, 2, LikeCount(&withSet))
	assert.Equal(t, 5, LikeCount(&legacy))
	assert.Equal(t, 0, LikeCount(&neither))
	assert.Equal(t, 0, LikeCount(&emptySet))
}

func TestLikeState(t *testing.T) {
	m := entity.Message{LikedBy: []string{"a", "b"}}

	liked, count := LikeState(&m, "a")
	assert.True(t, liked)
	assert.Equal(t, 2, count)

	liked, count = LikeState(&m, "c")
	assert.False(t, liked)
	assert.Equal(t, 2, count)

	// legacy counter tracks no identity, so liked-by-me is always false
	legacy := entity.Message{Likes: 7}
	liked, count = LikeState(&legacy, "a")
	assert.False(t, liked)
	assert.Equal(t, 7, count)
}

func TestLikeToggle_RoundTrip(t *testing.T) {
	// flipping membership twice restores the original state
	m := entity.Message{LikedBy: []string{}}

	flip := func(m *entity.Message, uid string) {
		if m.IsLikedBy(uid) {
			out := m.LikedBy[:0]
			for _, u := range m.LikedBy {
				if u != uid {
					out = append(out, u)
				}
			}
			m.LikedBy = out
		} else {
			m.LikedBy = append(m.LikedBy, uid)
		}
	}

	flip(&m, "b")
	liked, count := LikeState(&m, "b")
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	flip(&m, "b")
	liked, count = LikeState(&m, "b")
	assert.False(t, liked)
	assert.Equal(t, 0, count)
}

func TestFilterBySearch(t *testing.T) {
	rooms := []entity.Room{
		{Title: "general"},
		{Title: "random"},
		{Title: "gentle-talk"},
	}

	got := FilterBySearch(rooms, "gen")
	require.Len(t, got, 2)
	assert.Equal(t, "general", got[0].Title)
	assert.Equal(t, "gentle-talk", got[1].Title)

	// case-insensitive both ways
	got = FilterBySearch(rooms, "GEN")
	assert.Len(t, got, 2)

	got = FilterBySearch([]entity.Room{{Title: "GENERAL"}}, "gen")
	assert.Len(t, got, 1)

	// empty query keeps everything
	assert.Len(t, FilterBySearch(rooms, ""), 3)

	// no match
	assert.Empty(t, FilterBySearch(rooms, "zzz"))
}

func TestIsStamp(t *testing.T) {
	for _, s := range Stamps {
		assert.True(t, IsStamp(s))
	}
	assert.False(t, IsStamp("x"))
	assert.False(t, IsStamp(""))
	assert.False(t, IsStamp("👍🎉"))
}
