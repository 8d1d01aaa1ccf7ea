package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollection struct {
	mu   sync.Mutex
	docs []string
}

func (c *fakeCollection) load(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.docs))
	copy(out, c.docs)
	return out, nil
}

func (c *fakeCollection) insert(doc string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, doc)
}

func TestFeed_InitialSnapshot(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mockRedis.Addr()})

	coll := &fakeCollection{docs: []string{"hello"}}
	feed := Subscribe(context.Background(), rdb, RoomChannel("r1"), coll.load)
	defer feed.Unsubscribe()

	select {
	case snap, ok := <-feed.C:
		require.True(t, ok)
		assert.Equal(t, []string{"hello"}, snap)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot delivered")
	}
}

func TestFeed_ReloadsOnChange(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mockRedis.Addr()})
	ctx := context.Background()

	coll := &fakeCollection{docs: []string{"first"}}
	feed := Subscribe(ctx, rdb, DirectoryChannel(), coll.load)
	defer feed.Unsubscribe()

	// drain the initial snapshot
	select {
	case <-feed.C:
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot delivered")
	}

	coll.insert("second")

	// the subscription registers asynchronously, so keep nudging until the
	// refreshed snapshot comes through
	deadline := time.After(3 * time.Second)
	for {
		rdb.Publish(ctx, DirectoryChannel(), `{"collection":"rooms","kind":"insert"}`)
		select {
		case snap, ok := <-feed.C:
			require.True(t, ok)
			if len(snap) == 2 {
				assert.Equal(t, []string{"first", "second"}, snap)
				return
			}
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("refreshed snapshot never delivered")
		}
	}
}

func TestFeed_UnsubscribeClosesChannel(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mockRedis.Addr()})

	coll := &fakeCollection{docs: []string{"doc"}}
	feed := Subscribe(context.Background(), rdb, RoomChannel("r1"), coll.load)

	feed.Unsubscribe()

	// nothing may be delivered after teardown; the channel drains then closes
	for {
		select {
		case _, ok := <-feed.C:
			if !ok {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("channel not closed after Unsubscribe")
		}
	}
}

func TestFeed_UnsubscribeIsIdempotent(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mockRedis.Addr()})

	coll := &fakeCollection{}
	feed := Subscribe(context.Background(), rdb, RoomChannel("r1"), coll.load)

	feed.Unsubscribe()
	feed.Unsubscribe()
}

func TestFeed_ParentContextCancel(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mockRedis.Addr()})

	ctx, cancel := context.WithCancel(context.Background())
	coll := &fakeCollection{}
	feed := Subscribe(ctx, rdb, RoomChannel("r1"), coll.load)

	cancel()

	for {
		select {
		case _, ok := <-feed.C:
			if !ok {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("channel not closed after parent context cancel")
		}
	}
}
