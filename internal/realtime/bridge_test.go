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

	"github.com/ToyoKou0322/my-sns-app/internal/entity"
)

type fakeHub struct {
	events chan ScopeEvent

	mu        sync.Mutex
	snapshots []any
}

func newFakeHub() *fakeHub {
	return &fakeHub{events: make(chan ScopeEvent, 8)}
}

func (f *fakeHub) Broadcast(scope string, payload any) {
	f.mu.Lock()
	f.snapshots = append(f.snapshots, payload)
	f.mu.Unlock()
}

func (f *fakeHub) ScopeEvents() <-chan ScopeEvent {
	return f.events
}

func (f *fakeHub) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.snapshots)
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestBridgeOpensFeedOnFirstWatcher(t *testing.T) {
	rdb := testRedis(t)
	hub := newFakeHub()

	bridge := NewBridge(rdb, hub,
		func(ctx context.Context) ([]entity.Room, error) {
			return []entity.Room{{ID: "r1", Title: "general"}}, nil
		},
		func(ctx context.Context, roomID string) ([]entity.Message, error) {
			return nil, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx)

	hub.events <- ScopeEvent{Scope: DirectoryScope, Active: true}

	// the initial snapshot arrives without any change being published
	require.Eventually(t, func() bool {
		return hub.count() >= 1
	}, time.Second, 10*time.Millisecond)

	hub.events <- ScopeEvent{Scope: DirectoryScope, Active: false}

	require.Eventually(t, func() bool {
		bridge.mu.Lock()
		defer bridge.mu.Unlock()
		return len(bridge.stops) == 0
	}, time.Second, 10*time.Millisecond)

	// a change published after teardown must not reach the hub
	seen := hub.count()
	rdb.Publish(context.Background(), DirectoryChannel(), "{}")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, seen, hub.count())
}

func TestBridgeRoomScopeLoadsThatRoom(t *testing.T) {
	rdb := testRedis(t)
	hub := newFakeHub()

	var gotRoom string
	var roomMu sync.Mutex

	bridge := NewBridge(rdb, hub,
		func(ctx context.Context) ([]entity.Room, error) { return nil, nil },
		func(ctx context.Context, roomID string) ([]entity.Message, error) {
			roomMu.Lock()
			gotRoom = roomID
			roomMu.Unlock()
			return []entity.Message{{RoomID: roomID, Text: "hi"}}, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx)

	hub.events <- ScopeEvent{Scope: RoomScope("r42"), Active: true}

	require.Eventually(t, func() bool {
		return hub.count() >= 1
	}, time.Second, 10*time.Millisecond)

	roomMu.Lock()
	assert.Equal(t, "r42", gotRoom)
	roomMu.Unlock()
}

func TestRoomIDFromScope(t *testing.T) {
	id, ok := RoomIDFromScope("room:abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = RoomIDFromScope("directory")
	assert.False(t, ok)

	_, ok = RoomIDFromScope("room:")
	assert.False(t, ok)
}
