package realtime

import (
	"context"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ToyoKou0322/my-sns-app/internal/entity"
)

// Scopes name what a websocket client watches: the room directory, or the
// message feed of one room.
const DirectoryScope = "directory"

func RoomScope(roomID string) string {
	return "room:" + roomID
}

func RoomIDFromScope(scope string) (string, bool) {
	id, ok := strings.CutPrefix(scope, "room:")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// ScopeEvent is emitted by the hub when a scope gains its first watcher or
// loses its last one.
type ScopeEvent struct {
	Scope  string
	Active bool
}

// Broadcaster is the hub surface the bridge needs: push a snapshot to every
// watcher of a scope, and learn when scopes come and go.
type Broadcaster interface {
	Broadcast(scope string, payload any)
	ScopeEvents() <-chan ScopeEvent
}

// Bridge ties hub scopes to feeds. While at least one client watches a scope
// it keeps exactly one Feed open on the matching change channel and forwards
// every snapshot to the hub; when the last client leaves, the feed is torn
// down.
type Bridge struct {
	Redis        *redis.Client
	Hub          Broadcaster
	LoadRooms    func(ctx context.Context) ([]entity.Room, error)
	LoadMessages func(ctx context.Context, roomID string) ([]entity.Message, error)

	mu    sync.Mutex
	stops map[string]func()
}

func NewBridge(rdb *redis.Client, hub Broadcaster,
	loadRooms func(ctx context.Context) ([]entity.Room, error),
	loadMessages func(ctx context.Context, roomID string) ([]entity.Message, error)) *Bridge {
	return &Bridge{
		Redis:        rdb,
		Hub:          hub,
		LoadRooms:    loadRooms,
		LoadMessages: loadMessages,
		stops:        make(map[string]func()),
	}
}

// Run consumes scope events until ctx is done. Call it from its own
// goroutine.
func (b *Bridge) Run(ctx context.Context) {
	events := b.Hub.ScopeEvents()
	for {
		select {
		case <-ctx.Done():
			b.stopAll()
			return
		case ev, ok := <-events:
			if !ok {
				b.stopAll()
				return
			}
			if ev.Active {
				b.open(ctx, ev.Scope)
			} else {
				b.close(ev.Scope)
			}
		}
	}
}

func (b *Bridge) open(ctx context.Context, scope string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.stops[scope]; exists {
		return
	}

	if scope == DirectoryScope {
		feed := Subscribe(ctx, b.Redis, DirectoryChannel(), b.LoadRooms)
		b.stops[scope] = feed.Unsubscribe
		go forward(b.Hub, scope, feed.C)
		return
	}

	roomID, ok := RoomIDFromScope(scope)
	if !ok {
		log.Warn().Str("scope", scope).Msg("bridge: unknown scope, ignoring")
		return
	}

	feed := Subscribe(ctx, b.Redis, RoomChannel(roomID), func(ctx context.Context) ([]entity.Message, error) {
		return b.LoadMessages(ctx, roomID)
	})
	b.stops[scope] = feed.Unsubscribe
	go forward(b.Hub, scope, feed.C)
}

func (b *Bridge) close(scope string) {
	b.mu.Lock()
	stop, ok := b.stops[scope]
	delete(b.stops, scope)
	b.mu.Unlock()

	if ok {
		stop()
	}
}

func (b *Bridge) stopAll() {
	b.mu.Lock()
	stops := make([]func(), 0, len(b.stops))
	for scope, stop := range b.stops {
		stops = append(stops, stop)
		delete(b.stops, scope)
	}
	b.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

// forward drains one feed into the hub. It exits when the feed's channel is
// closed by Unsubscribe.
func forward[T any](hub Broadcaster, scope string, c <-chan []T) {
	for snapshot := range c {
		hub.Broadcast(scope, snapshot)
	}
}
