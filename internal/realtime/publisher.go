package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Publisher interface {
	RoomsChanged(ctx context.Context, kind string)
	PostsChanged(ctx context.Context, roomID, kind string)
}

type RedisPublisher struct {
	Redis *redis.Client
}

func NewPublisher(rdb *redis.Client) Publisher {
	return &RedisPublisher{Redis: rdb}
}

func (p *RedisPublisher) RoomsChanged(ctx context.Context, kind string) {
	p.publish(ctx, DirectoryChannel(), Event{
		Collection: "rooms",
		Kind:       kind,
		At:         time.Now().Unix(),
	})
}

func (p *RedisPublisher) PostsChanged(ctx context.Context, roomID, kind string) {
	p.publish(ctx, RoomChannel(roomID), Event{
		Collection: "posts",
		RoomID:     roomID,
		Kind:       kind,
		At:         time.Now().Unix(),
	})
}

// publish is best-effort: a lost notification only delays the next snapshot,
// it never loses data.
func (p *RedisPublisher) publish(ctx context.Context, channel string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("realtime: failed to marshal event")
		return
	}

	if err := p.Redis.Publish(ctx, channel, data).Err(); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("realtime: publish failed")
	}
}
