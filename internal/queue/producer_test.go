package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueue_JobLandsInQueue(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mockRedis.Addr()})
	producer := NewProducer(rdb)

	job := Job{
		ID:        uuid.New().String(),
		Type:      "dm_notify",
		Payload:   MustMarshal(map[string]string{"room_id": "dm_a_b"}),
		Priority:  1,
		MaxRetry:  3,
		CreatedAt: time.Now().Unix(),
		ExpireAt:  time.Now().Add(time.Hour).Unix(),
	}

	require.NoError(t, producer.Enqueue(context.Background(), job))

	members, err := rdb.ZRange(context.Background(), QueueKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, members, 1)

	var got Job
	require.NoError(t, json.Unmarshal([]byte(members[0]), &got))
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "dm_notify", got.Type)
}

func TestEnqueue_HigherPriorityScoresHigher(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mockRedis.Addr()})
	producer := NewProducer(rdb)
	ctx := context.Background()

	low := Job{ID: "low", Priority: 0, ExpireAt: 100}
	high := Job{ID: "high", Priority: 5, ExpireAt: 100}

	require.NoError(t, producer.Enqueue(ctx, low))
	require.NoError(t, producer.Enqueue(ctx, high))

	// ascending score: the low-priority job pops first
	members, err := rdb.ZRange(ctx, QueueKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, members, 2)

	var first Job
	require.NoError(t, json.Unmarshal([]byte(members[0]), &first))
	assert.Equal(t, "low", first.ID)
}

func TestMustMarshal(t *testing.T) {
	raw := MustMarshal(map[string]int{"n": 1})
	assert.JSONEq(t, `{"n":1}`, string(raw))
}
