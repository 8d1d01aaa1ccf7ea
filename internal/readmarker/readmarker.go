// Package readmarker persists "seen up to" timestamps per device. Markers are
// scoped to a device fingerprint and never synchronized across devices; they
// only feed the unread computation in the view package.
package readmarker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ToyoKou0322/my-sns-app/internal/view"
)

type Store struct {
	Redis *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{Redis: rdb}
}

func markerKey(fingerprint, roomID string) string {
	return fmt.Sprintf("lastRead:%s:%s", fingerprint, roomID)
}

// Record writes the marker optimistically at now plus a fixed forward skew,
// which tolerates the race between opening a room and the backend stamping a
// message that was already in flight.
func (s *Store) Record(ctx context.Context, fingerprint, roomID string) (time.Time, error) {
	at := time.Now().Add(view.ReadMarkerSkew)
	err := s.Redis.Set(ctx, markerKey(fingerprint, roomID), at.UnixNano(), 0).Err()
	if err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// Get returns the marker for one room, or the zero time when the device never
// opened it.
func (s *Store) Get(ctx context.Context, fingerprint, roomID string) (time.Time, error) {
	val, err := s.Redis.Get(ctx, markerKey(fingerprint, roomID)).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	} else if err != nil {
		return time.Time{}, err
	}

	nanos, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt read marker %q: %w", val, err)
	}
	return time.Unix(0, nanos), nil
}

// GetAll fetches markers for a directory snapshot in one round trip. Rooms
// without a marker are absent from the result.
func (s *Store) GetAll(ctx context.Context, fingerprint string, roomIDs []string) (map[string]time.Time, error) {
	if len(roomIDs) == 0 {
		return map[string]time.Time{}, nil
	}

	keys := make([]string, len(roomIDs))
	for i, id := range roomIDs {
		keys[i] = markerKey(fingerprint, id)
	}

	vals, err := s.Redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	markers := make(map[string]time.Time, len(roomIDs))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		nanos, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			continue
		}
		markers[roomIDs[i]] = time.Unix(0, nanos)
	}
	return markers, nil
}
