package realtime

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Feed is a live subscription to one query. Snapshots arrive on C starting
// with the current state; C is closed on Unsubscribe and nothing is delivered
// after that, so a consumer ranging over C can never observe its own torn-down
// view.
type Feed[T any] struct {
	C <-chan []T

	ch     chan []T
	pubsub *redis.PubSub
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Subscribe opens a feed on the given change channel. load is invoked once up
// front and again after every change notification; the pump goroutine is the
// only sender on C.
func Subscribe[T any](ctx context.Context, rdb *redis.Client, channel string, load func(context.Context) ([]T, error)) *Feed[T] {
	ctx, cancel := context.WithCancel(ctx)

	f := &Feed[T]{
		ch:     make(chan []T, 8),
		pubsub: rdb.Subscribe(ctx, channel),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	f.C = f.ch

	go f.pump(ctx, channel, load)
	return f
}

// Unsubscribe cancels the feed. Idempotent; blocks until the pump has exited
// and C is closed.
func (f *Feed[T]) Unsubscribe() {
	f.once.Do(func() {
		f.cancel()
		_ = f.pubsub.Close()
	})
	<-f.done
}

func (f *Feed[T]) pump(ctx context.Context, channel string, load func(context.Context) ([]T, error)) {
	defer close(f.done)
	defer close(f.ch)

	// initial snapshot before any change arrives
	f.reload(ctx, channel, load)

	events := f.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			f.reload(ctx, channel, load)
		}
	}
}

func (f *Feed[T]) reload(ctx context.Context, channel string, load func(context.Context) ([]T, error)) {
	snapshot, err := load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Str("channel", channel).Msg("realtime: snapshot reload failed")
		return
	}

	select {
	case <-ctx.Done():
	case f.ch <- snapshot:
	default:
		// slow consumer: drop the oldest pending snapshot, keep the newest
		select {
		case <-f.ch:
		default:
		}
		select {
		case f.ch <- snapshot:
		default:
		}
	}
}
