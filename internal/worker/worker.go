package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ToyoKou0322/my-sns-app/internal/queue"
	"github.com/ToyoKou0322/my-sns-app/internal/utils/types"
	worker_handler "github.com/ToyoKou0322/my-sns-app/internal/worker/worker-handler"
	"github.com/ToyoKou0322/my-sns-app/state"
)

type WorkerPool struct {
	AppState   *state.AppState
	Redis      *redis.Client
	WorkerNum  int
	JobChannel chan string
	DLQConfig  types.DLQRetryConfig
	AlertFunc  func(job queue.Job) error
	handler    *worker_handler.WorkerHandler
	wg         sync.WaitGroup
	dlaMu      sync.Mutex
	dlaCache   map[string]time.Time
}

func NewWorkerPool(appState *state.AppState, workerNum int, dlqConfig types.DLQRetryConfig) *WorkerPool {
	handler := worker_handler.NewWorkerHandler(appState)
	return &WorkerPool{
		AppState:   appState,
		Redis:      appState.Redis,
		WorkerNum:  workerNum,
		JobChannel: make(chan string, 100),
		DLQConfig:  dlqConfig,
		AlertFunc: func(job queue.Job) error {
			return handler.SendDeadLetterAlert(job.ID, job.Type, job.ErrorMsg)
		},
		handler:  handler,
		dlaCache: make(map[string]time.Time),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	log.Info().Msgf("Starting worker pool with %d workers", wp.WorkerNum)

	for i := 0; i < wp.WorkerNum; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}

	go func() {
		defer close(wp.JobChannel)
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping worker pool")
				return
			default:
				if !wp.dispatchOne(ctx) {
					time.Sleep(1 * time.Second)
				}
			}
		}
	}()
}

// dispatchOne pops the most urgent ready job off the sorted set and hands it
// to a worker. Jobs waiting out a retry backoff are skipped. Returns false
// when nothing was dispatched.
func (wp *WorkerPool) dispatchOne(ctx context.Context) bool {
	result, err := wp.Redis.ZRangeByScore(ctx, queue.QueueKey, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    "+inf",
		Offset: 0,
		Count:  10,
	}).Result()

	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Worker: failed to pop job")
		}
		return false
	}

	now := time.Now().Unix()
	for _, payload := range result {
		var job queue.Job
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			// unparseable member would loop forever, drop it
			log.Warn().Err(err).Msg("Worker: dropping malformed job")
			wp.Redis.ZRem(ctx, queue.QueueKey, payload)
			continue
		}

		if job.RetryAt > now {
			continue
		}

		removed, err := wp.Redis.ZRem(ctx, queue.QueueKey, payload).Result()
		if err != nil || removed == 0 {
			// another dispatcher won the race
			continue
		}

		select {
		case wp.JobChannel <- payload:
		case <-ctx.Done():
			return false
		}
		return true
	}

	return false
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log.Info().Msgf("Worker %d started", id)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("Worker %d stopping", id)
			return
		case payload, ok := <-wp.JobChannel:
			if !ok {
				return
			}

			var job queue.Job
			if err := json.Unmarshal([]byte(payload), &job); err != nil {
				log.Warn().Err(err).Msgf("Worker %d: Failed to unmarshal job payload", id)
				continue
			}
			if err := wp.HandleJob(ctx, job); err != nil {
				job.Retry++
				job.ErrorMsg = err.Error()

				now := time.Now().Unix()
				if job.Retry >= job.MaxRetry || now > job.ExpireAt {
					log.Error().Str("job_id", job.ID).Msg("Job moved to DLQ")
					dlqBytes, _ := json.Marshal(job)
					wp.Redis.RPush(ctx, queue.DLQKey, dlqBytes)

					// Dead Letter Alert
					wp.sendDLA(job)
				} else {
					// retry with backoff
					delay := time.Duration(5*(1<<job.Retry)) * time.Second // exponential backoff
					job.RetryAt = time.Now().Add(delay).Unix()

					jobBytes, _ := json.Marshal(job)
					wp.Redis.ZAdd(ctx, queue.QueueKey, redis.Z{
						Score:  float64(job.Priority)*1e10 + float64(job.ExpireAt),
						Member: jobBytes,
					})
					log.Warn().Str("job_id", job.ID).Msgf("Retrying in %v seconds (%d/%d)", delay.Seconds(), job.Retry, job.MaxRetry)
				}
			}
		}
	}
}

// sendDLA mails an ops alert for a permanently failed job, at most once per
// job type every 10 minutes.
func (wp *WorkerPool) sendDLA(job queue.Job) {
	wp.dlaMu.Lock()
	now := time.Now()
	lastAlert, ok := wp.dlaCache[job.Type]
	if ok && now.Sub(lastAlert) < 10*time.Minute {
		wp.dlaMu.Unlock()
		return
	}
	wp.dlaCache[job.Type] = now
	wp.dlaMu.Unlock()

	log.Error().Str("job_id", job.ID).Str("type", job.Type).Str("error", job.ErrorMsg).Msg("Dead Letter Alert: Job failed permanently")

	if wp.AlertFunc == nil {
		return
	}
	if err := wp.AlertFunc(job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to send dead letter alert mail")
	}
}

func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
	log.Info().Msg("All workers have stopped")
}
