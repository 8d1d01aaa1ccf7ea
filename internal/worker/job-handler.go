package worker

import (
	"context"
	"fmt"

	"github.com/ToyoKou0322/my-sns-app/internal/queue"
)

func (wp *WorkerPool) HandleJob(ctx context.Context, job queue.Job) error {
	switch job.Type {
	case "dm_notify":
		return wp.handler.HandleDMNotify(ctx, job.Payload)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}
