package queue

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer schedules a delivery wake-up for a post.
type Enqueuer interface {
	EnqueuePost(payload AutoPostPayload, delay time.Duration) error
}

type asynqEnqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) Enqueuer {
	return &asynqEnqueuer{client: client}
}

func (e *asynqEnqueuer) EnqueuePost(payload AutoPostPayload, delay time.Duration) error {
	task, err := NewAutoPostTask(payload)
	if err != nil {
		return err
	}

	if _, err = e.client.Enqueue(task, asynq.ProcessIn(delay), asynq.MaxRetry(0)); err != nil {
		return err
	}

	slog.Info("auto-post wake-up scheduled", "post_id", payload.PostID, "delay", delay)
	return nil
}

func NewAutoPostTask(payload AutoPostPayload) (*asynq.Task, error) {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAutoPostRun, taskPayload), nil
}
