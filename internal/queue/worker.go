package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// HandleAutoPostTask runs a delivery batch when a post's wake-up fires.
// Eligibility is still decided by the store, so an early, late or duplicate
// wake-up is harmless.
func (q *Queue) HandleAutoPostTask(ctx context.Context, task *asynq.Task) error {
	var payload AutoPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	summary, err := q.runner.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("auto-post wake-up handled", "post_id", payload.PostID, "processed", summary.Processed)
	return nil
}
