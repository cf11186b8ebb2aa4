package queue

import (
	"context"

	"github.com/maheshrc27/autopost/internal/transfer"
)

const TaskTypeAutoPostRun = "autopost:run"

type AutoPostPayload struct {
	PostID string `json:"post_id"`
}

// BatchRunner runs one delivery batch.
type BatchRunner interface {
	Run(ctx context.Context) (*transfer.BatchSummary, error)
}

type Queue struct {
	runner BatchRunner
}

func NewQueue(runner BatchRunner) *Queue {
	return &Queue{runner: runner}
}
