package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/metrics"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/maheshrc27/autopost/internal/transfer"
)

const (
	missingCredentialMessage = "Missing Ayrshare API key"
	postedMessage            = "Post published successfully"
)

// ErrEnumeration aborts a whole batch: the due posts could not be listed.
var ErrEnumeration = errors.New("failed to fetch scheduled posts")

type AutoPostJob struct {
	sp          repository.ScheduledPostRepository
	cr          service.CredentialService
	ay          service.AyrshareService
	sl          service.StatusLogService
	concurrency int
	now         func() time.Time
	running     sync.Mutex
}

func NewAutoPostJob(
	cfg config.Config,
	sp repository.ScheduledPostRepository,
	cr service.CredentialService,
	ay service.AyrshareService,
	sl service.StatusLogService) *AutoPostJob {
	concurrency := cfg.Delivery.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &AutoPostJob{
		sp:          sp,
		cr:          cr,
		ay:          ay,
		sl:          sl,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Run delivers every post that is due now. Individual post failures are
// reported in the summary; only a failed enumeration returns an error.
func (j *AutoPostJob) Run(ctx context.Context) (*transfer.BatchSummary, error) {
	start := time.Now()

	posts, err := j.sp.ListDue(ctx, j.now().UTC())
	if err != nil {
		metrics.IncEnumerationFailure()
		slog.Error("auto-post enumeration failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrEnumeration, err)
	}

	results := make([]*transfer.PostResult, len(posts))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, j.concurrency)

	for i, post := range posts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, post *models.ScheduledPost) {
			defer wg.Done()
			defer func() { <-semaphore }()

			results[i] = j.deliver(ctx, post)
		}(i, post)
	}

	wg.Wait()

	summary := &transfer.BatchSummary{
		Success: true,
		Results: make([]transfer.PostResult, 0, len(posts)),
	}
	for _, r := range results {
		if r != nil {
			summary.Results = append(summary.Results, *r)
		}
	}
	summary.Processed = len(summary.Results)

	metrics.ObserveBatch(time.Since(start))
	slog.Info("auto-post batch complete", "due", len(posts), "processed", summary.Processed, "took", time.Since(start))

	return summary, nil
}

// RunScheduled is the cron entry point. A tick that fires while the previous
// run is still going is skipped.
func (j *AutoPostJob) RunScheduled() {
	if !j.running.TryLock() {
		slog.Info("auto-post batch still running, skipping tick")
		return
	}
	defer j.running.Unlock()

	if _, err := j.Run(context.Background()); err != nil {
		slog.Error(err.Error())
	}
}

// deliver drives one post through claim, credential lookup and submission.
// It returns nil when the post was claimed by another run.
func (j *AutoPostJob) deliver(ctx context.Context, post *models.ScheduledPost) (result *transfer.PostResult) {
	var published *transfer.PublishResult
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		slog.Error("auto-post delivery panicked", "post_id", post.ID, "panic", r)
		if published != nil {
			// Already live at Ayrshare; the post must not be marked failed.
			result = postedResult(post, published)
			return
		}
		result = j.failAfterPanic(ctx, post, fmt.Sprintf("unexpected error: %v", r))
	}()

	claimed, err := j.sp.MarkProcessing(ctx, post.ID)
	if err != nil {
		return j.fail(ctx, post, fmt.Sprintf("failed to mark post as processing: %v", err), nil)
	}
	if !claimed {
		slog.Info("post already claimed by another run", "post_id", post.ID)
		return nil
	}

	cred, err := j.cr.Resolve(ctx, post.UserID)
	if err != nil {
		slog.Warn("no active credential", "post_id", post.ID, "user_id", post.UserID, "error", err)
		return j.fail(ctx, post, missingCredentialMessage, nil)
	}

	published, err = j.ay.Publish(ctx, post, cred)
	if err != nil {
		published = nil
		var raw []byte
		var pubErr *service.PublishError
		if errors.As(err, &pubErr) {
			raw = pubErr.Raw
		}
		return j.fail(ctx, post, err.Error(), raw)
	}

	return j.succeed(ctx, post, published)
}

func (j *AutoPostJob) succeed(ctx context.Context, post *models.ScheduledPost, published *transfer.PublishResult) *transfer.PostResult {
	if err := j.sp.MarkPosted(ctx, post.ID, published.ProviderID); err != nil {
		slog.Error("failed to mark post as posted", "post_id", post.ID, "ayrshare_id", published.ProviderID, "error", err)
	}
	j.record(ctx, post.ID, models.PostStatusPosted, postedMessage, published.Raw)
	metrics.IncDelivery(models.PostStatusPosted)

	slog.Info("post published", "post_id", post.ID, "ayrshare_id", published.ProviderID, "platforms", post.Platforms)
	return postedResult(post, published)
}

func postedResult(post *models.ScheduledPost, published *transfer.PublishResult) *transfer.PostResult {
	return &transfer.PostResult{
		PostID:     post.ID,
		Status:     models.PostStatusPosted,
		AyrshareID: published.ProviderID,
	}
}

// fail records a failed attempt. The post stays failed; it is not re-queued.
func (j *AutoPostJob) fail(ctx context.Context, post *models.ScheduledPost, message string, raw []byte) *transfer.PostResult {
	if err := j.sp.MarkFailed(ctx, post.ID, message); err != nil {
		slog.Error("failed to mark post as failed", "post_id", post.ID, "error", err)
	}
	j.record(ctx, post.ID, models.PostStatusFailed, message, raw)
	metrics.IncDelivery(models.PostStatusFailed)

	slog.Info("post delivery failed", "post_id", post.ID, "retry_count", post.RetryCount+1, "error", message)
	return failedResult(post, message)
}

// failAfterPanic is fail for the recover path. A second panic only costs the
// store update; the batch keeps going.
func (j *AutoPostJob) failAfterPanic(ctx context.Context, post *models.ScheduledPost, message string) (result *transfer.PostResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("failed to record panicked delivery", "post_id", post.ID, "panic", r)
			result = failedResult(post, message)
		}
	}()
	return j.fail(ctx, post, message, nil)
}

func failedResult(post *models.ScheduledPost, message string) *transfer.PostResult {
	return &transfer.PostResult{
		PostID: post.ID,
		Status: models.PostStatusFailed,
		Error:  message,
	}
}

// record writes a status log entry. The log never changes the post outcome,
// so a panicking writer is contained here.
func (j *AutoPostJob) record(ctx context.Context, postID, status, message string, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("status log writer panicked", "post_id", postID, "status", status, "panic", r)
		}
	}()
	j.sl.Record(ctx, postID, status, message, raw)
}
