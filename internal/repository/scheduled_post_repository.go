package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/autopost/internal/models"
)

type ScheduledPostRepository interface {
	Create(ctx context.Context, post *models.ScheduledPost) error
	GetByID(ctx context.Context, id string) (*models.ScheduledPost, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.ScheduledPost, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error)
	MarkProcessing(ctx context.Context, id string) (bool, error)
	MarkPosted(ctx context.Context, id, ayrsharePostID string) error
	MarkFailed(ctx context.Context, id, message string) error
	Cancel(ctx context.Context, id, userID string) (bool, error)
	Requeue(ctx context.Context, id, userID string) (bool, error)
}

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

const scheduledPostColumns = `id, user_id, campaign_id, platforms, caption, media_urls, schedule_time, status,
	processing_status, ayrshare_post_id, error_message, retry_count, max_retries, boost_enabled, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheduledPost(row rowScanner) (*models.ScheduledPost, error) {
	var p models.ScheduledPost
	var campaignID, ayrshareID, errorMessage sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &campaignID, pq.Array(&p.Platforms), &p.Caption, pq.Array(&p.MediaURLs),
		&p.ScheduleTime, &p.Status, &p.ProcessingStatus, &ayrshareID, &errorMessage, &p.RetryCount, &p.MaxRetries,
		&p.BoostEnabled, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.CampaignID = nullableString(campaignID)
	p.AyrsharePostID = nullableString(ayrshareID)
	p.ErrorMessage = nullableString(errorMessage)
	return &p, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (r *scheduledPostRepository) Create(ctx context.Context, post *models.ScheduledPost) error {
	query := `
		INSERT INTO scheduled_posts (id, user_id, campaign_id, platforms, caption, media_urls, schedule_time,
			status, processing_status, retry_count, max_retries, boost_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		post.ID,
		post.UserID,
		post.CampaignID,
		pq.Array(post.Platforms),
		post.Caption,
		pq.Array(post.MediaURLs),
		post.ScheduleTime.UTC(),
		post.Status,
		post.ProcessingStatus,
		post.RetryCount,
		post.MaxRetries,
		post.BoostEnabled,
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduledPostRepository) GetByID(ctx context.Context, id string) (*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE id = $1`
	post, err := scanScheduledPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *scheduledPostRepository) ListByUserID(ctx context.Context, userID string) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE user_id = $1 ORDER BY schedule_time DESC`
	return r.list(ctx, query, userID)
}

// ListDue returns every post eligible for delivery at now. There is no limit.
func (r *scheduledPostRepository) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts
		WHERE status = $1
			AND processing_status = $2
			AND schedule_time <= $3
			AND retry_count < max_retries
		ORDER BY schedule_time`
	return r.list(ctx, query, models.PostStatusScheduled, models.ProcessingPending, now.UTC())
}

func (r *scheduledPostRepository) list(ctx context.Context, query string, args ...any) ([]*models.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := scanScheduledPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return posts, nil
}

// MarkProcessing claims a post for one batch run. It returns false when the
// row is no longer scheduled/pending, e.g. another run claimed it first.
func (r *scheduledPostRepository) MarkProcessing(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET processing_status = $1,
			updated_at = $2
		WHERE id = $3 AND status = $4 AND processing_status = $5
	`
	return r.execAffected(ctx, query, models.ProcessingInProgress, time.Now().UTC(), id,
		models.PostStatusScheduled, models.ProcessingPending)
}

func (r *scheduledPostRepository) MarkPosted(ctx context.Context, id, ayrsharePostID string) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			processing_status = $2,
			ayrshare_post_id = $3,
			error_message = NULL,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusPosted, models.ProcessingCompleted,
		ayrsharePostID, time.Now().UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduledPostRepository) MarkFailed(ctx context.Context, id, message string) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			processing_status = $2,
			retry_count = retry_count + 1,
			error_message = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, models.ProcessingFailed,
		message, time.Now().UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduledPostRepository) Cancel(ctx context.Context, id, userID string) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3 AND user_id = $4 AND status = $5 AND processing_status = $6
	`
	return r.execAffected(ctx, query, models.PostStatusCancelled, time.Now().UTC(), id, userID,
		models.PostStatusScheduled, models.ProcessingPending)
}

// Requeue puts a failed post back in the eligible set. retry_count is kept.
func (r *scheduledPostRepository) Requeue(ctx context.Context, id, userID string) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			processing_status = $2,
			updated_at = $3
		WHERE id = $4 AND user_id = $5 AND status = $6 AND retry_count < max_retries
	`
	return r.execAffected(ctx, query, models.PostStatusScheduled, models.ProcessingPending, time.Now().UTC(),
		id, userID, models.PostStatusFailed)
}

func (r *scheduledPostRepository) execAffected(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}
