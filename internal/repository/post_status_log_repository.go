package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/autopost/internal/models"
)

// PostStatusLogRepository is append-only: there is no update or delete.
type PostStatusLogRepository interface {
	Create(ctx context.Context, entry *models.PostStatusLog) (int64, error)
	ListByPostID(ctx context.Context, postID string) ([]*models.PostStatusLog, error)
}

type postStatusLogRepository struct {
	db *sql.DB
}

func NewPostStatusLogRepository(db *sql.DB) PostStatusLogRepository {
	return &postStatusLogRepository{db: db}
}

func (r *postStatusLogRepository) Create(ctx context.Context, entry *models.PostStatusLog) (int64, error) {
	query := `
		INSERT INTO post_status_logs (scheduled_post_id, status, message, response_data)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var responseData any
	if len(entry.ResponseData) > 0 {
		responseData = []byte(entry.ResponseData)
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query, entry.ScheduledPostID, entry.Status, entry.Message, responseData).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postStatusLogRepository) ListByPostID(ctx context.Context, postID string) ([]*models.PostStatusLog, error) {
	query := `
		SELECT id, scheduled_post_id, status, message, response_data, created_at
		FROM post_status_logs
		WHERE scheduled_post_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PostStatusLog
	for rows.Next() {
		var e models.PostStatusLog
		var responseData []byte
		err := rows.Scan(&e.ID, &e.ScheduledPostID, &e.Status, &e.Message, &responseData, &e.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		e.ResponseData = responseData
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return entries, nil
}
