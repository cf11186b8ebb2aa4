package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/autopost/internal/models"
)

type ApiKeyRepository interface {
	UserIDByHash(ctx context.Context, keyHash string) (string, bool, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.ApiKey, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
	Create(ctx context.Context, apiKey *models.ApiKey) error
	DeleteOwned(ctx context.Context, id int64, userID string) (bool, error)
}

type apiKeyRepository struct {
	db *sql.DB
}

func NewApiKeyRepository(db *sql.DB) ApiKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) UserIDByHash(ctx context.Context, keyHash string) (string, bool, error) {
	var userID string
	query := `SELECT user_id FROM api_keys WHERE key_hash = $1`
	err := r.db.QueryRowContext(ctx, query, keyHash).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		slog.Info(err.Error())
		return "", false, err
	}
	return userID, true, nil
}

func (r *apiKeyRepository) ListByUserID(ctx context.Context, userID string) ([]*models.ApiKey, error) {
	query := `SELECT id, user_id, prefix, created_at FROM api_keys WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	apiKeys := []*models.ApiKey{}
	for rows.Next() {
		var k models.ApiKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Prefix, &k.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		apiKeys = append(apiKeys, &k)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return apiKeys, nil
}

func (r *apiKeyRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM api_keys WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return n, nil
}

func (r *apiKeyRepository) Create(ctx context.Context, apiKey *models.ApiKey) error {
	query := `
		INSERT INTO api_keys (user_id, prefix, key_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, apiKey.UserID, apiKey.Prefix, apiKey.KeyHash).
		Scan(&apiKey.ID, &apiKey.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// DeleteOwned removes the key only when it belongs to userID.
func (r *apiKeyRepository) DeleteOwned(ctx context.Context, id int64, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1 AND user_id = $2`, id, userID)
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
