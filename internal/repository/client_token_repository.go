package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/autopost/internal/models"
)

type ClientTokenRepository interface {
	GetActiveByUserID(ctx context.Context, userID string) (*models.ClientToken, error)
	Upsert(ctx context.Context, token *models.ClientToken) error
}

type clientTokenRepository struct {
	db *sql.DB
}

func NewClientTokenRepository(db *sql.DB) ClientTokenRepository {
	return &clientTokenRepository{db: db}
}

// GetActiveByUserID returns nil, nil when the user has no active token.
func (r *clientTokenRepository) GetActiveByUserID(ctx context.Context, userID string) (*models.ClientToken, error) {
	query := `
		SELECT user_id, ayrshare_api_key, ayrshare_user_id, is_active, updated_at
		FROM client_tokens
		WHERE user_id = $1 AND is_active = true
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var t models.ClientToken
	var ayrshareUserID sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&t.UserID, &t.AyrshareAPIKey, &ayrshareUserID, &t.IsActive, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	t.AyrshareUserID = ayrshareUserID.String

	return &t, nil
}

// Upsert stores token as the user's only active credential.
func (r *clientTokenRepository) Upsert(ctx context.Context, token *models.ClientToken) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer tx.Rollback()

	deactivateQuery := `UPDATE client_tokens SET is_active = false, updated_at = CURRENT_TIMESTAMP WHERE user_id = $1`
	if _, err := tx.ExecContext(ctx, deactivateQuery, token.UserID); err != nil {
		slog.Info(err.Error())
		return err
	}

	insertQuery := `
		INSERT INTO client_tokens (user_id, ayrshare_api_key, ayrshare_user_id, is_active)
		VALUES ($1, $2, $3, true)
	`
	if _, err := tx.ExecContext(ctx, insertQuery, token.UserID, token.AyrshareAPIKey, token.AyrshareUserID); err != nil {
		slog.Info(err.Error())
		return err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return err
	}
	token.IsActive = true
	return nil
}
