package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/pkg/utils"
)

type CredentialService interface {
	Resolve(ctx context.Context, userID string) (*models.ClientToken, error)
	Save(ctx context.Context, userID, apiKey, profileUserID string) error
}

type credentialService struct {
	cfg config.Config
	ct  repository.ClientTokenRepository
}

func NewCredentialService(cfg config.Config, ct repository.ClientTokenRepository) CredentialService {
	return &credentialService{
		cfg: cfg,
		ct:  ct,
	}
}

// Resolve returns the user's active Ayrshare credential with the API key
// decrypted when it was sealed by Save. Every failure is reported as
// ErrCredentialNotFound.
func (s *credentialService) Resolve(ctx context.Context, userID string) (*models.ClientToken, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrCredentialNotFound)
	}

	token, err := s.ct.GetActiveByUserID(ctx, userID)
	if err != nil {
		slog.Warn("credential lookup failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: user %s", ErrCredentialNotFound, userID)
	}
	if token == nil || token.AyrshareAPIKey == "" {
		return nil, fmt.Errorf("%w: user %s", ErrCredentialNotFound, userID)
	}

	// Keys written by the account settings flow are stored as plaintext.
	apiKey, err := utils.Decrypt(token.AyrshareAPIKey, []byte(s.cfg.SecretKey))
	if err != nil {
		apiKey = token.AyrshareAPIKey
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: user %s", ErrCredentialNotFound, userID)
	}

	resolved := *token
	resolved.AyrshareAPIKey = apiKey
	return &resolved, nil
}

func (s *credentialService) Save(ctx context.Context, userID, apiKey, profileUserID string) error {
	if userID == "" {
		err := errors.New("user is not valid")
		slog.Info(err.Error())
		return err
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		err := errors.New("api key cannot be empty")
		slog.Info(err.Error())
		return err
	}

	encrypted, err := utils.Encrypt([]byte(apiKey), []byte(s.cfg.SecretKey))
	if err != nil {
		return fmt.Errorf("error encrypting api key: %w", err)
	}

	return s.ct.Upsert(ctx, &models.ClientToken{
		UserID:         userID,
		AyrshareAPIKey: encrypted,
		AyrshareUserID: strings.TrimSpace(profileUserID),
	})
}
