package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/transfer"
	"github.com/maheshrc27/autopost/pkg/utils"
)

const maxApiKeysPerUser = 5

var ErrApiKeyNotFound = errors.New("api key doesn't exist")

type ApiKeyService interface {
	Issue(ctx context.Context, userID string) (*transfer.IssuedApiKey, error)
	List(ctx context.Context, userID string) ([]*models.ApiKey, error)
	Authenticate(ctx context.Context, key string) (string, error)
	Revoke(ctx context.Context, userID string, keyID int64) error
}

type apiKeyService struct {
	k repository.ApiKeyRepository
}

func NewApiKeyService(k repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{k: k}
}

// Issue creates a key for userID. The plaintext key is only ever returned here.
func (s *apiKeyService) Issue(ctx context.Context, userID string) (*transfer.IssuedApiKey, error) {
	if userID == "" {
		err := errors.New("user is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	n, err := s.k.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting API keys: %w", err)
	}
	if n >= maxApiKeysPerUser {
		err = fmt.Errorf("only %d API keys can be created", maxApiKeysPerUser)
		slog.Info(err.Error())
		return nil, err
	}

	key, err := utils.GenerateRandomKey(24)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error generating API key")
	}

	apiKey := &models.ApiKey{
		UserID:  userID,
		Prefix:  key[:utils.ApiKeyPrefixLen],
		KeyHash: utils.HashApiKey(key),
	}
	if err := s.k.Create(ctx, apiKey); err != nil {
		return nil, fmt.Errorf("error saving API key")
	}

	return &transfer.IssuedApiKey{ID: apiKey.ID, Key: key, Prefix: apiKey.Prefix, CreatedAt: apiKey.CreatedAt}, nil
}

// Authenticate maps a presented key to its owner.
func (s *apiKeyService) Authenticate(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrApiKeyNotFound
	}

	userID, ok, err := s.k.UserIDByHash(ctx, utils.HashApiKey(key))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrApiKeyNotFound
	}
	return userID, nil
}

func (s *apiKeyService) List(ctx context.Context, userID string) ([]*models.ApiKey, error) {
	apiKeys, err := s.k.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting API keys")
	}
	return apiKeys, nil
}

func (s *apiKeyService) Revoke(ctx context.Context, userID string, keyID int64) error {
	if userID == "" || keyID <= 0 {
		err := errors.New("key id is not valid")
		slog.Info(err.Error())
		return err
	}

	ok, err := s.k.DeleteOwned(ctx, keyID, userID)
	if err != nil {
		return err
	}
	if !ok {
		slog.Info(ErrApiKeyNotFound.Error(), "key_id", keyID)
		return ErrApiKeyNotFound
	}
	return nil
}
