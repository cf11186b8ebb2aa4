package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/transfer"
)

const ayrshareSuccessStatus = "success"

type AyrshareService interface {
	Publish(ctx context.Context, post *models.ScheduledPost, cred *models.ClientToken) (*transfer.PublishResult, error)
}

type ayrshareService struct {
	baseURL string
	client  *http.Client
}

func NewAyrshareService(cfg config.Config) AyrshareService {
	return &ayrshareService{
		baseURL: strings.TrimRight(cfg.Ayrshare.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Ayrshare.Timeout},
	}
}

// Publish submits one post. Every failure comes back as a *PublishError,
// there are no retries here.
func (s *ayrshareService) Publish(ctx context.Context, post *models.ScheduledPost, cred *models.ClientToken) (*transfer.PublishResult, error) {
	payload := transfer.AyrsharePostRequest{
		Post:      post.Caption,
		Platforms: post.Platforms,
	}
	if len(post.MediaURLs) > 0 {
		payload.MediaURLs = post.MediaURLs
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &PublishError{Kind: ErrTransport, Message: fmt.Sprintf("encoding request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/post", bytes.NewReader(body))
	if err != nil {
		return nil, &PublishError{Kind: ErrTransport, Message: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+cred.AyrshareAPIKey)
	req.Header.Set("Content-Type", "application/json")
	if cred.AyrshareUserID != "" {
		req.Header.Set("Profile-Key", cred.AyrshareUserID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, &PublishError{Kind: ErrTransport, Message: fmt.Sprintf("HTTP request failed: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, &PublishError{Kind: ErrTransport, Message: fmt.Sprintf("reading response: %v", err)}
	}

	var result transfer.AyrsharePostResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &PublishError{
				Kind:    ErrProviderRejected,
				Message: fmt.Sprintf("Ayrshare returned status %d", resp.StatusCode),
				Raw:     raw,
			}
		}
		slog.Info(err.Error())
		return nil, &PublishError{Kind: ErrTransport, Message: fmt.Sprintf("failed to decode response: %v", err), Raw: raw}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || result.Status != ayrshareSuccessStatus {
		message := result.Message
		if message == "" {
			message = fmt.Sprintf("Ayrshare returned status %d", resp.StatusCode)
		}
		return nil, &PublishError{Kind: ErrProviderRejected, Message: message, Raw: raw}
	}

	if result.ID == "" {
		return nil, &PublishError{Kind: ErrProviderRejected, Message: "Ayrshare response missing post id", Raw: raw}
	}

	return &transfer.PublishResult{ProviderID: result.ID, Raw: raw}, nil
}
