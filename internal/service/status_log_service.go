package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
)

type StatusLogService interface {
	Record(ctx context.Context, postID, status, message string, raw []byte)
	History(ctx context.Context, userID, postID string) ([]*models.PostStatusLog, error)
}

type statusLogService struct {
	sl repository.PostStatusLogRepository
	sp repository.ScheduledPostRepository
}

func NewStatusLogService(sl repository.PostStatusLogRepository, sp repository.ScheduledPostRepository) StatusLogService {
	return &statusLogService{
		sl: sl,
		sp: sp,
	}
}

// Record appends one delivery attempt. Write failures are only logged.
func (s *statusLogService) Record(ctx context.Context, postID, status, message string, raw []byte) {
	entry := &models.PostStatusLog{
		ScheduledPostID: postID,
		Status:          status,
		Message:         message,
	}
	if json.Valid(raw) {
		entry.ResponseData = raw
	} else if len(raw) > 0 {
		wrapped, _ := json.Marshal(map[string]string{"body": string(raw)})
		entry.ResponseData = wrapped
	}

	if _, err := s.sl.Create(ctx, entry); err != nil {
		slog.Error("failed to write post status log", "post_id", postID, "status", status, "error", err)
	}
}

func (s *statusLogService) History(ctx context.Context, userID, postID string) ([]*models.PostStatusLog, error) {
	post, err := s.sp.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.UserID != userID {
		slog.Info(ErrPostNotFound.Error())
		return nil, ErrPostNotFound
	}

	return s.sl.ListByPostID(ctx, postID)
}
