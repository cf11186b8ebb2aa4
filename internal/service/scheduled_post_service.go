package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var supportedPlatforms = map[string]struct{}{
	"tiktok": {}, "instagram": {}, "facebook": {}, "twitter": {}, "linkedin": {}, "youtube": {},
	"pinterest": {}, "reddit": {}, "telegram": {}, "threads": {}, "bluesky": {}, "gmb": {},
}

var allowedMediaTypes = map[string]struct{}{
	"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
}

type ScheduledPostService interface {
	Create(ctx context.Context, userID string, pc *transfer.PostCreation, files []*multipart.FileHeader) (*models.ScheduledPost, time.Duration, error)
	List(ctx context.Context, userID string) ([]*models.ScheduledPost, error)
	PostInfo(ctx context.Context, userID, postID string) (*models.ScheduledPost, error)
	Cancel(ctx context.Context, userID, postID string) error
	Retry(ctx context.Context, userID, postID string) (time.Duration, error)
}

type scheduledPostService struct {
	sp      repository.ScheduledPostRepository
	storage MediaStorage
	now     func() time.Time
}

func NewScheduledPostService(sp repository.ScheduledPostRepository, storage MediaStorage) ScheduledPostService {
	return &scheduledPostService{
		sp:      sp,
		storage: storage,
		now:     time.Now,
	}
}

// Create books a post and returns the delay until it becomes due.
func (s *scheduledPostService) Create(ctx context.Context, userID string, pc *transfer.PostCreation, files []*multipart.FileHeader) (*models.ScheduledPost, time.Duration, error) {
	if userID == "" {
		err := errors.New("user is not valid")
		slog.Info(err.Error())
		return nil, 0, err
	}
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, 0, err
	}
	if strings.TrimSpace(pc.Caption) == "" && len(files) == 0 {
		err := errors.New("caption or media is required")
		slog.Info(err.Error())
		return nil, 0, err
	}

	scheduleTime, err := parseScheduleTime(pc.ScheduleTime)
	if err != nil {
		err = fmt.Errorf("invalid schedule time format: %w", err)
		slog.Error(err.Error())
		return nil, 0, err
	}

	platforms, err := parsePlatforms(pc.Platforms)
	if err != nil {
		slog.Error(err.Error())
		return nil, 0, err
	}

	mediaURLs, err := s.processFiles(ctx, files)
	if err != nil {
		return nil, 0, fmt.Errorf("error processing files: %w", err)
	}

	post := &models.ScheduledPost{
		ID:               uuid.NewString(),
		UserID:           userID,
		Platforms:        platforms,
		Caption:          pc.Caption,
		MediaURLs:        mediaURLs,
		ScheduleTime:     scheduleTime,
		Status:           models.PostStatusScheduled,
		ProcessingStatus: models.ProcessingPending,
		RetryCount:       0,
		MaxRetries:       models.DefaultMaxRetries,
		BoostEnabled:     pc.BoostEnabled,
	}
	if campaignID := strings.TrimSpace(pc.CampaignID); campaignID != "" {
		post.CampaignID = &campaignID
	}

	if err := s.sp.Create(ctx, post); err != nil {
		return nil, 0, fmt.Errorf("error creating post: %w", err)
	}

	delay := scheduleTime.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	return post, delay, nil
}

func parseScheduleTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04", value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parsePlatforms(value string) ([]string, error) {
	var platforms []string
	if err := json.Unmarshal([]byte(value), &platforms); err != nil {
		return nil, fmt.Errorf("invalid platforms format: %w", err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no platforms selected")
	}

	seen := make(map[string]struct{}, len(platforms))
	normalized := make([]string, 0, len(platforms))
	for _, p := range platforms {
		p = strings.ToLower(strings.TrimSpace(p))
		if _, ok := supportedPlatforms[p]; !ok {
			return nil, fmt.Errorf("platform %q is not supported", p)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized, nil
}

// processFiles uploads files and returns their public URLs. The result is never
// nil; media_urls is a NOT NULL text[] column.
func (s *scheduledPostService) processFiles(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		fileBytes, err := readFile(file)
		if err != nil {
			return nil, err
		}

		fileType, err := filetype.Match(fileBytes)
		if err != nil || fileType == types.Unknown {
			return nil, fmt.Errorf("unsupported file type: %s", file.Filename)
		}
		if _, ok := allowedMediaTypes[fileType.Extension]; !ok {
			return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
		}

		key, err := gonanoid.New()
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}

		url, err := s.storage.Upload(ctx, key+"."+fileType.Extension, fileBytes, fileType.MIME.Value)
		if err != nil {
			return nil, fmt.Errorf("error uploading file: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func readFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}
	return b, nil
}

func (s *scheduledPostService) List(ctx context.Context, userID string) ([]*models.ScheduledPost, error) {
	posts, err := s.sp.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting posts")
	}
	return posts, nil
}

func (s *scheduledPostService) PostInfo(ctx context.Context, userID, postID string) (*models.ScheduledPost, error) {
	if postID == "" {
		err := errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.sp.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post info")
	}
	if post == nil || post.UserID != userID {
		slog.Info(ErrPostNotFound.Error())
		return nil, ErrPostNotFound
	}

	return post, nil
}

func (s *scheduledPostService) Cancel(ctx context.Context, userID, postID string) error {
	if postID == "" {
		err := errors.New("post id is not valid")
		slog.Info(err.Error())
		return err
	}

	ok, err := s.sp.Cancel(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !ok {
		err = errors.New("post can't be cancelled")
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Retry is the manual re-submission path: a failed post with attempts left
// goes back to scheduled/pending. It returns the delay until the post is due.
func (s *scheduledPostService) Retry(ctx context.Context, userID, postID string) (time.Duration, error) {
	post, err := s.PostInfo(ctx, userID, postID)
	if err != nil {
		return 0, err
	}
	if !post.CanRequeue() {
		err = errors.New("post can't be retried")
		slog.Info(err.Error())
		return 0, err
	}

	ok, err := s.sp.Requeue(ctx, postID, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		err = errors.New("post can't be retried")
		slog.Info(err.Error())
		return 0, err
	}

	delay := post.ScheduleTime.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	return delay, nil
}
