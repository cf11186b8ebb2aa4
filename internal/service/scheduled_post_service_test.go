package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func fileHeaders(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["files"]
}

func newTestPostService(repo *mockPostRepo, storage *fakeStorage, now time.Time) *scheduledPostService {
	svc := NewScheduledPostService(repo, storage).(*scheduledPostService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreateScheduledPost(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &mockPostRepo{}
	var created *models.ScheduledPost
	repo.On("Create", ctx, mock.AnythingOfType("*models.ScheduledPost")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*models.ScheduledPost) }).
		Return(nil)
	storage := &fakeStorage{}

	post, delay, err := newTestPostService(repo, storage, now).Create(ctx, "user-1", &transfer.PostCreation{
		Caption:      "launch day",
		Platforms:    `["TikTok", "instagram", "tiktok"]`,
		ScheduleTime: "2026-03-01T12:30:00Z",
		CampaignID:   "camp-9",
		BoostEnabled: true,
	}, fileHeaders(t, map[string][]byte{"cover.png": pngBytes}))
	require.NoError(t, err)

	assert.Same(t, created, post)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "user-1", post.UserID)
	assert.Equal(t, []string{"tiktok", "instagram"}, post.Platforms)
	assert.Equal(t, models.PostStatusScheduled, post.Status)
	assert.Equal(t, models.ProcessingPending, post.ProcessingStatus)
	assert.Equal(t, 0, post.RetryCount)
	assert.Equal(t, models.DefaultMaxRetries, post.MaxRetries)
	assert.True(t, post.BoostEnabled)
	require.NotNil(t, post.CampaignID)
	assert.Equal(t, "camp-9", *post.CampaignID)
	assert.Equal(t, 30*time.Minute, delay)

	require.Len(t, post.MediaURLs, 1)
	assert.True(t, strings.HasPrefix(post.MediaURLs[0], "https://media.example.com/"))
	assert.True(t, strings.HasSuffix(post.MediaURLs[0], ".png"))
	for _, contentType := range storage.uploads {
		assert.Equal(t, "image/png", contentType)
	}
}

func TestCreateScheduledPostPastTimeHasNoDelay(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &mockPostRepo{}
	repo.On("Create", ctx, mock.Anything).Return(nil)

	post, delay, err := newTestPostService(repo, &fakeStorage{}, now).Create(ctx, "user-1", &transfer.PostCreation{
		Caption:      "text only",
		Platforms:    `["linkedin"]`,
		ScheduleTime: "2026-03-01T09:00",
	}, nil)
	require.NoError(t, err)

	assert.Zero(t, delay)
	assert.NotNil(t, post.MediaURLs)
	assert.Empty(t, post.MediaURLs)
	assert.Nil(t, post.CampaignID)
}

func TestCreateScheduledPostValidation(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name   string
		userID string
		pc     *transfer.PostCreation
		files  map[string][]byte
	}{
		{"NoUser", "", &transfer.PostCreation{Caption: "x", Platforms: `["tiktok"]`, ScheduleTime: "2026-03-01T09:00"}, nil},
		{"NilPayload", "u", nil, nil},
		{"EmptyContent", "u", &transfer.PostCreation{Platforms: `["tiktok"]`, ScheduleTime: "2026-03-01T09:00"}, nil},
		{"BadTime", "u", &transfer.PostCreation{Caption: "x", Platforms: `["tiktok"]`, ScheduleTime: "tomorrow"}, nil},
		{"NoPlatforms", "u", &transfer.PostCreation{Caption: "x", Platforms: `[]`, ScheduleTime: "2026-03-01T09:00"}, nil},
		{"BadPlatformsJSON", "u", &transfer.PostCreation{Caption: "x", Platforms: `tiktok`, ScheduleTime: "2026-03-01T09:00"}, nil},
		{"UnknownPlatform", "u", &transfer.PostCreation{Caption: "x", Platforms: `["myspace"]`, ScheduleTime: "2026-03-01T09:00"}, nil},
		{"UnsupportedFile", "u", &transfer.PostCreation{Caption: "x", Platforms: `["tiktok"]`, ScheduleTime: "2026-03-01T09:00"},
			map[string][]byte{"notes.txt": []byte("plain text")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockPostRepo{}
			var files []*multipart.FileHeader
			if tt.files != nil {
				files = fileHeaders(t, tt.files)
			}

			_, _, err := newTestPostService(repo, &fakeStorage{}, now).Create(ctx, tt.userID, tt.pc, files)
			assert.Error(t, err)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateScheduledPostUploadFailure(t *testing.T) {
	ctx := context.Background()
	repo := &mockPostRepo{}

	_, _, err := newTestPostService(repo, &fakeStorage{err: errors.New("r2 down")}, time.Now()).Create(ctx, "u",
		&transfer.PostCreation{Caption: "x", Platforms: `["tiktok"]`, ScheduleTime: "2026-03-01T09:00"},
		fileHeaders(t, map[string][]byte{"a.png": pngBytes}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "r2 down")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPostInfoOwnership(t *testing.T) {
	ctx := context.Background()
	repo := &mockPostRepo{}
	repo.On("GetByID", ctx, "p1").Return(&models.ScheduledPost{ID: "p1", UserID: "owner"}, nil)
	svc := newTestPostService(repo, &fakeStorage{}, time.Now())

	post, err := svc.PostInfo(ctx, "owner", "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)

	_, err = svc.PostInfo(ctx, "intruder", "p1")
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.PostInfo(ctx, "owner", "")
	assert.Error(t, err)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	repo := &mockPostRepo{}
	repo.On("Cancel", ctx, "p1", "owner").Return(true, nil)
	repo.On("Cancel", ctx, "p2", "owner").Return(false, nil)
	svc := newTestPostService(repo, &fakeStorage{}, time.Now())

	assert.NoError(t, svc.Cancel(ctx, "owner", "p1"))
	assert.Error(t, svc.Cancel(ctx, "owner", "p2"))
	assert.Error(t, svc.Cancel(ctx, "owner", ""))
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	failed := &models.ScheduledPost{ID: "failed", UserID: "owner", Status: models.PostStatusFailed,
		ProcessingStatus: models.ProcessingFailed, RetryCount: 1, MaxRetries: 3, ScheduleTime: now.Add(-time.Hour)}
	exhausted := &models.ScheduledPost{ID: "exhausted", UserID: "owner", Status: models.PostStatusFailed,
		ProcessingStatus: models.ProcessingFailed, RetryCount: 3, MaxRetries: 3}
	posted := &models.ScheduledPost{ID: "posted", UserID: "owner", Status: models.PostStatusPosted, MaxRetries: 3}

	repo := &mockPostRepo{}
	repo.On("GetByID", ctx, "failed").Return(failed, nil)
	repo.On("GetByID", ctx, "exhausted").Return(exhausted, nil)
	repo.On("GetByID", ctx, "posted").Return(posted, nil)
	repo.On("Requeue", ctx, "failed", "owner").Return(true, nil)
	svc := newTestPostService(repo, &fakeStorage{}, now)

	delay, err := svc.Retry(ctx, "owner", "failed")
	require.NoError(t, err)
	assert.Zero(t, delay)

	_, err = svc.Retry(ctx, "owner", "exhausted")
	assert.Error(t, err)

	_, err = svc.Retry(ctx, "owner", "posted")
	assert.Error(t, err)

	repo.AssertNumberOfCalls(t, "Requeue", 1)
}
