package service

import (
	"context"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockClientTokenRepo struct {
	mock.Mock
}

func (m *mockClientTokenRepo) GetActiveByUserID(ctx context.Context, userID string) (*models.ClientToken, error) {
	args := m.Called(ctx, userID)
	token, _ := args.Get(0).(*models.ClientToken)
	return token, args.Error(1)
}

func (m *mockClientTokenRepo) Upsert(ctx context.Context, token *models.ClientToken) error {
	return m.Called(ctx, token).Error(0)
}

type mockStatusLogRepo struct {
	mock.Mock
}

func (m *mockStatusLogRepo) Create(ctx context.Context, entry *models.PostStatusLog) (int64, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStatusLogRepo) ListByPostID(ctx context.Context, postID string) ([]*models.PostStatusLog, error) {
	args := m.Called(ctx, postID)
	logs, _ := args.Get(0).([]*models.PostStatusLog)
	return logs, args.Error(1)
}

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) Create(ctx context.Context, post *models.ScheduledPost) error {
	return m.Called(ctx, post).Error(0)
}

func (m *mockPostRepo) GetByID(ctx context.Context, id string) (*models.ScheduledPost, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*models.ScheduledPost)
	return post, args.Error(1)
}

func (m *mockPostRepo) ListByUserID(ctx context.Context, userID string) ([]*models.ScheduledPost, error) {
	args := m.Called(ctx, userID)
	posts, _ := args.Get(0).([]*models.ScheduledPost)
	return posts, args.Error(1)
}

func (m *mockPostRepo) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error) {
	args := m.Called(ctx, now)
	posts, _ := args.Get(0).([]*models.ScheduledPost)
	return posts, args.Error(1)
}

func (m *mockPostRepo) MarkProcessing(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockPostRepo) MarkPosted(ctx context.Context, id, ayrsharePostID string) error {
	return m.Called(ctx, id, ayrsharePostID).Error(0)
}

func (m *mockPostRepo) MarkFailed(ctx context.Context, id, message string) error {
	return m.Called(ctx, id, message).Error(0)
}

func (m *mockPostRepo) Cancel(ctx context.Context, id, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPostRepo) Requeue(ctx context.Context, id, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

type fakeStorage struct {
	uploads map[string]string
	err     error
}

func (f *fakeStorage) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.uploads == nil {
		f.uploads = map[string]string{}
	}
	f.uploads[key] = contentType
	return "https://media.example.com/" + key, nil
}
