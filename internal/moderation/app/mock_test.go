package app

import (
	"context"
	"os"
	"time"

	"video_moderation_service/internal/moderation/domain"
	"video_moderation_service/internal/moderation/event"

	"github.com/stretchr/testify/mock"
)

// MockStore 是 storage.Store 的 Mock
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Download(ctx context.Context, videoURL, destPath string) error {
	args := m.Called(ctx, videoURL, destPath)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, videoID string) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}

// writeDownload 模擬下載成功寫出檔案
func writeDownload(args mock.Arguments) {
	_ = os.WriteFile(args.String(2), []byte("fake-video"), 0o644)
}

// MockVideoRepo 是 repository.VideoRepo 的 Mock
type MockVideoRepo struct {
	mock.Mock
}

func (m *MockVideoRepo) AutoMigrate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockVideoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Video), args.Error(1)
}

func (m *MockVideoRepo) UpdateModeration(ctx context.Context, id string, up domain.ModerationUpdate) error {
	args := m.Called(ctx, id, up)
	return args.Error(0)
}

func (m *MockVideoRepo) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockNotificationRepo 是 repository.NotificationRepo 的 Mock
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) (bool, error) {
	args := m.Called(ctx, n)
	return args.Bool(0), args.Error(1)
}

// MockImageClassifier 是 classifier.Classifier 的 Mock
type MockImageClassifier struct {
	mock.Mock
}

func (m *MockImageClassifier) Classify(ctx context.Context, image []byte, minConfidence float64) ([]domain.Label, error) {
	args := m.Called(ctx, image, minConfidence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Label), args.Error(1)
}

// MockLocker 是 database.Locker 的 Mock
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLocker) Release(ctx context.Context, key, token string) error {
	args := m.Called(ctx, key, token)
	return args.Error(0)
}

// MockPublisher 是 event.Publisher 的 Mock
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, o event.Outcome) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// MockAuditStore 是 event.AuditStore 的 Mock
type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) Record(ctx context.Context, r event.AuditRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockRunner 是 Runner 的 Mock
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, job domain.ModerationJob) (*domain.JobResult, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobResult), args.Error(1)
}

func (m *MockRunner) RunWithRetry(ctx context.Context, job domain.ModerationJob) (*domain.JobResult, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobResult), args.Error(1)
}

// MockAcknowledger 是 amqp.Acknowledger 的 Mock
type MockAcknowledger struct {
	mock.Mock
}

func (m *MockAcknowledger) Ack(tag uint64, multiple bool) error {
	return m.Called(tag, multiple).Error(0)
}

func (m *MockAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	return m.Called(tag, multiple, requeue).Error(0)
}

func (m *MockAcknowledger) Reject(tag uint64, requeue bool) error {
	return m.Called(tag, requeue).Error(0)
}
