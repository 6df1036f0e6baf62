package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"video_moderation_service/internal/moderation/domain"
	"video_moderation_service/pkg/config"
	"video_moderation_service/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetNewNop()
}

// MockRekognition 是 DetectModerationLabelsAPI 的 Mock
type MockRekognition struct {
	mock.Mock
}

func (m *MockRekognition) DetectModerationLabels(ctx context.Context, params *rekognition.DetectModerationLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectModerationLabelsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rekognition.DetectModerationLabelsOutput), args.Error(1)
}

func TestRekognitionClassify(t *testing.T) {
	img := []byte{0xff, 0xd8, 0xff}

	t.Run("maps labels", func(t *testing.T) {
		api := new(MockRekognition)
		api.On("DetectModerationLabels", mock.Anything, mock.MatchedBy(func(in *rekognition.DetectModerationLabelsInput) bool {
			return aws.ToFloat32(in.MinConfidence) == 80 && len(in.Image.Bytes) == 3
		})).Return(&rekognition.DetectModerationLabelsOutput{
			ModerationLabels: []types.ModerationLabel{
				{Name: aws.String("Violence"), Confidence: aws.Float32(95)},
				{Name: aws.String("Weapons"), ParentName: aws.String("Violence"), Confidence: aws.Float32(88.5)},
				{Name: nil, Confidence: aws.Float32(99)},
			},
		}, nil).Once()

		c := NewRekognitionClassifier(api, time.Second)
		labels, err := c.Classify(context.Background(), img, 80)
		require.NoError(t, err)
		assert.Equal(t, []domain.Label{
			{Name: "Violence", Confidence: 95},
			{Name: "Weapons", ParentName: "Violence", Confidence: 88.5},
		}, labels)
		api.AssertExpectations(t)
	})

	t.Run("no labels", func(t *testing.T) {
		api := new(MockRekognition)
		api.On("DetectModerationLabels", mock.Anything, mock.Anything).Return(&rekognition.DetectModerationLabelsOutput{}, nil).Once()
		labels, err := NewRekognitionClassifier(api, 0).Classify(context.Background(), img, 80)
		require.NoError(t, err)
		assert.Empty(t, labels)
	})

	t.Run("service error", func(t *testing.T) {
		api := new(MockRekognition)
		boom := errors.New("ThrottlingException")
		api.On("DetectModerationLabels", mock.Anything, mock.Anything).Return(nil, boom).Once()
		_, err := NewRekognitionClassifier(api, 0).Classify(context.Background(), img, 80)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty image", func(t *testing.T) {
		api := new(MockRekognition)
		_, err := NewRekognitionClassifier(api, 0).Classify(context.Background(), nil, 80)
		assert.ErrorIs(t, err, ErrEmptyImage)
		api.AssertNotCalled(t, "DetectModerationLabels", mock.Anything, mock.Anything)
	})
}

func TestNewRekognitionFromConfig(t *testing.T) {
	c, err := NewRekognitionFromConfig(context.Background(), config.ClassifierConfig{
		Region:          "us-east-1",
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		Timeout:         5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.timeout)
}
