package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"video_moderation_service/internal/moderation/domain"
	"video_moderation_service/pkg/config"
	"video_moderation_service/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"go.uber.org/zap"
)

const providerRekognition = "rekognition"

// ErrEmptyImage the frame has no bytes
var ErrEmptyImage = errors.New("empty image")

// DetectModerationLabelsAPI the part of *rekognition.Client used here
type DetectModerationLabelsAPI interface {
	DetectModerationLabels(ctx context.Context, params *rekognition.DetectModerationLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectModerationLabelsOutput, error)
}

// RekognitionClassifier Classifier backed by AWS Rekognition DetectModerationLabels
type RekognitionClassifier struct {
	api     DetectModerationLabelsAPI
	timeout time.Duration
}

var _ Classifier = (*RekognitionClassifier)(nil)

// NewRekognitionClassifier wrap an existing client (tests inject a mock)
func NewRekognitionClassifier(api DetectModerationLabelsAPI, timeout time.Duration) *RekognitionClassifier {
	return &RekognitionClassifier{api: api, timeout: timeout}
}

// NewRekognitionFromConfig build the aws client from static credentials in config
func NewRekognitionFromConfig(ctx context.Context, c config.ClassifierConfig) (*RekognitionClassifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(c.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewRekognitionClassifier(rekognition.NewFromConfig(awsCfg), time.Duration(c.Timeout)*time.Second), nil
}

// Classify send the image bytes inline, labels below minConfidence are filtered by the service
func (r *RekognitionClassifier) Classify(ctx context.Context, image []byte, minConfidence float64) ([]domain.Label, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := r.api.DetectModerationLabels(ctx, &rekognition.DetectModerationLabelsInput{
		Image:         &types.Image{Bytes: image},
		MinConfidence: aws.Float32(float32(minConfidence)),
	})
	if err != nil {
		classifyDuration.WithLabelValues(providerRekognition, "error").Observe(time.Since(start).Seconds())
		logger.Log.Warn("rekognition detect moderation labels failed", zap.Error(err))
		return nil, fmt.Errorf("detect moderation labels: %w", err)
	}
	classifyDuration.WithLabelValues(providerRekognition, "ok").Observe(time.Since(start).Seconds())

	labels := make([]domain.Label, 0, len(out.ModerationLabels))
	for _, l := range out.ModerationLabels {
		name := aws.ToString(l.Name)
		if name == "" {
			continue
		}
		labels = append(labels, domain.Label{
			Name:       name,
			ParentName: aws.ToString(l.ParentName),
			Confidence: float64(aws.ToFloat32(l.Confidence)),
		})
		classifyLabels.WithLabelValues(providerRekognition, name).Inc()
	}
	logger.Log.Debug("rekognition labels", zap.Int("count", len(labels)))
	return labels, nil
}
