package classifier

import (
	"context"

	"video_moderation_service/internal/moderation/domain"
)

// Classifier definition the image moderation collaborator
type Classifier interface {
	// Classify 回傳信心值 >= minConfidence 的標籤，順序依服務回傳
	Classify(ctx context.Context, image []byte, minConfidence float64) ([]domain.Label, error)
}
