package errprocess

import (
	"fmt"

	"video_moderation_service/pkg/logger"

	"go.uber.org/zap"
)

// Wrap log msg with the cause and return an error that still matches the cause via errors.Is
func Wrap(msg string, err error, fields ...zap.Field) error {
	logger.Log.Error(msg, append(fields, zap.Error(err))...)
	return fmt.Errorf("%s: %w", msg, err)
}
