package storage

import (
	"video_moderation_service/pkg/logger"

	"go.uber.org/zap"
)

// leveledZap adapts logger.Log to retryablehttp.LeveledLogger.
// 重試中的錯誤只是 WARN，最後失敗會由呼叫端記 ERROR
type leveledZap struct{}

func (leveledZap) Error(msg string, keysAndValues ...interface{}) {
	logger.Log.Warn(msg, kvFields(keysAndValues)...)
}

func (leveledZap) Warn(msg string, keysAndValues ...interface{}) {
	logger.Log.Warn(msg, kvFields(keysAndValues)...)
}

func (leveledZap) Info(msg string, keysAndValues ...interface{}) {
	logger.Log.Info(msg, kvFields(keysAndValues)...)
}

func (leveledZap) Debug(msg string, keysAndValues ...interface{}) {
	logger.Log.Debug(msg, kvFields(keysAndValues)...)
}

func kvFields(kv []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	return fields
}
