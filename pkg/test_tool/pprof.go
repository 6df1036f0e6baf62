package testtool

import (
	"net/http"
	_ "net/http/pprof" // 匯入後會自動註冊 pprof endpoint

	"video_moderation_service/pkg/config"
	"video_moderation_service/pkg/logger"

	"go.uber.org/zap"
)

// StartPprof 非 production 環境在 :6060 啟動 pprof
func StartPprof() {
	if config.IsProduction() {
		logger.Log.Info("Production environment detected, pprof is disabled.")
		return
	}

	go func() {
		logger.Log.Info("Starting pprof server on :6060")
		if err := http.ListenAndServe(":6060", nil); err != nil {
			logger.Log.Warn("pprof server failed", zap.Error(err))
		}
	}()
}

// 常用端點:
// 	•	/debug/pprof/goroutine → 顯示所有 Goroutines，找出卡住的 ffmpeg 或分類呼叫
// 	•	/debug/pprof/heap → 顯示記憶體分配
// 	•	/debug/pprof/profile → 執行 30 秒 CPU 分析
//
// go tool pprof http://localhost:6060/debug/pprof/goroutine
