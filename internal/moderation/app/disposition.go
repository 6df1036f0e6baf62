package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"video_moderation_service/internal/moderation/domain"
	"video_moderation_service/internal/moderation/repository"
	"video_moderation_service/internal/moderation/storage"
	errprocess "video_moderation_service/pkg/err"
	"video_moderation_service/pkg/logger"

	"go.uber.org/zap"
)

// Disposer 執行審核結果：通過就更新狀態，拒絕就刪除影片並通知上傳者
type Disposer struct {
	videos        repository.VideoRepo
	notifications repository.NotificationRepo
	store         storage.Store
}

// NewDisposer create a Disposer
func NewDisposer(videos repository.VideoRepo, notifications repository.NotificationRepo, store storage.Store) *Disposer {
	return &Disposer{videos: videos, notifications: notifications, store: store}
}

// Dispose apply verdict to videoID. Repeated calls for the same rejected video are safe.
func (d *Disposer) Dispose(ctx context.Context, videoID string, verdict domain.ModerationVerdict, videoURL string) (domain.DispositionResult, error) {
	if verdict.Approved {
		return domain.DispositionResult{}, d.approve(ctx, videoID, verdict)
	}
	return d.reject(ctx, videoID, verdict, videoURL)
}

func (d *Disposer) approve(ctx context.Context, videoID string, verdict domain.ModerationVerdict) error {
	result, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}
	up := domain.ModerationUpdate{
		Status: domain.StatusApproved,
		Notes:  fmt.Sprintf("approved automatically: %d frames checked, no violations", verdict.FramesChecked),
		Result: result,
	}
	if err := d.videos.UpdateModeration(ctx, videoID, up); err != nil {
		return errprocess.Wrap("mark video approved", err, zap.String("video_id", videoID))
	}
	logger.Log.Info("video approved", zap.String("video_id", videoID), zap.Int("frames_checked", verdict.FramesChecked))
	return nil
}

// reject 順序不能換：先讀 owner，再通知，再刪遠端檔案，最後刪 row
func (d *Disposer) reject(ctx context.Context, videoID string, verdict domain.ModerationVerdict, videoURL string) (domain.DispositionResult, error) {
	var res domain.DispositionResult
	log := logger.Log.With(zap.String("video_id", videoID))

	// 1. 刪除前先取得 owner 與 caption
	video, err := d.videos.GetByID(ctx, videoID)
	switch {
	case errors.Is(err, domain.ErrVideoNotFound):
		video = nil
		log.Info("video row already gone, skip notification")
	case err != nil:
		return res, fmt.Errorf("read video before reject: %w", err)
	}

	// 2. 通知失敗不能阻擋刪除
	if video != nil {
		created, nerr := d.notifications.Create(ctx, domain.NewRejectionNotification(video, verdict.Reasons))
		switch {
		case nerr != nil:
			log.Error("insert rejection notification failed", zap.Error(nerr))
		case !created:
			res.Notified = true
			log.Info("rejection notification already exists")
		default:
			res.Notified = true
		}
	}

	// 3. 遠端檔案不存在視為成功
	assetID := storage.AssetID(d.store, videoURL, videoID)
	switch err := d.store.Delete(ctx, assetID); {
	case err == nil, errors.Is(err, domain.ErrAssetNotFound):
		res.AssetDeleted = true
	default:
		assetDeleteFailures.Inc()
		log.Error("delete remote asset failed", zap.String("asset_id", assetID), zap.Error(err))
	}

	// 4. row 刪除失敗必須往上拋，讓外層重試
	removed, err := d.videos.Delete(ctx, videoID)
	if err != nil {
		return res, errprocess.Wrap("delete video row", err, zap.String("video_id", videoID))
	}
	res.RowDeleted = true

	log.Info("video rejected",
		zap.Strings("reasons", verdict.Reasons),
		zap.Bool("asset_deleted", res.AssetDeleted),
		zap.Bool("row_removed_now", removed),
		zap.Bool("notified", res.Notified))
	return res, nil
}
