package repository

import (
	"context"
	"errors"
	"fmt"

	"video_moderation_service/internal/moderation/domain"

	"gorm.io/gorm"
)

// VideoRepo definition the moderation view of the videos table
type VideoRepo interface {
	AutoMigrate() error
	GetByID(ctx context.Context, id string) (*domain.Video, error)
	UpdateModeration(ctx context.Context, id string, up domain.ModerationUpdate) error
	// Delete 回傳是否真的刪掉一筆；不存在視為成功
	Delete(ctx context.Context, id string) (bool, error)
}

type videoRepo struct {
	db *gorm.DB
}

// NewVideoRepo create VideoRepo
func NewVideoRepo(db *gorm.DB) VideoRepo {
	return &videoRepo{db: db}
}

// AutoMigrate 只在本地/測試環境用來建表，正式環境的 videos 表由上傳端維護
func (r *videoRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Video{})
}

// GetByID get Video by id, domain.ErrVideoNotFound when the row is gone
func (r *videoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	var v domain.Video
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, err
	}
	return &v, nil
}

// UpdateModeration 只更新審核相關欄位，用 Updates(map) 讓空字串也會寫入
func (r *videoRepo) UpdateModeration(ctx context.Context, id string, up domain.ModerationUpdate) error {
	values := map[string]interface{}{
		"moderation_status": up.Status,
		"moderation_notes":  up.Notes,
	}
	if up.Result != nil {
		values["moderation_result"] = up.Result
	}

	res := r.db.WithContext(ctx).Model(&domain.Video{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("update moderation status of video %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update moderation status of video %s: %w", id, domain.ErrVideoNotFound)
	}
	return nil
}

// Delete hard delete the row
func (r *videoRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Video{})
	if res.Error != nil {
		return false, fmt.Errorf("delete video %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}
