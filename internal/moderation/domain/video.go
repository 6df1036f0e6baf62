package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ModerationStatus definition video moderation status
type ModerationStatus string

const (
	//StatusPending 等待人工審核（或尚未審核）
	StatusPending ModerationStatus = "pending"
	//StatusApproved 自動審核通過
	StatusApproved ModerationStatus = "approved"
	//StatusRejectedPendingReview 保留給人工審核工具；自動拒絕會直接刪除 row，本服務從不寫入
	StatusRejectedPendingReview ModerationStatus = "rejected-pending-manual-review"
	// StatusRejected is never written to a row: a rejected video is deleted. Used for events and metrics only.
	StatusRejected ModerationStatus = "rejected"
)

// Video 定義影片模型，由 record store 擁有，本服務只更新審核欄位或刪除
type Video struct {
	ID               string           `gorm:"primaryKey;type:text"`
	VideoURL         string           `gorm:"column:video_url"`
	ThumbnailURL     string           `gorm:"column:thumbnail_url"`
	Caption          string           `gorm:"column:caption"`
	UserID           string           `gorm:"column:user_id;index"`
	ModerationStatus ModerationStatus `gorm:"column:moderation_status;default:pending"`
	ModerationNotes  string           `gorm:"column:moderation_notes"`
	ModerationResult datatypes.JSON   `gorm:"column:moderation_result"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName gorm table name
func (Video) TableName() string {
	return "videos"
}

// ModerationUpdate 審核結果寫回 Video 的欄位
type ModerationUpdate struct {
	Status ModerationStatus
	Notes  string
	Result datatypes.JSON
}
