package event

import (
	"context"
	"time"

	"video_moderation_service/internal/moderation/domain"
)

// Outcome 每個 job 的最終狀態事件 (approved / rejected / pending)
type Outcome struct {
	VideoID          string                  `json:"video_id"`
	Status           domain.ModerationStatus `json:"status"`
	Approved         bool                    `json:"approved"`
	Reasons          []string                `json:"reasons,omitempty"`
	FramesChecked    int                     `json:"frames_checked"`
	Note             string                  `json:"note,omitempty"`
	AssetDeleted     bool                    `json:"asset_deleted"`
	RowDeleted       bool                    `json:"row_deleted"`
	NotificationSent bool                    `json:"notification_sent"`
	OccurredAt       time.Time               `json:"occurred_at"`
}

// AuditRecord per-frame trail of one evaluated job
type AuditRecord struct {
	VideoID    string                        `bson:"video_id"`
	VideoURL   string                        `bson:"video_url"`
	Status     domain.ModerationStatus       `bson:"status"`
	Verdict    *domain.ModerationVerdict     `bson:"verdict,omitempty"`
	Frames     []domain.ClassificationResult `bson:"frames,omitempty"`
	Note       string                        `bson:"note,omitempty"`
	RecordedAt time.Time                     `bson:"recorded_at"`
}

// Publisher definition outcome event sink
type Publisher interface {
	Publish(ctx context.Context, o Outcome) error
}

// AuditStore definition audit trail sink
type AuditStore interface {
	Record(ctx context.Context, r AuditRecord) error
}

// NopPublisher used when kafka is disabled
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(context.Context, Outcome) error { return nil }

// NopAuditStore used when mongo is disabled
type NopAuditStore struct{}

// Record does nothing
func (NopAuditStore) Record(context.Context, AuditRecord) error { return nil }
