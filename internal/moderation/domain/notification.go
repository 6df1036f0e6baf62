package domain

import (
	"fmt"
	"strings"
	"time"
)

// NotificationType definition notification type
type NotificationType string

const (
	//NotificationVideoRejected video was removed by moderation
	NotificationVideoRejected NotificationType = "video_rejected"
)

// Notification 只在拒絕時建立，寫入一次
type Notification struct {
	ID        int64
	UserID    string
	ActorID   *string
	VideoID   string
	Type      NotificationType
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

// NewRejectionNotification build the notification shown to the uploader
func NewRejectionNotification(video *Video, reasons []string) *Notification {
	caption := strings.TrimSpace(video.Caption)
	if caption == "" {
		caption = "Untitled"
	}
	msg := fmt.Sprintf("Your video %q was removed because it violates our content guidelines", caption)
	if len(reasons) > 0 {
		msg += ": " + strings.Join(reasons, "; ")
	}
	return &Notification{
		UserID:  video.UserID,
		VideoID: video.ID,
		Type:    NotificationVideoRejected,
		Message: msg,
		IsRead:  false,
	}
}
