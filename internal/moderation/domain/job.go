package domain

const (
	//QueueName definition queue name
	QueueName = "moderation"
)

// ModerationJob 定義審核工作訊息，每支上傳完成的影片只會產生一次
type ModerationJob struct {
	VideoID      string `json:"video_id"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// JobResult is what the trigger surface returns for one job
type JobResult struct {
	Approved         bool     `json:"approved"`
	Reasons          []string `json:"reasons,omitempty"`
	FramesChecked    int      `json:"frames_checked"`
	Message          string   `json:"message"`
	Status           string   `json:"status"`
	Deleted          *bool    `json:"deleted,omitempty"`
	NotificationSent *bool    `json:"notification_sent,omitempty"`
}
