package domain

// FrameSample 暫存於本機的單張截圖，job 結束即刪除
type FrameSample struct {
	TimestampSeconds int
	LocalPath        string
}

// Label 分類服務回傳的單一標籤，Confidence 0~100
type Label struct {
	Name       string  `json:"name" bson:"name"`
	ParentName string  `json:"parent_name,omitempty" bson:"parent_name,omitempty"`
	Confidence float64 `json:"confidence" bson:"confidence"`
}

// ClassificationResult 單張截圖的分類結果
type ClassificationResult struct {
	TimestampSeconds int      `json:"timestamp_seconds" bson:"timestamp_seconds"`
	Labels           []Label  `json:"labels" bson:"labels"`
	Flagged          bool     `json:"flagged" bson:"flagged"`
	Reasons          []string `json:"reasons,omitempty" bson:"reasons,omitempty"`
}

// ModerationVerdict pipeline 唯一的輸出
type ModerationVerdict struct {
	Approved      bool     `json:"approved" bson:"approved"`
	Reasons       []string `json:"reasons" bson:"reasons"`
	FramesChecked int      `json:"frames_checked" bson:"frames_checked"`
}

// DispositionResult summary of what the disposition step managed to do
type DispositionResult struct {
	AssetDeleted bool
	RowDeleted   bool
	Notified     bool
}

// Deleted both the remote asset and the row are gone
func (d DispositionResult) Deleted() bool {
	return d.AssetDeleted && d.RowDeleted
}
