package app

import (
	"sort"

	"video_moderation_service/internal/moderation/domain"
)

// Aggregate 任何一張截圖被標記就拒絕整支影片
func Aggregate(results []domain.ClassificationResult) domain.ModerationVerdict {
	ordered := append([]domain.ClassificationResult(nil), results...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TimestampSeconds < ordered[j].TimestampSeconds
	})

	v := domain.ModerationVerdict{
		Approved:      true,
		Reasons:       []string{},
		FramesChecked: len(results),
	}
	for _, r := range ordered {
		if !r.Flagged {
			continue
		}
		v.Approved = false
		v.Reasons = append(v.Reasons, r.Reasons...)
	}
	return v
}
