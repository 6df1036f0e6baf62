package app

import (
	"context"
	"fmt"
	"os"

	"video_moderation_service/internal/moderation/classifier"
	"video_moderation_service/internal/moderation/domain"
	"video_moderation_service/pkg"

	"golang.org/x/sync/errgroup"
)

// readFrame 讓 test 可以替換
var readFrame = os.ReadFile

// Dispatcher fan every frame out to the classifier and fan the results back in
type Dispatcher struct {
	classifier    classifier.Classifier
	minConfidence float64
	denylist      []string
}

// NewDispatcher create a Dispatcher
func NewDispatcher(c classifier.Classifier, minConfidence float64, denylist []string) *Dispatcher {
	return &Dispatcher{
		classifier:    c,
		minConfidence: minConfidence,
		denylist:      append([]string(nil), denylist...),
	}
}

// Classify 每張截圖一個 goroutine，全部完成才回傳，任一失敗即取消其他呼叫
func (d *Dispatcher) Classify(ctx context.Context, frames []domain.FrameSample) ([]domain.ClassificationResult, error) {
	results := make([]domain.ClassificationResult, len(frames))
	g, gctx := errgroup.WithContext(ctx)

	for i, f := range frames {
		i, f := i, f
		g.Go(func() error {
			image, err := readFrame(f.LocalPath)
			if err != nil {
				return fmt.Errorf("read frame at %ds: %w", f.TimestampSeconds, err)
			}
			labels, err := d.classifier.Classify(gctx, image, d.minConfidence)
			if err != nil {
				return fmt.Errorf("classify frame at %ds: %w", f.TimestampSeconds, err)
			}
			results[i] = d.evaluate(f.TimestampSeconds, labels)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// evaluate 本地再檢查一次信心值 (>= minConfidence) 與 denylist
func (d *Dispatcher) evaluate(ts int, labels []domain.Label) domain.ClassificationResult {
	r := domain.ClassificationResult{TimestampSeconds: ts, Labels: labels}
	for _, l := range labels {
		if l.Confidence < d.minConfidence {
			continue
		}
		if !pkg.ContainsFold(d.denylist, l.Name) && !pkg.ContainsFold(d.denylist, l.ParentName) {
			continue
		}
		r.Flagged = true
		r.Reasons = append(r.Reasons, Reason(l.Name, ts, l.Confidence))
	}
	return r
}

// Reason "{label} at {t}s ({confidence}% confidence)"
func Reason(label string, ts int, confidence float64) string {
	return fmt.Sprintf("%s at %ds (%.2f%% confidence)", label, ts, confidence)
}
