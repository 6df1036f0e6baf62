package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"video_moderation_service/internal/moderation/domain"
	"video_moderation_service/internal/moderation/event"
	"video_moderation_service/internal/moderation/repository"
	"video_moderation_service/internal/moderation/storage"
	"video_moderation_service/pkg/config"
	"video_moderation_service/pkg/database"
	errprocess "video_moderation_service/pkg/err"
	"video_moderation_service/pkg/logger"
	"video_moderation_service/pkg/retry"

	"go.uber.org/zap"
)

// stage names used in pending notes and metrics
const (
	stageDownload = "download"
	stageExtract  = "frame extraction"
	stageClassify = "classification"
	stageDispose  = "dispose"
)

// Classifier definition classification stage
type Classifier interface {
	Classify(ctx context.Context, frames []domain.FrameSample) ([]domain.ClassificationResult, error)
}

// Disposition definition disposition stage
type Disposition interface {
	Dispose(ctx context.Context, videoID string, verdict domain.ModerationVerdict, videoURL string) (domain.DispositionResult, error)
}

// Runner definition what the trigger surfaces need
type Runner interface {
	Run(ctx context.Context, job domain.ModerationJob) (*domain.JobResult, error)
	RunWithRetry(ctx context.Context, job domain.ModerationJob) (*domain.JobResult, error)
}

// Options pipeline tunables, built once from config
type Options struct {
	ScratchDir string
	Timestamps []int
	LockTTL    time.Duration
	Retry      retry.Policy
}

// OptionsFromConfig build Options from the loaded config
func OptionsFromConfig(c config.Moderation) Options {
	return Options{
		ScratchDir: c.Pipeline.ScratchDir,
		Timestamps: append([]int(nil), c.Pipeline.Timestamps...),
		LockTTL:    c.Redis.LockTTL,
		Retry:      retry.FromConfig(c.Pipeline.Retry),
	}
}

// Deps pipeline collaborators. Locker, Publisher and Audit are optional.
type Deps struct {
	Store      storage.Store
	Extractor  Extractor
	Classifier Classifier
	Disposer   Disposition
	Videos     repository.VideoRepo
	Locker     database.Locker
	Publisher  event.Publisher
	Audit      event.AuditStore
}

// Pipeline Acquire -> Extract -> Classify -> Decide -> Dispose -> Cleanup
type Pipeline struct {
	Deps
	opts Options
}

var _ Runner = (*Pipeline)(nil)

// NewPipeline create a Pipeline
func NewPipeline(deps Deps, opts Options) *Pipeline {
	if deps.Publisher == nil {
		deps.Publisher = event.NopPublisher{}
	}
	if deps.Audit == nil {
		deps.Audit = event.NopAuditStore{}
	}
	if len(opts.Timestamps) == 0 {
		opts.Timestamps = append([]int(nil), config.DefaultTimestamps...)
	}
	if opts.ScratchDir == "" {
		opts.ScratchDir = "./tmp"
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Minute
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry = retry.DefaultPolicy()
	}
	return &Pipeline{Deps: deps, opts: opts}
}

// RunWithRetry wrap Run in the retry policy. ErrJobInFlight and ErrInvalidJob are not retried.
func (p *Pipeline) RunWithRetry(ctx context.Context, job domain.ModerationJob) (*domain.JobResult, error) {
	var result *domain.JobResult
	err := retry.Do(ctx, p.opts.Retry, func(attempt int) error {
		r, err := p.Run(ctx, job)
		if err != nil {
			if errors.Is(err, domain.ErrJobInFlight) || errors.Is(err, domain.ErrInvalidJob) {
				return retry.Permanent(err)
			}
			return err
		}
		result = r
		return nil
	}, func(attempt int, err error, wait time.Duration) {
		jobRetries.Inc()
		logger.Log.Warn("moderation attempt failed, retrying",
			zap.String("video_id", job.VideoID),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	if err != nil {
		if !errors.Is(err, domain.ErrJobInFlight) {
			jobOutcomes.WithLabelValues("failed").Inc()
		}
		logger.Log.Error("moderation job failed", zap.String("video_id", job.VideoID), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// Run one attempt. Download, extraction and classification failures leave the video
// pending and return a nil error; infrastructure and dispose failures are returned.
func (p *Pipeline) Run(ctx context.Context, job domain.ModerationJob) (*domain.JobResult, error) {
	job.VideoID = strings.TrimSpace(job.VideoID)
	job.VideoURL = strings.TrimSpace(job.VideoURL)
	if job.VideoID == "" || job.VideoURL == "" {
		return nil, fmt.Errorf("%w: video_id and video_url are required", domain.ErrInvalidJob)
	}

	start := time.Now()
	defer func() { jobDuration.Observe(time.Since(start).Seconds()) }()
	log := logger.Log.With(zap.String("video_id", job.VideoID))

	if p.Locker != nil {
		token, ok, err := p.Locker.Acquire(ctx, job.VideoID, p.opts.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire video lock: %w", err)
		}
		if !ok {
			log.Warn("another job holds the video lock")
			return nil, domain.ErrJobInFlight
		}
		defer func() {
			if err := p.Locker.Release(context.Background(), job.VideoID, token); err != nil {
				log.Warn("release video lock failed", zap.Error(err))
			}
		}()
	}

	scratch, err := NewScratch(p.opts.ScratchDir, job.VideoID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := scratch.Cleanup(); err != nil {
			log.Warn("scratch cleanup failed", zap.Error(err))
		}
	}()

	// 1. Acquire
	log.Info("downloading video", zap.String("video_url", job.VideoURL))
	videoPath := scratch.Path("video_" + job.VideoID)
	if err := p.Store.Download(ctx, job.VideoURL, videoPath); err != nil {
		return p.pending(ctx, job, stageDownload, err, 0)
	}

	// 2. Extract
	frames, err := p.Extractor.Extract(ctx, scratch, videoPath, job.VideoID, p.opts.Timestamps)
	if err != nil {
		return p.pending(ctx, job, stageExtract, err, 0)
	}
	log.Debug("frames extracted", zap.Int("frames", len(frames)))

	// 3. Classify
	results, err := p.Classifier.Classify(ctx, frames)
	if err != nil {
		return p.pending(ctx, job, stageClassify, err, len(frames))
	}

	// 4. Decide
	verdict := Aggregate(results)

	// 5. Dispose
	disp, err := p.Disposer.Dispose(ctx, job.VideoID, verdict, job.VideoURL)
	if err != nil {
		stageFailures.WithLabelValues(stageDispose).Inc()
		return nil, fmt.Errorf("dispose: %w", err)
	}

	result := &domain.JobResult{
		Approved:      verdict.Approved,
		Reasons:       verdict.Reasons,
		FramesChecked: verdict.FramesChecked,
	}
	status := domain.StatusApproved
	if verdict.Approved {
		result.Message = fmt.Sprintf("video approved after checking %d frames", verdict.FramesChecked)
		result.Reasons = nil
	} else {
		status = domain.StatusRejected
		deleted, notified := disp.Deleted(), disp.Notified
		result.Deleted = &deleted
		result.NotificationSent = &notified
		result.Message = fmt.Sprintf("video rejected: %s", strings.Join(verdict.Reasons, "; "))
	}
	result.Status = string(status)
	jobOutcomes.WithLabelValues(result.Status).Inc()

	p.report(ctx, job, event.Outcome{
		VideoID:          job.VideoID,
		Status:           status,
		Approved:         verdict.Approved,
		Reasons:          verdict.Reasons,
		FramesChecked:    verdict.FramesChecked,
		AssetDeleted:     disp.AssetDeleted,
		RowDeleted:       disp.RowDeleted,
		NotificationSent: disp.Notified,
	}, &verdict, results)
	return result, nil
}

// pending 階段 1~3 失敗：標記 pending 留給人工審核，不回傳錯誤
func (p *Pipeline) pending(ctx context.Context, job domain.ModerationJob, stage string, cause error, framesChecked int) (*domain.JobResult, error) {
	// 被取消不算評估失敗
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s interrupted: %w", stage, ctxErr)
	}
	stageFailures.WithLabelValues(stage).Inc()

	note := fmt.Sprintf("%s failed: %v", stage, cause)
	log := logger.Log.With(zap.String("video_id", job.VideoID))
	log.Warn("moderation inconclusive, leaving video pending", zap.String("stage", stage), zap.Error(cause))

	detail, err := json.Marshal(map[string]string{"stage": stage, "error": cause.Error()})
	if err != nil {
		return nil, fmt.Errorf("marshal pending detail: %w", err)
	}
	err = p.Videos.UpdateModeration(ctx, job.VideoID, domain.ModerationUpdate{
		Status: domain.StatusPending,
		Notes:  note,
		Result: detail,
	})
	switch {
	case errors.Is(err, domain.ErrVideoNotFound):
		log.Warn("video row missing, nothing to mark pending")
	case err != nil:
		return nil, errprocess.Wrap("mark video pending", err, zap.String("video_id", job.VideoID), zap.String("stage", stage))
	}

	jobOutcomes.WithLabelValues(string(domain.StatusPending)).Inc()
	p.report(ctx, job, event.Outcome{
		VideoID:       job.VideoID,
		Status:        domain.StatusPending,
		FramesChecked: framesChecked,
		Note:          note,
	}, nil, nil)

	return &domain.JobResult{
		Approved:      false,
		FramesChecked: framesChecked,
		Status:        string(domain.StatusPending),
		Message:       "moderation inconclusive, left for manual review: " + note,
	}, nil
}

// report 事件與稽核都是 best-effort
func (p *Pipeline) report(ctx context.Context, job domain.ModerationJob, o event.Outcome, verdict *domain.ModerationVerdict, frames []domain.ClassificationResult) {
	o.OccurredAt = time.Now().UTC()
	if err := p.Publisher.Publish(ctx, o); err != nil {
		logger.Log.Warn("publish moderation outcome failed", zap.String("video_id", job.VideoID), zap.Error(err))
	}
	rec := event.AuditRecord{
		VideoID:    job.VideoID,
		VideoURL:   job.VideoURL,
		Status:     o.Status,
		Verdict:    verdict,
		Frames:     frames,
		Note:       o.Note,
		RecordedAt: o.OccurredAt,
	}
	if err := p.Audit.Record(ctx, rec); err != nil {
		logger.Log.Warn("record moderation audit failed", zap.String("video_id", job.VideoID), zap.Error(err))
	}
}
