package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"video_moderation_service/internal/moderation/domain"
	"video_moderation_service/pkg/logger"

	"go.uber.org/zap"
)

// runCommand 讓 test 可以替換 ffmpeg 執行
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// statFile 讓 test 可以替換
var statFile = os.Stat

// probeDuration 回傳影片長度（秒），test 可以替換
var probeDuration = func(ctx context.Context, binary, videoPath string) (float64, error) {
	out, err := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-of", "json", "--", videoPath).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", videoPath, err)
	}
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("decode ffprobe output: %w", err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("ffprobe reported no duration for %s", videoPath)
	}
	return d, nil
}

// Extractor definition frame sampling stage
type Extractor interface {
	Extract(ctx context.Context, scratch *Scratch, videoPath, videoID string, timestamps []int) ([]domain.FrameSample, error)
}

// FrameExtractionError one timestamp could not be decoded
type FrameExtractionError struct {
	Timestamp int
	Err       error
}

func (e *FrameExtractionError) Error() string {
	return fmt.Sprintf("frame at %ds: %v", e.Timestamp, e.Err)
}

func (e *FrameExtractionError) Unwrap() error {
	return e.Err
}

// FFmpegExtractor seek-and-grab one JPEG per timestamp, never re-encodes the whole file
type FFmpegExtractor struct {
	binary string
	probe  string
}

var _ Extractor = (*FFmpegExtractor)(nil)

// NewFFmpegExtractor create a FFmpegExtractor, binary defaults to "ffmpeg"
func NewFFmpegExtractor(binary string) *FFmpegExtractor {
	if binary == "" {
		binary = "ffmpeg"
	}
	// ffprobe 與 ffmpeg 放在同一個目錄
	probe := filepath.Join(filepath.Dir(binary), strings.Replace(filepath.Base(binary), "ffmpeg", "ffprobe", 1))
	return &FFmpegExtractor{binary: binary, probe: probe}
}

// FitTimestamps 超過影片長度的時間點改成最後一個完整秒數，重複的只保留一次.
// timestamps 必須遞增
func FitTimestamps(timestamps []int, duration float64) []int {
	if duration <= 0 {
		return timestamps
	}
	last := int(math.Ceil(duration)) - 1
	if last < 0 {
		last = 0
	}
	fitted := make([]int, 0, len(timestamps))
	for _, ts := range timestamps {
		if ts > last {
			ts = last
		}
		if n := len(fitted); n > 0 && fitted[n-1] >= ts {
			continue
		}
		fitted = append(fitted, ts)
	}
	return fitted
}

// FrameName frame_{videoID}_{t}.jpg
func FrameName(videoID string, timestamp int) string {
	return fmt.Sprintf("frame_%s_%d.jpg", videoID, timestamp)
}

// Extract 依序截圖，任何一個時間點失敗就整體失敗.
// 能取得長度時，超出影片的時間點會被拉回片尾
func (e *FFmpegExtractor) Extract(ctx context.Context, scratch *Scratch, videoPath, videoID string, timestamps []int) ([]domain.FrameSample, error) {
	if duration, err := probeDuration(ctx, e.probe, videoPath); err != nil {
		logger.Log.Warn("probe video duration failed, using configured timestamps",
			zap.String("video_id", videoID), zap.Error(err))
	} else if fitted := FitTimestamps(timestamps, duration); !slices.Equal(fitted, timestamps) {
		logger.Log.Info("timestamps fitted to video duration",
			zap.String("video_id", videoID), zap.Float64("duration", duration), zap.Ints("timestamps", fitted))
		timestamps = fitted
	}

	frames := make([]domain.FrameSample, 0, len(timestamps))
	for _, ts := range timestamps {
		out := scratch.Path(FrameName(videoID, ts))

		// -ss 放在 -i 前面才是 input seek
		args := []string{
			"-hide_banner", "-loglevel", "error",
			"-ss", strconv.Itoa(ts),
			"-i", videoPath,
			"-frames:v", "1",
			"-q:v", "2",
			"-y", out,
		}
		logger.Log.Debug("ffmpeg extract frame", zap.String("video_id", videoID), zap.Int("timestamp", ts))
		if output, err := runCommand(ctx, e.binary, args...); err != nil {
			return nil, &FrameExtractionError{Timestamp: ts, Err: fmt.Errorf("%v, output: %s", err, string(output))}
		}

		// 超過影片長度時 ffmpeg 可能成功結束但沒有輸出
		info, err := statFile(out)
		if err != nil {
			return nil, &FrameExtractionError{Timestamp: ts, Err: fmt.Errorf("no frame written: %w", err)}
		}
		if info.Size() == 0 {
			return nil, &FrameExtractionError{Timestamp: ts, Err: fmt.Errorf("empty frame file")}
		}

		frames = append(frames, domain.FrameSample{TimestampSeconds: ts, LocalPath: out})
	}
	return frames, nil
}
