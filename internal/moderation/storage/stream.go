package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"video_moderation_service/internal/moderation/domain"

	"github.com/hashicorp/go-retryablehttp"
)

// StreamConfig definition CDN stream API setting
type StreamConfig struct {
	BaseURL   string
	AccountID string
	AccessKey string
	Timeout   time.Duration
	// RetryMax transport level retries on connection errors and 5xx
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// StreamClient video origin backed by a CDN stream library API.
// 影片以 library(account) + video guid 定位，刪除需要 AccessKey header
type StreamClient struct {
	cfg    StreamConfig
	client *http.Client
}

var _ Store = (*StreamClient)(nil)

// NewStreamClient create a StreamClient with a retrying transport
func NewStreamClient(cfg StreamConfig) *StreamClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = time.Second
	}
	if cfg.RetryWaitMax <= 0 {
		cfg.RetryWaitMax = 10 * time.Second
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.Logger = retryablehttp.LeveledLogger(leveledZap{})
	// 4xx 不重試，交給呼叫端判斷
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := rc.StandardClient()
	client.Timeout = cfg.Timeout

	return &StreamClient{cfg: cfg, client: client}
}

// Download GET videoURL into destPath
func (s *StreamClient) Download(ctx context.Context, videoURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", videoURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &DownloadError{URL: videoURL, StatusCode: res.StatusCode}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, res.Body); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return nil
}

// Delete DELETE /library/{accountID}/videos/{videoID}; 404 => domain.ErrAssetNotFound
func (s *StreamClient) Delete(ctx context.Context, videoID string) error {
	endpoint := fmt.Sprintf("%s/library/%s/videos/%s", strings.TrimRight(s.cfg.BaseURL, "/"), s.cfg.AccountID, videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("AccessKey", s.cfg.AccessKey)
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete video %s: %w", videoID, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return domain.ErrAssetNotFound
	case res.StatusCode >= 200 && res.StatusCode <= 299:
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("delete video %s: status %d: %s", videoID, res.StatusCode, strings.TrimSpace(string(body)))
	}
}
