package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store definition the video origin collaborator
type Store interface {
	// Download 將 videoURL 指向的影片寫到 destPath
	Download(ctx context.Context, videoURL, destPath string) error
	// Delete 刪除遠端影片；不存在時回傳 domain.ErrAssetNotFound
	Delete(ctx context.Context, videoID string) error
}

// AssetIDResolver implemented by stores whose remote id is not the URL's id segment
type AssetIDResolver interface {
	AssetID(videoURL, videoID string) string
}

// AssetID remote id used by Store.Delete: the store's own resolver when it has one,
// else the id isolated from the URL, else the job's video id
func AssetID(s Store, videoURL, videoID string) string {
	if r, ok := s.(AssetIDResolver); ok {
		if id := r.AssetID(videoURL, videoID); id != "" {
			return id
		}
	}
	if id := VideoIDFromURL(videoURL); id != "" {
		return id
	}
	return videoID
}

// DownloadError non-2xx answer from the origin
type DownloadError struct {
	URL        string
	StatusCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: unexpected status %d", e.URL, e.StatusCode)
}

// VideoIDFromURL isolate the UUID shaped path segment of a video URL,
// falling back to the last path segment (without extension) when there is none
func VideoIDFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Path == "" {
		return ""
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return ""
	}

	for _, s := range segments {
		candidate := strings.TrimSuffix(s, path.Ext(s))
		if len(candidate) == 36 {
			if id, err := uuid.Parse(candidate); err == nil {
				return id.String()
			}
		}
	}

	last := segments[len(segments)-1]
	return strings.TrimSuffix(last, path.Ext(last))
}
