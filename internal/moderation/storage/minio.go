package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"video_moderation_service/internal/moderation/domain"
	"video_moderation_service/pkg/database"
)

// VideoPrefix object layout: videos/{videoID}/...
const VideoPrefix = "videos/"

// MinIOStore video origin backed by the minio bucket the uploader writes to
type MinIOStore struct {
	client database.MinIOClientRepo
	bucket string
}

var _ Store = (*MinIOStore)(nil)

// NewMinIOStore create a MinIOStore
func NewMinIOStore(client database.MinIOClientRepo, bucket string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket}
}

// ObjectKey derive the object key from a (presigned or public) object URL.
// path-style URL 會帶 bucket 名稱，要拿掉
func (m *MinIOStore) ObjectKey(videoURL string) (string, error) {
	u, err := url.Parse(videoURL)
	if err != nil {
		return "", fmt.Errorf("parse video url: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	key = strings.TrimPrefix(key, m.bucket+"/")
	if key == "" {
		return "", fmt.Errorf("video url %q has no object key", videoURL)
	}
	return key, nil
}

// AssetID the {videoID} of videos/{videoID}/..., otherwise the exact object key so
// Delete removes the same object Download fetched
func (m *MinIOStore) AssetID(videoURL, videoID string) string {
	key, err := m.ObjectKey(videoURL)
	if err != nil {
		return videoID
	}
	if rest, ok := strings.CutPrefix(key, VideoPrefix); ok {
		if i := strings.Index(rest, "/"); i > 0 {
			return rest[:i]
		}
	}
	return key
}

// isObjectKey bare video ids 沒有 "/" 也沒有副檔名
func isObjectKey(assetID string) bool {
	return strings.Contains(assetID, "/") || path.Ext(assetID) != ""
}

// Download GetObject into destPath; a missing key is reported as a DownloadError 404
func (m *MinIOStore) Download(ctx context.Context, videoURL, destPath string) error {
	key, err := m.ObjectKey(videoURL)
	if err != nil {
		return err
	}
	if err := m.client.DownloadFile(ctx, key, destPath); err != nil {
		if errors.Is(err, database.ErrObjectNotFound) {
			return &DownloadError{URL: videoURL, StatusCode: 404}
		}
		return err
	}
	return nil
}

// Delete remove every object under videos/{videoID}/, or the single object when
// assetID is an object key
func (m *MinIOStore) Delete(ctx context.Context, assetID string) error {
	var err error
	if isObjectKey(assetID) {
		err = m.client.RemoveObject(ctx, assetID)
	} else {
		_, err = m.client.RemovePrefix(ctx, VideoPrefix+assetID+"/")
	}
	if err != nil {
		if errors.Is(err, database.ErrObjectNotFound) {
			return domain.ErrAssetNotFound
		}
		return fmt.Errorf("remove objects of video asset %s: %w", assetID, err)
	}
	return nil
}
