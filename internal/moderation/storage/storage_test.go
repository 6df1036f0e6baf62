package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"video_moderation_service/internal/moderation/domain"
	"video_moderation_service/pkg/database"
	"video_moderation_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetNewNop()
}

func TestVideoIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://vz-1.b-cdn.net/3f2b1c9e-0f4a-4a59-9c55-6d1f7e2a1b3c/playlist.m3u8":         "3f2b1c9e-0f4a-4a59-9c55-6d1f7e2a1b3c",
		"https://cdn.example.com/videos/3F2B1C9E-0F4A-4A59-9C55-6D1F7E2A1B3C.mp4":            "3f2b1c9e-0f4a-4a59-9c55-6d1f7e2a1b3c",
		"https://cdn.example.com/videos/clip-42.mp4":                                        "clip-42",
		"http://minio:9000/videos/videos/abc/original.mp4?X-Amz-Signature=deadbeef":         "original",
		"":                                                                                  "",
		"https://cdn.example.com":                                                           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, VideoIDFromURL(in), in)
	}
}

func TestAssetID(t *testing.T) {
	s := newTestStream("http://cdn")
	assert.Equal(t, "3f2b1c9e-0f4a-4a59-9c55-6d1f7e2a1b3c", AssetID(s, "https://cdn/3f2b1c9e-0f4a-4a59-9c55-6d1f7e2a1b3c/play.mp4", "row-id"))
	assert.Equal(t, "row-id", AssetID(s, "https://cdn", "row-id"))
}

func newTestStream(baseURL string) *StreamClient {
	return NewStreamClient(StreamConfig{
		BaseURL:   baseURL,
		AccountID: "123456",
		AccessKey: "0123456789abcdef0123456789abcdef",
		RetryMax:  0,
	})
}

func TestStreamClientDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.mp4":
			_, _ = w.Write([]byte("video-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := newTestStream(srv.URL)
	dir := t.TempDir()

	t.Run("writes body to dest", func(t *testing.T) {
		dest := filepath.Join(dir, "ok.mp4")
		require.NoError(t, s.Download(context.Background(), srv.URL+"/ok.mp4", dest))
		b, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "video-bytes", string(b))
	})

	t.Run("non 2xx is a DownloadError", func(t *testing.T) {
		err := s.Download(context.Background(), srv.URL+"/missing.mp4", filepath.Join(dir, "missing.mp4"))
		var de *DownloadError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, http.StatusNotFound, de.StatusCode)
		assert.Contains(t, err.Error(), "404")
	})
}

func TestStreamClientDelete(t *testing.T) {
	var gotPath, gotKey, gotMethod string
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotKey, gotMethod = r.URL.Path, r.Header.Get("AccessKey"), r.Method
		w.WriteHeader(status)
	}))
	defer srv.Close()

	s := newTestStream(srv.URL + "/")

	t.Run("ok", func(t *testing.T) {
		status = http.StatusOK
		require.NoError(t, s.Delete(context.Background(), "vid-1"))
		assert.Equal(t, http.MethodDelete, gotMethod)
		assert.Equal(t, "/library/123456/videos/vid-1", gotPath)
		assert.Equal(t, "0123456789abcdef0123456789abcdef", gotKey)
	})

	t.Run("not found", func(t *testing.T) {
		status = http.StatusNotFound
		assert.ErrorIs(t, s.Delete(context.Background(), "vid-1"), domain.ErrAssetNotFound)
	})

	t.Run("unauthorized", func(t *testing.T) {
		status = http.StatusUnauthorized
		err := s.Delete(context.Background(), "vid-1")
		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrAssetNotFound))
		assert.Contains(t, err.Error(), "401")
	})
}

// MockMinIOClient 是 MinIOClientRepo 的 Mock
type MockMinIOClient struct {
	mock.Mock
}

func (m *MockMinIOClient) RemoveObject(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

func (m *MockMinIOClient) DownloadFile(ctx context.Context, objectName, destPath string) error {
	args := m.Called(ctx, objectName, destPath)
	return args.Error(0)
}

func (m *MockMinIOClient) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

func TestMinIOStore(t *testing.T) {
	ctx := context.Background()

	t.Run("object key strips bucket", func(t *testing.T) {
		s := NewMinIOStore(new(MockMinIOClient), "uploads")
		key, err := s.ObjectKey("http://minio:9000/uploads/videos/v1/original.mp4?X-Amz-Expires=60")
		require.NoError(t, err)
		assert.Equal(t, "videos/v1/original.mp4", key)

		_, err = s.ObjectKey("http://minio:9000/")
		assert.Error(t, err)
	})

	t.Run("asset id", func(t *testing.T) {
		s := NewMinIOStore(new(MockMinIOClient), "uploads")
		assert.Equal(t, "v1", s.AssetID("http://minio:9000/uploads/videos/v1/original.mp4", "job-id"))
		assert.Equal(t, "raw/original.mp4", s.AssetID("http://minio:9000/uploads/raw/original.mp4", "job-id"))
		assert.Equal(t, "videos/original.mp4", s.AssetID("http://minio:9000/uploads/videos/original.mp4", "job-id"))
		assert.Equal(t, "job-id", s.AssetID("http://minio:9000/", "job-id"))
		assert.Equal(t, "v1", AssetID(s, "http://minio:9000/uploads/videos/v1/original.mp4", "job-id"))
	})

	t.Run("download", func(t *testing.T) {
		mc := new(MockMinIOClient)
		mc.On("DownloadFile", ctx, "videos/v1/original.mp4", "/tmp/x.mp4").Return(nil).Once()
		s := NewMinIOStore(mc, "uploads")
		assert.NoError(t, s.Download(ctx, "http://minio:9000/uploads/videos/v1/original.mp4", "/tmp/x.mp4"))
		mc.AssertExpectations(t)
	})

	t.Run("download missing object", func(t *testing.T) {
		mc := new(MockMinIOClient)
		mc.On("DownloadFile", ctx, "videos/v1/original.mp4", "/tmp/x.mp4").Return(database.ErrObjectNotFound).Once()
		s := NewMinIOStore(mc, "uploads")
		var de *DownloadError
		assert.ErrorAs(t, s.Download(ctx, "http://minio:9000/uploads/videos/v1/original.mp4", "/tmp/x.mp4"), &de)
	})

	t.Run("delete", func(t *testing.T) {
		mc := new(MockMinIOClient)
		mc.On("RemovePrefix", ctx, "videos/v1/").Return(3, nil).Once()
		mc.On("RemovePrefix", ctx, "videos/v2/").Return(0, database.ErrObjectNotFound).Once()
		mc.On("RemovePrefix", ctx, "videos/v3/").Return(0, errors.New("minio down")).Once()
		s := NewMinIOStore(mc, "uploads")

		assert.NoError(t, s.Delete(ctx, "v1"))
		assert.ErrorIs(t, s.Delete(ctx, "v2"), domain.ErrAssetNotFound)
		err := s.Delete(ctx, "v3")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrAssetNotFound)
		mc.AssertExpectations(t)
	})

	t.Run("object outside the videos layout is deleted by its own key", func(t *testing.T) {
		const videoURL = "http://minio:9000/uploads/raw/clip-77.mp4"
		mc := new(MockMinIOClient)
		mc.On("DownloadFile", ctx, "raw/clip-77.mp4", "/tmp/x.mp4").Return(nil).Once()
		mc.On("RemoveObject", ctx, "raw/clip-77.mp4").Return(nil).Once()
		s := NewMinIOStore(mc, "uploads")

		require.NoError(t, s.Download(ctx, videoURL, "/tmp/x.mp4"))
		require.NoError(t, s.Delete(ctx, AssetID(s, videoURL, "row-9")))
		mc.AssertExpectations(t)
		mc.AssertNotCalled(t, "RemovePrefix", mock.Anything, mock.Anything)
	})

	t.Run("missing single object", func(t *testing.T) {
		mc := new(MockMinIOClient)
		mc.On("RemoveObject", ctx, "clip.mp4").Return(database.ErrObjectNotFound).Once()
		s := NewMinIOStore(mc, "uploads")
		assert.ErrorIs(t, s.Delete(ctx, "clip.mp4"), domain.ErrAssetNotFound)
	})
}
