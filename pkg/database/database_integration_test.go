//go:build integration

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"video_moderation_service/pkg/logger"
	testtool "video_moderation_service/pkg/test_tool"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	c, host, port, err := testtool.SetupContainer(ctx, testtool.RedisRequest())
	require.NoError(t, err)
	defer c.Terminate(ctx)

	client, err := NewRedisClient(RedisConnection{Addr: fmt.Sprintf("%s:%s", host, port)})
	require.NoError(t, err)
	defer client.Close()

	locker := NewRedisLocker(client, "moderation:lock:")
	token, ok, err := locker.Acquire(ctx, "v1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.Acquire(ctx, "v1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second job for the same video must not get the lock")

	// 別人的 token 不能釋放
	require.NoError(t, locker.Release(ctx, "v1", "not-mine"))
	_, ok, _ = locker.Acquire(ctx, "v1", time.Minute)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, "v1", token))
	_, ok, err = locker.Acquire(ctx, "v1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMinIORemovePrefix(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	c, host, port, err := testtool.SetupContainer(ctx, testtool.MinIORequest("minioadmin", "minioadmin"))
	require.NoError(t, err)
	defer c.Terminate(ctx)

	endpoint := fmt.Sprintf("%s:%s", host, port)
	// 先建 bucket，NewMinioClient 不會自動建立
	bootstrap, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
	})
	require.NoError(t, err)
	require.NoError(t, bootstrap.MakeBucket(ctx, "videos", minio.MakeBucketOptions{}))

	mc, err := NewMinioClient(endpoint, "minioadmin", "minioadmin", "videos", false)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "original.mp4")
	require.NoError(t, os.WriteFile(src, []byte("video"), 0o644))
	for _, key := range []string{"videos/v1/original.mp4", "videos/v1/thumb.jpg", "raw/clip-77.mp4"} {
		_, err := bootstrap.FPutObject(ctx, "videos", key, src, minio.PutObjectOptions{})
		require.NoError(t, err)
	}

	dest := filepath.Join(t.TempDir(), "dl.mp4")
	require.NoError(t, mc.DownloadFile(ctx, "videos/v1/original.mp4", dest))
	assert.ErrorIs(t, mc.DownloadFile(ctx, "videos/v1/missing.mp4", dest), ErrObjectNotFound)

	n, err := mc.RemovePrefix(ctx, "videos/v1/")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = mc.RemovePrefix(ctx, "videos/v1/")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, mc.RemoveObject(ctx, "raw/clip-77.mp4"))
	assert.ErrorIs(t, mc.RemoveObject(ctx, "raw/clip-77.mp4"), ErrObjectNotFound)
}
