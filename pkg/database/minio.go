package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectNotFound object (or prefix) does not exist in the bucket
var ErrObjectNotFound = errors.New("minio object not found")

// MinIOClientRepo definition minio operations used by the moderation storage
type MinIOClientRepo interface {
	DownloadFile(ctx context.Context, objectName, destPath string) error
	RemoveObject(ctx context.Context, objectName string) error
	RemovePrefix(ctx context.Context, prefix string) (int, error)
}

// MinIOClient definition minio client
type MinIOClient struct {
	Client     *minio.Client
	BucketName string
}

// NewMinIOConnection create a new minio connection have retry
func NewMinIOConnection(d MinIOConnection) (*MinIOClient, error) {
	var mc *MinIOClient
	var err error

	for i := 1; i <= d.RetryCount; i++ {
		mc, err = NewMinioClient(d.Endpoint, d.User, d.Password, d.BucketName, d.UseSSL)
		if err == nil {
			log.Printf("minIO[%s] 連線成功 (嘗試 %d 次)", d.Endpoint, i)
			return mc, nil
		}

		log.Printf("minIO[%s] 連線失敗 (嘗試 %d/%d): %v", d.Endpoint, i, d.RetryCount, err)
		time.Sleep(d.RetryInterval * time.Second)
	}

	return mc, err
}

// NewMinioClient create a new minio, the bucket must already exist
func NewMinioClient(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOClient, error) {
	minioClient, err := minio.New(endpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
			Secure: useSSL,
		})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 失敗: %v", err)
	}

	exists, err := minioClient.BucketExists(context.Background(), bucketName)
	if err != nil {
		return nil, fmt.Errorf("檢查 bucket [%s] 失敗: %v", bucketName, err)
	}
	// 審核服務只讀取與刪除，bucket 不存在代表設定錯誤，不自動建立
	if !exists {
		return nil, fmt.Errorf("bucket [%s] 不存在", bucketName)
	}

	return &MinIOClient{
		Client:     minioClient,
		BucketName: bucketName,
	}, nil
}

// DownloadFile minio download file func, ErrObjectNotFound when the key is missing
func (m *MinIOClient) DownloadFile(ctx context.Context, objectName, destPath string) error {
	obj, err := m.Client.GetObject(ctx, m.BucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("取得物件失敗: %w", mapNotFound(err))
	}
	defer obj.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("建立檔案失敗: %v", err)
	}
	defer destFile.Close()

	// GetObject 是 lazy 的，NoSuchKey 會在第一次 Read 才出現
	if _, err := io.Copy(destFile, obj); err != nil {
		return fmt.Errorf("下載物件 %s 失敗: %w", objectName, mapNotFound(err))
	}
	return nil
}

// RemoveObject remove exactly one object, ErrObjectNotFound when the key is missing.
// S3 的 DELETE 對不存在的 key 也回成功，所以先 Stat
func (m *MinIOClient) RemoveObject(ctx context.Context, objectName string) error {
	if _, err := m.Client.StatObject(ctx, m.BucketName, objectName, minio.StatObjectOptions{}); err != nil {
		return fmt.Errorf("查詢物件 %s 失敗: %w", objectName, mapNotFound(err))
	}
	if err := m.Client.RemoveObject(ctx, m.BucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("刪除物件 %s 失敗: %w", objectName, mapNotFound(err))
	}
	return nil
}

// RemovePrefix remove every object under prefix, return removed count.
// 沒有任何物件時回傳 ErrObjectNotFound
func (m *MinIOClient) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	// 提早 return 時要停掉 ListObjects 的 goroutine，否則它會卡在 channel send
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	objects := m.Client.ListObjects(listCtx, m.BucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})

	removed := 0
	for obj := range objects {
		if obj.Err != nil {
			return removed, fmt.Errorf("列出物件 %s 失敗: %w", prefix, obj.Err)
		}
		if err := m.Client.RemoveObject(ctx, m.BucketName, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			if errors.Is(mapNotFound(err), ErrObjectNotFound) {
				continue
			}
			return removed, fmt.Errorf("刪除物件 %s 失敗: %w", obj.Key, err)
		}
		removed++
	}
	if removed == 0 {
		return 0, ErrObjectNotFound
	}
	return removed, nil
}

func mapNotFound(err error) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return fmt.Errorf("%w: %v", ErrObjectNotFound, err)
	}
	return err
}
