package storage

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"

	"harvester/harvester/config"
	"harvester/harvester/utils/apperrors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOClient mirrors local backup files to a bucket.
type MinIOClient struct {
	client *minio.Client
	bucket string
}

func NewMinIOClient(ctx context.Context, cfg config.Config) (*MinIOClient, error) {
	bucket := cfg.MinIOBucket
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOSecure,
		},
	)
	if err != nil {
		return nil, apperrors.Storage("minio connect", err)
	}
	// Create bucket if not exists
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, apperrors.Storage("minio bucket lookup", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, apperrors.Storage("minio make bucket", err)
		}
	}
	return &MinIOClient{client: client, bucket: bucket}, nil
}

// ObjectKey is where a backup file lands: backups/<run id>/<file name>.
func ObjectKey(runID, filePath string) string {
	return path.Join("backups", runID, filepath.Base(filePath))
}

// UploadFiles copies each file under its ObjectKey and returns the keys written.
// It stops at the first failure.
func (m *MinIOClient) UploadFiles(ctx context.Context, runID string, files []string) ([]string, error) {
	var keys []string
	for _, f := range files {
		key := ObjectKey(runID, f)
		contentType := mime.TypeByExtension(filepath.Ext(f))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if _, err := m.client.FPutObject(ctx, m.bucket, key, f, minio.PutObjectOptions{ContentType: contentType}); err != nil {
			return keys, apperrors.Storage(fmt.Sprintf("minio upload %s", key), err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
