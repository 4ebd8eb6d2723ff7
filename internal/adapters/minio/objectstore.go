package minioadapter

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore implements ports.ObjectStore against a MinIO (or S3-compatible)
// landing zone holding raw dataset drops.
type ObjectStore struct {
	client *minio.Client
	bucket string
}

// New creates an ObjectStore for the given endpoint and bucket.
func New(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*ObjectStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &ObjectStore{client: client, bucket: bucket}, nil
}

// Fetch downloads one object fully into memory. Dataset files are a few
// hundred rows at most.
func (s *ObjectStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", s.bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", s.bucket, key, err)
	}
	return data, nil
}
