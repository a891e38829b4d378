package docstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config identifies the remote object holding the document.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	ObjectKey string
	UseSSL    bool
}

// s3Remote reads and writes one JSON object in an S3-compatible bucket.
type s3Remote struct {
	client *minio.Client
	bucket string
	key    string
}

// NewS3Store connects to the object store and returns a DocumentStore over
// the configured object. transport may be nil for default networking.
func NewS3Store(cfg S3Config, transport http.RoundTripper, log *slog.Logger) (*DocumentStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	r := &s3Remote{
		client: client,
		bucket: cfg.Bucket,
		key:    cfg.ObjectKey,
	}

	return newDocumentStore(r, log), nil
}

func (r *s3Remote) get(ctx context.Context) ([]byte, error) {
	obj, err := r.client.GetObject(ctx, r.bucket, r.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read object: %w", err)
	}

	return data, nil
}

func (r *s3Remote) put(ctx context.Context, data []byte) error {
	_, err := r.client.PutObject(ctx, r.bucket, r.key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}

	return nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

// HealthCheck verifies the bucket is reachable.
func (r *s3Remote) healthCheck(ctx context.Context) error {
	_, err := r.client.BucketExists(ctx, r.bucket)
	return err
}

// HealthCheck implements health.Checkable when the store is S3-backed.
func (s *DocumentStore) HealthCheck(ctx context.Context) error {
	if r, ok := s.remote.(*s3Remote); ok {
		return r.healthCheck(ctx)
	}
	return nil
}
