package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveService keeps the verbatim upstream suggestion payloads in object
// storage before the normalizer rewrites them. The upstream contract keeps
// changing shape; the archive is what lets us reconstruct what it actually
// sent.
type ArchiveService interface {
	ArchivePayload(ctx context.Context, businessID uuid.UUID, payload json.RawMessage) error
	EnsureBucketExists(ctx context.Context) error
	Online(ctx context.Context) error
}

type minioArchive struct {
	client *minio.Client
	bucket string
}

func NewMinioArchiveService(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (ArchiveService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioArchive{client: client, bucket: bucket}, nil
}

func (m *minioArchive) ArchivePayload(ctx context.Context, businessID uuid.UUID, payload json.RawMessage) error {
	if len(payload) == 0 {
		return nil
	}
	objectName := fmt.Sprintf("%s/%s.json", businessID.String(), time.Now().UTC().Format("20060102T150405Z"))
	_, err := m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (m *minioArchive) EnsureBucketExists(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *minioArchive) Online(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}
