// Package storage keeps profile images in a Google Cloud Storage bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/oksasatya/jobify/internal/domain/service"
)

const DefaultPrefix = "avatars/"

// GCSBlobStore stores every object under Prefix. Blob ids are full object names.
type GCSBlobStore struct {
	client *gcs.Client
	Bucket string
	Prefix string
}

func NewGCSBlobStore(client *gcs.Client, bucket, prefix string) *GCSBlobStore {
	return &GCSBlobStore{client: client, Bucket: bucket, Prefix: normalizePrefix(prefix)}
}

func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return DefaultPrefix
	}
	return p + "/"
}

func (s *GCSBlobStore) objectName() string {
	return s.Prefix + uuid.NewString()
}

func (s *GCSBlobStore) UploadFile(ctx context.Context, data []byte, contentType string) (string, error) {
	name := s.objectName()
	wc := s.client.Bucket(s.Bucket).Object(name).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // images are small, send in one request
	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return name, nil
}

// DeleteFile treats a missing object as already deleted.
func (s *GCSBlobStore) DeleteFile(ctx context.Context, id string) error {
	err := s.client.Bucket(s.Bucket).Object(id).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (s *GCSBlobStore) GetFile(ctx context.Context, id string) (io.ReadCloser, string, error) {
	r, err := s.client.Bucket(s.Bucket).Object(id).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, "", service.ErrBlobNotFound
		}
		return nil, "", err
	}
	return r, r.Attrs.ContentType, nil
}

func (s *GCSBlobStore) ListFiles(ctx context.Context) ([]service.BlobInfo, error) {
	it := s.client.Bucket(s.Bucket).Objects(ctx, &gcs.Query{Prefix: s.Prefix})
	var out []service.BlobInfo
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, service.BlobInfo{ID: attrs.Name, CreatedAt: attrs.Created})
	}
	return out, nil
}

var _ service.BlobStore = (*GCSBlobStore)(nil)
