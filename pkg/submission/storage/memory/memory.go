package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/tendant/submission-intake/pkg/submission"
)

// Backend is an in-memory implementation of the submission.BlobStore interface
type Backend struct {
	mu       sync.RWMutex
	objects  map[string][]byte
	mimeType map[string]string
	metadata map[string]map[string]string
	updated  map[string]time.Time
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects:  make(map[string][]byte),
		mimeType: make(map[string]string),
		metadata: make(map[string]map[string]string),
		updated:  make(map[string]time.Time),
	}
}

// Upload uploads content directly
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = data
	b.updated[objectKey] = time.Now().UTC()
	if _, exists := b.mimeType[objectKey]; !exists {
		b.mimeType[objectKey] = "application/octet-stream"
	}
	return nil
}

// UploadWithParams uploads content with mime type and object metadata
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params submission.UploadParams) error {
	if err := b.Upload(ctx, params.ObjectKey, reader); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if params.MimeType != "" {
		b.mimeType[params.ObjectKey] = params.MimeType
	}
	if params.Metadata != nil {
		meta := make(map[string]string, len(params.Metadata))
		for k, v := range params.Metadata {
			meta[k] = v
		}
		b.metadata[params.ObjectKey] = meta
	}
	return nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, errors.New("object not found")
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return errors.New("object not found")
	}

	delete(b.objects, objectKey)
	delete(b.mimeType, objectKey)
	delete(b.metadata, objectKey)
	delete(b.updated, objectKey)
	return nil
}

// GetObjectMeta retrieves metadata for an object in memory
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*submission.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, errors.New("object not found")
	}

	meta := &submission.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(data)),
		ContentType: b.mimeType[objectKey],
		UpdatedAt:   b.updated[objectKey],
		Metadata:    make(map[string]string),
	}
	for k, v := range b.metadata[objectKey] {
		meta.Metadata[k] = v
	}

	return meta, nil
}
