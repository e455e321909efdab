package memory_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/submission-intake/pkg/submission"
	"github.com/tendant/submission-intake/pkg/submission/storage/memory"
)

func TestUploadDownload(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	content := []byte("%PDF-1.4 test content")

	require.NoError(t, backend.Upload(ctx, "submissions/s1/id1/homework.pdf", bytes.NewReader(content)))

	rc, err := backend.Download(ctx, "submissions/s1/id1/homework.pdf")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestUploadWithParams(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	err := backend.UploadWithParams(ctx, bytes.NewReader([]byte("data")), submission.UploadParams{
		ObjectKey: "submissions/s1/id1/homework.pdf",
		MimeType:  "application/pdf",
		Metadata: map[string]string{
			"submission_id": "id1",
			"student_id":    "s1",
			"sha256":        "abc123",
		},
	})
	require.NoError(t, err)

	meta, err := backend.GetObjectMeta(ctx, "submissions/s1/id1/homework.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(4), meta.Size)
	assert.Equal(t, "application/pdf", meta.ContentType)
	assert.Equal(t, "id1", meta.Metadata["submission_id"])
	assert.Equal(t, "abc123", meta.Metadata["sha256"])
	assert.False(t, meta.UpdatedAt.IsZero())
}

func TestDownloadMissing(t *testing.T) {
	backend := memory.New()

	_, err := backend.Download(context.Background(), "no/such/key")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	require.NoError(t, backend.Upload(ctx, "key", bytes.NewReader([]byte("data"))))
	require.NoError(t, backend.Delete(ctx, "key"))

	_, err := backend.Download(ctx, "key")
	assert.Error(t, err)

	assert.Error(t, backend.Delete(ctx, "key"))
}

func TestOverwrite(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	require.NoError(t, backend.Upload(ctx, "key", bytes.NewReader([]byte("first"))))
	require.NoError(t, backend.Upload(ctx, "key", bytes.NewReader([]byte("second version"))))

	rc, err := backend.Download(ctx, "key")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("second version"), got)

	meta, err := backend.GetObjectMeta(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, int64(14), meta.Size)
}
