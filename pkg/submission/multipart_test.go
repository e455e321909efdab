package submission_test

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/submission-intake/pkg/submission"
)

// buildMultipartBody encodes fields and one optional file part with the
// standard library writer, returning the content type and raw body.
func buildMultipartBody(t *testing.T, fields map[string]string, fileField, fileName string, fileContent []byte) (string, []byte) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		fw, err := w.CreateFormField(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(value))
		require.NoError(t, err)
	}

	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileContent)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return w.FormDataContentType(), buf.Bytes()
}

func TestParseMultipart(t *testing.T) {
	t.Run("well-formed body round-trips", func(t *testing.T) {
		contentType, body := buildMultipartBody(t, map[string]string{
			"student_id": "student-123",
			"course_id":  "CS101",
			"section_id": "A",
		}, "file", "homework.pdf", []byte("%PDF-1.4 fake pdf content"))

		parts, err := submission.ParseMultipart(contentType, body)
		require.NoError(t, err)
		require.Len(t, parts, 4)

		assert.Equal(t, []byte("student-123"), parts["student_id"].Value)
		assert.Equal(t, []byte("CS101"), parts["course_id"].Value)
		assert.Equal(t, []byte("A"), parts["section_id"].Value)
		assert.Nil(t, parts["student_id"].Filename)

		file := parts["file"]
		require.NotNil(t, file.Filename)
		assert.Equal(t, "homework.pdf", *file.Filename)
		assert.Equal(t, []byte("%PDF-1.4 fake pdf content"), file.Value)
	})

	t.Run("missing boundary fails", func(t *testing.T) {
		_, err := submission.ParseMultipart("multipart/form-data", []byte("irrelevant"))
		assert.ErrorIs(t, err, submission.ErrMissingBoundary)
	})

	t.Run("quoted boundary is unwrapped", func(t *testing.T) {
		body := "--xyz\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\nvalue\r\n--xyz--\r\n"

		parts, err := submission.ParseMultipart(`multipart/form-data; boundary="xyz"`, []byte(body))
		require.NoError(t, err)
		require.Contains(t, parts, "a")
		assert.Equal(t, []byte("value"), parts["a"].Value)
	})

	t.Run("bare LF line endings are tolerated", func(t *testing.T) {
		body := "--b1\nContent-Disposition: form-data; name=\"a\"\n\nhello\n--b1--\n"

		parts, err := submission.ParseMultipart("multipart/form-data; boundary=b1", []byte(body))
		require.NoError(t, err)
		require.Contains(t, parts, "a")
		// Bare-LF framing has no trailing CRLF to strip.
		assert.Equal(t, []byte("hello\n"), parts["a"].Value)
	})

	t.Run("trailing CRLF boundary artifact is stripped", func(t *testing.T) {
		body := "--b1\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\npayload\r\n--b1--\r\n"

		parts, err := submission.ParseMultipart("multipart/form-data; boundary=b1", []byte(body))
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), parts["a"].Value)
	})

	t.Run("binary content with CRLF inside survives", func(t *testing.T) {
		content := []byte("line1\r\nline2\r\nbinary\x00bytes")
		contentType, body := buildMultipartBody(t, nil, "file", "data.txt", content)

		parts, err := submission.ParseMultipart(contentType, body)
		require.NoError(t, err)
		assert.Equal(t, content, parts["file"].Value)
	})

	t.Run("repeated field names keep the last occurrence", func(t *testing.T) {
		body := "--b1\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\nfirst\r\n" +
			"--b1\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\nsecond\r\n" +
			"--b1--\r\n"

		parts, err := submission.ParseMultipart("multipart/form-data; boundary=b1", []byte(body))
		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.Equal(t, []byte("second"), parts["a"].Value)
	})

	t.Run("segments without a name are silently skipped", func(t *testing.T) {
		body := "--b1\r\nContent-Type: text/plain\r\n\r\nunnamed preamble\r\n" +
			"--b1\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\nkept\r\n" +
			"--b1--\r\n"

		parts, err := submission.ParseMultipart("multipart/form-data; boundary=b1", []byte(body))
		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.Equal(t, []byte("kept"), parts["a"].Value)
	})

	t.Run("segments without a blank line are dropped", func(t *testing.T) {
		body := "--b1\r\nContent-Disposition: form-data; name=\"broken\"\r\n" +
			"--b1\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\nok\r\n" +
			"--b1--\r\n"

		parts, err := submission.ParseMultipart("multipart/form-data; boundary=b1", []byte(body))
		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.Contains(t, parts, "a")
	})

	t.Run("empty filename is present but empty", func(t *testing.T) {
		body := "--b1\r\nContent-Disposition: form-data; name=\"file\"; filename=\"\"\r\n\r\ncontent\r\n--b1--\r\n"

		parts, err := submission.ParseMultipart("multipart/form-data; boundary=b1", []byte(body))
		require.NoError(t, err)

		file := parts["file"]
		require.NotNil(t, file.Filename)
		assert.Equal(t, "", *file.Filename)
	})

	t.Run("absent filename is nil", func(t *testing.T) {
		body := "--b1\r\nContent-Disposition: form-data; name=\"file\"\r\n\r\ncontent\r\n--b1--\r\n"

		parts, err := submission.ParseMultipart("multipart/form-data; boundary=b1", []byte(body))
		require.NoError(t, err)
		assert.Nil(t, parts["file"].Filename)
	})

	t.Run("empty body yields no parts", func(t *testing.T) {
		parts, err := submission.ParseMultipart("multipart/form-data; boundary=b1", nil)
		require.NoError(t, err)
		assert.Empty(t, parts)
	})
}
