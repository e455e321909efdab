package submission_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/submission-intake/pkg/submission"
)

func TestFingerprint(t *testing.T) {
	t.Run("known vectors", func(t *testing.T) {
		assert.Equal(t,
			"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
			submission.Fingerprint(nil))
		assert.Equal(t,
			"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
			submission.Fingerprint([]byte("abc")))
	})

	t.Run("deterministic", func(t *testing.T) {
		data := []byte("%PDF-1.4 some student work")
		assert.Equal(t, submission.Fingerprint(data), submission.Fingerprint(data))
	})

	t.Run("single byte change alters the digest", func(t *testing.T) {
		a := []byte("submission content")
		b := []byte("submission De Content")
		assert.NotEqual(t, submission.Fingerprint(a), submission.Fingerprint(b))

		c := make([]byte, len(a))
		copy(c, a)
		c[0] ^= 0x01
		assert.NotEqual(t, submission.Fingerprint(a), submission.Fingerprint(c))
	})

	t.Run("output is 64 lowercase hex characters", func(t *testing.T) {
		hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)
		for _, data := range [][]byte{nil, []byte("x"), make([]byte, 4096)} {
			require.Regexp(t, hexRe, submission.Fingerprint(data))
		}
	})
}
