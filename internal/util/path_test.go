package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	got, err := SanitizeFilename("cover.jpg")
	require.NoError(t, err)
	assert.Equal(t, "cover.jpg", got)

	got, err = SanitizeFilename("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "passwd", got)

	for _, bad := range []string{"", ".", ".."} {
		_, err := SanitizeFilename(bad)
		assert.Error(t, err, bad)
	}
}

func TestSafeJoinPath(t *testing.T) {
	base := t.TempDir()

	got, err := SafeJoinPath(base, "covers", "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "covers", "a.jpg"), got)

	_, err = SafeJoinPath(base, "..", "outside.jpg")
	assert.Error(t, err)

	_, err = SafeJoinPath(base, "covers", "..", "..", "escape")
	assert.Error(t, err)
}
