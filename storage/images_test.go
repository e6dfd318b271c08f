package storage

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileImageStore {
	t.Helper()
	store, err := NewFileImageStore(t.TempDir(), "http://localhost:8080/images/")
	require.NoError(t, err)
	return store
}

func TestUpload_WritesFileAndReturnsURL(t *testing.T) {
	store := newTestStore(t)

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake png bytes"))
	url, err := store.Upload(payload)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/images/products/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	name := strings.TrimPrefix(url, "http://localhost:8080/images/")
	data, err := os.ReadFile(filepath.Join(store.dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake png bytes"), data)
}

func TestUpload_AcceptsBareBase64AsJPEG(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Upload(base64.StdEncoding.EncodeToString([]byte("jpeg bytes")))
	require.NoError(t, err)
	assert.Contains(t, url, "/products/")
}

func TestUpload_RejectsUnsupportedFormat(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Upload("data:image/gif;base64," + base64.StdEncoding.EncodeToString([]byte("gif")))
	assert.ErrorIs(t, err, ErrBadImageFormat)
}

func TestUpload_RejectsInvalidBase64(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Upload("data:image/png;base64,not!!base64@@")
	assert.ErrorIs(t, err, ErrBadImageFormat)
}

func TestUpload_RejectsOversizedImage(t *testing.T) {
	store := newTestStore(t)

	big := base64.StdEncoding.EncodeToString(make([]byte, maxImageBytes+1))
	_, err := store.Upload("data:image/jpeg;base64," + big)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
