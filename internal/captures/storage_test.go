package captures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageRoundTrip(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, storage.Save("camera_a_1.jpg", []byte("frame")))
	require.NoError(t, storage.Save("camera_b_2.jpg", []byte("frame")))

	names, err := storage.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"camera_a_1.jpg", "camera_b_2.jpg"}, names)

	require.NoError(t, storage.Remove("camera_a_1.jpg"))
	names, err = storage.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"camera_b_2.jpg"}, names)

	t.Run("removing a missing file is fine", func(t *testing.T) {
		assert.NoError(t, storage.Remove("camera_a_1.jpg"))
	})
}

func TestStorageRejectsPathEscapes(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	for _, filename := range []string{"", "../evil.jpg", "sub/dir.jpg", "a..b/../../etc"} {
		assert.Error(t, storage.Save(filename, []byte("frame")), "filename %q", filename)
		assert.Error(t, storage.Remove(filename), "filename %q", filename)
	}
}
