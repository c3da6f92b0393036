package captures

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovalhq/pavilion/internal/models"
	"github.com/ovalhq/pavilion/internal/store/sqlite"
)

func TestSweepRemovesOrphans(t *testing.T) {
	dir := t.TempDir()
	st, err := sqlite.NewSQLiteStore(
		fmt.Sprintf("file:%s", filepath.Join(dir, "scoreboard.db")),
		"../../migrations",
	)
	require.NoError(t, err)
	defer st.Close()

	capturesDir := filepath.Join(dir, "captures")
	storage, err := NewStorage(capturesDir)
	require.NoError(t, err)

	referenced := "camera_a_1.jpg"
	orphan := "camera_a_2.jpg"
	fresh := "camera_a_3.jpg"

	require.NoError(t, st.CreateCapture(&models.Capture{
		ID:        "c-1",
		Filename:  referenced,
		Type:      models.CaptureTypePhoto,
		Source:    models.CameraA,
		CreatedAt: time.Now().UTC(),
	}))
	for _, name := range []string{referenced, orphan, fresh} {
		require.NoError(t, storage.Save(name, []byte("frame")))
	}

	// age everything but the fresh file past the grace window
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(capturesDir, referenced), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(capturesDir, orphan), old, old))

	janitor := NewJanitor(st, storage, time.Minute)
	janitor.Sweep()

	names, err := storage.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{referenced, fresh}, names,
		"old orphan removed, referenced and just-written files kept")

	t.Run("fresh orphan falls once it ages", func(t *testing.T) {
		require.NoError(t, os.Chtimes(filepath.Join(capturesDir, fresh), old, old))
		janitor.Sweep()

		names, err := storage.List()
		require.NoError(t, err)
		assert.Equal(t, []string{referenced}, names)
	})

	t.Run("sweep is idempotent", func(t *testing.T) {
		janitor.Sweep()
		names, err := storage.List()
		require.NoError(t, err)
		assert.Equal(t, []string{referenced}, names)
	})
}
