package storage

import (
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStorage(t *testing.T) (*FileStorage, string) {
	tmpDir := t.TempDir()
	fs, err := NewFileStorage(filepath.Join(tmpDir, "uploads"))
	require.NoError(t, err)
	return fs, tmpDir
}

// uploadedFile builds a *multipart.FileHeader the way a real request would,
// without sanitizing the filename on the way in.
func uploadedFile(t *testing.T, filename, content string) *multipart.FileHeader {
	body := strings.Join([]string{
		"--BOUNDARY",
		`Content-Disposition: form-data; name="file"; filename="` + filename + `"`,
		"Content-Type: text/plain",
		"",
		content,
		"--BOUNDARY--",
		"",
	}, "\r\n")

	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=BOUNDARY")

	_, header, err := req.FormFile("file")
	require.NoError(t, err)
	return header
}

func TestSaveFile(t *testing.T) {
	t.Run("StoresUnderDefectDirectory", func(t *testing.T) {
		fs, _ := setupStorage(t)

		path, err := fs.SaveFile(uploadedFile(t, "crack.jpg", "bytes"), "d1")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("defect_d1", "crack.jpg"), path)

		data, err := os.ReadFile(filepath.Join(fs.BasePath(), path))
		require.NoError(t, err)
		assert.Equal(t, "bytes", string(data))
	})

	t.Run("TraversalFilenameStaysInsideRoot", func(t *testing.T) {
		fs, tmpDir := setupStorage(t)

		path, err := fs.SaveFile(uploadedFile(t, "../../escape.txt", "payload"), "d1")
		if err == nil {
			assert.True(t, strings.HasPrefix(path, "defect_d1"+string(filepath.Separator)))
			assert.NotContains(t, path, "..")
		}

		_, statErr := os.Stat(filepath.Join(tmpDir, "escape.txt"))
		assert.True(t, os.IsNotExist(statErr), "file must not land outside the storage root")
	})
}

func TestDeleteFile(t *testing.T) {
	t.Run("RemovesStoredFile", func(t *testing.T) {
		fs, _ := setupStorage(t)

		path, err := fs.SaveFile(uploadedFile(t, "gone.txt", "x"), "d1")
		require.NoError(t, err)

		require.NoError(t, fs.DeleteFile(path))
		_, statErr := os.Stat(filepath.Join(fs.BasePath(), path))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("RejectsPathOutsideRoot", func(t *testing.T) {
		fs, tmpDir := setupStorage(t)

		victim := filepath.Join(tmpDir, "victim.txt")
		require.NoError(t, os.WriteFile(victim, []byte("keep me"), 0644))

		assert.Error(t, fs.DeleteFile("../victim.txt"))
		assert.Error(t, fs.DeleteFile(filepath.Join("defect_d1", "..", "..", "victim.txt")))

		_, statErr := os.Stat(victim)
		assert.NoError(t, statErr, "file outside the storage root must survive")
	})
}
