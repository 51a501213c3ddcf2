// Package storage keeps uploaded attachment files on disk. The defect store
// only records attachment metadata; this collaborator owns the bytes.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

type FileStorage struct {
	basePath string
}

func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{basePath: basePath}, nil
}

// SaveFile stores an uploaded file under the defect's directory and returns
// the path relative to the storage root. The client-supplied filename is
// reduced to its base name so it cannot point outside that directory.
func (fs *FileStorage) SaveFile(fileHeader *multipart.FileHeader, defectID string) (string, error) {
	name := filepath.Base(filepath.FromSlash(fileHeader.Filename))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename %q", fileHeader.Filename)
	}

	dir := filepath.Join(fs.basePath, fmt.Sprintf("defect_%s", defectID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := filepath.Join(dir, name)

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filepath.Join(fmt.Sprintf("defect_%s", defectID), name), nil
}

// DeleteFile removes a stored file. Paths resolving outside the storage root
// are rejected.
func (fs *FileStorage) DeleteFile(path string) error {
	fullPath := filepath.Join(fs.basePath, path)
	rel, err := filepath.Rel(fs.basePath, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q escapes the storage root", path)
	}
	return os.Remove(fullPath)
}

func (fs *FileStorage) BasePath() string {
	return fs.basePath
}
