// Package storage owns the on-disk layout: uploaded originals and their
// thumbnails, backup archives, and export/import packaging.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pictor/pkg/logger"
)

// ThumbPrefix marks generated thumbnails next to their originals.
const ThumbPrefix = "thumb_"

// Store resolves and manages the three data directories.
type Store struct {
	UploadsDir string
	BackupsDir string
	ExportsDir string
}

func New(uploadsDir, backupsDir, exportsDir string) (*Store, error) {
	s := &Store{
		UploadsDir: uploadsDir,
		BackupsDir: backupsDir,
		ExportsDir: exportsDir,
	}
	for _, dir := range []string{uploadsDir, backupsDir, exportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return s, nil
}

// SaveOriginal writes uploaded bytes under an id-derived name and returns
// the stored file name and full path. The client name only contributes
// its extension, so uploads cannot collide or escape the directory.
func (s *Store) SaveOriginal(id, clientName string, data []byte) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(clientName))
	if ext == "" {
		ext = ".jpg"
	}
	fileName := id + ext
	fullPath := filepath.Join(s.UploadsDir, fileName)

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("save upload: %w", err)
	}
	return fileName, fullPath, nil
}

// ThumbName returns the thumbnail file name paired with an original.
func ThumbName(fileName string) string {
	return ThumbPrefix + fileName
}

// ReadServed returns the bytes of a file in the uploads directory by its
// bare name. Names with path separators are rejected.
func (s *Store) ReadServed(name string) ([]byte, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(filepath.Join(s.UploadsDir, name))
}

// RemoveImageFiles deletes the original at filePath and its thumbnail.
// Missing files are ignored; deletion must stay idempotent.
func (s *Store) RemoveImageFiles(filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		logger.LogWarn("Failed to remove %s: %v", filePath, err)
	}
	thumb := filepath.Join(filepath.Dir(filePath), ThumbName(filepath.Base(filePath)))
	if err := os.Remove(thumb); err != nil && !os.IsNotExist(err) {
		logger.LogWarn("Failed to remove %s: %v", thumb, err)
	}
}
