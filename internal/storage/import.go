package storage

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pictor/internal/database"
	"pictor/internal/index"
)

// ImportItemError records one failed entry of an import batch.
type ImportItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// ImportResult reports what an import actually did. A partially failed
// batch is a normal outcome, not an error.
type ImportResult struct {
	Imported []database.Image  `json:"imported"`
	Errors   []ImportItemError `json:"errors"`
}

// ImportArchive restores images from an export zip. Every image gets a
// fresh id and file name; the metadata travels along and is re-indexed
// through the normal write path, so imported images are immediately
// searchable. Entries missing their file continue the batch with a
// recorded per-item error.
func (s *Store) ImportArchive(ctx context.Context, idx *index.Store, baseURL, archivePath string) (ImportResult, error) {
	var result ImportResult

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return result, fmt.Errorf("open import archive: %w", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	var metadataEntries []*zip.File
	hasManifest := false

	for _, f := range zr.File {
		name := filepath.ToSlash(f.Name)
		switch {
		case name == "export-info.json":
			hasManifest = true
		case strings.HasPrefix(name, "images/") && !f.FileInfo().IsDir():
			files[strings.TrimPrefix(name, "images/")] = f
		case strings.HasPrefix(name, "metadata/") && strings.HasSuffix(name, ".json"):
			metadataEntries = append(metadataEntries, f)
		}
	}

	if !hasManifest {
		return result, fmt.Errorf("invalid import archive: missing export-info.json")
	}
	if len(metadataEntries) == 0 {
		return result, fmt.Errorf("invalid import archive: no metadata entries")
	}

	for _, entryFile := range metadataEntries {
		entry, err := readImportEntry(entryFile)
		if err != nil {
			result.Errors = append(result.Errors, ImportItemError{
				ID:    filepath.Base(entryFile.Name),
				Error: err.Error(),
			})
			continue
		}

		src, ok := files[entry.FileName]
		if !ok {
			result.Errors = append(result.Errors, ImportItemError{
				ID:    entry.ID,
				Error: fmt.Sprintf("image file not found in archive: %s", entry.FileName),
			})
			continue
		}

		newID := uuid.New().String()
		data, err := readZipFile(src)
		if err != nil {
			result.Errors = append(result.Errors, ImportItemError{ID: entry.ID, Error: err.Error()})
			continue
		}

		fileName, fullPath, err := s.SaveOriginal(newID, entry.FileName, data)
		if err != nil {
			result.Errors = append(result.Errors, ImportItemError{ID: entry.ID, Error: err.Error()})
			continue
		}

		url := baseURL + "/uploads/" + fileName
		img := database.Image{
			ID:           newID,
			FileName:     fileName,
			FileSize:     entry.FileSize,
			MimeType:     entry.MimeType,
			URL:          url,
			FilePath:     fullPath,
			ThumbnailURL: url,
			UploadDate:   time.Now(),
			Metadata:     entry.Metadata,
		}

		if err := idx.IndexImage(ctx, &img); err != nil {
			os.Remove(fullPath)
			result.Errors = append(result.Errors, ImportItemError{ID: entry.ID, Error: err.Error()})
			continue
		}

		result.Imported = append(result.Imported, img)
	}

	return result, nil
}

func readImportEntry(f *zip.File) (exportEntry, error) {
	var entry exportEntry
	rc, err := f.Open()
	if err != nil {
		return entry, fmt.Errorf("open metadata entry: %w", err)
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(&entry); err != nil {
		return entry, fmt.Errorf("parse metadata entry: %w", err)
	}
	if entry.FileName == "" {
		return entry, fmt.Errorf("metadata entry missing fileName")
	}
	entry.FileName = filepath.Base(entry.FileName)
	return entry, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive entry: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read archive entry: %w", err)
	}
	return data, nil
}
